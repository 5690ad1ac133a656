package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/repository"
	"github.com/rs/zerolog/log"
)

type UserStatsService interface {
	// GetStats returns zeroed stats for a user who has not finished an
	// exam yet.
	GetStats(ctx context.Context, userID uint) (*dto.UserStatsResponse, error)
}

type userStatsService struct {
	repo repository.UserStatsRepository
}

func NewUserStatsService(repo repository.UserStatsRepository) UserStatsService {
	return &userStatsService{repo: repo}
}

func (s *userStatsService) GetStats(ctx context.Context, userID uint) (*dto.UserStatsResponse, error) {
	stats, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &dto.UserStatsResponse{UserID: userID}, nil
	}
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to load user stats")
		return nil, fmt.Errorf("error fetching stats: %w", err)
	}
	var resp dto.UserStatsResponse
	if err := copier.Copy(&resp, stats); err != nil {
		return nil, fmt.Errorf("error preparing stats response: %w", err)
	}
	return &resp, nil
}
