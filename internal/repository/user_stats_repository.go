package repository

import (
	"context"

	"github.com/lshigami/eps-topik/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStatsRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*model.UserStats, error)
	// FindByUserIDForUpdate locks the row; a missing row is ErrNotFound.
	FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.UserStats, error)
	// Ensure creates an empty row for userID unless one exists.
	Ensure(ctx context.Context, userID uint) error
	// Save inserts or overwrites the row for stats.UserID.
	Save(ctx context.Context, stats *model.UserStats) error
}

type userStatsRepository struct {
	db *gorm.DB
}

func NewUserStatsRepository(db *gorm.DB) UserStatsRepository {
	return &userStatsRepository{db: db}
}

func (r *userStatsRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserStats, error) {
	var stats model.UserStats
	if err := conn(ctx, r.db).Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}

func (r *userStatsRepository) FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.UserStats, error) {
	var stats model.UserStats
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}

func (r *userStatsRepository) Ensure(ctx context.Context, userID uint) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.UserStats{UserID: userID}).Error
}

func (r *userStatsRepository) Save(ctx context.Context, stats *model.UserStats) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(stats).Error
}
