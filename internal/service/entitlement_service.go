package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/eps-topik/config"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/model"
	"github.com/lshigami/eps-topik/internal/repository"
	"github.com/rs/zerolog/log"
)

const freePlanName = "Free"

// EntitlementService is the only place that decides what a user's plan
// allows. Every user has exactly one UserSubscription row; users without a
// paid plan get a free-tier row on first use.
type EntitlementService interface {
	// CheckExamQuota returns a *QuotaExceededError when the user may not
	// start another exam. Inside a transaction the subscription row stays
	// locked until commit.
	CheckExamQuota(ctx context.Context, userID uint) error
	RecordExamUsage(ctx context.Context, userID uint) error
	CanReview(ctx context.Context, userID uint) (bool, error)
	GetSubscription(ctx context.Context, userID uint) (*dto.SubscriptionResponse, error)

	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context) ([]dto.PlanResponse, error)
	AssignPlan(ctx context.Context, req dto.AssignPlanRequest) (*dto.SubscriptionResponse, error)
}

type entitlementService struct {
	tx       repository.Transactor
	subRepo  repository.SubscriptionRepository
	planRepo repository.PlanRepository
	cfg      *config.Config
	now      func() time.Time
}

func NewEntitlementService(
	tx repository.Transactor,
	subRepo repository.SubscriptionRepository,
	planRepo repository.PlanRepository,
	cfg *config.Config,
) EntitlementService {
	return &entitlementService{
		tx:       tx,
		subRepo:  subRepo,
		planRepo: planRepo,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *entitlementService) freeTier(sub *model.UserSubscription) {
	sub.PlanID = nil
	sub.Plan = nil
	sub.PlanName = freePlanName
	sub.Status = model.SubscriptionActive
	sub.EndDate = nil
	sub.ExamsLimit = s.cfg.Entitlement.FreeExamLimit
	sub.ReviewAccess = s.cfg.Entitlement.FreeReviewAccess
}

// resolve returns the user's effective subscription. A missing row is
// created as free tier; a lapsed paid plan is rewritten to free tier. The
// exam usage counter carries over.
func (s *entitlementService) resolve(ctx context.Context, userID uint, lock bool) (*model.UserSubscription, error) {
	find := s.subRepo.FindByUserID
	if lock {
		find = s.subRepo.FindByUserIDForUpdate
	}
	sub, err := find(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		fresh := &model.UserSubscription{UserID: userID, StartDate: s.now()}
		s.freeTier(fresh)
		if _, err := s.subRepo.CreateIfAbsent(ctx, fresh); err != nil {
			return nil, fmt.Errorf("error creating free subscription: %w", err)
		}
		sub, err = find(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading subscription: %w", err)
	}

	now := s.now()
	if sub.PlanID != nil && !sub.ActiveAt(now) {
		log.Info().Uint("userID", userID).Str("plan", sub.PlanName).Msg("Subscription lapsed, falling back to free tier")
		s.freeTier(sub)
		sub.StartDate = now
		if err := s.subRepo.Save(ctx, sub); err != nil {
			return nil, fmt.Errorf("error downgrading subscription: %w", err)
		}
	}
	return sub, nil
}

func (s *entitlementService) CheckExamQuota(ctx context.Context, userID uint) error {
	sub, err := s.resolve(ctx, userID, true)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("CheckExamQuota: resolve failed")
		return err
	}
	if sub.QuotaExceeded() {
		return &QuotaExceededError{
			ExamsUsed:  sub.ExamsUsed,
			ExamsLimit: sub.ExamsLimit,
			PlanName:   sub.PlanName,
		}
	}
	return nil
}

func (s *entitlementService) RecordExamUsage(ctx context.Context, userID uint) error {
	sub, err := s.resolve(ctx, userID, true)
	if err != nil {
		return err
	}
	if err := s.subRepo.IncrementExamsUsed(ctx, sub.ID); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("RecordExamUsage: increment failed")
		return fmt.Errorf("error recording exam usage: %w", err)
	}
	return nil
}

func (s *entitlementService) CanReview(ctx context.Context, userID uint) (bool, error) {
	sub, err := s.resolve(ctx, userID, false)
	if err != nil {
		return false, err
	}
	return sub.ReviewAccess, nil
}

func (s *entitlementService) GetSubscription(ctx context.Context, userID uint) (*dto.SubscriptionResponse, error) {
	sub, err := s.resolve(ctx, userID, false)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("GetSubscription failed")
		return nil, err
	}
	return toSubscriptionResponse(sub), nil
}

func (s *entitlementService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	plan := model.Plan{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		Currency:     strings.ToUpper(req.Currency),
		DurationDays: req.DurationDays,
		ExamsLimit:   req.ExamsLimit,
		ReviewAccess: req.ReviewAccess,
		IsActive:     true,
	}
	if plan.Currency == "" {
		plan.Currency = "LKR"
	}
	if strings.EqualFold(plan.Name, freePlanName) {
		return nil, invalidInput("plan name %q is reserved", plan.Name)
	}
	if err := s.planRepo.Create(ctx, &plan); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidInput("plan %q already exists", plan.Name)
		}
		log.Error().Err(err).Str("name", plan.Name).Msg("CreatePlan failed")
		return nil, fmt.Errorf("error creating plan: %w", err)
	}

	var resp dto.PlanResponse
	if err := copier.Copy(&resp, &plan); err != nil {
		return nil, fmt.Errorf("error preparing plan response: %w", err)
	}
	return &resp, nil
}

func (s *entitlementService) ListPlans(ctx context.Context) ([]dto.PlanResponse, error) {
	plans, err := s.planRepo.List(ctx, true)
	if err != nil {
		log.Error().Err(err).Msg("ListPlans failed")
		return nil, fmt.Errorf("error fetching plans: %w", err)
	}
	resp := make([]dto.PlanResponse, 0, len(plans))
	if err := copier.Copy(&resp, &plans); err != nil {
		return nil, fmt.Errorf("error preparing plans response: %w", err)
	}
	return resp, nil
}

// AssignPlan starts a fresh period of plan for the user and resets the
// usage counter.
func (s *entitlementService) AssignPlan(ctx context.Context, req dto.AssignPlanRequest) (*dto.SubscriptionResponse, error) {
	var out *model.UserSubscription
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.planRepo.FindByID(ctx, req.PlanID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("plan %d: %w", req.PlanID, ErrNotFound)
			}
			return err
		}
		if !plan.IsActive {
			return invalidInput("plan %q is not active", plan.Name)
		}
		sub, err := s.resolve(ctx, req.UserID, true)
		if err != nil {
			return err
		}

		now := s.now()
		end := now.AddDate(0, 0, plan.DurationDays)
		sub.PlanID = &plan.ID
		sub.Plan = plan
		sub.PlanName = plan.Name
		sub.Status = model.SubscriptionActive
		sub.StartDate = now
		sub.EndDate = &end
		sub.ExamsUsed = 0
		sub.ExamsLimit = plan.ExamsLimit
		sub.ReviewAccess = plan.ReviewAccess
		if err := s.subRepo.Save(ctx, sub); err != nil {
			return fmt.Errorf("error saving subscription: %w", err)
		}
		out = sub
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("userID", req.UserID).Uint("planID", req.PlanID).Msg("AssignPlan failed")
		return nil, err
	}
	log.Info().Uint("userID", req.UserID).Str("plan", out.PlanName).Msg("Plan assigned")
	return toSubscriptionResponse(out), nil
}

func toSubscriptionResponse(sub *model.UserSubscription) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		UserID:       sub.UserID,
		PlanID:       sub.PlanID,
		PlanName:     sub.PlanName,
		Status:       string(sub.Status),
		StartDate:    sub.StartDate,
		EndDate:      sub.EndDate,
		ExamsUsed:    sub.ExamsUsed,
		ExamsLimit:   sub.ExamsLimit,
		ReviewAccess: sub.ReviewAccess,
	}
}
