package repository

import (
	"context"

	"github.com/lshigami/eps-topik/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *model.Plan) error
	FindByID(ctx context.Context, id uint) (*model.Plan, error)
	List(ctx context.Context, activeOnly bool) ([]model.Plan, error)
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *model.Plan) error {
	return translate(conn(ctx, r.db).Create(plan).Error)
}

func (r *planRepository) FindByID(ctx context.Context, id uint) (*model.Plan, error) {
	var plan model.Plan
	if err := conn(ctx, r.db).First(&plan, id).Error; err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

func (r *planRepository) List(ctx context.Context, activeOnly bool) ([]model.Plan, error) {
	query := conn(ctx, r.db).Order("price asc")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var plans []model.Plan
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

type SubscriptionRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*model.UserSubscription, error)
	FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.UserSubscription, error)
	// CreateIfAbsent inserts sub unless the user already has a row, then
	// returns whichever row is stored.
	CreateIfAbsent(ctx context.Context, sub *model.UserSubscription) (*model.UserSubscription, error)
	Save(ctx context.Context, sub *model.UserSubscription) error
	IncrementExamsUsed(ctx context.Context, id uint) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserSubscription, error) {
	var sub model.UserSubscription
	if err := conn(ctx, r.db).Preload("Plan").Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.UserSubscription, error) {
	var sub model.UserSubscription
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) CreateIfAbsent(ctx context.Context, sub *model.UserSubscription) (*model.UserSubscription, error) {
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(sub).Error
	if err != nil {
		return nil, translate(err)
	}
	return r.FindByUserID(ctx, sub.UserID)
}

func (r *subscriptionRepository) Save(ctx context.Context, sub *model.UserSubscription) error {
	return translate(conn(ctx, r.db).Omit("Plan").Save(sub).Error)
}

func (r *subscriptionRepository) IncrementExamsUsed(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Model(&model.UserSubscription{}).Where("id = ?", id).
		UpdateColumn("exams_used", gorm.Expr("exams_used + 1")).Error
}
