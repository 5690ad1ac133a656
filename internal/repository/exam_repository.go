package repository

import (
	"context"

	"github.com/lshigami/eps-topik/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamFilter struct {
	ActiveOnly bool
	ExamType   model.ExamType
	Page       Page
}

type ExamRepository interface {
	Create(ctx context.Context, exam *model.Exam) error
	FindByID(ctx context.Context, id uint) (*model.Exam, error)
	// FindByIDForUpdate row-locks the exam until the surrounding
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Exam, error)
	List(ctx context.Context, filter ExamFilter) ([]model.Exam, int64, error)
	Update(ctx context.Context, exam *model.Exam) error
	Delete(ctx context.Context, id uint) error
	IncrementTotalAttempts(ctx context.Context, id uint) error
	UpdateStats(ctx context.Context, id uint, stats model.ExamStats) error
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(ctx context.Context, exam *model.Exam) error {
	return translate(conn(ctx, r.db).Create(exam).Error)
}

func (r *examRepository) FindByID(ctx context.Context, id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := conn(ctx, r.db).First(&exam, id).Error; err != nil {
		return nil, translate(err)
	}
	return &exam, nil
}

func (r *examRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Exam, error) {
	var exam model.Exam
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&exam, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &exam, nil
}

func (r *examRepository) List(ctx context.Context, filter ExamFilter) ([]model.Exam, int64, error) {
	query := conn(ctx, r.db).Model(&model.Exam{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.ExamType != "" {
		query = query.Where("exam_type = ?", filter.ExamType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var exams []model.Exam
	if err := filter.Page.apply(query).Order("created_at desc").Find(&exams).Error; err != nil {
		return nil, 0, err
	}
	return exams, total, nil
}

// Update writes the authored fields only. Stats are owned by the
// submission path.
func (r *examRepository) Update(ctx context.Context, exam *model.Exam) error {
	res := conn(ctx, r.db).Model(exam).
		Select("title", "description", "exam_type", "reading_question_ids", "listening_question_ids",
			"duration_reading", "duration_listening", "duration_total", "pass_score", "is_active").
		Updates(exam)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the exam together with all of its attempts.
func (r *examRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("exam_id = ?", id).Delete(&model.Attempt{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Exam{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *examRepository) IncrementTotalAttempts(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Model(&model.Exam{}).Where("id = ?", id).
		UpdateColumn("stats_total_attempts", gorm.Expr("stats_total_attempts + 1")).Error
}

func (r *examRepository) UpdateStats(ctx context.Context, id uint, stats model.ExamStats) error {
	return conn(ctx, r.db).Model(&model.Exam{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"stats_completed_attempts": stats.CompletedAttempts,
			"stats_average_score":      stats.AverageScore,
			"stats_pass_rate":          stats.PassRate,
		}).Error
}
