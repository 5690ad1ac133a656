package repository

import (
	"context"
	"time"

	"github.com/lshigami/eps-topik/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptFilter struct {
	UserID uint
	ExamID uint
	Status model.AttemptStatus
	Page   Page
}

// AttemptRepository mutates attempts only through guarded statements that
// match id, owner and status together. A guard that matches nothing yields
// ErrNotFound, so a wrong owner and a finished attempt look the same.
type AttemptRepository interface {
	// Create inserts the attempt and its answer slots. A second in-progress
	// attempt for the same (user, exam) fails with ErrDuplicate.
	Create(ctx context.Context, attempt *model.Attempt) error
	FindInProgress(ctx context.Context, userID, examID uint) (*model.Attempt, error)
	FindForUser(ctx context.Context, id, userID uint) (*model.Attempt, error)
	// FindInProgressForUser loads the attempt with its slots. With lock set
	// the attempt row stays locked until the transaction ends.
	FindInProgressForUser(ctx context.Context, id, userID uint, lock bool) (*model.Attempt, error)
	SaveProgress(ctx context.Context, attempt *model.Attempt) error
	UpdateMarked(ctx context.Context, attempt *model.Attempt) error
	// Complete flips an in-progress attempt to its terminal scored state.
	Complete(ctx context.Context, attempt *model.Attempt) error
	Abandon(ctx context.Context, id, userID uint, endTime time.Time) error
	List(ctx context.Context, filter AttemptFilter) ([]model.Attempt, int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func orderedSlots(db *gorm.DB) *gorm.DB {
	return db.Order("question_number asc")
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return translate(conn(ctx, r.db).Create(attempt).Error)
}

func (r *attemptRepository) FindInProgress(ctx context.Context, userID, examID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := conn(ctx, r.db).Preload("Answers", orderedSlots).
		Where("user_id = ? AND exam_id = ? AND status = ?", userID, examID, model.AttemptStatusInProgress).
		First(&attempt).Error
	if err != nil {
		return nil, translate(err)
	}
	return &attempt, nil
}

func (r *attemptRepository) FindForUser(ctx context.Context, id, userID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := conn(ctx, r.db).Preload("Answers", orderedSlots).
		Where("id = ? AND user_id = ?", id, userID).
		First(&attempt).Error
	if err != nil {
		return nil, translate(err)
	}
	return &attempt, nil
}

func (r *attemptRepository) FindInProgressForUser(ctx context.Context, id, userID uint, lock bool) (*model.Attempt, error) {
	query := conn(ctx, r.db)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var attempt model.Attempt
	err := query.Where("id = ? AND user_id = ? AND status = ?", id, userID, model.AttemptStatusInProgress).
		First(&attempt).Error
	if err != nil {
		return nil, translate(err)
	}
	// Preload runs as its own query; keep it outside the locking clause.
	if err := orderedSlots(conn(ctx, r.db)).Where("attempt_id = ?", attempt.ID).
		Find(&attempt.Answers).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) guarded(ctx context.Context, id, userID uint, fields map[string]interface{}) error {
	res := conn(ctx, r.db).Model(&model.Attempt{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, model.AttemptStatusInProgress).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *attemptRepository) SaveProgress(ctx context.Context, attempt *model.Attempt) error {
	return r.guarded(ctx, attempt.ID, attempt.UserID, map[string]interface{}{
		"current_section":        attempt.CurrentSection,
		"current_question_index": attempt.CurrentQuestionIndex,
		"time_remaining":         attempt.TimeRemaining,
	})
}

func (r *attemptRepository) UpdateMarked(ctx context.Context, attempt *model.Attempt) error {
	marked := attempt.MarkedQuestions
	if marked == nil {
		marked = []uint{}
	}
	// Updates with a map bypasses the field serializer; go through the
	// struct so MarkedQuestions is encoded as json.
	res := conn(ctx, r.db).Model(&model.Attempt{}).
		Where("id = ? AND user_id = ? AND status = ?", attempt.ID, attempt.UserID, model.AttemptStatusInProgress).
		Select("marked_questions").
		Updates(&model.Attempt{MarkedQuestions: marked})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *attemptRepository) Complete(ctx context.Context, attempt *model.Attempt) error {
	res := conn(ctx, r.db).Model(&model.Attempt{}).
		Where("id = ? AND user_id = ? AND status = ?", attempt.ID, attempt.UserID, model.AttemptStatusInProgress).
		Select("status", "end_time", "time_spent", "time_remaining", "score", "passed", "topic_performance").
		Updates(&model.Attempt{
			Status:           attempt.Status,
			EndTime:          attempt.EndTime,
			TimeSpent:        attempt.TimeSpent,
			TimeRemaining:    attempt.TimeRemaining,
			Score:            attempt.Score,
			Passed:           attempt.Passed,
			TopicPerformance: attempt.TopicPerformance,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *attemptRepository) Abandon(ctx context.Context, id, userID uint, endTime time.Time) error {
	return r.guarded(ctx, id, userID, map[string]interface{}{
		"status":   model.AttemptStatusAbandoned,
		"end_time": endTime,
	})
}

// List returns attempts without their slots, newest first.
func (r *attemptRepository) List(ctx context.Context, filter AttemptFilter) ([]model.Attempt, int64, error) {
	query := conn(ctx, r.db).Model(&model.Attempt{}).Where("user_id = ?", filter.UserID)
	if filter.ExamID != 0 {
		query = query.Where("exam_id = ?", filter.ExamID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var attempts []model.Attempt
	err := filter.Page.apply(query).Preload("Exam").Order("start_time desc").Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}
