package repository

import (
	"context"

	"github.com/lshigami/eps-topik/internal/model"
	"gorm.io/gorm"
)

type QuestionFilter struct {
	Type       model.QuestionType
	Topic      string
	Difficulty string
	Page       Page
}

type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id uint) (*model.Question, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]model.Question, int64, error)
	// Update writes the authored columns only. Usage counters belong to
	// IncrementUsage.
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id uint) error
	// IncrementUsage bumps times_answered for answeredIDs and times_correct
	// for correctIDs with single-statement increments.
	IncrementUsage(ctx context.Context, answeredIDs, correctIDs []uint) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	return translate(conn(ctx, r.db).Create(question).Error)
}

func (r *questionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	if err := conn(ctx, r.db).First(&question, id).Error; err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

// FindByIDs returns the questions that exist, in no particular order.
func (r *questionRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Question, error) {
	var questions []model.Question
	if len(ids) == 0 {
		return questions, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, translate(err)
	}
	return questions, nil
}

func (r *questionRepository) List(ctx context.Context, filter QuestionFilter) ([]model.Question, int64, error) {
	query := conn(ctx, r.db).Model(&model.Question{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Topic != "" {
		query = query.Where("topic = ?", filter.Topic)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var questions []model.Question
	if err := filter.Page.apply(query).Order("created_at desc").Find(&questions).Error; err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func (r *questionRepository) Update(ctx context.Context, question *model.Question) error {
	res := conn(ctx, r.db).Model(question).
		Select("type", "text", "korean_text", "image_url", "audio_url", "options", "correct_answer", "topic", "difficulty", "updated_at").
		Updates(question)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&model.Question{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepository) IncrementUsage(ctx context.Context, answeredIDs, correctIDs []uint) error {
	db := conn(ctx, r.db)
	if len(answeredIDs) > 0 {
		if err := db.Model(&model.Question{}).Where("id IN ?", answeredIDs).
			UpdateColumn("times_answered", gorm.Expr("times_answered + 1")).Error; err != nil {
			return err
		}
	}
	if len(correctIDs) > 0 {
		if err := db.Model(&model.Question{}).Where("id IN ?", correctIDs).
			UpdateColumn("times_correct", gorm.Expr("times_correct + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}
