package repository

import (
	"context"

	"github.com/lshigami/eps-topik/internal/model"
	"gorm.io/gorm"
)

// AnswerSlotRepository writes the answer fields of existing slots. Slots are
// created together with their attempt and never added or removed after.
type AnswerSlotRepository interface {
	UpdateAnswers(ctx context.Context, slots []model.AnswerSlot) error
	UpdateCorrectness(ctx context.Context, slots []model.AnswerSlot) error
}

type answerSlotRepository struct {
	db *gorm.DB
}

func NewAnswerSlotRepository(db *gorm.DB) AnswerSlotRepository {
	return &answerSlotRepository{db: db}
}

func (r *answerSlotRepository) UpdateAnswers(ctx context.Context, slots []model.AnswerSlot) error {
	db := conn(ctx, r.db)
	for i := range slots {
		s := &slots[i]
		err := db.Model(&model.AnswerSlot{}).
			Where("attempt_id = ? AND question_id = ?", s.AttemptID, s.QuestionID).
			Updates(map[string]interface{}{
				"selected_answer": s.SelectedAnswer,
				"time_taken":      s.TimeTaken,
				"audio_replays":   s.AudioReplays,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *answerSlotRepository) UpdateCorrectness(ctx context.Context, slots []model.AnswerSlot) error {
	db := conn(ctx, r.db)
	for i := range slots {
		s := &slots[i]
		err := db.Model(&model.AnswerSlot{}).
			Where("attempt_id = ? AND question_id = ?", s.AttemptID, s.QuestionID).
			Update("is_correct", s.IsCorrect).Error
		if err != nil {
			return err
		}
	}
	return nil
}
