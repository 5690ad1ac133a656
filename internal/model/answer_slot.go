package model

import "time"

type AnswerSlot struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	AttemptID      uint      `json:"attempt_id" gorm:"not null;uniqueIndex:idx_slot_attempt_question"`
	QuestionID     uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_slot_attempt_question"`
	QuestionNumber int       `json:"question_number" gorm:"not null"`
	SelectedAnswer *string   `json:"selected_answer"`
	IsCorrect      bool      `json:"is_correct" gorm:"not null;default:false"`
	TimeTaken      int       `json:"time_taken" gorm:"not null;default:0"` // seconds
	AudioReplays   int       `json:"audio_replays" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s *AnswerSlot) Answered() bool {
	return s.SelectedAnswer != nil && *s.SelectedAnswer != ""
}

// AnswerUpdate carries one client-side answer save. SelectedAnswer is
// always written (nil clears it); the other fields only when set.
type AnswerUpdate struct {
	QuestionID     uint
	SelectedAnswer *string
	TimeTaken      *int
	AudioReplays   *int
}
