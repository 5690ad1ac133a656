package model

import (
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionTypeReading   QuestionType = "reading"
	QuestionTypeListening QuestionType = "listening"
)

func (t QuestionType) Valid() bool {
	return t == QuestionTypeReading || t == QuestionTypeListening
}

// Option is one selectable answer. Label is what gets compared against
// Question.CorrectAnswer ("1".."4" on EPS-TOPIK papers).
type Option struct {
	Label    string  `json:"label"`
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
	AudioURL *string `json:"audio_url,omitempty"`
}

type Question struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Type          QuestionType   `json:"type" gorm:"type:varchar(16);not null;index"`
	Text          string         `json:"text" gorm:"type:text;not null"`
	KoreanText    *string        `json:"korean_text,omitempty" gorm:"type:text"`
	ImageURL      *string        `json:"image_url,omitempty"`
	AudioURL      *string        `json:"audio_url,omitempty"`
	Options       []Option       `json:"options" gorm:"serializer:json;type:jsonb;not null"`
	CorrectAnswer string         `json:"correct_answer" gorm:"not null"`
	Topic         string         `json:"topic" gorm:"index"`
	Difficulty    string         `json:"difficulty" gorm:"type:varchar(16);default:'medium'"` // "easy", "medium", "hard"
	TimesAnswered int            `json:"times_answered" gorm:"not null;default:0"`
	TimesCorrect  int            `json:"times_correct" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasOption reports whether label is one of the question's option labels.
func (q *Question) HasOption(label string) bool {
	for _, o := range q.Options {
		if o.Label == label {
			return true
		}
	}
	return false
}

// Key is the slice of a question the scorer needs.
func (q *Question) Key() AnswerKey {
	return AnswerKey{
		QuestionID:    q.ID,
		Type:          q.Type,
		Topic:         q.Topic,
		CorrectAnswer: q.CorrectAnswer,
	}
}

// AnswerKey is the immutable-during-attempt part of a question used for
// scoring. It is what the answer-key cache stores.
type AnswerKey struct {
	QuestionID    uint         `json:"question_id"`
	Type          QuestionType `json:"type"`
	Topic         string       `json:"topic"`
	CorrectAnswer string       `json:"correct_answer"`
}
