package model

import (
	"time"

	"gorm.io/gorm"
)

type ExamType string

const (
	ExamTypeFull          ExamType = "full"
	ExamTypeReadingOnly   ExamType = "reading-only"
	ExamTypeListeningOnly ExamType = "listening-only"
	ExamTypePractice      ExamType = "practice"
)

// ExamDuration is in minutes.
type ExamDuration struct {
	Reading   int `json:"reading"`
	Listening int `json:"listening"`
	Total     int `json:"total"`
}

type ExamStats struct {
	TotalAttempts     int     `json:"total_attempts" gorm:"not null;default:0"`
	CompletedAttempts int     `json:"completed_attempts" gorm:"not null;default:0"`
	AverageScore      float64 `json:"average_score" gorm:"not null;default:0"`
	PassRate          float64 `json:"pass_rate" gorm:"not null;default:0"` // percentage of completed attempts that passed
}

type Exam struct {
	ID                   uint           `gorm:"primarykey" json:"id"`
	Title                string         `json:"title" gorm:"not null;uniqueIndex"`
	Description          string         `json:"description,omitempty"`
	ExamType             ExamType       `json:"exam_type" gorm:"type:varchar(20);not null;default:'full'"`
	ReadingQuestionIDs   []uint         `json:"reading_question_ids" gorm:"serializer:json;type:jsonb"`
	ListeningQuestionIDs []uint         `json:"listening_question_ids" gorm:"serializer:json;type:jsonb"`
	Duration             ExamDuration   `json:"duration" gorm:"embedded;embeddedPrefix:duration_"`
	PassScore            int            `json:"pass_score" gorm:"not null"`
	IsActive             bool           `json:"is_active" gorm:"not null;default:true"`
	Stats                ExamStats      `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// QuestionIDs returns reading ids followed by listening ids, which is also
// the slot numbering order of an attempt.
func (e *Exam) QuestionIDs() []uint {
	ids := make([]uint, 0, len(e.ReadingQuestionIDs)+len(e.ListeningQuestionIDs))
	ids = append(ids, e.ReadingQuestionIDs...)
	return append(ids, e.ListeningQuestionIDs...)
}

// RecordCompletion folds one finished attempt into the running averages.
// Counters only ever grow.
func (e *Exam) RecordCompletion(totalPercentage int, passed bool) {
	n := e.Stats.CompletedAttempts
	e.Stats.AverageScore = IncrementalMean(e.Stats.AverageScore, n, float64(totalPercentage))
	indicator := 0.0
	if passed {
		indicator = 100
	}
	e.Stats.PassRate = IncrementalMean(e.Stats.PassRate, n, indicator)
	e.Stats.CompletedAttempts = n + 1
}

// IncrementalMean returns the mean of count values averaging oldMean plus
// one more value.
func IncrementalMean(oldMean float64, count int, value float64) float64 {
	if count <= 0 {
		return value
	}
	return (oldMean*float64(count) + value) / float64(count+1)
}
