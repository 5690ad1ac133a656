package model

import (
	"time"

	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in-progress"
	AttemptStatusCompleted  AttemptStatus = "completed"
	AttemptStatusAbandoned  AttemptStatus = "abandoned"
	AttemptStatusTimedOut   AttemptStatus = "timed-out"
)

func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptStatusCompleted || s == AttemptStatusAbandoned || s == AttemptStatusTimedOut
}

// Scored reports whether the attempt went through the scoring step.
func (s AttemptStatus) Scored() bool {
	return s == AttemptStatusCompleted || s == AttemptStatusTimedOut
}

type Section string

const (
	SectionReading   Section = "reading"
	SectionListening Section = "listening"
)

func (s Section) Valid() bool {
	return s == SectionReading || s == SectionListening
}

type SectionScore struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type Score struct {
	Reading   SectionScore `json:"reading"`
	Listening SectionScore `json:"listening"`
	Total     SectionScore `json:"total"`
}

type TopicScore struct {
	Topic      string `json:"topic"`
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// Attempt is one user's run through an exam. The answer slots are fixed
// when the attempt is created; afterwards only their answer fields change.
//
// The partial unique index keeps at most one in-progress attempt per
// (user, exam).
type Attempt struct {
	ID                   uint           `gorm:"primarykey" json:"id"`
	UserID               uint           `json:"user_id" gorm:"not null;index;index:idx_attempt_one_in_progress,unique,where:status = 'in-progress'"`
	ExamID               uint           `json:"exam_id" gorm:"not null;index;index:idx_attempt_one_in_progress,unique,where:status = 'in-progress'"`
	Exam                 Exam           `json:"exam,omitempty" gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE;"`
	StartTime            time.Time      `json:"start_time" gorm:"not null"`
	EndTime              *time.Time     `json:"end_time,omitempty"`
	Status               AttemptStatus  `json:"status" gorm:"type:varchar(16);not null;index;default:'in-progress'"`
	CurrentSection       Section        `json:"current_section" gorm:"type:varchar(16);not null;default:'reading'"`
	CurrentQuestionIndex int            `json:"current_question_index" gorm:"not null;default:0"`
	TimeRemaining        int            `json:"time_remaining"` // seconds
	TimeSpent            int            `json:"time_spent"`     // seconds
	Answers              []AnswerSlot   `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	MarkedQuestions      []uint         `json:"marked_questions" gorm:"serializer:json;type:jsonb"`
	Score                Score          `json:"score" gorm:"serializer:json;type:jsonb"`
	Passed               bool           `json:"passed" gorm:"not null;default:false"`
	TopicPerformance     []TopicScore   `json:"topic_performance" gorm:"serializer:json;type:jsonb"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// NewAttempt builds an in-progress attempt with one slot per exam question:
// reading slots are numbered 1..R, listening slots R+1..R+L.
func NewAttempt(userID uint, exam *Exam, now time.Time) *Attempt {
	ids := exam.QuestionIDs()
	slots := make([]AnswerSlot, 0, len(ids))
	for i, qid := range ids {
		slots = append(slots, AnswerSlot{
			QuestionID:     qid,
			QuestionNumber: i + 1,
		})
	}
	return &Attempt{
		UserID:               userID,
		ExamID:               exam.ID,
		StartTime:            now,
		Status:               AttemptStatusInProgress,
		CurrentSection:       SectionReading,
		CurrentQuestionIndex: 0,
		TimeRemaining:        exam.Duration.Total * 60,
		Answers:              slots,
		MarkedQuestions:      []uint{},
	}
}

// Slot returns the answer slot for questionID, or nil.
func (a *Attempt) Slot(questionID uint) *AnswerSlot {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return &a.Answers[i]
		}
	}
	return nil
}

// ApplyAnswer overwrites the supplied fields of the matching slot. It
// returns nil when the attempt has no slot for the question.
func (a *Attempt) ApplyAnswer(u AnswerUpdate) *AnswerSlot {
	slot := a.Slot(u.QuestionID)
	if slot == nil {
		return nil
	}
	slot.SelectedAnswer = u.SelectedAnswer
	if u.TimeTaken != nil {
		slot.TimeTaken = *u.TimeTaken
	}
	if u.AudioReplays != nil {
		slot.AudioReplays = *u.AudioReplays
	}
	return slot
}

// Mark adds or removes questionID from the review set. Both directions
// are idempotent.
func (a *Attempt) Mark(questionID uint, marked bool) {
	idx := -1
	for i, id := range a.MarkedQuestions {
		if id == questionID {
			idx = i
			break
		}
	}
	switch {
	case marked && idx < 0:
		a.MarkedQuestions = append(a.MarkedQuestions, questionID)
	case !marked && idx >= 0:
		a.MarkedQuestions = append(a.MarkedQuestions[:idx], a.MarkedQuestions[idx+1:]...)
	}
	if a.MarkedQuestions == nil {
		a.MarkedQuestions = []uint{}
	}
}
