package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers a missing id, another user's record and a record
	// in the wrong state alike.
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrReviewAccessDenied = errors.New("review access requires an upgraded plan")
)

type QuotaExceededError struct {
	ExamsUsed  int
	ExamsLimit int
	PlanName   string
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("exam quota exceeded: %d of %d used on plan %s", e.ExamsUsed, e.ExamsLimit, e.PlanName)
}

// UnknownQuestionsError is returned by strict batch saves naming the
// question ids the attempt has no slot for.
type UnknownQuestionsError struct {
	QuestionIDs []uint
}

func (e *UnknownQuestionsError) Error() string {
	return fmt.Sprintf("attempt has no slot for question ids %v", e.QuestionIDs)
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
