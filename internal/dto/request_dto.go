package dto

type StartAttemptRequest struct {
	ExamID uint `json:"exam_id" binding:"required"`
}

// AnswerInput is one answer save. A null or missing selected_answer clears
// the slot.
type AnswerInput struct {
	QuestionID     uint    `json:"question_id" binding:"required"`
	SelectedAnswer *string `json:"selected_answer"`
	TimeTaken      *int    `json:"time_taken" binding:"omitempty,min=0"`
	AudioReplays   *int    `json:"audio_replays" binding:"omitempty,min=0"`
}

type SaveAnswerRequest struct {
	AnswerInput
	CurrentQuestionIndex *int `json:"current_question_index" binding:"omitempty,min=0"`
	TimeRemaining        *int `json:"time_remaining" binding:"omitempty,min=0"`
}

type SaveAnswersRequest struct {
	Answers              []AnswerInput `json:"answers" binding:"required,dive"`
	CurrentQuestionIndex *int          `json:"current_question_index" binding:"omitempty,min=0"`
	TimeRemaining        *int          `json:"time_remaining" binding:"omitempty,min=0"`
	CurrentSection       *string       `json:"current_section" binding:"omitempty,oneof=reading listening"`
}

type MarkQuestionRequest struct {
	QuestionID uint  `json:"question_id" binding:"required"`
	Marked     *bool `json:"marked" binding:"required"`
}

type StartListeningRequest struct {
	TimeRemaining *int `json:"time_remaining" binding:"omitempty,min=0"`
}

type SubmitAttemptRequest struct {
	TimeSpent *int `json:"time_spent" binding:"omitempty,min=0"`
	TimedOut  bool `json:"timed_out"`
}

type ListAttemptsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=in-progress completed abandoned timed-out"`
	ExamID uint   `form:"exam_id"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type ListExamsQuery struct {
	ExamType string `form:"exam_type" binding:"omitempty,oneof=full reading-only listening-only practice"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
