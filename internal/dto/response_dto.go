package dto

import "time"

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// QuotaExceededDetails is attached to 403 responses from attempt start so
// clients can show an upgrade prompt.
type QuotaExceededDetails struct {
	ExamsUsed  int    `json:"exams_used"`
	ExamsLimit int    `json:"exams_limit"`
	PlanName   string `json:"plan_name"`
}

type UnknownQuestionsDetails struct {
	UnknownQuestionIDs []uint `json:"unknown_question_ids"`
}

type PageMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type SectionScoreDTO struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type ScoreDTO struct {
	Reading   SectionScoreDTO `json:"reading"`
	Listening SectionScoreDTO `json:"listening"`
	Total     SectionScoreDTO `json:"total"`
}

type TopicScoreDTO struct {
	Topic      string `json:"topic"`
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type AnswerSlotDTO struct {
	QuestionID     uint    `json:"question_id"`
	QuestionNumber int     `json:"question_number"`
	SelectedAnswer *string `json:"selected_answer"`
	IsCorrect      bool    `json:"is_correct"`
	TimeTaken      int     `json:"time_taken"`
	AudioReplays   int     `json:"audio_replays"`
}

type AttemptResponse struct {
	ID                   uint            `json:"id"`
	UserID               uint            `json:"user_id"`
	ExamID               uint            `json:"exam_id"`
	StartTime            time.Time       `json:"start_time"`
	EndTime              *time.Time      `json:"end_time,omitempty"`
	Status               string          `json:"status"`
	CurrentSection       string          `json:"current_section"`
	CurrentQuestionIndex int             `json:"current_question_index"`
	TimeRemaining        int             `json:"time_remaining"`
	TimeSpent            int             `json:"time_spent"`
	Answers              []AnswerSlotDTO `json:"answers"`
	MarkedQuestions      []uint          `json:"marked_questions"`
	Score                ScoreDTO        `json:"score"`
	Passed               bool            `json:"passed"`
	TopicPerformance     []TopicScoreDTO `json:"topic_performance"`
}

type AttemptSummaryDTO struct {
	ID        uint       `json:"id"`
	ExamID    uint       `json:"exam_id"`
	ExamTitle string     `json:"exam_title"`
	Status    string     `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Score     ScoreDTO   `json:"score"`
	Passed    bool       `json:"passed"`
}

type AttemptListResponse struct {
	Attempts []AttemptSummaryDTO `json:"attempts"`
	Meta     PageMeta            `json:"meta"`
}

type AnswerAckResponse struct {
	Saved              int       `json:"saved"`
	IgnoredQuestionIDs []uint    `json:"ignored_question_ids,omitempty"`
	SavedAt            time.Time `json:"saved_at"`
}

type MarkedQuestionsResponse struct {
	MarkedQuestions []uint `json:"marked_questions"`
}

// ReviewItem joins one answer slot with its question and key.
type ReviewItem struct {
	AnswerSlotDTO
	Type          string      `json:"type"`
	Text          string      `json:"text"`
	KoreanText    *string     `json:"korean_text,omitempty"`
	ImageURL      *string     `json:"image_url,omitempty"`
	AudioURL      *string     `json:"audio_url,omitempty"`
	Options       []OptionDTO `json:"options"`
	CorrectAnswer string      `json:"correct_answer"`
	Topic         string      `json:"topic"`
	Marked        bool        `json:"marked"`
}

type ReviewResponse struct {
	Attempt     AttemptResponse `json:"attempt"`
	Items       []ReviewItem    `json:"items"`
	StudyAdvice string          `json:"study_advice,omitempty"`
}
