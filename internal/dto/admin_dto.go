package dto

type OptionDTO struct {
	Label    string  `json:"label" binding:"required"`
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
	AudioURL *string `json:"audio_url,omitempty"`
}

// QuestionUpsertRequest is used by admins to create or replace a question.
type QuestionUpsertRequest struct {
	Type          string      `json:"type" binding:"required,oneof=reading listening"`
	Text          string      `json:"text" binding:"required"`
	KoreanText    *string     `json:"korean_text"`
	ImageURL      *string     `json:"image_url"`
	AudioURL      *string     `json:"audio_url"`
	Options       []OptionDTO `json:"options" binding:"required,min=2,dive"`
	CorrectAnswer string      `json:"correct_answer" binding:"required"`
	Topic         string      `json:"topic"`
	Difficulty    string      `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

type ListQuestionsQuery struct {
	Type       string `form:"type" binding:"omitempty,oneof=reading listening"`
	Topic      string `form:"topic"`
	Difficulty string `form:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type DurationDTO struct {
	Reading   int `json:"reading" binding:"min=0"`
	Listening int `json:"listening" binding:"min=0"`
	Total     int `json:"total" binding:"min=0"`
}

// ExamUpsertRequest is used by admins to create or replace an exam. A zero
// total duration is filled in as reading + listening.
type ExamUpsertRequest struct {
	Title                string      `json:"title" binding:"required"`
	Description          string      `json:"description"`
	ExamType             string      `json:"exam_type" binding:"required,oneof=full reading-only listening-only practice"`
	ReadingQuestionIDs   []uint      `json:"reading_question_ids"`
	ListeningQuestionIDs []uint      `json:"listening_question_ids"`
	Duration             DurationDTO `json:"duration"`
	PassScore            *int        `json:"pass_score" binding:"omitempty,min=0,max=100"`
	IsActive             *bool       `json:"is_active"`
}

type CreatePlanRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" binding:"min=0"`
	Currency     string  `json:"currency" binding:"omitempty,len=3"`
	DurationDays int     `json:"duration_days" binding:"required,min=1"`
	ExamsLimit   int     `json:"exams_limit" binding:"min=-1"`
	ReviewAccess bool    `json:"review_access"`
}

// AssignPlanRequest activates a plan for a user once payment has been
// confirmed elsewhere.
type AssignPlanRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	PlanID uint `json:"plan_id" binding:"required"`
}
