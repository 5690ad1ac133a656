package dto

import "time"

// QuestionResponse is the admin view of a question, key included.
type QuestionResponse struct {
	ID            uint        `json:"id"`
	Type          string      `json:"type"`
	Text          string      `json:"text"`
	KoreanText    *string     `json:"korean_text,omitempty"`
	ImageURL      *string     `json:"image_url,omitempty"`
	AudioURL      *string     `json:"audio_url,omitempty"`
	Options       []OptionDTO `json:"options"`
	CorrectAnswer string      `json:"correct_answer"`
	Topic         string      `json:"topic"`
	Difficulty    string      `json:"difficulty"`
	TimesAnswered int         `json:"times_answered"`
	TimesCorrect  int         `json:"times_correct"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type QuestionListResponse struct {
	Questions []QuestionResponse `json:"questions"`
	Meta      PageMeta           `json:"meta"`
}

// ExamQuestionDTO is what a test taker sees; it never carries the key.
type ExamQuestionDTO struct {
	ID         uint        `json:"id"`
	Number     int         `json:"number"`
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	KoreanText *string     `json:"korean_text,omitempty"`
	ImageURL   *string     `json:"image_url,omitempty"`
	AudioURL   *string     `json:"audio_url,omitempty"`
	Options    []OptionDTO `json:"options"`
	Topic      string      `json:"topic"`
}

type ExamStatsDTO struct {
	TotalAttempts     int     `json:"total_attempts"`
	CompletedAttempts int     `json:"completed_attempts"`
	AverageScore      float64 `json:"average_score"`
	PassRate          float64 `json:"pass_rate"`
}

type ExamSummaryDTO struct {
	ID             uint         `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	ExamType       string       `json:"exam_type"`
	Duration       DurationDTO  `json:"duration"`
	PassScore      int          `json:"pass_score"`
	ReadingCount   int          `json:"reading_count"`
	ListeningCount int          `json:"listening_count"`
	IsActive       bool         `json:"is_active"`
	Stats          ExamStatsDTO `json:"stats"`
	CreatedAt      time.Time    `json:"created_at"`
}

type ExamListResponse struct {
	Exams []ExamSummaryDTO `json:"exams"`
	Meta  PageMeta         `json:"meta"`
}

type ExamDetailResponse struct {
	ExamSummaryDTO
	ReadingQuestions   []ExamQuestionDTO `json:"reading_questions"`
	ListeningQuestions []ExamQuestionDTO `json:"listening_questions"`
}

type UserStatsResponse struct {
	UserID          uint       `json:"user_id"`
	TotalExamsTaken int        `json:"total_exams_taken"`
	PassedExams     int        `json:"passed_exams"`
	AverageScore    float64    `json:"average_score"`
	BestScore       int        `json:"best_score"`
	TotalStudyTime  int        `json:"total_study_time"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	LastStudyDate   *time.Time `json:"last_study_date,omitempty"`
}

type PlanResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	DurationDays int     `json:"duration_days"`
	ExamsLimit   int     `json:"exams_limit"`
	ReviewAccess bool    `json:"review_access"`
	IsActive     bool    `json:"is_active"`
}

type SubscriptionResponse struct {
	UserID       uint       `json:"user_id"`
	PlanID       *uint      `json:"plan_id,omitempty"`
	PlanName     string     `json:"plan_name"`
	Status       string     `json:"status"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	ExamsUsed    int        `json:"exams_used"`
	ExamsLimit   int        `json:"exams_limit"`
	ReviewAccess bool       `json:"review_access"`
}
