package model

import "time"

// UserStats holds per-user aggregates that are folded forward on every
// scored submission instead of being recomputed from history.
type UserStats struct {
	UserID          uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	TotalExamsTaken int        `json:"total_exams_taken" gorm:"not null;default:0"`
	PassedExams     int        `json:"passed_exams" gorm:"not null;default:0"`
	AverageScore    float64    `json:"average_score" gorm:"not null;default:0"`
	BestScore       int        `json:"best_score" gorm:"not null;default:0"`
	TotalStudyTime  int        `json:"total_study_time" gorm:"not null;default:0"` // seconds
	CurrentStreak   int        `json:"current_streak" gorm:"not null;default:0"`
	LongestStreak   int        `json:"longest_streak" gorm:"not null;default:0"`
	LastStudyDate   *time.Time `json:"last_study_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (s *UserStats) RecordCompletion(percentage int, passed bool, timeSpent int, now time.Time, loc *time.Location) {
	s.AverageScore = IncrementalMean(s.AverageScore, s.TotalExamsTaken, float64(percentage))
	s.TotalExamsTaken++
	if percentage > s.BestScore {
		s.BestScore = percentage
	}
	if passed {
		s.PassedExams++
	}
	if timeSpent > 0 {
		s.TotalStudyTime += timeSpent
	}
	s.CurrentStreak = NextStreak(s.LastStudyDate, s.CurrentStreak, now, loc)
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastStudyDate = &now
}

// NextStreak applies calendar-day logic: same day keeps the streak, the
// next day extends it, any later day restarts it at 1.
func NextStreak(last *time.Time, current int, now time.Time, loc *time.Location) int {
	if last == nil {
		return 1
	}
	switch days := CalendarDaysBetween(*last, now, loc); {
	case days == 0:
		return current
	case days == 1:
		return current + 1
	case days > 1:
		return 1
	default:
		// last study date in the future (clock skew); leave as is
		return current
	}
}

// CalendarDaysBetween counts midnights crossed from a to b in loc.
func CalendarDaysBetween(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
