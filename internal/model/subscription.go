package model

import (
	"time"

	"gorm.io/gorm"
)

// UnlimitedExams as a Plan.ExamsLimit disables the quota.
const UnlimitedExams = -1

type Plan struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `json:"name" gorm:"not null;uniqueIndex"`
	Description  string         `json:"description,omitempty"`
	Price        float64        `json:"price" gorm:"not null;default:0"`
	Currency     string         `json:"currency" gorm:"type:varchar(3);not null;default:'LKR'"`
	DurationDays int            `json:"duration_days" gorm:"not null;default:30"`
	ExamsLimit   int            `json:"exams_limit" gorm:"not null;default:0"`
	ReviewAccess bool           `json:"review_access" gorm:"not null;default:false"`
	IsActive     bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// UserSubscription is the one record the entitlement resolver reads. A user
// without a paid plan gets a free-tier row (PlanID nil) whose limits come
// from configuration.
type UserSubscription struct {
	ID           uint               `gorm:"primarykey" json:"id"`
	UserID       uint               `json:"user_id" gorm:"not null;uniqueIndex"`
	PlanID       *uint              `json:"plan_id,omitempty"`
	Plan         *Plan              `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	Status       SubscriptionStatus `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	StartDate    time.Time          `json:"start_date"`
	EndDate      *time.Time         `json:"end_date,omitempty"`
	ExamsUsed    int                `json:"exams_used" gorm:"not null;default:0"`
	ExamsLimit   int                `json:"exams_limit" gorm:"not null;default:0"`
	ReviewAccess bool               `json:"review_access" gorm:"not null;default:false"`
	PlanName     string             `json:"plan_name" gorm:"not null;default:'Free'"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ActiveAt reports whether the subscription still grants its plan at t.
func (s *UserSubscription) ActiveAt(t time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.EndDate == nil || t.Before(*s.EndDate)
}

func (s *UserSubscription) QuotaExceeded() bool {
	if s.ExamsLimit == UnlimitedExams || s.ExamsLimit < 0 {
		return false
	}
	return s.ExamsUsed >= s.ExamsLimit
}
