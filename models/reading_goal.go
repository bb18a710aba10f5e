package models

import "time"

// Completion target values accepted for a reading goal. Empty means no target.
const (
	GoalTargetNone        = ""
	GoalTargetNextRamadan = "next_ramadan"
	GoalTargetThreeMonths = "3_months"
	GoalTargetSixMonths   = "6_months"
	GoalTargetOneYear     = "1_year"
)

// ReadingGoal stores the single active daily target per user. Setting a new
// goal replaces the previous one; the unique user index enforces at most one
// row per user.
type ReadingGoal struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	PagesPerDay      int       `gorm:"not null" json:"pages_per_day"`
	MinutesPerDay    int       `gorm:"not null" json:"minutes_per_day"`
	CompletionTarget string    `gorm:"size:32" json:"completion_target,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
