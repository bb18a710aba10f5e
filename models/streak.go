package models

import "time"

// Streak keeps one row per user with the running count of consecutive calendar
// days that had at least one qualifying read. LongestStreak >= CurrentStreak
// holds after every update.
type Streak struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak int       `gorm:"default:0" json:"current_streak"`
	LongestStreak int       `gorm:"default:0" json:"longest_streak"`
	LastReadDate  time.Time `gorm:"index" json:"last_read_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
