package models

import "time"

// UserAchievement is an append-only unlock record. A given achievement id is
// unlocked at most once per user, backed by the composite unique index.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID string    `gorm:"size:64;not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
	CreatedAt     time.Time `json:"created_at"`
}
