package models

import "time"

// ActivityStats accumulates per-user activity counters. This is the snapshot
// the achievement evaluator compares against catalog thresholds. All counters
// are monotonically increasing.
type ActivityStats struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	PagesRead       int       `gorm:"default:0" json:"pages_read"`
	SurahsCompleted int       `gorm:"default:0" json:"surahs_completed"`
	HadithRead      int       `gorm:"default:0" json:"hadith_read"`
	DuasLearned     int       `gorm:"default:0" json:"duas_learned"`
	EarlyReads      int       `gorm:"default:0" json:"early_reads"`
	NightReads      int       `gorm:"default:0" json:"night_reads"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (ActivityStats) TableName() string {
	return "activity_stats"
}
