package models

import "time"

// ReadingProgress tracks the furthest verse read per (user, surah).
// Exactly one row per pair; later writes win, including writes that move the
// position backwards when a user re-reads from an earlier point.
type ReadingProgress struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_progress_user_surah,priority:1" json:"user_id"`
	SurahID      int       `gorm:"not null;uniqueIndex:idx_progress_user_surah,priority:2" json:"surah_id"`
	LastReadAyah int       `gorm:"not null" json:"last_read_ayah"`
	TotalAyahs   int       `gorm:"not null" json:"total_ayahs"`
	IsCompleted  bool      `gorm:"default:false" json:"is_completed"`
	LastReadAt   time.Time `gorm:"index" json:"last_read_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ReadingProgress) TableName() string {
	return "reading_progress"
}
