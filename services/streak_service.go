package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nfadhel/tilawah/models"
)

// StreakService maintains the consecutive-day reading streak per user.
type StreakService struct {
	db *gorm.DB
}

// NewStreakService creates a new service instance.
func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{db: db}
}

// RecordRead registers a qualifying read at the given time and adjusts the
// streak counters. Multiple reads on the same calendar day leave the counts
// unchanged.
func (s *StreakService) RecordRead(userID uint, at time.Time) (*models.Streak, error) {
	if userID == 0 || at.IsZero() {
		return nil, fmt.Errorf("%w: user id and timestamp are required", ErrInvalidInput)
	}

	var streak models.Streak
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		return recordReadTx(tx, userID, at, &streak)
	})
	if err != nil {
		return nil, err
	}
	return &streak, nil
}

// Get returns the user's streak record, or ErrNotFound if no read was ever
// recorded.
func (s *StreakService) Get(userID uint) (*models.Streak, error) {
	var streak models.Streak
	if err := s.db.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return &streak, nil
}

// lockUser takes a row lock on the user for the duration of the surrounding
// transaction, serializing rapid concurrent updates per user.
func lockUser(tx *gorm.DB, userID uint) error {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

// recordReadTx applies the calendar-day state machine. Callers must hold the
// user row lock.
func recordReadTx(tx *gorm.DB, userID uint, at time.Time, out *models.Streak) error {
	var streak models.Streak
	err := tx.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.Streak{
			UserID:        userID,
			CurrentStreak: 1,
			LongestStreak: 1,
			LastReadDate:  at,
		}
		if err := tx.Create(&streak).Error; err != nil {
			return fmt.Errorf("create streak: %w", err)
		}
		*out = streak
		return nil
	}
	if err != nil {
		return fmt.Errorf("load streak: %w", err)
	}

	switch gap := calendarDaysBetween(streak.LastReadDate, at); {
	case gap == 0:
		// Same day: idempotent, counts unchanged.
	case gap == 1:
		streak.CurrentStreak++
	case gap >= 2:
		// A skipped day breaks the chain; the new read starts a fresh one.
		streak.CurrentStreak = 1
	default:
		// Timestamp earlier than the stored date: ignore for counting.
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	if at.After(streak.LastReadDate) {
		streak.LastReadDate = at
	}

	if err := tx.Save(&streak).Error; err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	*out = streak
	return nil
}

// calendarDaysBetween counts whole calendar days from a to b, negative when b
// falls on an earlier day.
func calendarDaysBetween(a, b time.Time) int {
	return int(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
