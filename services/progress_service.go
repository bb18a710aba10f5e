package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nfadhel/tilawah/models"
)

// Bounds of valid Quran coordinates. Surah 2 is the longest with 286 ayahs.
const (
	minSurahID = 1
	maxSurahID = 114
	maxAyahs   = 286
)

// ProgressService tracks the furthest verse read per surah and completion
// state. Later writes win, even when they move the position backwards.
type ProgressService struct {
	db *gorm.DB
}

// NewProgressService creates a new service instance.
func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

// Record upserts the (user, surah) row with the given read position.
func (s *ProgressService) Record(userID uint, surahID, ayah, totalAyahs int) (*models.ReadingProgress, error) {
	if err := validateVerse(surahID, ayah, totalAyahs); err != nil {
		return nil, err
	}

	var progress models.ReadingProgress
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		_, err := recordProgressTx(tx, userID, surahID, ayah, totalAyahs, time.Now(), &progress)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// List returns all progress rows for the user ordered by surah.
func (s *ProgressService) List(userID uint) ([]models.ReadingProgress, error) {
	var rows []models.ReadingProgress
	if err := s.db.Where("user_id = ?", userID).Order("surah_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return rows, nil
}

// Get returns the progress row for one surah, or ErrNotFound.
func (s *ProgressService) Get(userID uint, surahID int) (*models.ReadingProgress, error) {
	if surahID < minSurahID || surahID > maxSurahID {
		return nil, fmt.Errorf("%w: surah id %d out of range", ErrInvalidInput, surahID)
	}
	var progress models.ReadingProgress
	if err := s.db.Where("user_id = ? AND surah_id = ?", userID, surahID).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &progress, nil
}

func validateVerse(surahID, ayah, totalAyahs int) error {
	if surahID < minSurahID || surahID > maxSurahID {
		return fmt.Errorf("%w: surah id %d out of range [%d,%d]", ErrInvalidInput, surahID, minSurahID, maxSurahID)
	}
	if totalAyahs < 1 || totalAyahs > maxAyahs {
		return fmt.Errorf("%w: total ayahs %d out of range [1,%d]", ErrInvalidInput, totalAyahs, maxAyahs)
	}
	if ayah < 1 || ayah > totalAyahs {
		return fmt.Errorf("%w: ayah %d out of range [1,%d]", ErrInvalidInput, ayah, totalAyahs)
	}
	return nil
}

// recordProgressTx upserts the progress row and reports whether this write
// completed the surah for the first time. Callers hold the user row lock, so
// a plain read-then-write is race free.
func recordProgressTx(tx *gorm.DB, userID uint, surahID, ayah, totalAyahs int, at time.Time, out *models.ReadingProgress) (completedNow bool, err error) {
	completed := ayah >= totalAyahs

	var existing models.ReadingProgress
	err = tx.Where("user_id = ? AND surah_id = ?", userID, surahID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		existing = models.ReadingProgress{
			UserID:       userID,
			SurahID:      surahID,
			LastReadAyah: ayah,
			TotalAyahs:   totalAyahs,
			IsCompleted:  completed,
			LastReadAt:   at,
		}
		if err := tx.Create(&existing).Error; err != nil {
			return false, fmt.Errorf("create progress: %w", err)
		}
		*out = existing
		return completed, nil
	}
	if err != nil {
		return false, fmt.Errorf("load progress: %w", err)
	}

	completedNow = completed && !existing.IsCompleted

	existing.LastReadAyah = ayah
	existing.TotalAyahs = totalAyahs
	existing.LastReadAt = at
	// Completion never regresses once reached.
	if completed {
		existing.IsCompleted = true
	}

	if err := tx.Save(&existing).Error; err != nil {
		return false, fmt.Errorf("save progress: %w", err)
	}
	*out = existing
	return completedNow, nil
}
