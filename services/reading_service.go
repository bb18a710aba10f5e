package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nfadhel/tilawah/models"
)

// ActivityKind labels non-Quran reading events.
type ActivityKind string

const (
	ActivityHadithRead ActivityKind = "hadith"
	ActivityDuaLearned ActivityKind = "dua"
)

// Local hours bounding the time-criterion counters.
const (
	earlyReadBeforeHour = 6
	nightReadAfterHour  = 22
)

// VerseReadInput describes one qualifying verse-read event.
type VerseReadInput struct {
	SurahID    int
	Ayah       int
	TotalAyahs int
	// At defaults to time.Now when zero.
	At time.Time
}

// ReadResult is the payload of a verse-read mutation: updated entities plus
// the achievement IDs unlocked by this event.
type ReadResult struct {
	Progress      *models.ReadingProgress `json:"progress"`
	Streak        *models.Streak          `json:"streak"`
	NewlyUnlocked []string                `json:"newly_unlocked"`
}

// ActivityResult is the payload of a hadith/dua activity mutation.
type ActivityResult struct {
	Stats         *models.ActivityStats `json:"stats"`
	NewlyUnlocked []string              `json:"newly_unlocked"`
}

// Summary aggregates the streak and reading counters shown on the home view.
type Summary struct {
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	PagesRead       int        `json:"pages_read"`
	SurahsCompleted int        `json:"surahs_completed"`
	LastReadDate    *time.Time `json:"last_read_date,omitempty"`
}

// ReadingService orchestrates a qualifying read: progress upsert, streak
// adjustment and counter bumps commit atomically under the user row lock,
// then the achievement evaluator runs over the fresh snapshot.
type ReadingService struct {
	db           *gorm.DB
	achievements *AchievementService
}

// NewReadingService creates a new service instance.
func NewReadingService(db *gorm.DB, achievements *AchievementService) *ReadingService {
	return &ReadingService{db: db, achievements: achievements}
}

// RecordVerse handles one verse-read event end to end.
func (s *ReadingService) RecordVerse(userID uint, in VerseReadInput) (*ReadResult, error) {
	if err := validateVerse(in.SurahID, in.Ayah, in.TotalAyahs); err != nil {
		return nil, err
	}
	at := in.At
	if at.IsZero() {
		at = time.Now()
	}

	result := &ReadResult{
		Progress: &models.ReadingProgress{},
		Streak:   &models.Streak{},
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}

		completedNow, err := recordProgressTx(tx, userID, in.SurahID, in.Ayah, in.TotalAyahs, at, result.Progress)
		if err != nil {
			return err
		}
		if err := recordReadTx(tx, userID, at, result.Streak); err != nil {
			return err
		}

		delta := counterDelta{pagesRead: 1}
		if completedNow {
			delta.surahsCompleted = 1
		}
		switch hour := at.Hour(); {
		case hour < earlyReadBeforeHour:
			delta.earlyReads = 1
		case hour >= nightReadAfterHour:
			delta.nightReads = 1
		}
		return bumpCountersTx(tx, userID, delta)
	})
	if err != nil {
		return nil, err
	}

	newly, err := s.evaluateAfterCommit(userID)
	if err != nil {
		return nil, err
	}
	result.NewlyUnlocked = newly
	return result, nil
}

// RecordActivity handles a hadith-read or dua-learned event. Activity events
// feed counters and achievement evaluation but not the streak; only verse
// reads qualify for streak purposes.
func (s *ReadingService) RecordActivity(userID uint, kind ActivityKind) (*ActivityResult, error) {
	var delta counterDelta
	switch kind {
	case ActivityHadithRead:
		delta.hadithRead = 1
	case ActivityDuaLearned:
		delta.duasLearned = 1
	default:
		return nil, fmt.Errorf("%w: unknown activity kind %q", ErrInvalidInput, kind)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		return bumpCountersTx(tx, userID, delta)
	})
	if err != nil {
		return nil, err
	}

	newly, err := s.evaluateAfterCommit(userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.Stats(userID)
	if err != nil {
		return nil, err
	}
	return &ActivityResult{Stats: stats, NewlyUnlocked: newly}, nil
}

// Stats returns the counter row, zero-valued when the user has no activity yet.
func (s *ReadingService) Stats(userID uint) (*models.ActivityStats, error) {
	var stats models.ActivityStats
	err := s.db.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.ActivityStats{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load activity stats: %w", err)
	}
	return &stats, nil
}

// Summarize builds the streak + pages-read summary for the user.
func (s *ReadingService) Summarize(userID uint) (*Summary, error) {
	if err := ensureUserExists(s.db, userID); err != nil {
		return nil, err
	}

	summary := &Summary{}

	var streak models.Streak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	if err == nil {
		summary.CurrentStreak = streak.CurrentStreak
		summary.LongestStreak = streak.LongestStreak
		t := streak.LastReadDate
		summary.LastReadDate = &t
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load streak: %w", err)
	}

	stats, err := s.Stats(userID)
	if err != nil {
		return nil, err
	}
	summary.PagesRead = stats.PagesRead
	summary.SurahsCompleted = stats.SurahsCompleted

	return summary, nil
}

// Snapshot assembles the evaluator input from the persisted counters.
func (s *ReadingService) Snapshot(userID uint) (ActivitySnapshot, error) {
	stats, err := s.Stats(userID)
	if err != nil {
		return ActivitySnapshot{}, err
	}

	snap := ActivitySnapshot{
		PagesRead:       stats.PagesRead,
		SurahsCompleted: stats.SurahsCompleted,
		EarlyReads:      stats.EarlyReads,
		NightReads:      stats.NightReads,
	}

	var streak models.Streak
	err = s.db.Where("user_id = ?", userID).First(&streak).Error
	if err == nil {
		snap.CurrentStreak = streak.CurrentStreak
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ActivitySnapshot{}, fmt.Errorf("load streak: %w", err)
	}

	return snap, nil
}

func (s *ReadingService) evaluateAfterCommit(userID uint) ([]string, error) {
	snap, err := s.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	return s.achievements.Evaluate(userID, snap)
}

type counterDelta struct {
	pagesRead       int
	surahsCompleted int
	hadithRead      int
	duasLearned     int
	earlyReads      int
	nightReads      int
}

// bumpCountersTx lazily creates the stats row and applies the delta. Callers
// hold the user row lock.
func bumpCountersTx(tx *gorm.DB, userID uint, d counterDelta) error {
	var stats models.ActivityStats
	err := tx.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.ActivityStats{UserID: userID}
		if err := tx.Create(&stats).Error; err != nil {
			return fmt.Errorf("create activity stats: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("load activity stats: %w", err)
	}

	stats.PagesRead += d.pagesRead
	stats.SurahsCompleted += d.surahsCompleted
	stats.HadithRead += d.hadithRead
	stats.DuasLearned += d.duasLearned
	stats.EarlyReads += d.earlyReads
	stats.NightReads += d.nightReads

	if err := tx.Save(&stats).Error; err != nil {
		return fmt.Errorf("save activity stats: %w", err)
	}
	return nil
}
