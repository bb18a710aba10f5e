package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nfadhel/tilawah/models"
)

// AchievementService compares accumulated activity against the catalog and
// persists first-time unlocks.
type AchievementService struct {
	db      *gorm.DB
	catalog *Catalog
}

// AchievementStatus is a catalog entry annotated with the user's unlock state.
type AchievementStatus struct {
	CatalogEntry
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// NewAchievementService creates a new service instance.
func NewAchievementService(db *gorm.DB, catalog *Catalog) *AchievementService {
	return &AchievementService{db: db, catalog: catalog}
}

// Catalog exposes the immutable rule list.
func (s *AchievementService) Catalog() *Catalog {
	return s.catalog
}

// Evaluate unlocks every catalog entry the snapshot newly satisfies and
// returns the freshly unlocked IDs, in catalog order. Evaluating twice with
// the same or a grown snapshot never double-unlocks: already-unlocked IDs are
// skipped and the unique (user, achievement) index absorbs races.
func (s *AchievementService) Evaluate(userID uint, snap ActivitySnapshot) ([]string, error) {
	if err := ensureUserExists(s.db, userID); err != nil {
		return nil, err
	}

	unlocked, err := s.unlockedSet(userID)
	if err != nil {
		return nil, err
	}

	newly := []string{}
	for _, entry := range s.catalog.Entries() {
		if unlocked[entry.ID] {
			continue
		}
		if !entry.SatisfiedBy(snap) {
			continue
		}

		record := models.UserAchievement{
			UserID:        userID,
			AchievementID: entry.ID,
			UnlockedAt:    time.Now(),
		}
		res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if res.Error != nil {
			return nil, fmt.Errorf("unlock achievement %s: %w", entry.ID, res.Error)
		}
		// RowsAffected is zero when a concurrent request won the race.
		if res.RowsAffected > 0 {
			newly = append(newly, entry.ID)
		}
	}

	return newly, nil
}

// ListWithStatus returns the whole catalog annotated with unlock timestamps
// for the user, in catalog order.
func (s *AchievementService) ListWithStatus(userID uint) ([]AchievementStatus, error) {
	if err := ensureUserExists(s.db, userID); err != nil {
		return nil, err
	}

	var records []models.UserAchievement
	if err := s.db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	unlockedAt := make(map[string]time.Time, len(records))
	for _, r := range records {
		unlockedAt[r.AchievementID] = r.UnlockedAt
	}

	statuses := make([]AchievementStatus, 0, s.catalog.Len())
	for _, entry := range s.catalog.Entries() {
		st := AchievementStatus{CatalogEntry: entry}
		if at, ok := unlockedAt[entry.ID]; ok {
			st.Unlocked = true
			t := at
			st.UnlockedAt = &t
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (s *AchievementService) unlockedSet(userID uint) (map[string]bool, error) {
	var ids []string
	if err := s.db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load unlocked set: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func ensureUserExists(db *gorm.DB, userID uint) error {
	var user models.User
	if err := db.Select("id").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	return nil
}
