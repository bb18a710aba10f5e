package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nfadhel/tilawah/models"
)

// GoalBounds are the accepted ranges for daily targets. Out-of-range input is
// rejected rather than clamped so the stored goal always reflects what the
// user actually asked for.
type GoalBounds struct {
	PagesMin   int
	PagesMax   int
	MinutesMin int
	MinutesMax int
}

// DefaultGoalBounds mirrors the configuration defaults.
func DefaultGoalBounds() GoalBounds {
	return GoalBounds{PagesMin: 1, PagesMax: 50, MinutesMin: 5, MinutesMax: 120}
}

// GoalInput carries the fields of a set-goal request.
type GoalInput struct {
	PagesPerDay      int
	MinutesPerDay    int
	CompletionTarget string
}

// GoalService stores a single active daily reading target per user.
type GoalService struct {
	db     *gorm.DB
	bounds GoalBounds
}

// NewGoalService creates a new service instance.
func NewGoalService(db *gorm.DB, bounds GoalBounds) *GoalService {
	return &GoalService{db: db, bounds: bounds}
}

// Set validates and upserts the user's goal, replacing any previous one.
func (s *GoalService) Set(userID uint, in GoalInput) (*models.ReadingGoal, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	if err := ensureUserExists(s.db, userID); err != nil {
		return nil, err
	}

	goal := models.ReadingGoal{
		UserID:           userID,
		PagesPerDay:      in.PagesPerDay,
		MinutesPerDay:    in.MinutesPerDay,
		CompletionTarget: in.CompletionTarget,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pages_per_day", "minutes_per_day", "completion_target", "updated_at"}),
	}).Create(&goal).Error; err != nil {
		return nil, fmt.Errorf("upsert goal: %w", err)
	}

	if err := s.db.Where("user_id = ?", userID).First(&goal).Error; err != nil {
		return nil, fmt.Errorf("reload goal: %w", err)
	}
	return &goal, nil
}

// Get returns the user's current goal, or ErrNotFound when none was set.
func (s *GoalService) Get(userID uint) (*models.ReadingGoal, error) {
	if err := ensureUserExists(s.db, userID); err != nil {
		return nil, err
	}

	var goal models.ReadingGoal
	if err := s.db.Where("user_id = ?", userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &goal, nil
}

func (s *GoalService) validate(in GoalInput) error {
	if in.PagesPerDay < s.bounds.PagesMin || in.PagesPerDay > s.bounds.PagesMax {
		return fmt.Errorf("%w: pages per day %d out of range [%d,%d]",
			ErrInvalidInput, in.PagesPerDay, s.bounds.PagesMin, s.bounds.PagesMax)
	}
	if in.MinutesPerDay < s.bounds.MinutesMin || in.MinutesPerDay > s.bounds.MinutesMax {
		return fmt.Errorf("%w: minutes per day %d out of range [%d,%d]",
			ErrInvalidInput, in.MinutesPerDay, s.bounds.MinutesMin, s.bounds.MinutesMax)
	}
	switch in.CompletionTarget {
	case models.GoalTargetNone, models.GoalTargetNextRamadan,
		models.GoalTargetThreeMonths, models.GoalTargetSixMonths, models.GoalTargetOneYear:
		return nil
	default:
		return fmt.Errorf("%w: unknown completion target %q", ErrInvalidInput, in.CompletionTarget)
	}
}
