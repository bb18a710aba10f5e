package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfadhel/tilawah/models"
)

func TestGoalRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "reader")
	svc := NewGoalService(db, DefaultGoalBounds())

	set, err := svc.Set(userID, GoalInput{PagesPerDay: 5, MinutesPerDay: 30, CompletionTarget: models.GoalTargetOneYear})
	require.NoError(t, err)

	got, err := svc.Get(userID)
	require.NoError(t, err)
	assert.Equal(t, set.ID, got.ID)
	assert.Equal(t, 5, got.PagesPerDay)
	assert.Equal(t, 30, got.MinutesPerDay)
	assert.Equal(t, models.GoalTargetOneYear, got.CompletionTarget)
}

func TestGoalReplacePrevious(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "reader")
	svc := NewGoalService(db, DefaultGoalBounds())

	_, err := svc.Set(userID, GoalInput{PagesPerDay: 2, MinutesPerDay: 10})
	require.NoError(t, err)
	_, err = svc.Set(userID, GoalInput{PagesPerDay: 10, MinutesPerDay: 60, CompletionTarget: models.GoalTargetSixMonths})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.ReadingGoal{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := svc.Get(userID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.PagesPerDay)
	assert.Equal(t, 60, got.MinutesPerDay)
	assert.Equal(t, models.GoalTargetSixMonths, got.CompletionTarget)
}

func TestGoalOptionalCompletionTarget(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "reader")
	svc := NewGoalService(db, DefaultGoalBounds())

	got, err := svc.Set(userID, GoalInput{PagesPerDay: 1, MinutesPerDay: 5})
	require.NoError(t, err)
	assert.Equal(t, models.GoalTargetNone, got.CompletionTarget)
}

func TestGoalRejectsOutOfRange(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "reader")
	svc := NewGoalService(db, DefaultGoalBounds())

	cases := []struct {
		name string
		in   GoalInput
	}{
		{"pages below min", GoalInput{PagesPerDay: 0, MinutesPerDay: 30}},
		{"pages above max", GoalInput{PagesPerDay: 51, MinutesPerDay: 30}},
		{"minutes below min", GoalInput{PagesPerDay: 5, MinutesPerDay: 4}},
		{"minutes above max", GoalInput{PagesPerDay: 5, MinutesPerDay: 121}},
		{"unknown target", GoalInput{PagesPerDay: 5, MinutesPerDay: 30, CompletionTarget: "someday"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Set(userID, tc.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// Rejected input leaves no stored goal behind.
	_, err := svc.Get(userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGoalUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGoalService(db, DefaultGoalBounds())

	_, err := svc.Set(7, GoalInput{PagesPerDay: 5, MinutesPerDay: 30})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Get(7)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
