package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReading(t *testing.T) (*ReadingService, uint) {
	t.Helper()
	db := setupTestDB(t)
	userID := createTestUser(t, db, "reader")
	achievements := NewAchievementService(db, DefaultCatalog())
	return NewReadingService(db, achievements), userID
}

func TestRecordVerseUpdatesAllEntities(t *testing.T) {
	svc, userID := setupReading(t)

	res, err := svc.RecordVerse(userID, VerseReadInput{SurahID: 2, Ayah: 10, TotalAyahs: 286, At: day(1, 9)})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Progress.LastReadAyah)
	assert.Equal(t, 1, res.Streak.CurrentStreak)
	assert.NotNil(t, res.NewlyUnlocked)
	assert.Empty(t, res.NewlyUnlocked)

	stats, err := svc.Stats(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PagesRead)
}

func TestRecordVerseUnlocksFirstSteps(t *testing.T) {
	svc, userID := setupReading(t)

	var res *ReadResult
	var err error
	for i := 1; i <= 10; i++ {
		res, err = svc.RecordVerse(userID, VerseReadInput{SurahID: 2, Ayah: i, TotalAyahs: 286, At: day(1, 9)})
		require.NoError(t, err)
	}

	assert.Contains(t, res.NewlyUnlocked, "first_steps")
}

func TestRecordVerseCompletionUnlocksFirstSurah(t *testing.T) {
	svc, userID := setupReading(t)

	res, err := svc.RecordVerse(userID, VerseReadInput{SurahID: 1, Ayah: 7, TotalAyahs: 7, At: day(1, 9)})
	require.NoError(t, err)
	assert.True(t, res.Progress.IsCompleted)
	assert.Contains(t, res.NewlyUnlocked, "first_surah")

	// Completing the same surah again does not double count.
	stats, err := svc.Stats(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SurahsCompleted)

	_, err = svc.RecordVerse(userID, VerseReadInput{SurahID: 1, Ayah: 7, TotalAyahs: 7, At: day(1, 10)})
	require.NoError(t, err)
	stats, err = svc.Stats(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SurahsCompleted)
}

func TestRecordVerseTimeWindows(t *testing.T) {
	svc, userID := setupReading(t)

	_, err := svc.RecordVerse(userID, VerseReadInput{SurahID: 2, Ayah: 1, TotalAyahs: 286, At: day(1, 5)})
	require.NoError(t, err)
	_, err = svc.RecordVerse(userID, VerseReadInput{SurahID: 2, Ayah: 2, TotalAyahs: 286, At: day(1, 23)})
	require.NoError(t, err)
	_, err = svc.RecordVerse(userID, VerseReadInput{SurahID: 2, Ayah: 3, TotalAyahs: 286, At: day(1, 12)})
	require.NoError(t, err)

	stats, err := svc.Stats(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EarlyReads)
	assert.Equal(t, 1, stats.NightReads)
	assert.Equal(t, 3, stats.PagesRead)
}

func TestRecordActivityKinds(t *testing.T) {
	svc, userID := setupReading(t)

	res, err := svc.RecordActivity(userID, ActivityHadithRead)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.HadithRead)

	res, err = svc.RecordActivity(userID, ActivityDuaLearned)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.DuasLearned)
	assert.Equal(t, 1, res.Stats.HadithRead)

	_, err = svc.RecordActivity(userID, ActivityKind("tafsir"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordActivityDoesNotTouchStreak(t *testing.T) {
	svc, userID := setupReading(t)

	_, err := svc.RecordActivity(userID, ActivityHadithRead)
	require.NoError(t, err)

	summary, err := svc.Summarize(userID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CurrentStreak)
	assert.Nil(t, summary.LastReadDate)
}

func TestSummarize(t *testing.T) {
	svc, userID := setupReading(t)

	_, err := svc.RecordVerse(userID, VerseReadInput{SurahID: 1, Ayah: 7, TotalAyahs: 7, At: day(1, 9)})
	require.NoError(t, err)
	_, err = svc.RecordVerse(userID, VerseReadInput{SurahID: 2, Ayah: 1, TotalAyahs: 286, At: day(2, 9)})
	require.NoError(t, err)

	summary, err := svc.Summarize(userID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 2, summary.LongestStreak)
	assert.Equal(t, 2, summary.PagesRead)
	assert.Equal(t, 1, summary.SurahsCompleted)
	require.NotNil(t, summary.LastReadDate)
	assert.True(t, summary.LastReadDate.Equal(day(2, 9)))
}

func TestSummarizeFreshUser(t *testing.T) {
	svc, userID := setupReading(t)

	summary, err := svc.Summarize(userID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CurrentStreak)
	assert.Equal(t, 0, summary.PagesRead)
	assert.Nil(t, summary.LastReadDate)
}

func TestRecordVerseDefaultsToNow(t *testing.T) {
	svc, userID := setupReading(t)

	before := time.Now().Add(-time.Second)
	res, err := svc.RecordVerse(userID, VerseReadInput{SurahID: 2, Ayah: 1, TotalAyahs: 286})
	require.NoError(t, err)
	assert.True(t, res.Progress.LastReadAt.After(before))
}

func TestRecordVerseUnknownUser(t *testing.T) {
	svc, _ := setupReading(t)

	_, err := svc.RecordVerse(999, VerseReadInput{SurahID: 2, Ayah: 1, TotalAyahs: 286, At: day(1, 9)})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
