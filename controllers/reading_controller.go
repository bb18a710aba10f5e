package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nfadhel/tilawah/services"
	"github.com/nfadhel/tilawah/utils"
)

const summaryCacheTTL = 60 * time.Second

// ReadingController handles verse reads, activity events, progress queries
// and the per-user reading summary.
type ReadingController struct {
	reading  *services.ReadingService
	progress *services.ProgressService
	streaks  *services.StreakService
}

// NewReadingController creates a ReadingController.
func NewReadingController(db *gorm.DB, achievements *services.AchievementService) *ReadingController {
	return &ReadingController{
		reading:  services.NewReadingService(db, achievements),
		progress: services.NewProgressService(db),
		streaks:  services.NewStreakService(db),
	}
}

// RecordVerse records that the user read a verse. Updates progress, streak
// and activity counters in one transaction, then evaluates achievements.
func (r *ReadingController) RecordVerse(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		SurahID    int        `json:"surah_id" binding:"required"`
		Ayah       int        `json:"ayah" binding:"required"`
		TotalAyahs int        `json:"total_ayahs" binding:"required"`
		At         *time.Time `json:"at"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	in := services.VerseReadInput{
		SurahID:    req.SurahID,
		Ayah:       req.Ayah,
		TotalAyahs: req.TotalAyahs,
	}
	if req.At != nil {
		in.At = *req.At
	}

	result, err := r.reading.RecordVerse(userID, in)
	if err != nil {
		respondServiceError(ctx, err, 50011, "failed to record verse")
		return
	}

	r.invalidateUserCaches(userID)

	utils.Success(ctx, gin.H{
		"progress":       result.Progress,
		"streak":         result.Streak,
		"newly_unlocked": result.NewlyUnlocked,
	})
}

// RecordActivity records a non-reading activity event (hadith read, dua learned).
func (r *ReadingController) RecordActivity(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Kind string `json:"kind" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	result, err := r.reading.RecordActivity(userID, services.ActivityKind(req.Kind))
	if err != nil {
		respondServiceError(ctx, err, 50012, "failed to record activity")
		return
	}

	r.invalidateUserCaches(userID)

	utils.Success(ctx, gin.H{
		"stats":          result.Stats,
		"newly_unlocked": result.NewlyUnlocked,
	})
}

// ListProgress returns the user's per-surah reading progress ordered by surah.
func (r *ReadingController) ListProgress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	rows, err := r.progress.List(userID)
	if err != nil {
		respondServiceError(ctx, err, 50013, "failed to list progress")
		return
	}

	utils.Success(ctx, rows)
}

// GetProgress returns the user's progress for a single surah.
func (r *ReadingController) GetProgress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	surahID, err := strconv.Atoi(ctx.Param("surahId"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid surah id")
		return
	}

	row, err := r.progress.Get(userID, surahID)
	if err != nil {
		respondServiceError(ctx, err, 50014, "failed to load progress")
		return
	}

	utils.Success(ctx, row)
}

// GetStreak returns the user's current streak state.
func (r *ReadingController) GetStreak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	streak, err := r.streaks.Get(userID)
	if err != nil {
		respondServiceError(ctx, err, 50015, "failed to load streak")
		return
	}

	utils.Success(ctx, streak)
}

// Summary returns the combined reading summary, cached briefly in redis.
func (r *ReadingController) Summary(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	cacheKey := summaryCacheKey(userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		var cached services.Summary
		if err := json.Unmarshal(b, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	summary, err := r.reading.Summarize(userID)
	if err != nil {
		respondServiceError(ctx, err, 50016, "failed to build summary")
		return
	}

	utils.CacheSetJSON(cacheKey, summary, summaryCacheTTL)
	utils.Success(ctx, summary)
}

func (r *ReadingController) invalidateUserCaches(userID uint) {
	utils.InvalidateByPrefix(summaryCacheKey(userID))
	utils.InvalidateByPrefix(achievementsCacheKey(userID))
}

func summaryCacheKey(userID uint) string {
	return "cache:summary:" + strconv.Itoa(int(userID))
}

func achievementsCacheKey(userID uint) string {
	return "cache:achievements:" + strconv.Itoa(int(userID))
}
