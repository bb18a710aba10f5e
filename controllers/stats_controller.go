package controllers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nfadhel/tilawah/models"
	"github.com/nfadhel/tilawah/utils"
)

const statsCacheKey = "cache:stats:site"
const statsCacheTTL = 5 * time.Minute

// SiteStats are public aggregate counters for the landing page.
type SiteStats struct {
	TotalUsers           int64 `json:"total_users"`
	ReadersToday         int64 `json:"readers_today"`
	TotalPagesRead       int64 `json:"total_pages_read"`
	TotalSurahsCompleted int64 `json:"total_surahs_completed"`
	AchievementsUnlocked int64 `json:"achievements_unlocked"`
}

// StatsController serves public site-wide aggregates.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a StatsController.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns site-wide aggregates, cached in redis.
func (s *StatsController) GetStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(statsCacheKey); ok {
		var cached SiteStats
		if err := json.Unmarshal(b, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var stats SiteStats

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		stats.TotalUsers = 0
	}

	todayStart := time.Now()
	todayStart = time.Date(todayStart.Year(), todayStart.Month(), todayStart.Day(), 0, 0, 0, 0, todayStart.Location())
	if err := s.db.Model(&models.Streak{}).
		Where("last_read_date >= ?", todayStart).
		Count(&stats.ReadersToday).Error; err != nil {
		stats.ReadersToday = 0
	}

	type sums struct {
		Pages  int64
		Surahs int64
	}
	var agg sums
	if err := s.db.Model(&models.ActivityStats{}).
		Select("COALESCE(SUM(pages_read), 0) AS pages, COALESCE(SUM(surahs_completed), 0) AS surahs").
		Scan(&agg).Error; err != nil {
		agg = sums{}
	}
	stats.TotalPagesRead = agg.Pages
	stats.TotalSurahsCompleted = agg.Surahs

	if err := s.db.Model(&models.UserAchievement{}).Count(&stats.AchievementsUnlocked).Error; err != nil {
		stats.AchievementsUnlocked = 0
	}

	utils.CacheSetJSON(statsCacheKey, stats, statsCacheTTL)
	utils.Success(ctx, stats)
}
