package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nfadhel/tilawah/services"
	"github.com/nfadhel/tilawah/utils"
)

const achievementsCacheTTL = 60 * time.Second

// AchievementController exposes the achievement catalog and per-user unlocks.
type AchievementController struct {
	achievements *services.AchievementService
}

// NewAchievementController creates an AchievementController.
func NewAchievementController(db *gorm.DB, catalog *services.Catalog) *AchievementController {
	return &AchievementController{
		achievements: services.NewAchievementService(db, catalog),
	}
}

// Service exposes the underlying achievement service so other controllers
// can share the same catalog.
func (a *AchievementController) Service() *services.AchievementService {
	return a.achievements
}

// GetCatalog returns the full achievement catalog. Public, no auth.
func (a *AchievementController) GetCatalog(ctx *gin.Context) {
	utils.Success(ctx, a.achievements.Catalog().Entries())
}

// List returns the catalog with per-user unlock status, cached in redis.
func (a *AchievementController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	cacheKey := achievementsCacheKey(userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		var cached []services.AchievementStatus
		if err := json.Unmarshal(b, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	statuses, err := a.achievements.ListWithStatus(userID)
	if err != nil {
		respondServiceError(ctx, err, 50041, "failed to list achievements")
		return
	}

	utils.CacheSetJSON(cacheKey, statuses, achievementsCacheTTL)
	utils.Success(ctx, statuses)
}
