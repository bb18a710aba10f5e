package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nfadhel/tilawah/config"
	"github.com/nfadhel/tilawah/models"
	"github.com/nfadhel/tilawah/services"
	"github.com/nfadhel/tilawah/utils"
)

const goalCacheTTL = 5 * time.Minute

// GoalController handles the per-user reading goal.
type GoalController struct {
	goals *services.GoalService
}

// NewGoalController creates a GoalController with bounds taken from config.
func NewGoalController(db *gorm.DB) *GoalController {
	cfg := config.Get()
	bounds := services.GoalBounds{
		PagesMin:   cfg.GoalPagesMin,
		PagesMax:   cfg.GoalPagesMax,
		MinutesMin: cfg.GoalMinutesMin,
		MinutesMax: cfg.GoalMinutesMax,
	}
	return &GoalController{goals: services.NewGoalService(db, bounds)}
}

// SetGoal creates or replaces the user's reading goal.
func (g *GoalController) SetGoal(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		PagesPerDay      int    `json:"pages_per_day" binding:"required"`
		MinutesPerDay    int    `json:"minutes_per_day" binding:"required"`
		CompletionTarget string `json:"completion_target"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	goal, err := g.goals.Set(userID, services.GoalInput{
		PagesPerDay:      req.PagesPerDay,
		MinutesPerDay:    req.MinutesPerDay,
		CompletionTarget: req.CompletionTarget,
	})
	if err != nil {
		respondServiceError(ctx, err, 50021, "failed to save goal")
		return
	}

	utils.InvalidateByPrefix(goalCacheKey(userID))
	utils.Success(ctx, goal)
}

// GetGoal returns the user's active reading goal, cached in redis.
func (g *GoalController) GetGoal(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	cacheKey := goalCacheKey(userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		var cached models.ReadingGoal
		if err := json.Unmarshal(b, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	goal, err := g.goals.Get(userID)
	if err != nil {
		respondServiceError(ctx, err, 50022, "failed to load goal")
		return
	}

	utils.CacheSetJSON(cacheKey, goal, goalCacheTTL)
	utils.Success(ctx, goal)
}

func goalCacheKey(userID uint) string {
	return "cache:goal:" + strconv.Itoa(int(userID))
}
