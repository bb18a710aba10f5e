package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nfadhel/tilawah/models"
	"github.com/nfadhel/tilawah/services"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("GIN_MODE", "test")
	os.Setenv("GIN_PATH", filepath.Join(os.TempDir(), "tilawah_gin_test.log"))
	os.Exit(m.Run())
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ReadingProgress{},
		&models.Streak{},
		&models.UserAchievement{},
		&models.ReadingGoal{},
		&models.ActivityStats{},
	))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return SetupRouter(db, services.DefaultCatalog()), db
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"password": "secret-1",
		"confirm":  "secret-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
}

func TestUnknownAPIRoute(t *testing.T) {
	r, _ := setupRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40400, env.Code)
}

func TestRegisterLoginLogout(t *testing.T) {
	r, _ := setupRouter(t)

	token := registerAndLogin(t, r, "fatimah")

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "fatimah", me.Username)

	// Duplicate username is rejected.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "fatimah",
		"password": "secret-1",
		"confirm":  "secret-1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password is rejected.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "fatimah",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// The blacklisted session no longer authenticates.
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidationBounds(t *testing.T) {
	r, _ := setupRouter(t)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"username too long", strings.Repeat("a", 33), "secret-1"},
		{"username too short after trim", "  ab  ", "secret-1"},
		{"password too long", "validname", strings.Repeat("p", 65)},
		{"password too short", "validname", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
				"username": tc.username,
				"password": tc.password,
				"confirm":  tc.password,
			})
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := setupRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/reading/summary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/reading/summary", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordVerseFlow(t *testing.T) {
	r, _ := setupRouter(t)
	token := registerAndLogin(t, r, "yusuf")

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/reading/verse", token, gin.H{
		"surah_id":    1,
		"ayah":        7,
		"total_ayahs": 7,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Progress struct {
			IsCompleted bool `json:"is_completed"`
		} `json:"progress"`
		Streak struct {
			CurrentStreak int `json:"current_streak"`
		} `json:"streak"`
		NewlyUnlocked []string `json:"newly_unlocked"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Progress.IsCompleted)
	assert.Equal(t, 1, res.Streak.CurrentStreak)
	assert.Contains(t, res.NewlyUnlocked, "first_surah")

	// Invalid coordinates get a 400.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/reading/verse", token, gin.H{
		"surah_id":    200,
		"ayah":        1,
		"total_ayahs": 7,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/reading/progress/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/reading/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		PagesRead       int `json:"pages_read"`
		SurahsCompleted int `json:"surahs_completed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.PagesRead)
	assert.Equal(t, 1, summary.SurahsCompleted)
}

func TestActivityEndpoint(t *testing.T) {
	r, _ := setupRouter(t)
	token := registerAndLogin(t, r, "maryam")

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/reading/activity", token, gin.H{"kind": "hadith"})
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Stats struct {
			HadithRead int `json:"hadith_read"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Stats.HadithRead)

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/reading/activity", token, gin.H{"kind": "unknown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoalEndpoints(t *testing.T) {
	r, _ := setupRouter(t)
	token := registerAndLogin(t, r, "bilal")

	// No goal yet.
	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/goal", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/goal", token, gin.H{
		"pages_per_day":     5,
		"minutes_per_day":   30,
		"completion_target": "1_year",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/goal", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var goal struct {
		PagesPerDay      int    `json:"pages_per_day"`
		CompletionTarget string `json:"completion_target"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &goal))
	assert.Equal(t, 5, goal.PagesPerDay)
	assert.Equal(t, "1_year", goal.CompletionTarget)

	// Out-of-range input is rejected, not clamped.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/goal", token, gin.H{
		"pages_per_day":   500,
		"minutes_per_day": 30,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAchievementEndpoints(t *testing.T) {
	r, _ := setupRouter(t)

	// Catalog is public.
	w, env := doJSON(t, r, http.MethodGet, "/api/v1/achievements/catalog", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catalog []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	assert.Len(t, catalog, services.DefaultCatalog().Len())

	token := registerAndLogin(t, r, "husna")
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/achievements", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var statuses []struct {
		ID       string `json:"id"`
		Unlocked bool   `json:"unlocked"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &statuses))
	require.Len(t, statuses, services.DefaultCatalog().Len())
	for _, st := range statuses {
		assert.False(t, st.Unlocked)
	}
}

func TestPublicStats(t *testing.T) {
	r, _ := setupRouter(t)
	registerAndLogin(t, r, "zaynab")

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalUsers int64 `json:"total_users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.GreaterOrEqual(t, stats.TotalUsers, int64(1))
}
