package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storefront/internal/database"
)

type pingFunc func() error

func (f pingFunc) Ping() error { return f() }

func setupHealthTestDB(t *testing.T) *database.Database {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func serveHealth(t *testing.T, controller *HealthController) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		db := setupHealthTestDB(t)
		controller := NewHealthController(map[string]HealthChecker{"database": db}, "1.0.0")

		w, response := serveHealth(t, controller)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Contains(t, response.Time, "T")
	})

	t.Run("reports not configured checks without failing", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		controller := NewHealthController(map[string]HealthChecker{"kv": nil}, "1.0.0")

		w, response := serveHealth(t, controller)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "not configured", response.Checks["kv"])
	})

	t.Run("returns unhealthy when a dependency fails", func(t *testing.T) {
		db := setupHealthTestDB(t)
		controller := NewHealthController(map[string]HealthChecker{
			"database": db,
			"kv":       pingFunc(func() error { return errors.New("connection refused") }),
		}, "1.0.0")

		w, response := serveHealth(t, controller)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Equal(t, "error: connection refused", response.Checks["kv"])
	})

	t.Run("returns unhealthy when database connection is closed", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		db, err := database.NewDatabase(filepath.Join(t.TempDir(), "closed.db"))
		require.NoError(t, err)
		require.NoError(t, db.Close())

		controller := NewHealthController(map[string]HealthChecker{"database": db}, "1.0.0")

		w, response := serveHealth(t, controller)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, response.Checks["database"], "error")
	})
}
