package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDB struct {
	err error
}

func (s stubDB) Ping(context.Context) error { return s.err }
func (s stubDB) Stats() map[string]int32 {
	return map[string]int32{"total_conns": 1, "acquired_conns": 0, "idle_conns": 1, "max_conns": 10}
}

func healthRequest(t *testing.T, db DatabaseChecker) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/health", NewHealthController(db).Health)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealth_Up(t *testing.T) {
	status, body := healthRequest(t, stubDB{})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "up", data["status"])
	assert.Equal(t, "up", data["database"])
	assert.Equal(t, float64(10), data["pool"].(map[string]interface{})["max_conns"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	status, body := healthRequest(t, stubDB{err: errors.New("connection refused")})

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "database unreachable", body["message"])
	assert.NotContains(t, body["message"], "refused")

	detail := body["error"].(map[string]interface{})
	assert.Equal(t, "SRV_003", detail["code"])
	assert.Equal(t, "down", detail["details"].(map[string]interface{})["database"])
	assert.NotContains(t, detail, "debugInfo")
}
