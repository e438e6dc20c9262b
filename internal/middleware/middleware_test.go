package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldir/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func errorEngine(err error) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/fail", func(c *gin.Context) { HandleAPIError(c, err) })
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleAPIError_StatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", apperrors.NewValidationError("invalid email"), http.StatusUnprocessableEntity, "VAL_001", "invalid email"},
		{"conflict", apperrors.NewConflictError("a school with this email already exists"), http.StatusConflict, "RES_004", "a school with this email already exists"},
		{"processing", apperrors.NewProcessingError(errors.New("decode image: unknown format")), http.StatusInternalServerError, "SRV_004", "failed to process image"},
		{"storage", apperrors.NewStorageError(errors.New("dial tcp: refused")), http.StatusInternalServerError, "SRV_002", "database error"},
		{"method", apperrors.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "REQ_405", "method not allowed"},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "REQ_413", "request body too large"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "SRV_001", "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			errorEngine(tc.err).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.message, body["message"])
			assert.NotEmpty(t, body["timestamp"])

			detail := body["error"].(map[string]interface{})
			assert.Equal(t, tc.code, detail["code"])
			assert.Equal(t, tc.message, detail["message"])
		})
	}
}

func TestHandleAPIError_StorageCauseNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	errorEngine(apperrors.NewStorageError(errors.New("password authentication failed"))).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Body.String())
	require.NoError(t, err)
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid; drop table")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid; drop table", rec.Body.String())
}

func readBodyHandler(c *gin.Context) {
	if _, err := io.ReadAll(c.Request.Body); err != nil {
		HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.POST("/upload", SizeLimit(16), readBodyHandler)

	t.Run("within limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("0123456789abcdef")))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("declared length over limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 17))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("streamed body over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 64)))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/schools", RateLimiter(2), func(c *gin.Context) { c.Status(http.StatusCreated) })

	// The store counts per whole second, so a window may reset once mid-test.
	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/schools", nil)
		req.RemoteAddr = "203.0.113.7:4242"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, http.StatusCreated, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/api/schools", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/schools", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/schools", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
