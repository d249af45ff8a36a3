package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sales_visits_backend/platform/apperr"
	"sales_visits_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		category string
		details  string
	}{
		{apperr.Validation("seller does not exist"), http.StatusBadRequest, "validation error", "seller does not exist"},
		{apperr.NotFound("visit not found for seller"), http.StatusNotFound, "not found", "visit not found for seller"},
		{apperr.BusinessLogic("could not update", errors.New("no rows")), http.StatusInternalServerError, "business logic error", "could not update: no rows"},
		{errors.New("raw"), http.StatusInternalServerError, "internal server error", "raw"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		assert.True(t, HandleError(c, tc.err))
		assert.Equal(t, tc.status, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tc.category, body["error"])
		assert.Equal(t, tc.details, body["details"])
	}
}

func TestHandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	assert.False(t, HandleError(c, nil))
}

func TestCreatedEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Created(c, "created", gin.H{"id": "v1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, "v1", body["data"].(map[string]interface{})["id"])
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	var seen string
	engine.GET("/", func(c *gin.Context) {
		seen, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
}

func TestRateLimitRejectsOverBurst(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 1, logger.Nop())
	engine := gin.New()
	engine.Use(limiter.RateLimit())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
