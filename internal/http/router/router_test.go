package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "sales_visits_backend/internal/http"
	"sales_visits_backend/platform/httpkit"
	"sales_visits_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testConfig struct {
	allowAll bool
	origins  []string
}

func (c testConfig) GetHTTPAddr() string      { return ":0" }
func (c testConfig) GetCORSAllowAll() bool    { return c.allowAll }
func (c testConfig) GetCORSOrigins() []string { return c.origins }
func (c testConfig) GetCORSAllowCreds() bool  { return false }
func (c testConfig) GetRateLimitRPS() float64 { return 0 }
func (c testConfig) GetRateLimitBurst() int   { return 0 }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Root.GET("/echo", func(c *gin.Context) { httpkit.OK(c, "ok", nil) })
}

func newApp(health apphttp.HealthChecker, cfg testConfig) *apphttp.App {
	return &apphttp.App{
		Config:  cfg,
		Logger:  logger.Nop(),
		Health:  health,
		Modules: []apphttp.Module{echoModule{}},
	}
}

func TestHealth(t *testing.T) {
	engine := New(newApp(pinger{}, testConfig{allowAll: true}))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	engine = New(newApp(pinger{err: errors.New("db down")}, testConfig{allowAll: true}))
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestModulesAndMiddlewareAreMounted(t *testing.T) {
	engine := New(newApp(nil, testConfig{origins: []string{"https://app.example"}}))

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(httpkit.RequestIDHeader))
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
