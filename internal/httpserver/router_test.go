package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"researchhub/internal/handler"
	"researchhub/pkg/apperr"
	"researchhub/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type denyAll struct{}

func (denyAll) Authenticate(context.Context, string) (*util.Claims, error) {
	return nil, apperr.Unauthorized("invalid or expired token")
}

func newTestRouter(ready map[string]Pinger) *gin.Engine {
	log := zap.NewNop()
	return NewRouter(Handlers{
		Auth:      handler.NewAuthHandler(nil, log),
		Projects:  handler.NewProjectHandler(nil, log),
		Papers:    handler.NewPaperHandler(nil, log),
		Dashboard: handler.NewDashboardHandler(nil, nil, log),
		Reminders: handler.NewReminderHandler(nil, log),
		Timer:     handler.NewTimerHandler(nil, log),
		Tools:     handler.NewToolsHandler(nil, log),
	}, Options{
		Authenticator: denyAll{},
		CORSOrigins:   []string{"*"},
		Ready:         ready,
		Logger:        log,
	}).Engine
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyz(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") })

	w := httptest.NewRecorder()
	newTestRouter(map[string]Pinger{"db": ok, "redis": ok}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())

	w = httptest.NewRecorder()
	newTestRouter(map[string]Pinger{"db": ok, "redis": down}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis_not_ready")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(nil)
	for _, path := range []string{"/dashboard", "/projects", "/papers/venues", "/timer"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
