package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	executionUsecases "mise/internal/application/execution/usecases"
	intentUsecases "mise/internal/application/intent/usecases"
	"mise/internal/infrastructure/ledgergw"
	"mise/internal/infrastructure/store"
	"mise/internal/interfaces/http/handlers"
	"mise/internal/shared/config"
	"mise/internal/shared/logger"
)

func newTestRouter() *Router {
	gin.SetMode(gin.TestMode)
	log := logger.NewLogger()

	buildIntentUC := intentUsecases.NewBuildIntentUseCaseWithDeps(
		time.Now,
		func() string { return "intent-fixed" },
		log,
	)
	ledgerClient := ledgergw.NewGatewayClient(&config.LedgerConfig{Endpoint: "http://127.0.0.1:0"}, log)
	executeUC := executionUsecases.NewExecuteTransferUseCase(ledgerClient, executionUsecases.DefaultExecutionConfig(), log)

	router := NewRouter(
		handlers.NewPaymentHandler(buildIntentUC, executeUC, 0, log),
		handlers.NewLocationHandler(store.NewMemoryStore(), log),
		&config.ServerConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		log,
	)
	router.SetupRoutes()
	return router
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_RequestIDAssigned(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req_fixed")
	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, "req_fixed", w.Header().Get("X-Request-ID"))
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
