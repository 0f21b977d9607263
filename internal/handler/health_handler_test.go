package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fuzumoe/crawlplan-backend/internal/handler"
	"github.com/fuzumoe/crawlplan-backend/internal/service"
)

// MockHealthService is a mock implementation of service.HealthService.
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Check() *service.HealthStatus {
	args := m.Called()
	return args.Get(0).(*service.HealthStatus)
}

func healthRouter(svc *MockHealthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewHealthHandler(svc).RegisterRoutes(r.Group(""))
	return r
}

func TestHealthHandler_Healthy(t *testing.T) {
	svc := new(MockHealthService)
	router := healthRouter(svc)

	svc.On("Check").Return(&service.HealthStatus{
		Service:  "crawlplan",
		Database: "healthy",
		Healthy:  true,
		Checked:  time.Now().UTC(),
	}).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"database":"healthy"`)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	svc := new(MockHealthService)
	router := healthRouter(svc)

	svc.On("Check").Return(&service.HealthStatus{
		Service:  "crawlplan",
		Database: "unhealthy",
		Healthy:  false,
		Checked:  time.Now().UTC(),
	}).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}
