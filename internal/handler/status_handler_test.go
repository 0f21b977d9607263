package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fuzumoe/crawlplan-backend/internal/handler"
	"github.com/fuzumoe/crawlplan-backend/internal/model"
	"github.com/fuzumoe/crawlplan-backend/internal/planner"
)

// MockStatusService is a mock implementation of service.StatusService.
type MockStatusService struct {
	mock.Mock
}

func (m *MockStatusService) Check(ctx context.Context) (*model.RecommendationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecommendationReport), args.Error(1)
}

func (m *MockStatusService) CalculateRange(ctx context.Context, in model.CalculateRangeInput) (*model.CrawlingRangeResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrawlingRangeResponse), args.Error(1)
}

func statusRouter(svc *MockStatusService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewStatusHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestStatusHandler_Check(t *testing.T) {
	svc := new(MockStatusService)
	router := statusRouter(svc)

	rng := model.CrawlRange{StartPage: 1, EndPage: 20}
	svc.On("Check", mock.Anything).Return(&model.RecommendationReport{
		Action:            model.ActionCrawl,
		Priority:          model.PriorityMedium,
		SuggestedRange:    &rng,
		EstimatedNewItems: 240,
		Reason:            "20 new pages since the last crawl",
	}, nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/crawl/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body model.RecommendationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, model.ActionCrawl, body.Action)
	require.NotNil(t, body.SuggestedRange)
	assert.Equal(t, rng, *body.SuggestedRange)
	svc.AssertExpectations(t)
}

func TestStatusHandler_Check_ServiceError(t *testing.T) {
	svc := new(MockStatusService)
	router := statusRouter(svc)

	svc.On("Check", mock.Anything).Return(nil, errors.New("persist drift snapshot: disk full")).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/crawl/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "no recommendation is available")
}

func TestStatusHandler_CalculateRange(t *testing.T) {
	svc := new(MockStatusService)
	router := statusRouter(svc)

	in := model.CalculateRangeInput{TotalPagesOnSite: 500, ProductsOnLastPage: 7}
	svc.On("CalculateRange", mock.Anything, in).Return(&model.CrawlingRangeResponse{
		Range: model.CrawlRange{StartPage: 1, EndPage: 50},
	}, nil).Once()

	payload, _ := json.Marshal(in)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/crawl/range", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body model.CrawlingRangeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint(50), body.Range.EndPage)
}

func TestStatusHandler_CalculateRange_BadPayload(t *testing.T) {
	svc := new(MockStatusService)
	router := statusRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/crawl/range", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CalculateRange", mock.Anything, mock.Anything)
}

func TestStatusHandler_CalculateRange_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"Invalid Policy", planner.ErrInvalidPolicy, http.StatusBadRequest},
		{"Shrunk Site", planner.ErrSiteShrunk, http.StatusUnprocessableEntity},
		{"Inaccessible Site", planner.ErrSiteInaccessible, http.StatusUnprocessableEntity},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockStatusService)
			router := statusRouter(svc)
			svc.On("CalculateRange", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/api/v1/crawl/range", bytes.NewBufferString(`{"total_pages_on_site": 10}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
		})
	}
}
