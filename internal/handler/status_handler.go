package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
	"github.com/fuzumoe/crawlplan-backend/internal/planner"
	"github.com/fuzumoe/crawlplan-backend/internal/service"
)

// StatusHandler exposes the status check facade over HTTP.
type StatusHandler struct {
	statusService service.StatusService
}

func NewStatusHandler(svc service.StatusService) *StatusHandler {
	return &StatusHandler{statusService: svc}
}

// Check runs the consolidated status check.
// @Summary Crawling status check
// @Tags    crawl
// @Produce json
// @Success 200 {object} model.RecommendationReport
// @Failure 500 {object} map[string]string "error"
// @Router  /api/v1/crawl/status [get]
func (h *StatusHandler) Check(c *gin.Context) {
	report, err := h.statusService.Check(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  err.Error(),
			"reason": "status check could not complete; no recommendation is available",
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

// CalculateRange computes a crawl range for caller-supplied site numbers.
// @Summary Calculate crawling range
// @Tags    crawl
// @Accept  json
// @Produce json
// @Param   input body model.CalculateRangeInput true "site shape"
// @Success 200 {object} model.CrawlingRangeResponse
// @Failure 400 {object} map[string]string "error"
// @Failure 422 {object} map[string]string "error"
// @Router  /api/v1/crawl/range [post]
func (h *StatusHandler) CalculateRange(c *gin.Context) {
	var in model.CalculateRangeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	resp, err := h.statusService.CalculateRange(c.Request.Context(), in)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, planner.ErrInvalidPolicy):
			status = http.StatusBadRequest
		case errors.Is(err, planner.ErrSiteShrunk), errors.Is(err, planner.ErrSiteInaccessible):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes mounts the status endpoints on the given router group.
func (h *StatusHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/crawl/status", h.Check)
	rg.POST("/crawl/range", h.CalculateRange)
}
