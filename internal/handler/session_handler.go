package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fuzumoe/crawlplan-backend/internal/crawler"
	"github.com/fuzumoe/crawlplan-backend/internal/model"
	"github.com/fuzumoe/crawlplan-backend/internal/planner"
	"github.com/fuzumoe/crawlplan-backend/internal/repository"
	"github.com/fuzumoe/crawlplan-backend/internal/service"
)

// SessionHandler exposes crawl session lifecycle over HTTP. Read endpoints
// and the event stream are public; control endpoints mount behind auth via
// SessionControl.
type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(svc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: svc}
}

// Start launches a new crawl session.
// @Summary Start smart crawling
// @Tags    sessions
// @Accept  json
// @Produce json
// @Param   input body model.StartSessionInput false "policy overrides and optional explicit range"
// @Success 201 {object} map[string]string "session_id"
// @Failure 400 {object} map[string]string "error"
// @Failure 409 {object} map[string]string "error"
// @Security JWTAuth
// @Router  /api/v1/crawl/sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	var in model.StartSessionInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}
	id, err := h.sessionService.Start(c.Request.Context(), in)
	if err != nil {
		c.JSON(sessionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

// Get returns one session, live or archived.
// @Summary Get crawl session
// @Tags    sessions
// @Produce json
// @Param   id path string true "session id"
// @Success 200 {object} model.CrawlSessionDTO
// @Failure 404 {object} map[string]string "error"
// @Router  /api/v1/crawl/sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	dto, err := h.sessionService.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto)
}

// List returns archived sessions, newest first.
// @Summary List crawl sessions
// @Tags    sessions
// @Produce json
// @Param   page      query int false "page"
// @Param   page_size query int false "page_size"
// @Success 200 {array} model.CrawlSessionDTO
// @Router  /api/v1/crawl/sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	dtos, err := h.sessionService.List(paginationFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dtos)
}

// Pause pauses the live session.
// @Summary Pause crawling session
// @Tags    sessions
// @Produce json
// @Param   id path string true "session id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "error"
// @Failure 409 {object} map[string]string "error"
// @Security JWTAuth
// @Router  /api/v1/crawl/sessions/{id}/pause [patch]
func (h *SessionHandler) Pause(c *gin.Context) {
	h.control(c, h.sessionService.Pause, "pause requested")
}

// Resume resumes a paused session.
// @Summary Resume crawling session
// @Tags    sessions
// @Produce json
// @Param   id path string true "session id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "error"
// @Failure 409 {object} map[string]string "error"
// @Security JWTAuth
// @Router  /api/v1/crawl/sessions/{id}/resume [patch]
func (h *SessionHandler) Resume(c *gin.Context) {
	h.control(c, h.sessionService.Resume, "resumed")
}

// Stop cancels the live session cooperatively.
// @Summary Stop crawling session
// @Tags    sessions
// @Produce json
// @Param   id path string true "session id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "error"
// @Failure 409 {object} map[string]string "error"
// @Security JWTAuth
// @Router  /api/v1/crawl/sessions/{id}/stop [patch]
func (h *SessionHandler) Stop(c *gin.Context) {
	h.control(c, h.sessionService.Stop, "stop requested")
}

func (h *SessionHandler) control(c *gin.Context, op func(string) error, msg string) {
	id := c.Param("id")
	if err := op(id); err != nil {
		c.JSON(sessionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "message": msg})
}

// Events streams controller events as SSE. Event names match the Kind on the
// wire: crawling-progress, crawling-completed, crawling-failed.
// @Summary Crawl event stream (SSE)
// @Tags    sessions
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router  /api/v1/crawl/events [get]
func (h *SessionHandler) Events(c *gin.Context) {
	events, cancel := h.sessionService.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Kind), ev)
			return true
		}
	})
}

// RegisterRoutes mounts the public (read-only) session endpoints.
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/crawl/sessions", h.List)
	rg.GET("/crawl/sessions/:id", h.Get)
	rg.GET("/crawl/events", h.Events)
}

// SessionControl mounts the mutating session endpoints; the router places it
// behind auth middleware.
type SessionControl struct {
	H *SessionHandler
}

// RegisterRoutes mounts the control endpoints on the given router group.
func (s SessionControl) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/crawl/sessions", s.H.Start)
	rg.PATCH("/crawl/sessions/:id/pause", s.H.Pause)
	rg.PATCH("/crawl/sessions/:id/resume", s.H.Resume)
	rg.PATCH("/crawl/sessions/:id/stop", s.H.Stop)
}

func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, crawler.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, crawler.ErrAlreadyRunning),
		errors.Is(err, crawler.ErrInvalidTransition),
		errors.Is(err, service.ErrNothingToCrawl):
		return http.StatusConflict
	case errors.Is(err, planner.ErrInvalidPolicy):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrSiteShrunk), errors.Is(err, planner.ErrSiteInaccessible):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func paginationFromQuery(c *gin.Context) repository.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	return repository.Pagination{Page: page, PageSize: size}
}
