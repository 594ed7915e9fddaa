package runs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rivalscan-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the runs service.
type Handler struct {
	Svc     *Service
	limiter *pollLimiter
}

// NewHandler constructs a Handler with the default poll limit.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, limiter: newPollLimiter(pollLimitWindow, nil)}
}

// RegisterRoutes attaches run routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/runs", h.createRun)
	rg.GET("/runs/:id", h.getRun)
	rg.GET("/runs/:id/candidates", h.getCandidates)
	rg.POST("/runs/:id/select", h.selectCompetitor)
	rg.GET("/leads/:ref/runs", h.listRuns)
}

type createRunRequest struct {
	URL     string `json:"url"`
	Scope   string `json:"scope"`
	LeadRef string `json:"leadRef"`
}

func (h *Handler) createRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "url is required", nil)
		return
	}

	run, err := h.Svc.Create(c.Request.Context(), req.URL, req.Scope, req.LeadRef)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not start a run for that url", nil)
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"runId":       run.ID,
		"accessToken": run.AccessToken,
		"status":      run.Status,
	})
}

func (h *Handler) getRun(c *gin.Context) {
	runID := c.Param("id")
	if !h.limiter.Allow(runID, c.ClientIP()) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "polling too fast", nil)
		return
	}

	run, err := h.Svc.Get(c.Request.Context(), runID, tokenFrom(c))
	if err != nil {
		h.respondError(c, err, "failed to fetch run")
		return
	}

	resp := gin.H{
		"id":       run.ID,
		"status":   run.Status,
		"progress": run.Progress,
	}
	if run.StatusMessage != "" {
		resp["message"] = run.StatusMessage
	}
	if run.Status == StatusComplete && run.Result != nil {
		resp["result"] = run.Result
		resp["costCents"] = run.CostCents
	}
	if run.Status == StatusFailed {
		resp["errorCode"] = run.ErrorCode
		resp["retryable"] = run.ErrorRetryable
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) getCandidates(c *gin.Context) {
	run, err := h.Svc.Candidates(c.Request.Context(), c.Param("id"), tokenFrom(c))
	if err != nil {
		h.respondError(c, err, "failed to fetch candidates")
		return
	}

	resp := gin.H{
		"status":     run.Status,
		"candidates": run.Candidates,
	}
	if run.Profile != nil {
		resp["profile"] = run.Profile
	}
	respond.JSON(c, http.StatusOK, resp)
}

type selectRequest struct {
	Domain string `json:"domain"`
}

func (h *Handler) selectCompetitor(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Domain == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "domain is required", nil)
		return
	}

	run, err := h.Svc.SelectCompetitor(c.Request.Context(), c.Param("id"), tokenFrom(c), req.Domain)
	if err != nil {
		h.respondError(c, err, "failed to select competitor")
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"status":        run.Status,
		"competitorUrl": run.CompetitorURL,
	})
}

func (h *Handler) listRuns(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	found, err := h.Svc.List(c.Request.Context(), c.Param("ref"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list runs", nil)
		return
	}

	resp := make([]gin.H, 0, len(found))
	for _, run := range found {
		item := gin.H{
			"runId":      run.ID,
			"subjectUrl": run.SubjectURL,
			"status":     run.Status,
			"createdAt":  run.CreatedAt,
		}
		if run.Status == StatusComplete && run.Result != nil {
			item["subjectScore"] = run.Result.SubjectScore
			item["verdict"] = run.Result.Verdict
		}
		resp = append(resp, item)
	}
	respond.JSON(c, http.StatusOK, gin.H{"runs": resp})
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusConflict, "not_ready", "run is not ready for this operation", nil)
	case errors.Is(err, ErrCompetitorNotOffered):
		respond.Error(c, http.StatusUnprocessableEntity, "not_offered", "that competitor was not offered for this run", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

// tokenFrom reads the run access token from the header or, for plain links,
// the query string.
func tokenFrom(c *gin.Context) string {
	if token := c.GetHeader("X-Run-Token"); token != "" {
		return token
	}
	return c.Query("token")
}
