package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/service"
	"github.com/timmy/memeverse/internal/source"
)

// ingestTimeout bounds one admin-triggered pull.
const ingestTimeout = 2 * time.Minute

// ingestState records the in-flight flag and the outcome of the latest run.
type ingestState struct {
	mu      sync.RWMutex
	running bool
	at      time.Time
	status  string
	source  string
	count   int
}

// begin claims the single run slot. It reports false when a run is in flight.
func (st *ingestState) begin() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.running {
		return false
	}
	st.running = true
	return true
}

func (st *ingestState) finish(src string, count int, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.running = false
	st.at = time.Now()
	st.source = src
	st.count = count
	st.status = "success"
	if err != nil {
		st.status = "failed: " + err.Error()
	}
}

func (st *ingestState) snapshot(sources []string) IngestStatusResponse {
	st.mu.RLock()
	defer st.mu.RUnlock()
	resp := IngestStatusResponse{
		IsRunning:     st.running,
		Sources:       sources,
		LastRunStatus: st.status,
		LastSource:    st.source,
		LastCount:     st.count,
	}
	if !st.at.IsZero() {
		resp.LastRunTime = st.at.Format(time.RFC3339)
	}
	return resp
}

// AdminHandler triggers ingestion from any configured source and reports on the last run.
type AdminHandler struct {
	store   *service.MemeStore
	sources map[string]source.TrendingSource
	state   ingestState
}

// NewAdminHandler wires the store to the named trending sources.
func NewAdminHandler(store *service.MemeStore, sources map[string]source.TrendingSource) *AdminHandler {
	return &AdminHandler{store: store, sources: sources}
}

// IngestRequest represents the ingest API request.
type IngestRequest struct {
	Source string `json:"source" binding:"required"`
}

// IngestStatusResponse represents the ingest status.
type IngestStatusResponse struct {
	IsRunning     bool     `json:"is_running"`
	Sources       []string `json:"sources"`
	LastRunTime   string   `json:"last_run_time,omitempty"`
	LastRunStatus string   `json:"last_run_status,omitempty"`
	LastSource    string   `json:"last_source,omitempty"`
	LastCount     int      `json:"last_count"`
}

// TriggerIngest handles POST /api/v1/admin/ingest. Only one run may be in flight.
func (h *AdminHandler) TriggerIngest(c *gin.Context) {
	ctx := c.Request.Context()

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.CtxWarn(ctx, "Invalid ingest request: client_ip=%s, error=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	src, ok := h.sources[req.Source]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown source: " + req.Source})
		return
	}

	if !h.state.begin() {
		c.JSON(http.StatusConflict, gin.H{"error": "Ingest is already running"})
		return
	}

	logger.CtxInfo(ctx, "Ingest started: source=%s", req.Source)

	// A client disconnect must not abort the pull.
	ingestCtx, cancel := context.WithTimeout(logger.FromContext(ctx).WithContext(context.Background()), ingestTimeout)
	defer cancel()

	start := time.Now()
	memes, err := h.store.IngestFrom(ingestCtx, src)
	duration := time.Since(start)

	h.state.finish(req.Source, len(memes), err)

	entry := logger.With(logger.Fields{logger.FieldSource: req.Source}).WithDuration(duration.Milliseconds())
	if err != nil {
		entry.Error(ctx, "Ingest failed: error=%v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	entry.WithCount(len(memes)).Info(ctx, "Ingest completed")

	c.JSON(http.StatusOK, gin.H{
		"message": "Ingest completed successfully",
		"count":   len(memes),
	})
}

// GetIngestStatus handles GET /api/v1/admin/ingest/status.
func (h *AdminHandler) GetIngestStatus(c *gin.Context) {
	names := make([]string, 0, len(h.sources))
	for name := range h.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	c.JSON(http.StatusOK, h.state.snapshot(names))
}
