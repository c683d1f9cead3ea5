package simd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/contagion-core/internal/metrics"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
	defaultTop       = 10
)

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
	metrics  *metrics.Registry
}

func NewHTTPServer(store *RunStore, executor *RunExecutor, reg *metrics.Registry) *HTTPServer {
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
		metrics:  reg,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", reg.Handler())
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)

	return s
}

// Handler returns the routes wrapped with request metrics
func (s *HTTPServer) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)
		s.metrics.RecordHTTPRequest(r.Method, routeLabel(r.URL.Path), rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routeLabel collapses run IDs so the route label stays low-cardinality
func routeLabel(path string) string {
	switch path {
	case "/healthz", "/metrics", "/v1/runs":
		return path
	}
	rest, ok := strings.CutPrefix(path, "/v1/runs/")
	if !ok {
		return "other"
	}
	switch {
	case strings.HasSuffix(rest, ":stop"):
		return "/v1/runs/{id}:stop"
	case strings.HasSuffix(rest, "/curve"):
		return "/v1/runs/{id}/curve"
	case strings.HasSuffix(rest, "/centrality"):
		return "/v1/runs/{id}/centrality"
	case strings.Contains(rest, "/nodes/"):
		return "/v1/runs/{id}/nodes/{node}"
	}
	return "/v1/runs/{id}"
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleRuns handles /v1/runs endpoint
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunByID handles /v1/runs/{id}, /v1/runs/{id}:stop, /v1/runs/{id}/curve,
// /v1/runs/{id}/centrality and /v1/runs/{id}/nodes/{node}
func (s *HTTPServer) handleRunByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	if runID, node, ok := strings.Cut(path, "/nodes/"); ok {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetNode(w, r, runID, node)
		return
	}

	var (
		runID  string
		method string
		handle func(http.ResponseWriter, *http.Request, string)
	)
	switch {
	case strings.HasSuffix(path, ":stop"):
		runID, method, handle = strings.TrimSuffix(path, ":stop"), http.MethodPost, s.handleStopRun
	case strings.HasSuffix(path, "/curve"):
		runID, method, handle = strings.TrimSuffix(path, "/curve"), http.MethodGet, s.handleGetCurve
	case strings.HasSuffix(path, "/centrality"):
		runID, method, handle = strings.TrimSuffix(path, "/centrality"), http.MethodGet, s.handleGetCentrality
	default:
		runID, method, handle = path, http.MethodGet, s.handleGetRun
	}

	if runID == "" || strings.Contains(runID, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != method {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	handle(w, r, runID)
}

// handleCreateRun handles POST /v1/runs: the run is created and started
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RunID      string `json:"run_id,omitempty"`
		ConfigYAML string `json:"config_yaml"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := s.store.Create(req.RunID, RunInput{ConfigYAML: req.ConfigYAML})
	if err != nil {
		s.writeError(w, httpStatusFor(err), err.Error())
		return
	}

	started, err := s.Executor.Start(rec.ID)
	if err != nil {
		s.writeError(w, httpStatusFor(err), err.Error())
		return
	}

	logger.Info("run created (HTTP)", "run_id", rec.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": convertRunToJSON(started),
	})
}

// handleListRuns handles GET /v1/runs with pagination and filtering
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := defaultListLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, maxListLimit)
		}
	}

	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var status models.RunStatus
	if statusStr := query.Get("status"); statusStr != "" {
		parsed, ok := models.ParseRunStatus(statusStr)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status: "+statusStr)
			return
		}
		status = parsed
	}

	runs := s.store.List(limit, offset, status)

	runsJSON := make([]map[string]any, 0, len(runs))
	for _, rec := range runs {
		runsJSON = append(runsJSON, convertRunToJSON(rec))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runsJSON,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": convertRunToJSON(rec),
	})
}

// handleStopRun handles POST /v1/runs/{id}:stop
func (s *HTTPServer) handleStopRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		s.writeError(w, httpStatusFor(err), err.Error())
		return
	}

	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": convertRunToJSON(updated),
	})
}

// handleGetCurve handles GET /v1/runs/{id}/curve
func (s *HTTPServer) handleGetCurve(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Result == nil {
		s.writeError(w, http.StatusPreconditionFailed, "curve not available")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":  runID,
		"curve":   convertCurveToJSON(rec.Result.Curve),
		"summary": convertSummaryToJSON(rec.Result.Summary),
	})
}

// handleGetCentrality handles GET /v1/runs/{id}/centrality?top=N
func (s *HTTPServer) handleGetCentrality(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if !rec.Result.HasCentrality() {
		s.writeError(w, http.StatusPreconditionFailed, "centrality not available")
		return
	}

	top := defaultTop
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		parsed, err := strconv.Atoi(topStr)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		top = parsed
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":       runID,
		"nodes":        rec.Result.Nodes,
		"degree":       convertRankedToJSON(rec.Result.TopDegree(top)),
		"betweenness":  convertRankedToJSON(rec.Result.TopBetweenness(top)),
		"degree_stats": convertStatsToJSON(rec.Result.DegreeStats),
	})
}

// handleGetNode handles GET /v1/runs/{id}/nodes/{node}
func (s *HTTPServer) handleGetNode(w http.ResponseWriter, _ *http.Request, runID, node string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Result == nil {
		s.writeError(w, http.StatusPreconditionFailed, "node states not available")
		return
	}

	id, err := strconv.Atoi(node)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "node id must be an integer")
		return
	}
	report, ok := rec.Result.Node(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "node not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": runID,
		"node":   convertNodeToJSON(report),
	})
}

// httpStatusFor maps run errors onto HTTP status codes
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunIDMissing), errors.Is(err, ErrInvalidRunID), errors.Is(err, ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunExists), errors.Is(err, ErrRunTerminal):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"error": msg})
}
