package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/modelhub"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"go.uber.org/zap"
)

// askFailure is the only error body /ask ever returns.
const askFailure = "Internal server error"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title  string
		State  string
		Ready  bool
		Chunks int
	}{Title: "Kotae", State: s.handles.State().String()}
	if store := s.engine.Store(); store != nil && s.handles.State() == modelhub.StateReady {
		data.Ready = true
		data.Chunks = store.Len()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render index failed", zap.Error(err))
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Error("ask failed",
			zap.String("error_tag", models.ErrorTag(models.ErrInvalidQuery)),
			zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, askFailure)
		return
	}
	answer, err := s.engine.Ask(r.Context(), &req)
	if err != nil {
		s.logger.Error("ask failed", zap.String("error_tag", models.ErrorTag(err)), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, askFailure)
		return
	}
	s.respondJSON(w, http.StatusOK, models.AskResponse{Response: answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("retrieve request", zap.String("query", req.Query), zap.Int("top_k", req.TopK))
	resp, err := s.engine.Retrieve(r.Context(), &req)
	if err != nil {
		s.logger.Error("retrieve failed", zap.String("error_tag", models.ErrorTag(err)), zap.Error(err))
		s.respondTagged(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type chunkSearchResponse struct {
	Query      string            `json:"query"`
	Results    []*keyword.Result `json:"results"`
	Total      int               `json:"total"`
	Suggestion string            `json:"suggestion,omitempty"`
}

func (s *Server) handleChunkSearch(w http.ResponseWriter, r *http.Request) {
	if s.chunks == nil {
		s.respondError(w, http.StatusNotImplemented, "chunk search not enabled")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			s.respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	fuzzy, _ := strconv.ParseBool(r.URL.Query().Get("fuzzy"))

	results, err := s.chunks.Search(r.Context(), q, limit, &keyword.SearchOptions{Fuzzy: fuzzy, TitleBoost: 2})
	if err != nil {
		s.logger.Error("chunk search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, askFailure)
		return
	}
	resp := chunkSearchResponse{Query: q, Results: results, Total: len(results)}
	if len(results) == 0 && s.suggester != nil {
		if corrected, changed, err := s.suggester.Correct(q); err == nil && changed {
			resp.Suggestion = corrected
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	State      string            `json:"state"`
	Error      string            `json:"error,omitempty"`
	Published  bool              `json:"published"`
	Chunks     int               `json:"chunks"`
	Dimensions int               `json:"dimensions"`
	Corpus     corpusStatus      `json:"corpus"`
	LastRun    *models.IngestRun `json:"last_run,omitempty"`
	Journal    *storage.Stats    `json:"journal,omitempty"`
	DiskBytes  int64             `json:"disk_usage_bytes,omitempty"`
	Config     map[string]any    `json:"config"`
}

type corpusStatus struct {
	Directories []string `json:"directories"`
	Stale       bool     `json:"stale"`
	Changes     int      `json:"changes,omitempty"`
	LastChange  string   `json:"last_change,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := s.config
	resp := statusResponse{
		State:  s.handles.State().String(),
		Corpus: corpusStatus{Directories: cfg.Corpus.Directories},
		Config: map[string]any{
			"embedding_provider":  cfg.Embedding.Provider,
			"generation_provider": cfg.Generation.Provider,
			"pooling":             cfg.Embedding.Pooling,
			"normalize":           cfg.Embedding.NormalizeOrDefault(),
			"chunk_size":          cfg.Retrieval.ChunkSize,
			"chunk_overlap":       cfg.Retrieval.OverlapOrDefault(),
			"top_k":               cfg.Retrieval.TopK,
			"max_answer_length":   cfg.Retrieval.MaxAnswerLength,
		},
	}
	if err := s.handles.Err(); err != nil {
		// Details stay in the startup log.
		resp.Error = models.ErrorTag(err)
	}
	if store := s.engine.Store(); store != nil {
		resp.Published = true
		resp.Chunks = store.Len()
		resp.Dimensions = store.Dimensions()
	}
	if s.stale != nil {
		stale, n, last := s.stale.Stale()
		resp.Corpus.Stale = stale
		resp.Corpus.Changes = n
		if last != nil {
			resp.Corpus.LastChange = last.Path
		}
	}
	if s.journal != nil {
		run, err := s.journal.LastRun(ctx)
		if err != nil {
			s.logger.Warn("status: last run failed", zap.Error(err))
		}
		resp.LastRun = run
		stats, err := s.journal.Stats(ctx)
		if err != nil {
			s.logger.Warn("status: journal stats failed", zap.Error(err))
		} else {
			resp.Journal = &stats
		}
	}
	if !cfg.Storage.Disabled {
		if n, err := storage.SizeOnDisk(cfg.Storage.DatabasePath); err == nil {
			resp.DiskBytes = n
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondTagged maps the error taxonomy onto status codes for the JSON API.
// The body carries a fixed message and the tag; the cause is only logged.
func (s *Server) respondTagged(w http.ResponseWriter, err error) {
	status, message := http.StatusInternalServerError, askFailure
	switch {
	case errors.Is(err, models.ErrInvalidQuery):
		status, message = http.StatusBadRequest, "Invalid query"
	case errors.Is(err, models.ErrModelsNotReady):
		status, message = http.StatusServiceUnavailable, "Models not ready"
	}
	s.respondJSON(w, status, map[string]string{"error": message, "error_tag": models.ErrorTag(err)})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
