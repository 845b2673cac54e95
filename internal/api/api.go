package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/joescharf/yr/internal/history"
	"github.com/joescharf/yr/internal/metrics"
	"github.com/joescharf/yr/internal/models"
	"github.com/joescharf/yr/internal/reviewer"
	"github.com/joescharf/yr/internal/store"
)

// Server provides the REST API handlers.
type Server struct {
	recorder *history.Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewServer creates a new API server. The logger may be nil.
func NewServer(rec *history.Recorder, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		recorder: rec,
		metrics:  m,
		logger:   logger,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/info", s.info)

	mux.HandleFunc("GET /api/v1/reviews", s.listReviews)
	mux.HandleFunc("POST /api/v1/reviews", s.createReview)
	mux.HandleFunc("DELETE /api/v1/reviews", s.clearReviews)
	mux.HandleFunc("GET /api/v1/reviews/{year}", s.reviewYear)
	mux.HandleFunc("GET /api/v1/reviews/id/{id}", s.getReview)

	mux.HandleFunc("GET /api/v1/stats", s.stats)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return s.logRequests(corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
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

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeReviewError maps reviewer failures to client errors.
func writeReviewError(w http.ResponseWriter, err error) {
	kind := reviewer.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case reviewer.TypeKind:
		status = http.StatusBadRequest
	case reviewer.RangeKind:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": kind.String()})
}

// reviewResponse is the JSON shape of a review.
type reviewResponse struct {
	ID        string `json:"id,omitempty"`
	Year      int64  `json:"year"`
	Review    string `json:"review"`
	Special   bool   `json:"special"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toReviewResponse(r *models.Review) reviewResponse {
	out := reviewResponse{
		ID:      r.ID,
		Year:    r.Year,
		Review:  r.Result,
		Special: r.Special,
		Source:  string(r.Source),
	}
	if !r.CreatedAt.IsZero() {
		out.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	return out
}

// --- Reviews ---

func (s *Server) reviewYear(w http.ResponseWriter, r *http.Request) {
	year, err := reviewer.ParseYear(r.PathValue("year"))
	if err != nil {
		s.metrics.Observe(reviewer.KindOf(err).String())
		writeReviewError(w, err)
		return
	}
	s.review(w, r, year)
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Year any `json:"year"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	s.review(w, r, body.Year)
}

func (s *Server) review(w http.ResponseWriter, r *http.Request, v any) {
	rec, err := s.recorder.Review(r.Context(), v, models.ReviewSourceAPI)
	if err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(rec))
}

func (s *Server) historyStore(w http.ResponseWriter) store.Store {
	st := s.recorder.Store()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "review history is disabled")
	}
	return st
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	st := s.historyStore(w)
	if st == nil {
		return
	}

	source, err := models.ParseSourceFilter(r.URL.Query().Get("source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := store.ReviewListFilter{Source: source}
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid year: %q", v))
			return
		}
		filter.Year = &year
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %q", v))
			return
		}
		filter.Limit = limit
	}

	reviews, err := st.ListReviews(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]reviewResponse, len(reviews))
	for i, rv := range reviews {
		out[i] = toReviewResponse(rv)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	st := s.historyStore(w)
	if st == nil {
		return
	}
	rv, err := st.GetReview(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(rv))
}

func (s *Server) clearReviews(w http.ResponseWriter, r *http.Request) {
	st := s.historyStore(w)
	if st == nil {
		return
	}
	n, err := st.DeleteReviews(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// --- Stats ---

type resultCountResponse struct {
	Review  string `json:"review"`
	Special bool   `json:"special"`
	Count   int    `json:"count"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st := s.historyStore(w)
	if st == nil {
		return
	}
	counts, err := st.ReviewStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]resultCountResponse, len(counts))
	for i, c := range counts {
		out[i] = resultCountResponse{Review: c.Result, Special: c.Special, Count: c.Count}
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Info ---

type infoResponse struct {
	Present  int               `json:"present"`
	Defaults []string          `json:"defaults"`
	Specials map[string]string `json:"specials"`
	History  bool              `json:"history"`
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	specials := make(map[string]string)
	for y, text := range reviewer.Specials() {
		specials[strconv.Itoa(y)] = text
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Present:  reviewer.Present,
		Defaults: reviewer.Defaults(),
		Specials: specials,
		History:  s.recorder.Recording(),
	})
}
