// Package httpapi exposes the highlight catalog over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/metrics"
	"tennishighlights/internal/service"
)

const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers.
type Server struct {
	catalog      *service.Catalog
	apiKeys      []string
	storeTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *log.Logger
}

// NewServer creates a new Server.
func NewServer(catalog *service.Catalog, apiKeys []string, storeTimeout time.Duration, m *metrics.Metrics, logger *log.Logger) *Server {
	if storeTimeout <= 0 {
		storeTimeout = 10 * time.Second
	}
	return &Server{
		catalog:      catalog,
		apiKeys:      apiKeys,
		storeTimeout: storeTimeout,
		metrics:      m,
		logger:       logger,
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(Instrument(s.metrics))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(APIKey(s.apiKeys))

		r.Get("/video-info", s.handleVideoInfo)
		r.Post("/add-highlight", s.handleAddHighlight)

		r.Get("/highlights", s.handleListHighlights)
		r.Delete("/highlights/{videoID}", s.handleDeleteHighlight)

		r.Get("/today", s.handleToday)
		r.Post("/today/rotate", s.handleRotateToday)
	})
	return r
}

type videoInfoResponse struct {
	VideoID   string  `json:"video_id"`
	Title     string  `json:"title"`
	Channel   string  `json:"channel"`
	Duration  float64 `json:"duration"`
	ViewCount int64   `json:"view_count"`
	Thumbnail *string `json:"thumbnail"`
}

func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	videoURL := r.URL.Query().Get("url")
	if videoURL == "" {
		writeError(w, http.StatusBadRequest, "Missing url query parameter")
		return
	}

	h, err := s.catalog.Lookup(r.Context(), videoURL)
	if err != nil {
		s.writeExtractionError(w, err)
		return
	}

	resp := videoInfoResponse{
		VideoID:   h.VideoID,
		Title:     h.Title,
		Channel:   h.Channel,
		Duration:  h.Duration,
		ViewCount: h.ViewCount,
	}
	if h.Thumbnail != "" {
		resp.Thumbnail = &h.Thumbnail
	}
	writeJSON(w, http.StatusOK, resp)
}

type addHighlightResponse struct {
	Success bool             `json:"success"`
	Result  domain.Highlight `json:"result"`
	Message string           `json:"message"`
}

func (s *Server) handleAddHighlight(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	h, err := domain.ParseHighlight(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()
	if err := s.catalog.Add(ctx, h); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addHighlightResponse{
		Success: true,
		Result:  h,
		Message: "Highlight added successfully",
	})
}

func (s *Server) handleListHighlights(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	all, err := s.catalog.List(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if all == nil {
		all = []domain.Highlight{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleDeleteHighlight(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	videoID := chi.URLParam(r, "videoID")
	if err := s.catalog.Delete(ctx, videoID); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Highlight deleted successfully",
	})
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	h, err := s.catalog.Today(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleRotateToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	h, err := s.catalog.ChooseAnother(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.storeTimeout)
}

func (s *Server) writeExtractionError(w http.ResponseWriter, err error) {
	e, ok := domain.AsExtractionError(err)
	if !ok {
		s.logger.Printf("unexpected extraction error: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not process video")
		return
	}

	switch e.Kind {
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, e.Message)
	case domain.KindUnsupported:
		status := http.StatusBadRequest
		if e.Reason == domain.ReasonAgeRestricted || e.Reason == domain.ReasonUnavailable {
			status = http.StatusForbidden
		}
		writeError(w, status, e.Message)
	default:
		writeError(w, http.StatusInternalServerError, "Could not process video")
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoHighlights):
		writeError(w, http.StatusNotFound, "No Highlights in Database!")
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, validationMessage(err))
	default:
		s.logger.Printf("Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Database error")
	}
}

func validationMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return "Invalid " + verr.Field + ": " + verr.Reason
	}
	return "Invalid highlight data"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
