// Package chi exposes the shopping assistant over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domchat "github.com/kailas-cloud/smartshopper/internal/domain/chat"
	healthuc "github.com/kailas-cloud/smartshopper/internal/usecase/health"
)

const welcomeMessage = "Welcome to SmartShopper AI API"

// Server holds the HTTP handlers.
type Server struct {
	search        SearchService
	chat          ChatService
	visual        VisualService
	health        HealthService
	version       string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search SearchService,
	chat ChatService,
	visual VisualService,
	health HealthService,
	version string,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:        search,
		chat:          chat,
		visual:        visual,
		health:        health,
		version:       version,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api", s.APIInfo)
	r.Post("/api/search", s.Search)
	r.Post("/api/chat", s.Chat)
	r.Post("/api/visual-search", s.VisualSearch)
	r.Post("/api/visual-search/text", s.VisualSearchText)
	r.Get("/api/products/{id}", s.GetProduct)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})
}

// APIInfo handles GET /api.
func (s *Server) APIInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, APIInfo{Message: welcomeMessage, Version: s.version})
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := descriptorFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	set, err := s.search.Search(r.Context(), d)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponseFrom(set))
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "message is required")
		return
	}
	if len(req.Message) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			"message must be at most "+strconv.Itoa(MaxMessageLength)+" bytes")
		return
	}

	reply := s.chat.Chat(r.Context(), domchat.Turn{
		Message:   req.Message,
		Context:   req.Context,
		SessionID: req.SessionID,
	})
	writeJSON(w, http.StatusOK, reply)
}

// VisualSearch handles POST /api/visual-search (multipart, field "image").
func (s *Server) VisualSearch(w http.ResponseWriter, r *http.Request) {
	if !s.visual.Available() {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeEmbeddingUnavailable, "cannot process image")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "image too large")
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "expected multipart form with an image field")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "image file is required")
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "failed to read image")
		return
	}

	topK, threshold, err := parseFormKnobs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}
	category := r.FormValue("category")
	analyze, _ := strconv.ParseBool(r.FormValue("analyze"))

	opts, err := visualOptions(topK, threshold, &category, analyze)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	res, err := s.visual.SearchByImage(r.Context(), image, opts)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visualResponseFrom(res))
}

// VisualSearchText handles POST /api/visual-search/text.
func (s *Server) VisualSearchText(w http.ResponseWriter, r *http.Request) {
	var req TextVisualRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "query is required")
		return
	}

	opts, err := visualOptions(req.TopK, req.Threshold, req.Category, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	res, err := s.visual.SearchByText(r.Context(), req.Query, opts)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visualResponseFrom(res))
}

// GetProduct handles GET /api/products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.search.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func parseFormKnobs(r *http.Request) (*int, *float64, error) {
	var (
		topK      *int
		threshold *float64
	)
	if v := r.FormValue("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, errors.New("top_k must be an integer")
		}
		topK = &n
	}
	if v := r.FormValue("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, errors.New("threshold must be a number")
		}
		threshold = &f
	}
	return topK, threshold, nil
}
