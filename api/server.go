// Package api exposes collision queries over HTTP with JSON bodies. Every
// response uses the same envelope: {"success": bool, "data": ..., "error": ...}.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/asaidimu/go-collisions/core/criteria"
	"github.com/asaidimu/go-collisions/core/dataset"
	"github.com/asaidimu/go-collisions/core/explorer"
	"github.com/asaidimu/go-collisions/core/interpreter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Error codes reported in APIError.Code.
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeInvalidCriteria = "INVALID_CRITERIA"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// APIResponse represents the consistent envelope pattern for all API responses
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError represents error details in API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ParseRequest is the body of POST /api/parse.
type ParseRequest struct {
	Text string `json:"text"`
}

// DataResponse is the payload of POST /api/data.
type DataResponse struct {
	QueryID  string           `json:"query_id"`
	Criteria map[string]any   `json:"criteria"`
	Count    int              `json:"count"`
	Data     []dataset.Record `json:"data"`
}

// Server routes HTTP requests to an Explorer.
type Server struct {
	explorer *explorer.Explorer
	logger   *zap.Logger
	router   chi.Router
}

// NewServer creates a new API server instance
func NewServer(x *explorer.Explorer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		explorer: x,
		logger:   logger,
		router:   chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)
	s.router.Use(corsMiddleware)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/filters", s.handleFilters)
		r.Post("/data", s.handleData)
		r.Post("/parse", s.handleParse)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeSuccessResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rows":   s.explorer.Dataset().Len(),
	})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	s.writeSuccessResponse(w, http.StatusOK, s.explorer.Options())
}

// handleData evaluates the criteria in the request body. Besides the
// criteria keys the body may carry "limit" to cap the returned rows.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := s.parseJSONBody(r, &body); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body", err.Error())
		return
	}

	limit := 0
	if raw, ok := body["limit"]; ok && raw != nil {
		n, err := dataset.ToInt64(raw)
		if err != nil || n < 0 {
			s.writeErrorResponse(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid limit", "limit must be a non-negative integer")
			return
		}
		limit = int(n)
	}

	res, err := s.explorer.Query(r.Context(), explorer.Request{
		Criteria: criteria.FromMap(body),
		Limit:    limit,
	})
	if err != nil {
		if errors.Is(err, criteria.ErrInvalidYear) {
			s.writeErrorResponse(w, http.StatusBadRequest, ErrCodeInvalidCriteria, "Invalid criteria", err.Error())
			return
		}
		s.logger.Error("Query failed", zap.Error(err))
		s.writeErrorResponse(w, http.StatusInternalServerError, ErrCodeInternal, "Query failed", err.Error())
		return
	}

	records := res.Records
	if records == nil {
		records = []dataset.Record{}
	}
	s.writeSuccessResponse(w, http.StatusOK, DataResponse{
		QueryID:  res.ID,
		Criteria: res.Criteria.Map(),
		Count:    res.Total,
		Data:     records,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := s.parseJSONBody(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body", err.Error())
		return
	}
	s.writeSuccessResponse(w, http.StatusOK, interpreter.Parse(req.Text).Map())
}

func (s *Server) parseJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(v)
}

// writeSuccessResponse writes a successful API response
func (s *Server) writeSuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	s.writeJSONResponse(w, statusCode, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeErrorResponse writes an error API response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, code, message, details string) {
	s.writeJSONResponse(w, statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
