package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"cgp-hq/seqval/pkg/check"
)

var (
	errNotFound         = errors.New("resource not found")
	errMethodNotAllowed = errors.New("method not allowed")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// respondError logs err and writes it as a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int, code string) {
	requestID := middleware.GetReqID(r.Context())

	log := s.logger.InfoContext
	if status >= http.StatusInternalServerError {
		log = s.logger.ErrorContext
	}
	log(r.Context(), "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err.Error(),
	)

	writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: requestID,
	})
}

// respondCheckError maps a manifest that could not be validated to a status.
// The code is the same reason the checker recorded for the rejection.
func (s *Server) respondCheckError(w http.ResponseWriter, r *http.Request, err error) {
	reason := check.Reason(err)
	status := http.StatusBadRequest
	switch reason {
	case check.ReasonTooLarge:
		status = http.StatusRequestEntityTooLarge
	case check.ReasonCancelled:
		status = http.StatusServiceUnavailable
	case check.ReasonUnknownSchema:
		status = http.StatusUnprocessableEntity
	}
	s.respondError(w, r, err, status, reason)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
