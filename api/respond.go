package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	apperrors "messagely/errors"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    apperrors.Kind `json:"kind"`
	Message string         `json:"message"`
}

// writeError maps the error taxonomy onto HTTP status codes and surfaces
// the structured {kind, message} verbatim.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.KindForbidden:
		status = http.StatusForbidden
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	}

	message := err.Error()
	var e *apperrors.Error
	if stderrors.As(err, &e) {
		message = e.Message
	}
	if status == http.StatusInternalServerError {
		// Store/transport details stay in the logs, not on the wire.
		s.log.Error("internal error", "error", err)
		message = "internal error"
	}

	s.writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: message}})
}
