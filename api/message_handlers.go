package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"messagely/auth"
	"messagely/domain"
	apperrors "messagely/errors"
)

type messageResponse struct {
	Message domain.MessageDetail `json:"message"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req auth.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	detail, err := s.messages.Send(r.Context(), bearerToken(r), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, messageResponse{Message: detail})
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	detail, err := s.messages.Get(r.Context(), bearerToken(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: detail})
}

type readResponse struct {
	Message readBody `json:"message"`
}

type readBody struct {
	ID     string     `json:"id"`
	ReadAt *time.Time `json:"read_at"`
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	msg, err := s.messages.MarkRead(r.Context(), bearerToken(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, readResponse{Message: readBody{ID: msg.ID, ReadAt: msg.ReadAt}})
}
