package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"messagely/domain"
)

type usersResponse struct {
	Users []domain.Profile `json:"users"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.users.List(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	s.writeJSON(w, http.StatusOK, usersResponse{Users: profiles})
}

type userResponse struct {
	User domain.Profile `json:"user"`
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := s.users.Get(r.Context(), bearerToken(r), chi.URLParam(r, "username"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, userResponse{User: profile})
}

type messagesResponse struct {
	Messages []domain.MessageDetail `json:"messages"`
}

func (s *Server) handleMessagesFrom(w http.ResponseWriter, r *http.Request) {
	details, err := s.messages.SentBy(r.Context(), bearerToken(r), chi.URLParam(r, "username"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if details == nil {
		details = []domain.MessageDetail{}
	}
	s.writeJSON(w, http.StatusOK, messagesResponse{Messages: details})
}

func (s *Server) handleMessagesTo(w http.ResponseWriter, r *http.Request) {
	details, err := s.messages.ReceivedBy(r.Context(), bearerToken(r), chi.URLParam(r, "username"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if details == nil {
		details = []domain.MessageDetail{}
	}
	s.writeJSON(w, http.StatusOK, messagesResponse{Messages: details})
}
