package api

import (
	"encoding/json"
	"net/http"

	"messagely/auth"
	"messagely/domain"
	apperrors "messagely/errors"
	"messagely/services"
)

type registerResponse struct {
	Token services.Token `json:"token"`
	User  domain.Profile `json:"user"`
}

// handleRegister creates the account and returns the initial session token;
// registering logs the user in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	profile, token, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, registerResponse{Token: token, User: profile})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token services.Token `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
