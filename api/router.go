package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"messagely/services"
)

// Server holds the HTTP handlers over the service layer. Authorization
// decisions live in the services; handlers only move tokens and JSON.
type Server struct {
	auth     services.IAuthService
	users    services.IUserService
	messages services.IMessageService
	log      *slog.Logger
}

func NewServer(auth services.IAuthService, users services.IUserService, messages services.IMessageService, log *slog.Logger) *Server {
	return &Server{auth: auth, users: users, messages: messages, log: log}
}

// Router mounts all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Get("/users", s.handleListUsers)
	r.Get("/users/{username}", s.handleGetUser)
	r.Get("/users/{username}/messages/from", s.handleMessagesFrom)
	r.Get("/users/{username}/messages/to", s.handleMessagesTo)

	r.Post("/messages", s.handleSendMessage)
	r.Get("/messages/{id}", s.handleGetMessage)
	r.Post("/messages/{id}/read", s.handleMarkRead)

	return r
}

// bearerToken extracts the session token from the Authorization header.
// An absent header or a missing Bearer scheme yields the empty string,
// which the issuer rejects.
func bearerToken(r *http.Request) string {
	after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return after
}
