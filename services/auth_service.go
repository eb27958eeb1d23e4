package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"messagely/auth"
	"messagely/domain"
	apperrors "messagely/errors"
	"messagely/repositories"
)

type IAuthService interface {
	// Register creates the account and logs the user in.
	Register(ctx context.Context, req auth.RegisterRequest) (domain.Profile, Token, error)
	// Login authenticates and issues a session token, touching
	// last_login_at on success.
	Login(ctx context.Context, username, password string) (Token, error)
}

type Token string

type AuthService struct {
	users  repositories.IUserRepository
	hasher auth.Hasher
	issuer *auth.Issuer
	log    *slog.Logger
}

func NewAuthService(users repositories.IUserRepository, hasher auth.Hasher, issuer *auth.Issuer, log *slog.Logger) IAuthService {
	return &AuthService{users: users, hasher: hasher, issuer: issuer, log: log}
}

func (s *AuthService) Register(ctx context.Context, req auth.RegisterRequest) (domain.Profile, Token, error) {
	// Business rules first, before any expensive cryptographic operation.
	if err := auth.ValidateRegister(req); err != nil {
		return domain.Profile{}, "", err
	}

	// Hashing happens here so the repository never sees a plaintext password.
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return domain.Profile{}, "", apperrors.Internal(err)
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
	})
	if err != nil {
		return domain.Profile{}, "", err // propagates Conflict on a taken username
	}

	// Registering logs the user in.
	token, err := s.issuer.Issue(user.Username)
	if err != nil {
		return domain.Profile{}, "", apperrors.Internal(err)
	}
	s.touchLogin(ctx, user.Username)

	return user.Profile(), Token(token), nil
}

// Authenticate checks a username/password pair. The outward signal is a
// single Unauthorized error whether the user is unknown or the password is
// wrong; the unknown-user path still burns a full hash comparison so the
// two cases cost the same.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) error {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if stderrors.Is(err, apperrors.ErrUserNotFound) {
			s.hasher.CompareDummy(password)
			return apperrors.ErrInvalidCredentials
		}
		return apperrors.ErrInternal
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (Token, error) {
	if err := s.Authenticate(ctx, username, password); err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(username)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	s.touchLogin(ctx, username)

	return Token(token), nil
}

// touchLogin records last_login_at. The stamp is advisory; a failure is
// logged and does not fail the login itself.
func (s *AuthService) touchLogin(ctx context.Context, username string) {
	if err := s.users.TouchLogin(ctx, username, time.Now().UTC()); err != nil {
		s.log.Warn("failed to update last_login_at", "username", username, "error", err)
	}
}
