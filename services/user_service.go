package services

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"messagely/auth"
	"messagely/domain"
	"messagely/repositories"
)

type IUserService interface {
	Get(ctx context.Context, token, username string) (domain.Profile, error)
	List(ctx context.Context, token string) ([]domain.Profile, error)
}

// UserService is the read surface of the user directory. Every call requires
// a valid session; only public profiles ever leave it.
type UserService struct {
	users  repositories.IUserRepository
	issuer *auth.Issuer
	log    *slog.Logger
}

func NewUserService(users repositories.IUserRepository, issuer *auth.Issuer, log *slog.Logger) IUserService {
	return &UserService{users: users, issuer: issuer, log: log}
}

func (s *UserService) Get(ctx context.Context, token, username string) (domain.Profile, error) {
	if _, err := s.issuer.Verify(token); err != nil {
		return domain.Profile{}, err
	}

	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

// List returns all public profiles in registration order.
func (s *UserService) List(ctx context.Context, token string) ([]domain.Profile, error) {
	if _, err := s.issuer.Verify(token); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u domain.User, _ int) domain.Profile {
		return u.Profile()
	}), nil
}
