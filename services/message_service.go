package services

import (
	"context"
	"log/slog"
	"time"

	"messagely/auth"
	"messagely/domain"
	apperrors "messagely/errors"
	"messagely/moderation"
	"messagely/repositories"
)

type IMessageService interface {
	// Send creates a message from the caller to req.ToUsername. A
	// from_username differing from the token identity is Forbidden.
	Send(ctx context.Context, token string, req auth.SendRequest) (domain.MessageDetail, error)
	// Get returns the hydrated message; only the two participants may see it.
	Get(ctx context.Context, token, id string) (domain.MessageDetail, error)
	// MarkRead flips read_at exactly once; only the recipient may call it.
	MarkRead(ctx context.Context, token, id string) (domain.Message, error)
	// SentBy / ReceivedBy list the user's own messages, newest first.
	SentBy(ctx context.Context, token, username string) ([]domain.MessageDetail, error)
	ReceivedBy(ctx context.Context, token, username string) ([]domain.MessageDetail, error)
}

// MessageService guards every message operation: it resolves the caller's
// identity from the token first, checks ownership next, and only then
// touches or returns store data. Authorization failures therefore never
// leave partial state.
type MessageService struct {
	users     repositories.IUserRepository
	messages  repositories.IMessageRepository
	issuer    *auth.Issuer
	moderator *moderation.Moderator
	log       *slog.Logger
}

// NewMessageService wires the guard. moderator may be nil, which disables
// the censor screen.
func NewMessageService(
	users repositories.IUserRepository,
	messages repositories.IMessageRepository,
	issuer *auth.Issuer,
	moderator *moderation.Moderator,
	log *slog.Logger,
) IMessageService {
	return &MessageService{
		users:     users,
		messages:  messages,
		issuer:    issuer,
		moderator: moderator,
		log:       log,
	}
}

func (s *MessageService) Send(ctx context.Context, token string, req auth.SendRequest) (domain.MessageDetail, error) {
	caller, err := s.issuer.Verify(token)
	if err != nil {
		return domain.MessageDetail{}, err
	}
	if err := auth.ValidateSend(req); err != nil {
		return domain.MessageDetail{}, err
	}

	// A caller cannot send as another identity.
	from := req.FromUsername
	if from == "" {
		from = caller
	}
	if from != caller {
		return domain.MessageDetail{}, apperrors.ErrForbidden
	}

	// Both participants must resolve before anything is written.
	fromUser, err := s.users.GetUser(ctx, from)
	if err != nil {
		return domain.MessageDetail{}, err
	}
	toUser, err := s.users.GetUser(ctx, req.ToUsername)
	if err != nil {
		return domain.MessageDetail{}, err
	}

	body := req.Body
	if s.moderator != nil {
		body = s.moderator.Censor(body)
	}

	msg, err := s.messages.CreateMessage(ctx, from, req.ToUsername, body)
	if err != nil {
		return domain.MessageDetail{}, err
	}
	s.log.Info("message sent", "id", msg.ID, "from", from, "to", req.ToUsername)

	return domain.MessageDetail{Message: msg, FromUser: fromUser.Profile(), ToUser: toUser.Profile()}, nil
}

func (s *MessageService) Get(ctx context.Context, token, id string) (domain.MessageDetail, error) {
	caller, err := s.issuer.Verify(token)
	if err != nil {
		return domain.MessageDetail{}, err
	}

	// Resolve first, then check ownership, then hydrate; nothing is
	// returned before the check passes.
	msg, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		return domain.MessageDetail{}, err
	}
	if !msg.Involves(caller) {
		return domain.MessageDetail{}, apperrors.ErrForbidden
	}

	return s.hydrate(ctx, msg)
}

func (s *MessageService) MarkRead(ctx context.Context, token, id string) (domain.Message, error) {
	caller, err := s.issuer.Verify(token)
	if err != nil {
		return domain.Message{}, err
	}

	msg, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	// Only the intended recipient may mark a message read.
	if caller != msg.ToUsername {
		return domain.Message{}, apperrors.ErrForbidden
	}

	return s.messages.MarkRead(ctx, id, time.Now().UTC())
}

func (s *MessageService) SentBy(ctx context.Context, token, username string) ([]domain.MessageDetail, error) {
	return s.listFor(ctx, token, username, s.messages.ListFrom)
}

func (s *MessageService) ReceivedBy(ctx context.Context, token, username string) ([]domain.MessageDetail, error) {
	return s.listFor(ctx, token, username, s.messages.ListTo)
}

func (s *MessageService) listFor(
	ctx context.Context,
	token, username string,
	list func(context.Context, string) ([]domain.Message, error),
) ([]domain.MessageDetail, error) {
	caller, err := s.issuer.Verify(token)
	if err != nil {
		return nil, err
	}
	// A user may only list their own messages.
	if caller != username {
		return nil, apperrors.ErrForbidden
	}

	messages, err := list(ctx, username)
	if err != nil {
		return nil, err
	}

	details := make([]domain.MessageDetail, 0, len(messages))
	profiles := make(map[string]domain.Profile)
	for _, msg := range messages {
		detail := domain.MessageDetail{Message: msg}
		if detail.FromUser, err = s.profile(ctx, profiles, msg.FromUsername); err != nil {
			return nil, err
		}
		if detail.ToUser, err = s.profile(ctx, profiles, msg.ToUsername); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *MessageService) hydrate(ctx context.Context, msg domain.Message) (domain.MessageDetail, error) {
	profiles := make(map[string]domain.Profile)
	detail := domain.MessageDetail{Message: msg}
	var err error
	if detail.FromUser, err = s.profile(ctx, profiles, msg.FromUsername); err != nil {
		return domain.MessageDetail{}, err
	}
	if detail.ToUser, err = s.profile(ctx, profiles, msg.ToUsername); err != nil {
		return domain.MessageDetail{}, err
	}
	return detail, nil
}

// profile resolves a username once per call tree; repeated counterparts in a
// list reuse the cached entry.
func (s *MessageService) profile(ctx context.Context, cache map[string]domain.Profile, username string) (domain.Profile, error) {
	if p, ok := cache[username]; ok {
		return p, nil
	}
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}
	p := user.Profile()
	cache[username] = p
	return p, nil
}
