package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"messagely/domain"
	apperrors "messagely/errors"
)

// MemoryUserRepository implements IUserRepository on plain maps, behind the
// same contract as the badger implementation. Used by tests and by
// STORE_BACKEND=memory.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
	order []string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, apperrors.Internal(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return domain.User{}, apperrors.ErrUserAlreadyExists
	}
	user.JoinedAt = time.Now().UTC()
	r.users[user.Username] = user
	r.order = append(r.order, user.Username)
	return user, nil
}

func (r *MemoryUserRepository) GetUser(ctx context.Context, username string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, apperrors.Internal(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	user, exists := r.users[username]
	if !exists {
		return domain.User{}, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Internal(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.order))
	for _, username := range r.order {
		users = append(users, r.users[username])
	}
	return users, nil
}

func (r *MemoryUserRepository) TouchLogin(ctx context.Context, username string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Internal(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	user, exists := r.users[username]
	if !exists {
		return apperrors.ErrUserNotFound
	}
	user.LastLoginAt = &at
	r.users[username] = user
	return nil
}

// MemoryMessageRepository is the in-memory twin of the badger message store.
// Every mutation happens under one mutex hold, so the conditional read_at
// update is race-safe by construction.
type MemoryMessageRepository struct {
	mu       sync.Mutex
	messages map[string]domain.Message
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{messages: make(map[string]domain.Message)}
}

func (r *MemoryMessageRepository) CreateMessage(ctx context.Context, from, to, body string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, apperrors.Internal(err)
	}

	msg := domain.Message{
		ID:           uuid.New().String(),
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       time.Now().UTC(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.ID] = msg
	return msg, nil
}

func (r *MemoryMessageRepository) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, apperrors.Internal(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	msg, exists := r.messages[id]
	if !exists {
		return domain.Message{}, apperrors.ErrMessageNotFound
	}
	return msg, nil
}

func (r *MemoryMessageRepository) MarkRead(ctx context.Context, id string, at time.Time) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, apperrors.Internal(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	msg, exists := r.messages[id]
	if !exists {
		return domain.Message{}, apperrors.ErrMessageNotFound
	}
	if msg.ReadAt == nil {
		msg.ReadAt = &at
		r.messages[id] = msg
	}
	return msg, nil
}

func (r *MemoryMessageRepository) ListFrom(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, func(m domain.Message) bool { return m.FromUsername == username })
}

func (r *MemoryMessageRepository) ListTo(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, func(m domain.Message) bool { return m.ToUsername == username })
}

func (r *MemoryMessageRepository) list(ctx context.Context, match func(domain.Message) bool) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Internal(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var messages []domain.Message
	for _, msg := range r.messages {
		if match(msg) {
			messages = append(messages, msg)
		}
	}
	// Same contract as the badger reverse scan: newest first, id descending
	// on equal timestamps.
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].SentAt.Equal(messages[j].SentAt) {
			return messages[i].ID > messages[j].ID
		}
		return messages[i].SentAt.After(messages[j].SentAt)
	})
	return messages, nil
}
