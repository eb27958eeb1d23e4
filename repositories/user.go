//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"messagely/domain"
	apperrors "messagely/errors"
)

type IUserRepository interface {
	// CreateUser persists a new account and stamps JoinedAt. Fails with a
	// Conflict error if the username is already taken.
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	// GetUser returns the full record, including the password hash; callers
	// above the service layer only ever see the Profile subset.
	GetUser(ctx context.Context, username string) (domain.User, error)
	// ListUsers returns every account in registration order.
	ListUsers(ctx context.Context) ([]domain.User, error)
	// TouchLogin sets last_login_at. A vanished user surfaces as NotFound.
	TouchLogin(ctx context.Context, username string, at time.Time) error
}

type UserRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewUserRepository(db *badger.DB, log *slog.Logger) IUserRepository {
	return &UserRepository{db: db, log: log}
}

// diskUser is the stored shape of an account row.
type diskUser struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	JoinedAt     time.Time  `json:"joined_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

// userSeqKey orders accounts by registration time so a prefix scan returns
// them in insertion order despite the lexicographic keyspace.
func userSeqKey(joinedAt time.Time, username string) []byte {
	return []byte(fmt.Sprintf("userseq:%019d:%s", joinedAt.UnixNano(), username))
}

// CreateUser persists the account in BadgerDB. The duplicate check and both
// writes happen in one transaction, so a lost race surfaces as Conflict and
// never as a partial row.
func (u *UserRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, apperrors.Internal(err)
	}

	user.JoinedAt = time.Now().UTC()
	data, err := json.Marshal(fromUser(user))
	if err != nil {
		return domain.User{}, apperrors.Internal(err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(user.Username)
		if _, err := txn.Get(key); err == nil {
			return apperrors.ErrUserAlreadyExists
		} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(userSeqKey(user.JoinedAt, user.Username), []byte(user.Username))
	})
	if err != nil {
		return domain.User{}, classify(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

func (u *UserRepository) GetUser(ctx context.Context, username string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, apperrors.Internal(err)
	}

	var rec diskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return domain.User{}, classify(err, apperrors.ErrUserNotFound)
	}
	return toUser(rec), nil
}

// ListUsers scans the userseq index and resolves each row in the same view
// transaction.
func (u *UserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Internal(err)
	}

	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("userseq:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var username string
			if err := it.Item().Value(func(val []byte) error {
				username = string(val)
				return nil
			}); err != nil {
				return err
			}

			item, err := txn.Get(userKey(username))
			if err != nil {
				return err
			}
			var rec diskUser
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			users = append(users, toUser(rec))
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

func (u *UserRepository) TouchLogin(ctx context.Context, username string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Internal(err)
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var rec diskUser
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}
		rec.LastLoginAt = &at
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	return classify(err, apperrors.ErrUserNotFound)
}

// classify maps badger failures onto the error taxonomy: missing keys to the
// given NotFound sentinel, anything else to transient Internal.
func classify(err error, notFound *apperrors.Error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return notFound
	case apperrors.KindOf(err) != apperrors.KindInternal:
		return err
	default:
		return apperrors.Internal(err)
	}
}

func fromUser(u domain.User) diskUser {
	return diskUser{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		JoinedAt:     u.JoinedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}

func toUser(rec diskUser) domain.User {
	return domain.User{
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		Phone:        rec.Phone,
		JoinedAt:     rec.JoinedAt,
		LastLoginAt:  rec.LastLoginAt,
	}
}
