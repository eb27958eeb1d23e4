//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"messagely/domain"
	apperrors "messagely/errors"
)

type IMessageRepository interface {
	// CreateMessage persists a new message with a generated id,
	// sent_at = now and read_at = null.
	CreateMessage(ctx context.Context, from, to, body string) (domain.Message, error)
	GetMessage(ctx context.Context, id string) (domain.Message, error)
	// MarkRead sets read_at = at only if it is still null and returns the
	// resulting row. Already-read messages come back unchanged, not as an
	// error; concurrent callers all observe the same timestamp.
	MarkRead(ctx context.Context, id string, at time.Time) (domain.Message, error)
	// ListFrom / ListTo return the user's sent / received messages in
	// reverse-chronological order by sent_at.
	ListFrom(ctx context.Context, username string) ([]domain.Message, error)
	ListTo(ctx context.Context, username string) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) IMessageRepository {
	return &MessageRepository{db: db, log: log}
}

func messageKey(id string) []byte {
	return []byte("msg:" + id)
}

// indexPrefix is the scan range for one user's index, e.g. "from:005:alice:".
// The username segment is length-prefixed so a name containing the separator
// cannot fall inside another user's range.
func indexPrefix(kind, username string) []byte {
	return []byte(fmt.Sprintf("%s:%03d:%s:", kind, len(username), username))
}

// indexKey builds the per-user scan keys, e.g. "from:005:alice:{ts}:{id}".
// The 19-digit zero padding keeps lexicographical order equal to time order,
// and the uuid tail disambiguates same-nanosecond sends.
func indexKey(kind, username string, sentAt time.Time, id string) []byte {
	return append(indexPrefix(kind, username), fmt.Sprintf("%019d:%s", sentAt.UnixNano(), id)...)
}

func (m *MessageRepository) CreateMessage(ctx context.Context, from, to, body string) (domain.Message, error) {
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
	data, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, apperrors.Internal(err)
	}

	// Row and both index keys land in one transaction; a failure leaves no
	// partial message.
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(msg.ID), data); err != nil {
			return err
		}
		if err := txn.Set(indexKey("from", from, msg.SentAt, msg.ID), []byte(msg.ID)); err != nil {
			return err
		}
		return txn.Set(indexKey("to", to, msg.SentAt, msg.ID), []byte(msg.ID))
	})
	if err != nil {
		return domain.Message{}, apperrors.Internal(err)
	}
	return msg, nil
}

func (m *MessageRepository) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, apperrors.Internal(err)
	}

	var msg domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		return readMessage(txn, id, &msg)
	})
	if err != nil {
		return domain.Message{}, classify(err, apperrors.ErrMessageNotFound)
	}
	return msg, nil
}

// MarkRead performs the conditional null -> timestamp update inside a single
// transaction. Badger aborts conflicting transactions, so when two calls
// race, the retry re-reads the winner's read_at and returns it unchanged.
func (m *MessageRepository) MarkRead(ctx context.Context, id string, at time.Time) (domain.Message, error) {
	var msg domain.Message
	for {
		if err := ctx.Err(); err != nil {
			return domain.Message{}, apperrors.Internal(err)
		}

		err := m.db.Update(func(txn *badger.Txn) error {
			if err := readMessage(txn, id, &msg); err != nil {
				return err
			}
			if msg.ReadAt != nil {
				return nil
			}
			msg.ReadAt = &at
			data, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			return txn.Set(messageKey(id), data)
		})
		if stderrors.Is(err, badger.ErrConflict) {
			m.log.Debug("markRead conflict, retrying", "id", id)
			continue
		}
		if err != nil {
			return domain.Message{}, classify(err, apperrors.ErrMessageNotFound)
		}
		return msg, nil
	}
}

func (m *MessageRepository) ListFrom(ctx context.Context, username string) ([]domain.Message, error) {
	return m.list(ctx, "from", username)
}

func (m *MessageRepository) ListTo(ctx context.Context, username string) ([]domain.Message, error) {
	return m.list(ctx, "to", username)
}

// list walks an index prefix backwards so the newest sent_at comes first,
// resolving each id against the message rows in the same view.
func (m *MessageRepository) list(ctx context.Context, kind, username string) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Internal(err)
	}

	prefix := indexPrefix(kind, username)
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the whole prefix range, then walk down.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var id string
			if err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}
			var msg domain.Message
			if err := readMessage(txn, id, &msg); err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return messages, nil
}

func readMessage(txn *badger.Txn, id string, out *domain.Message) error {
	item, err := txn.Get(messageKey(id))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}
