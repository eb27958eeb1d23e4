package repositories

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"messagely/domain"
	apperrors "messagely/errors"
)

func forEachMessageRepo(t *testing.T, fn func(t *testing.T, repo IMessageRepository)) {
	t.Run("badger", func(t *testing.T) {
		db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
		require.NoError(t, err)
		defer db.Close()
		fn(t, NewMessageRepository(db, slog.Default()))
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryMessageRepository())
	})
}

func Test_Create_And_Get_Message(t *testing.T) {
	forEachMessageRepo(t, func(t *testing.T, repo IMessageRepository) {
		req := require.New(t)
		ctx := context.Background()

		created, err := repo.CreateMessage(ctx, "alice", "bob", "hi")
		req.NoError(err)
		req.NotEmpty(created.ID)
		req.False(created.SentAt.IsZero())
		req.Nil(created.ReadAt)

		fetched, err := repo.GetMessage(ctx, created.ID)
		req.NoError(err)
		req.Equal("alice", fetched.FromUsername)
		req.Equal("bob", fetched.ToUsername)
		req.Equal("hi", fetched.Body)
		req.Nil(fetched.ReadAt)
	})
}

func Test_Get_Unknown_Message(t *testing.T) {
	forEachMessageRepo(t, func(t *testing.T, repo IMessageRepository) {
		req := require.New(t)

		_, err := repo.GetMessage(context.Background(), "no-such-id")
		req.ErrorIs(err, apperrors.ErrMessageNotFound)
	})
}

func Test_List_Reverse_Chronological(t *testing.T) {
	forEachMessageRepo(t, func(t *testing.T, repo IMessageRepository) {
		req := require.New(t)
		ctx := context.Background()

		first, err := repo.CreateMessage(ctx, "alice", "bob", "first")
		req.NoError(err)
		time.Sleep(2 * time.Millisecond)
		second, err := repo.CreateMessage(ctx, "alice", "clara", "second")
		req.NoError(err)
		time.Sleep(2 * time.Millisecond)
		third, err := repo.CreateMessage(ctx, "bob", "alice", "third")
		req.NoError(err)

		sent, err := repo.ListFrom(ctx, "alice")
		req.NoError(err)
		req.Equal([]string{second.ID, first.ID}, ids(sent))

		received, err := repo.ListTo(ctx, "alice")
		req.NoError(err)
		req.Equal([]string{third.ID}, ids(received))

		// A stranger to every message sees nothing.
		none, err := repo.ListFrom(ctx, "mallory")
		req.NoError(err)
		req.Empty(none)
	})
}

// A username containing the key separator must not fall inside another
// user's scan range.
func Test_List_Isolates_Separator_Usernames(t *testing.T) {
	forEachMessageRepo(t, func(t *testing.T, repo IMessageRepository) {
		req := require.New(t)
		ctx := context.Background()

		plain, err := repo.CreateMessage(ctx, "alice", "bob", "from alice")
		req.NoError(err)
		nested, err := repo.CreateMessage(ctx, "alice:x", "bob", "from alice:x")
		req.NoError(err)
		inbound, err := repo.CreateMessage(ctx, "bob", "alice:x", "to alice:x")
		req.NoError(err)

		sent, err := repo.ListFrom(ctx, "alice")
		req.NoError(err)
		req.Equal([]string{plain.ID}, ids(sent))

		nestedSent, err := repo.ListFrom(ctx, "alice:x")
		req.NoError(err)
		req.Equal([]string{nested.ID}, ids(nestedSent))

		received, err := repo.ListTo(ctx, "alice")
		req.NoError(err)
		req.Empty(received)

		nestedReceived, err := repo.ListTo(ctx, "alice:x")
		req.NoError(err)
		req.Equal([]string{inbound.ID}, ids(nestedReceived))
	})
}

// Equal timestamps order by id descending, matching the badger scan.
func Test_Memory_List_Breaks_Ties_On_ID(t *testing.T) {
	req := require.New(t)
	repo := NewMemoryMessageRepository()

	sentAt := time.Now().UTC()
	for _, id := range []string{"b", "a", "c"} {
		repo.messages[id] = domain.Message{
			ID:           id,
			FromUsername: "alice",
			ToUsername:   "bob",
			Body:         "tied",
			SentAt:       sentAt,
		}
	}

	sent, err := repo.ListFrom(context.Background(), "alice")
	req.NoError(err)
	req.Equal([]string{"c", "b", "a"}, ids(sent))
}

func ids(messages []domain.Message) []string {
	return lo.Map(messages, func(m domain.Message, _ int) string { return m.ID })
}

func Test_MarkRead_Idempotent(t *testing.T) {
	forEachMessageRepo(t, func(t *testing.T, repo IMessageRepository) {
		req := require.New(t)
		ctx := context.Background()

		msg, err := repo.CreateMessage(ctx, "alice", "bob", "hi")
		req.NoError(err)

		firstAt := time.Now().UTC()
		first, err := repo.MarkRead(ctx, msg.ID, firstAt)
		req.NoError(err)
		req.NotNil(first.ReadAt)
		req.True(first.ReadAt.Equal(firstAt))

		// The second call is a no-op returning the original timestamp.
		second, err := repo.MarkRead(ctx, msg.ID, firstAt.Add(time.Hour))
		req.NoError(err)
		req.NotNil(second.ReadAt)
		req.True(second.ReadAt.Equal(firstAt))

		_, err = repo.MarkRead(ctx, "no-such-id", firstAt)
		req.ErrorIs(err, apperrors.ErrMessageNotFound)
	})
}

// Concurrent duplicate calls must all observe a single read_at value.
func Test_MarkRead_Concurrent(t *testing.T) {
	forEachMessageRepo(t, func(t *testing.T, repo IMessageRepository) {
		req := require.New(t)
		ctx := context.Background()

		msg, err := repo.CreateMessage(ctx, "alice", "bob", "hi")
		req.NoError(err)

		const callers = 8
		results := make([]domain.Message, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				// Distinct timestamps per caller; only one may win.
				res, err := repo.MarkRead(ctx, msg.ID, time.Now().UTC().Add(time.Duration(i)*time.Microsecond))
				require.NoError(t, err)
				results[i] = res
			}(i)
		}
		wg.Wait()

		winner := results[0].ReadAt
		req.NotNil(winner)
		for _, res := range results[1:] {
			req.NotNil(res.ReadAt)
			req.True(res.ReadAt.Equal(*winner))
		}
	})
}
