package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"messagely/domain"
	apperrors "messagely/errors"
)

// forEachUserRepo runs the same contract test against both implementations.
func forEachUserRepo(t *testing.T, fn func(t *testing.T, repo IUserRepository)) {
	t.Run("badger", func(t *testing.T) {
		db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
		require.NoError(t, err)
		defer db.Close()
		fn(t, NewUserRepository(db, slog.Default()))
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryUserRepository())
	})
}

func newUser(username string) domain.User {
	return domain.User{
		Username:     username,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		FirstName:    "Test",
		LastName:     "User",
		Phone:        "+15555550100",
	}
}

func Test_Create_And_Get_User(t *testing.T) {
	forEachUserRepo(t, func(t *testing.T, repo IUserRepository) {
		req := require.New(t)
		ctx := context.Background()

		created, err := repo.CreateUser(ctx, newUser("alice"))
		req.NoError(err)
		req.False(created.JoinedAt.IsZero())
		req.Nil(created.LastLoginAt)

		fetched, err := repo.GetUser(ctx, "alice")
		req.NoError(err)
		req.Equal("alice", fetched.Username)
		req.Equal(created.PasswordHash, fetched.PasswordHash)
	})
}

func Test_Create_Duplicate_User(t *testing.T) {
	forEachUserRepo(t, func(t *testing.T, repo IUserRepository) {
		req := require.New(t)
		ctx := context.Background()

		_, err := repo.CreateUser(ctx, newUser("alice"))
		req.NoError(err)

		_, err = repo.CreateUser(ctx, newUser("alice"))
		req.ErrorIs(err, apperrors.ErrUserAlreadyExists)

		// The original row survived the failed insert.
		users, err := repo.ListUsers(ctx)
		req.NoError(err)
		req.Len(users, 1)
	})
}

func Test_Get_Unknown_User(t *testing.T) {
	forEachUserRepo(t, func(t *testing.T, repo IUserRepository) {
		req := require.New(t)

		_, err := repo.GetUser(context.Background(), "nobody")
		req.ErrorIs(err, apperrors.ErrUserNotFound)
	})
}

func Test_List_Users_Insertion_Order(t *testing.T) {
	forEachUserRepo(t, func(t *testing.T, repo IUserRepository) {
		req := require.New(t)
		ctx := context.Background()

		// Registration order intentionally differs from alphabetical order.
		for _, username := range []string{"zoe", "alice", "mallory"} {
			_, err := repo.CreateUser(ctx, newUser(username))
			req.NoError(err)
		}

		users, err := repo.ListUsers(ctx)
		req.NoError(err)
		req.Len(users, 3)
		req.Equal("zoe", users[0].Username)
		req.Equal("alice", users[1].Username)
		req.Equal("mallory", users[2].Username)
	})
}

func Test_Touch_Login(t *testing.T) {
	forEachUserRepo(t, func(t *testing.T, repo IUserRepository) {
		req := require.New(t)
		ctx := context.Background()

		_, err := repo.CreateUser(ctx, newUser("alice"))
		req.NoError(err)

		at := time.Now().UTC().Truncate(time.Millisecond)
		req.NoError(repo.TouchLogin(ctx, "alice", at))

		fetched, err := repo.GetUser(ctx, "alice")
		req.NoError(err)
		req.NotNil(fetched.LastLoginAt)
		req.True(fetched.LastLoginAt.Equal(at))

		req.ErrorIs(repo.TouchLogin(ctx, "nobody", at), apperrors.ErrUserNotFound)
	})
}
