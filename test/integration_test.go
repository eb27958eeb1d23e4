package test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"messagely/auth"
	apperrors "messagely/errors"
	"messagely/repositories"
	"messagely/services"
)

// Full register/login/send/read scenario over the in-memory store, exercising
// the services exactly as the HTTP layer does.
func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	users := repositories.NewMemoryUserRepository()
	messages := repositories.NewMemoryMessageRepository()
	hasher := auth.NewHasher(4)
	issuer := auth.NewIssuer("integration-secret", time.Hour)

	authService := services.NewAuthService(users, hasher, issuer, log)
	userService := services.NewUserService(users, issuer, log)
	messageService := services.NewMessageService(users, messages, issuer, nil, log)

	// 1. Alice registers and logs in.
	profile, _, err := authService.Register(ctx, auth.RegisterRequest{
		Username: "alice", Password: "secret", FirstName: "Alice", LastName: "Liddell", Phone: "+15555550100",
	})
	req.NoError(err)
	req.Equal("alice", profile.Username)

	tokenAlice, err := authService.Login(ctx, "alice", "secret")
	req.NoError(err)

	// Re-registering the same username is a conflict.
	_, _, err = authService.Register(ctx, auth.RegisterRequest{
		Username: "alice", Password: "other1", FirstName: "Other", LastName: "Alice", Phone: "+15555550199",
	})
	req.ErrorIs(err, apperrors.ErrUserAlreadyExists)

	// 2. Bob registers; registration already yields a session.
	_, tokenBob, err := authService.Register(ctx, auth.RegisterRequest{
		Username: "bob", Password: "pw2pw2", FirstName: "Bob", LastName: "Builder", Phone: "+15555550101",
	})
	req.NoError(err)

	// Logging in stamped last_login_at.
	alice, err := users.GetUser(ctx, "alice")
	req.NoError(err)
	req.NotNil(alice.LastLoginAt)

	// 3. Alice sends to Bob.
	sent, err := messageService.Send(ctx, string(tokenAlice), auth.SendRequest{ToUsername: "bob", Body: "hi"})
	req.NoError(err)
	req.Equal("hi", sent.Body)
	req.Nil(sent.ReadAt)

	// 4. Bob can read it; Alice cannot mark it read.
	fetched, err := messageService.Get(ctx, string(tokenBob), sent.ID)
	req.NoError(err)
	req.Equal("alice", fetched.FromUser.Username)

	_, err = messageService.MarkRead(ctx, string(tokenAlice), sent.ID)
	req.ErrorIs(err, apperrors.ErrForbidden)

	// 5. Bob marks read; the second call returns the same timestamp.
	first, err := messageService.MarkRead(ctx, string(tokenBob), sent.ID)
	req.NoError(err)
	req.NotNil(first.ReadAt)

	second, err := messageService.MarkRead(ctx, string(tokenBob), sent.ID)
	req.NoError(err)
	req.True(second.ReadAt.Equal(*first.ReadAt))

	// 6. Directory reflects registration order and public fields only.
	profiles, err := userService.List(ctx, string(tokenAlice))
	req.NoError(err)
	req.Len(profiles, 2)
	req.Equal("alice", profiles[0].Username)
	req.Equal("bob", profiles[1].Username)

	// 7. Sending to a nonexistent recipient creates no message row.
	_, err = messageService.Send(ctx, string(tokenAlice), auth.SendRequest{ToUsername: "ghost", Body: "hello?"})
	req.ErrorIs(err, apperrors.ErrUserNotFound)

	sentList, err := messageService.SentBy(ctx, string(tokenAlice), "alice")
	req.NoError(err)
	req.Len(sentList, 1)
}
