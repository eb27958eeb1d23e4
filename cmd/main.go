package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"messagely/api"
	"messagely/auth"
	"messagely/internal"
	"messagely/moderation"
	"messagely/observability"
	"messagely/repositories"
	"messagely/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Store (BadgerDB or in-memory)
	var (
		users    repositories.IUserRepository
		messages repositories.IMessageRepository
		db       *badger.DB
	)
	switch config.StoreBackend {
	case "badger":
		var err error
		db, err = badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return fmt.Errorf("database opening failed: %w", err)
		}
		defer func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}()
		users = repositories.NewUserRepository(db, log)
		messages = repositories.NewMessageRepository(db, log)
	case "memory":
		users = repositories.NewMemoryUserRepository()
		messages = repositories.NewMemoryMessageRepository()
	}

	// 3. Core components
	hasher := auth.NewHasher(config.BcryptCost)
	issuer := auth.NewIssuer(config.SecretKey, config.AuthTokenDuration)

	var moderator *moderation.Moderator
	if words := config.Words(); len(words) > 0 {
		replacement, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		if moderator, err = moderation.NewModerator(words, replacement); err != nil {
			return fmt.Errorf("moderation setup failed: %w", err)
		}
		log.Info("Moderation enabled", "words", len(words))
	}

	authService := services.NewAuthService(users, hasher, issuer, log)
	userService := services.NewUserService(users, issuer, log)
	messageService := services.NewMessageService(users, messages, issuer, moderator, log)
	server := api.NewServer(authService, userService, messageService, log)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Debug inspector (badger only)
	if config.DebugPort > 0 && db != nil {
		stats, err := observability.NewSelfStats()
		if err != nil {
			return fmt.Errorf("stats setup failed: %w", err)
		}
		internal.StartDebugServer(db, config.DebugPort, internal.RecordMapper, stats.Snapshot)
		log.Info("Debug inspector started", "port", config.DebugPort)
	}

	// 6. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "store", config.StoreBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
