package main

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"messagely/domain"
	"messagely/internal"
)

// Read-only dump of the message store for operators: one table of accounts,
// one table of messages.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if config.BadgerFilepath == "" {
		log.Fatal("BADGER_FILEPATH is required")
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if the server process holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := printUsers(db); err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	if err := printMessages(db); err != nil {
		log.Fatalf("Failed to list messages: %v", err)
	}
}

type storedUser struct {
	domain.Profile
	JoinedAt    time.Time  `json:"joined_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func printUsers(db *badger.DB) error {
	color.Bold.Println("\nUsers")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Username", "Name", "Phone", "Joined", "Last login"})

	err := scan(db, "user:", func(val []byte) error {
		var u storedUser
		if err := json.Unmarshal(val, &u); err != nil {
			return err
		}
		lastLogin := "-"
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.Format(time.RFC822)
		}
		table.Append([]string{
			u.Username,
			u.FirstName + " " + u.LastName,
			u.Phone,
			u.JoinedAt.Format(time.RFC822),
			lastLogin,
		})
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func printMessages(db *badger.DB) error {
	color.Bold.Println("\nMessages")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "From", "To", "Sent", "State", "Body"})

	err := scan(db, "msg:", func(val []byte) error {
		var m domain.Message
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		state := color.Yellow.Sprint("sent")
		if m.Read() {
			state = color.Green.Sprint("read")
		}
		table.Append([]string{
			shorten(m.ID, 8),
			m.FromUsername,
			m.ToUsername,
			m.SentAt.Format(time.RFC822),
			state,
			shorten(m.Body, 40),
		})
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func scan(db *badger.DB, prefix string, fn func(val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

func shorten(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
