package internal

import (
	"fmt"
	"strings"
	"time"
)

// Config is the process-wide configuration, loaded once at startup from the
// environment and read-only thereafter. The server and the auxiliary
// binaries (viewer) share it.
type Config struct {
	StoreBackend   string `env:"STORE_BACKEND,default=badger"`
	BadgerFilepath string `env:"BADGER_FILEPATH"`

	Host      string `env:"HOST,default=localhost"`
	Port      int    `env:"PORT,default=8080"`
	DebugPort int    `env:"DEBUG_PORT"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`

	SecretKey         string        `env:"SECRET_KEY,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	BcryptCost        int           `env:"BCRYPT_COST,default=10"`

	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
}

// Validate enforces the cross-field rules go-env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case "badger":
		if c.BadgerFilepath == "" {
			return fmt.Errorf("BADGER_FILEPATH is required when STORE_BACKEND=badger")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be badger or memory, got %q", c.StoreBackend)
	}
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return err
	}
	return nil
}

// Words splits the configured censor list; an empty setting disables
// moderation.
func (c Config) Words() []string {
	if strings.TrimSpace(c.CensoredWords) == "" {
		return nil
	}
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
