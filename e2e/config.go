package e2e

import "github.com/kelseyhightower/envconfig"

// Config drives the end-to-end scenario. With BaseURL unset the test spins
// an in-process server; pointing it at a deployed instance runs the same
// scenario against real infrastructure.
type Config struct {
	BaseURL    string `envconfig:"E2E_BASE_URL"`
	SecretKey  string `envconfig:"E2E_SECRET_KEY" default:"e2e-secret"`
	BcryptCost int    `envconfig:"E2E_BCRYPT_COST" default:"4"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
