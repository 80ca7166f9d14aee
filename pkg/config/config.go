// Package config loads service settings from .env files and the environment,
// and engine tunables from an optional YAML policy file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ErrMissingSecret is returned by Validate when a required secret is unset.
var ErrMissingSecret = errors.New("config: missing secret")

// devAdminPassword is only used when APP_ENV=dev and ADMIN_PASSWORD is unset.
const devAdminPassword = "admin123"

// Config is the service configuration.
type Config struct {
	Port            string
	DatabaseURL     string
	DataPath        string
	JWTSecret       string
	APIMasterSecret string
	AdminUsername   string
	AdminPassword   string
	AppEnv          string
	GinMode         string
	PolicyFile      string
	Policy          Policy
}

// envPaths are tried in order; the first .env found is loaded.
var envPaths = []string{".env", "../.env", "../../.env"}

// LoadEnv loads the first .env file it finds. Missing files are not an error.
func LoadEnv() {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads .env, the environment and the policy file.
func Load() (*Config, error) {
	LoadEnv()
	cfg := &Config{
		Port:            getenv("PORT", "8000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataPath:        getenv("DATA_PATH", "clinic_schedule.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		APIMasterSecret: os.Getenv("API_MASTER_SECRET"),
		AdminUsername:   getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AppEnv:          os.Getenv("APP_ENV"),
		GinMode:         os.Getenv("GIN_MODE"),
		PolicyFile:      os.Getenv("POLICY_FILE"),
	}
	if cfg.AdminPassword == "" && cfg.IsDev() {
		cfg.AdminPassword = devAdminPassword
	}
	policy, err := LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	cfg.Policy = policy
	return cfg, nil
}

// IsDev reports whether APP_ENV selects the development setup.
func (c *Config) IsDev() bool { return c.AppEnv == "dev" }

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	for _, v := range []struct{ name, value string }{
		{"JWT_SECRET", c.JWTSecret},
		{"API_MASTER_SECRET", c.APIMasterSecret},
		{"ADMIN_PASSWORD", c.AdminPassword},
	} {
		if v.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingSecret, v.name)
		}
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
