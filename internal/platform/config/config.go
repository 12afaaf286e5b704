// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. An optional `.env`
file in the working directory is loaded first through 'joho/godotenv'; real
environment variables always win over the file.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, TokenService) via constructors.
  - Zero Hidden State: No global variables are used to store config.
  - Fail Fast: Missing or identical signing secrets abort startup.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile is the optional local override file.
const DotEnvFile = ".env"

// # Configuration Schema

// Config holds all runtime configuration for the MotoFleet API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL) and schema migrations
	Database Database

	// Key-Value Store (Redis) for password-reset tokens
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Token signing. Access and refresh secrets must both be set and differ.
	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET,required,notEmpty"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET,required,notEmpty"`
	JWTIssuer        string        `env:"JWT_ISSUER"         envDefault:"motofleet-api"`
	JWTAudience      string        `env:"JWT_AUDIENCE"       envDefault:"motofleet-clients"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL"   envDefault:"1h"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL"  envDefault:"168h"`

	// Password hashing cost (argon2id)
	Argon2MemoryKiB uint32 `env:"ARGON2_MEMORY_KIB" envDefault:"65536"`
	Argon2Time      uint32 `env:"ARGON2_TIME"       envDefault:"1"`
	Argon2Threads   uint8  `env:"ARGON2_THREADS"    envDefault:"4"`
	HashConcurrency int    `env:"HASH_CONCURRENCY"  envDefault:"0"`

	// Outbound mail for password resets. An empty host logs mails instead.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"     envDefault:"no-reply@motofleet.local"`

	// PasswordResetURL is the frontend page that receives ?token=...
	PasswordResetURL string `env:"PASSWORD_RESET_URL" envDefault:"http://localhost:3000/reset-password"`

	// Cross-Origin Resource Sharing
	CORSAllowedOriginSuffix string `env:"CORS_ALLOWED_ORIGIN_SUFFIX" envDefault:".motofleet.app"`
}

// Database is the subset shared by the API server and the admin CLI.
type Database struct {
	URL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`
}

// # Configuration Loading

// Load reads the optional .env file and parses environment variables into a
// validated [Config].
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase parses only the database settings. Used by commands that do not
// need token secrets.
func LoadDatabase() (*Database, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Database{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse database variables: %w", err)
	}
	return cfg, nil
}

// ErrSharedSecret is returned when access and refresh tokens would be signed
// with the same secret.
var ErrSharedSecret = errors.New("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if c.JWTAccessSecret == "" || c.JWTRefreshSecret == "" {
		return errors.New("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return ErrSharedSecret
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	if c.Argon2MemoryKiB == 0 || c.Argon2Time == 0 || c.Argon2Threads == 0 {
		return errors.New("config: argon2 parameters must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOriginSuffix returns the origin suffix trusted by CORS outside development.
func (c *Config) AllowedOriginSuffix() string {
	return c.CORSAllowedOriginSuffix
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// loadDotEnv loads .env without overriding variables that are already set.
func loadDotEnv() error {
	err := godotenv.Load(DotEnvFile)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: failed to load %s: %w", DotEnvFile, err)
}
