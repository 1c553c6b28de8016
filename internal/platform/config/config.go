// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

A missing required variable or an unknown ENVIRONMENT is a startup failure;
nothing else in the process exits on configuration.
*/
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported values of ENVIRONMENT.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var (
	// ErrInvalidEnvironment is returned when ENVIRONMENT is neither development nor production.
	ErrInvalidEnvironment = errors.New("config: ENVIRONMENT must be development or production")

	// ErrIncompleteTLS is returned when only one of TLS_CERT_FILE / TLS_KEY_FILE is set.
	ErrIncompleteTLS = errors.New("config: TLS_CERT_FILE and TLS_KEY_FILE must be set together")

	// ErrInvalidTrustedProxy is returned when TRUSTED_PROXIES holds something other than IPs or CIDRs.
	ErrInvalidTrustedProxy = errors.New("config: TRUSTED_PROXIES must list IP addresses or CIDR ranges")
)

// # Configuration Schema

// Config holds all runtime configuration for the users API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// TLS is enabled when both files are set.
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"5"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Key-Value Store (Redis), used for login throttling
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Token signing
	JWTSecretKey         string        `env:"JWT_SECRET_KEY,required,notEmpty"`
	JWTRefreshSecretKey  string        `env:"JWT_REFRESH_SECRET_KEY"`
	JWTExpiration        time.Duration `env:"JWT_EXPIRATION_TIME"         envDefault:"24h"`
	JWTRefreshExpiration time.Duration `env:"JWT_REFRESH_EXPIRATION_TIME" envDefault:"168h"`
	JWTLeeway            time.Duration `env:"JWT_LEEWAY"                  envDefault:"0s"`
	JWTIssuer            string        `env:"JWT_ISSUER"                  envDefault:"usersapi"`

	// Credential handling
	HashMaxConcurrency int64         `env:"HASH_MAX_CONCURRENCY" envDefault:"4"`
	LoginMaxAttempts   int64         `env:"LOGIN_MAX_ATTEMPTS"   envDefault:"5"`
	LoginWindow        time.Duration `env:"LOGIN_WINDOW"         envDefault:"15m"`

	// Cross-Origin Resource Sharing, comma-separated
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Reverse proxies whose forwarding headers are honoured, comma-separated
	// IPs or CIDRs. Empty means the socket address is the client.
	TrustedProxies string `env:"TRUSTED_PROXIES"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the cross-field rules env tags cannot express.
func (c *Config) Validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("%w (got %q)", ErrInvalidEnvironment, c.Environment)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return ErrIncompleteTLS
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// TLSEnabled reports whether the server should terminate TLS itself.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// AllowedOrigins splits EXTRA_ORIGINS into a list.
func (c *Config) AllowedOrigins() []string {
	return splitList(c.ExtraOrigins)
}

// TrustedProxyPrefixes parses TRUSTED_PROXIES. A bare IP becomes a single-address prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range splitList(c.TrustedProxies) {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("%w (got %q)", ErrInvalidTrustedProxy, entry)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("%w (got %q)", ErrInvalidTrustedProxy, entry)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
