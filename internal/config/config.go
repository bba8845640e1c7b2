// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first if present; variables already set in
// the environment win over it.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvDB           = "KNJIZNICA_DB"
	EnvAddr         = "KNJIZNICA_ADDR"
	EnvLog          = "KNJIZNICA_LOG"
	EnvAdminUser    = "KNJIZNICA_ADMIN_USER"
	EnvAdminEmail   = "KNJIZNICA_ADMIN_EMAIL"
	EnvFinePerDay   = "KNJIZNICA_FINE_PER_DAY"
	EnvCookieSecure = "KNJIZNICA_COOKIE_SECURE"
	EnvCSRFKey      = "KNJIZNICA_CSRF_KEY"
)

const csrfKeyLen = 32

// Config holds the settings the binary needs before the database is open.
type Config struct {
	DBPath     string
	Addr       string
	LogPath    string
	AdminUser  string
	AdminEmail string

	// FinePerDay seeds the fine rate in cents. Negative means leave the
	// stored rate alone.
	FinePerDay int64

	CookieSecure bool
	CSRFKey      []byte
}

// Load reads the configuration, applying defaults for anything unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		DBPath:     getenv(EnvDB, "knjiznica.sqlite3"),
		Addr:       getenv(EnvAddr, ":8080"),
		LogPath:    getenv(EnvLog, ""),
		AdminUser:  getenv(EnvAdminUser, "admin"),
		AdminEmail: getenv(EnvAdminEmail, "admin@localhost"),
		FinePerDay: -1,
	}

	if v := getenv(EnvFinePerDay, ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative number of cents, got %q", EnvFinePerDay, v)
		}
		cfg.FinePerDay = n
	}

	secure, err := strconv.ParseBool(getenv(EnvCookieSecure, "false"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvCookieSecure, err)
	}
	cfg.CookieSecure = secure

	key, err := csrfKey(getenv(EnvCSRFKey, ""))
	if err != nil {
		return nil, err
	}
	cfg.CSRFKey = key

	return cfg, nil
}

// csrfKey decodes a base64 key. An empty value gets a random key, which
// invalidates open forms on every restart.
func csrfKey(encoded string) ([]byte, error) {
	if encoded == "" {
		slog.Warn("CSRF key not set, generating a temporary one", "env", EnvCSRFKey)
		key := make([]byte, csrfKeyLen)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating CSRF key: %w", err)
		}
		return key, nil
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", EnvCSRFKey, err)
	}
	if len(key) < csrfKeyLen {
		return nil, fmt.Errorf("%s must decode to at least %d bytes, got %d", EnvCSRFKey, csrfKeyLen, len(key))
	}
	return key, nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}
