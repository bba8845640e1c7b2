package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/erazemk/knjiznica/internal/model"
)

// Setting keys.
const (
	SettingJWTSecret       = "jwt_secret"
	SettingSessionKey      = "session_key"
	SettingFinePerDayCents = "fine_per_day_cents"
)

// DefaultFinePerDayCents applies when no fine rate is configured.
const DefaultFinePerDayCents = 50

// GetSecret returns the random secret stored under key, generating and
// storing one on first use. INSERT OR IGNORE + re-SELECT keeps concurrent
// first starts from ending up with different secrets.
func GetSecret(ctx context.Context, db *sql.DB, key string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating %s: %w", key, err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}

	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", key, err)
	}

	return secret, nil
}

// GetJWTSecret returns the token signing key.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	return GetSecret(ctx, db, SettingJWTSecret)
}

// GetSessionKey returns the flash-session cookie signing key.
func GetSessionKey(ctx context.Context, db *sql.DB) ([]byte, error) {
	secret, err := GetSecret(ctx, db, SettingSessionKey)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(secret)
}

// GetFinePerDay returns the late fee per day in cents.
func GetFinePerDay(ctx context.Context, db *sql.DB) (int64, error) {
	return finePerDay(ctx, db)
}

func finePerDay(ctx context.Context, q querier) (int64, error) {
	var value string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, SettingFinePerDayCents,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return DefaultFinePerDayCents, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying fine rate: %w", err)
	}

	rate, err := strconv.ParseInt(value, 10, 64)
	if err != nil || rate < 0 {
		return 0, fmt.Errorf("invalid fine rate %q in settings", value)
	}
	return rate, nil
}

// SetFinePerDay stores the late fee per day in cents.
func SetFinePerDay(ctx context.Context, db *sql.DB, cents int64) error {
	if cents < 0 {
		return fmt.Errorf("%w: fine rate must not be negative", model.ErrValidation)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		SettingFinePerDayCents, strconv.FormatInt(cents, 10),
	)
	if err != nil {
		return fmt.Errorf("storing fine rate: %w", err)
	}
	return nil
}
