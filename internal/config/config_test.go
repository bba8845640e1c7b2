package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDB, EnvAddr, EnvLog, EnvAdminUser, EnvAdminEmail,
		EnvFinePerDay, EnvCookieSecure, EnvCSRFKey} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "knjiznica.sqlite3", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Equal(t, int64(-1), cfg.FinePerDay)
	assert.False(t, cfg.CookieSecure)
	assert.Len(t, cfg.CSRFKey, 32)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	key := []byte(strings.Repeat("k", 32))
	t.Setenv(EnvDB, "/tmp/lib.db")
	t.Setenv(EnvAddr, "127.0.0.1:9000")
	t.Setenv(EnvFinePerDay, "75")
	t.Setenv(EnvCookieSecure, "true")
	t.Setenv(EnvCSRFKey, base64.StdEncoding.EncodeToString(key))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lib.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, int64(75), cfg.FinePerDay)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, key, cfg.CSRFKey)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"),
		[]byte("KNJIZNICA_ADMIN_EMAIL=head@library.si\nKNJIZNICA_ADDR=:7000\n"), 0o644))
	t.Setenv(EnvAddr, ":9999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "head@library.si", cfg.AdminEmail)
	assert.Equal(t, ":9999", cfg.Addr, "environment wins over .env")
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string][2]string{
		"negative fine": {EnvFinePerDay, "-5"},
		"bad fine":      {EnvFinePerDay, "lots"},
		"bad bool":      {EnvCookieSecure, "maybe"},
		"short key":     {EnvCSRFKey, base64.StdEncoding.EncodeToString([]byte("short"))},
		"not base64":    {EnvCSRFKey, "!!!"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
