package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/knjiznica/internal/db"
	"github.com/erazemk/knjiznica/internal/model"
)

func TestGetJWTSecretIsStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := GetJWTSecret(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetSessionKey(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	key, err := GetSessionKey(ctx, database)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	secret, _ := GetJWTSecret(ctx, database)
	assert.NotEqual(t, secret, string(key))
}

func TestFinePerDay(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rate, err := GetFinePerDay(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultFinePerDayCents), rate)

	require.NoError(t, SetFinePerDay(ctx, database, 120))
	rate, _ = GetFinePerDay(ctx, database)
	assert.Equal(t, int64(120), rate)

	assert.ErrorIs(t, SetFinePerDay(ctx, database, -1), model.ErrValidation)
}
