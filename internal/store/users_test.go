package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/knjiznica/internal/db"
	"github.com/erazemk/knjiznica/internal/model"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := RegisterUser(ctx, database, "ana", "ana@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, model.RolePatron, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	got, err := Authenticate(ctx, database, "ana@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// Email lookup ignores case.
	_, err = Authenticate(ctx, database, "ANA@example.com", "correct-horse")
	assert.NoError(t, err)

	_, err = Authenticate(ctx, database, "ana@example.com", "wrong-horse")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = Authenticate(ctx, database, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := RegisterUser(ctx, database, "ana", "ana@example.com", "password1")
	require.NoError(t, err)

	_, err = RegisterUser(ctx, database, "ana2", "ana@example.com", "password2")
	assert.ErrorIs(t, err, model.ErrDuplicateIdentity, "same email")

	_, err = RegisterUser(ctx, database, "ana", "other@example.com", "password2")
	assert.ErrorIs(t, err, model.ErrDuplicateIdentity, "same username")

	_, err = RegisterUser(ctx, database, "bor", "bor@example.com", "password3")
	assert.NoError(t, err)
}

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "a", "a@example.com", "hash", model.RoleAdmin)
	require.NoError(t, err)

	_, err = CreateUser(ctx, database, "b", "A@EXAMPLE.COM", "hash", model.RolePatron)
	assert.ErrorIs(t, err, model.ErrDuplicateIdentity)
}

func TestRegisterValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := RegisterUser(ctx, database, "", "a@example.com", "password1")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = RegisterUser(ctx, database, "a", "not-an-email", "password1")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = RegisterUser(ctx, database, "a", "a@example.com", "short")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = RegisterUserWithRole(ctx, database, "a", "a@example.com", "password1", "librarian")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice", "alice@example.com", "hash", model.RoleAdmin)

	user, err := GetUserByUsername(ctx, database, "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice@example.com", user.Email)

	missing, err := GetUserByUsername(ctx, database, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListUsersAndUpdateRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, _ := CreateUser(ctx, database, "a", "a@example.com", "hash", model.RolePatron)
	CreateUser(ctx, database, "b", "b@example.com", "hash", model.RolePatron)

	users, err := ListUsers(ctx, database)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, UpdateUserRole(ctx, database, a.ID, model.RoleAdmin))
	got, _ := GetUser(ctx, database, a.ID)
	assert.Equal(t, model.RoleAdmin, got.Role)

	assert.ErrorIs(t, UpdateUserRole(ctx, database, 999, model.RoleAdmin), model.ErrNotFound)
	assert.ErrorIs(t, UpdateUserRole(ctx, database, a.ID, "root"), model.ErrValidation)
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "pwuser", "pw@example.com", "oldhash", model.RolePatron)
	require.NoError(t, UpdateUserPassword(ctx, database, user.ID, "newhash"))

	got, _ := GetUser(ctx, database, user.ID)
	assert.Equal(t, "newhash", got.PasswordHash)
}
