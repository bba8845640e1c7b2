package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/knjiznica/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, 1, "admin", model.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)

	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, "1", claims.Subject)
	assert.True(t, claims.IsAdmin())
}

func TestTokensHaveUniqueIDs(t *testing.T) {
	a, _ := GenerateToken("s", 1, "u", model.RolePatron)
	b, _ := GenerateToken("s", 1, "u", model.RolePatron)

	ca, err := ValidateToken("s", a)
	require.NoError(t, err)
	cb, err := ValidateToken("s", b)
	require.NoError(t, err)

	assert.NotEqual(t, ca.ID, cb.ID)
	assert.False(t, ca.IsAdmin())
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", 1, "admin", model.RoleAdmin)

	_, err := ValidateToken("secret2", token)
	assert.Error(t, err)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsForeignTokens(t *testing.T) {
	secret := "shared"
	sign := func(method jwt.SigningMethod, rc jwt.RegisteredClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, Claims{UserID: 1, Username: "x", Role: model.RoleAdmin, RegisteredClaims: rc}).
			SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := map[string]string{
		"other issuer": sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: "a", Issuer: "elsewhere", ExpiresAt: exp}),
		"no expiry":    sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: "a", Issuer: Issuer}),
		"no id":        sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: exp}),
		"HS512":        sign(jwt.SigningMethodHS512, jwt.RegisteredClaims{ID: "a", Issuer: Issuer, ExpiresAt: exp}),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateToken(secret, token)
			assert.Error(t, err)
		})
	}

	ok := sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: "a", Issuer: Issuer, ExpiresAt: exp})
	_, err := ValidateToken(secret, ok)
	assert.NoError(t, err)
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _ := GenerateToken(secret, 1, "test", model.RolePatron)
	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)

	expected := time.Now().Add(TokenExpiry)
	assert.WithinDuration(t, expected, claims.ExpiresAt.Time, 5*time.Second)
}

func TestNilClaimsAreNotAdmin(t *testing.T) {
	var c *Claims
	assert.False(t, c.IsAdmin())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}
