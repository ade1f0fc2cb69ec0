package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newTestJWTService() *JWTService {
	return NewJWTService(testSecret, 24*time.Hour)
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "alice@example.com", "customer")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, Subject{ID: "user-1", Role: "customer"}, claims.Subject())
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, _, err := svc.GenerateAccessToken("user-1", "alice@example.com", "customer")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateAccessToken_Garbage(t *testing.T) {
	svc := newTestJWTService()

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestJWTService_ValidateAccessToken_WrongSignature(t *testing.T) {
	other := NewJWTService("another-secret-key-that-is-long-enough", time.Hour)
	token, _, err := other.GenerateAccessToken("user-1", "alice@example.com", "admin")
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_NoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		Role:   "super-admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
