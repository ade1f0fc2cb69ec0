package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct-horse", hash)
	assert.True(t, CheckPassword("correct-horse", hash))
	assert.False(t, CheckPassword("Correct-horse", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestHashPassword_ShortPassword(t *testing.T) {
	for _, pw := range []string{"", "1234567"} {
		_, err := HashPassword(pw)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("password")
	require.NoError(t, err)
	second, err := HashPassword("password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	assert.False(t, CheckPassword("password", "not-a-bcrypt-hash"))
	assert.False(t, CheckPassword("password", ""))
}
