package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.True(t, VerifyPassword(hash, "password123"))

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"correct", hash, "mySecurePassword123", true},
		{"incorrect", hash, "wrongPassword", false},
		{"empty", hash, "", false},
		{"invalid hash", "invalid-hash", "mySecurePassword123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hash, tt.password))
		})
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	hash1, err := HashPassword("testPassword")
	require.NoError(t, err)
	hash2, err := HashPassword("testPassword")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}
