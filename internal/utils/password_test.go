package utils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, VerifyPassword(hash, "correct horse battery staple"))
	require.False(t, VerifyPassword(hash, "Correct horse battery staple"))
	require.False(t, VerifyPassword(hash, ""))
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	require.False(t, VerifyPassword("not-a-bcrypt-hash", "anything"))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	a, err := HashPassword("same input", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same input", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, a, b, "each hash carries its own salt")
}
