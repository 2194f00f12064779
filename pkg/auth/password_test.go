package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("a strong password")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.True(t, VerifyPassword("a strong password", hash))
	assert.False(t, VerifyPassword("a wrong password", hash))
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("same input")
	require.NoError(t, err)
	hash2, err := HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, VerifyPassword("same input", hash1))
	assert.True(t, VerifyPassword("same input", hash2))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("anything", "not a bcrypt hash"))
	assert.False(t, VerifyPassword("anything", ""))
}
