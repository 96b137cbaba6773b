package secrets

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestVerifyPlain(t *testing.T) {
	assert.NoError(t, VerifyPlain("hunter2", "hunter2"))
	assert.ErrorIs(t, VerifyPlain("Hunter2", "hunter2"), ErrMismatch)
	assert.ErrorIs(t, VerifyPlain("hunter", "hunter2"), ErrMismatch)
	assert.ErrorIs(t, VerifyPlain("hunter22", "hunter2"), ErrMismatch)
	assert.ErrorIs(t, VerifyPlain("", "hunter2"), ErrMismatch)
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse")
	require.NoError(t, err)

	assert.NoError(t, VerifyHash("correct horse", hash))
	assert.ErrorIs(t, VerifyHash("wrong horse", hash), ErrMismatch)

	_, err = Hash("")
	assert.Error(t, err)

	err = VerifyHash("x", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}

func TestHashLengthLimit(t *testing.T) {
	limit := strings.Repeat("a", MaxHashedLen)
	hash, err := Hash(limit)
	require.NoError(t, err)

	assert.NoError(t, VerifyHash(limit, hash))
	assert.ErrorIs(t, VerifyHash(limit+"b", hash), ErrMismatch)

	_, err = Hash(limit + "b")
	assert.Error(t, err)
}
