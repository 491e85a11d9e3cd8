package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	var key [32]byte
	copy(key[:], "0123456789abcdef0123456789abcdef")

	sealed, err := Seal(&key, "backend-token-xyz")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "backend-token-xyz")

	plain, err := Open(&key, sealed)
	require.NoError(t, err)
	assert.Equal(t, "backend-token-xyz", plain)

	var other [32]byte
	_, err = Open(&other, sealed)
	assert.ErrorIs(t, err, ErrUnsealFailed)

	_, err = Open(&key, "not base64 !!")
	assert.ErrorIs(t, err, ErrUnsealFailed)
}

func TestSessionToken(t *testing.T) {
	InitJWT([]byte("test-secret"), time.Hour)

	tokenString, err := GenerateSessionToken("sid-123")
	require.NoError(t, err)

	token, err := TokenAuth.Decode(tokenString)
	require.NoError(t, err)
	claims, err := token.AsMap(t.Context())
	require.NoError(t, err)

	sid, err := GetSessionIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "sid-123", sid)

	_, err = GetSessionIDFromClaims(map[string]any{"sid": 5})
	assert.Error(t, err)
}
