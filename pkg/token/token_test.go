package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	svc := NewService("unit-test-secret")

	tokenString, err := svc.Sign(42)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	userID, err := svc.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	svc := NewService("secret-one")
	other := NewService("secret-two")

	tokenString, err := svc.Sign(42)
	require.NoError(t, err)

	_, err = other.Parse(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	svc := NewService("unit-test-secret")

	for _, bad := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		_, err := svc.Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", bad)
	}
}

func TestSignSameUserIsUniquePerCall(t *testing.T) {
	svc := NewService("unit-test-secret")

	// Login dua kali dengan user yang sama harus menghasilkan token berbeda,
	// kalau tidak, logout satu sesi mencabut semua sesi
	t1, err := svc.Sign(42)
	require.NoError(t, err)
	t2, err := svc.Sign(42)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	id1, err := svc.Parse(t1)
	require.NoError(t, err)
	id2, err := svc.Parse(t2)
	require.NoError(t, err)
	assert.Equal(t, 42, id1)
	assert.Equal(t, 42, id2)
}

func TestTokensAreDistinct(t *testing.T) {
	svc := NewService("unit-test-secret")

	// Dua user berbeda tidak boleh menghasilkan token yang sama
	t1, err := svc.Sign(1)
	require.NoError(t, err)
	t2, err := svc.Sign(2)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	id1, err := svc.Parse(t1)
	require.NoError(t, err)
	id2, err := svc.Parse(t2)
	require.NoError(t, err)
	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, id2)
}
