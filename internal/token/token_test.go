package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	m := NewManager("test-secret")

	tok, err := m.Generate("user-1", "seller")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "seller", claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewManager("secret-a").Generate("user-1", "admin")
	require.NoError(t, err)

	_, err = NewManager("secret-b").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret")
	for _, raw := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		_, err := m.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
