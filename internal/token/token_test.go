package token_test

import (
	"testing"

	"github.com/dom/restaurant-manager/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncrypter_RoundTrip(t *testing.T) {
	enc, err := token.NewEncrypter("test-app-key")
	require.NoError(t, err)

	tok, err := enc.EncryptUserID(42)
	require.NoError(t, err)
	assert.NotContains(t, tok, "42")

	id, err := enc.DecryptUserID(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	other, err := enc.EncryptUserID(42)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other, "tokens must use fresh nonces")
}

func TestEncrypter_DecryptRejects(t *testing.T) {
	enc, err := token.NewEncrypter("test-app-key")
	require.NoError(t, err)
	foreign, err := token.NewEncrypter("another-key")
	require.NoError(t, err)

	valid, err := enc.EncryptUserID(7)
	require.NoError(t, err)
	foreignTok, err := foreign.EncryptUserID(7)
	require.NoError(t, err)

	tampered := []byte(valid)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "%%%"},
		{name: "too short", token: "YWJj"},
		{name: "other key", token: foreignTok},
		{name: "tampered", token: string(tampered)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.DecryptUserID(tt.token)
			assert.ErrorIs(t, err, token.ErrInvalidToken)
		})
	}
}

func TestNewEncrypter_EmptyKey(t *testing.T) {
	_, err := token.NewEncrypter("")
	assert.Error(t, err)
}
