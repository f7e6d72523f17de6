// Package token issues the opaque API session token: the user id sealed with
// the application key.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrInvalidToken = errors.New("invalid token")

type Encrypter struct {
	key [32]byte
}

// NewEncrypter derives the secretbox key from the application key.
func NewEncrypter(appKey string) (*Encrypter, error) {
	if appKey == "" {
		return nil, errors.New("token: empty application key")
	}
	return &Encrypter{key: sha256.Sum256([]byte(appKey))}, nil
}

// EncryptUserID seals the decimal user id. Every call uses a fresh nonce, so
// two tokens for the same user differ.
func (e *Encrypter) EncryptUserID(id uint) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("token: read nonce: %w", err)
	}

	plain := []byte(strconv.FormatUint(uint64(id), 10))
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &e.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// DecryptUserID opens a token produced by EncryptUserID.
func (e *Encrypter) DecryptUserID(tok string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return 0, ErrInvalidToken
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &e.key)
	if !ok {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(string(plain), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
