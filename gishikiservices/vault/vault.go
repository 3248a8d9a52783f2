package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var ErrCipherTextTooShort = errors.New("cipher text too short")

// New seals values with AES-GCM. The key must be 16, 24 or 32 bytes.
func New(key []byte) (Vault, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return Vault{}, fmt.Errorf("invalid vault key: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return Vault{}, err
	}

	return Vault{
		aead: aead,
	}, nil
}

type Vault struct {
	aead cipher.AEAD
}

// Encrypt returns the nonce and sealed text, URL-safe base64 encoded.
func (v Vault) Encrypt(text []byte) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := v.aead.Seal(nonce, nonce, text, nil)

	return []byte(base64.URLEncoding.EncodeToString(sealed)), nil
}

func (v Vault) Decrypt(raw []byte) ([]byte, error) {
	sealed, err := base64.URLEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, err
	}

	if len(sealed) < v.aead.NonceSize() {
		return nil, ErrCipherTextTooShort
	}

	nonce, text := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]

	return v.aead.Open(nil, nonce, text, nil)
}
