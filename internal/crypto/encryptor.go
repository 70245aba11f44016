package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// Encryptor provides authenticated encryption for values stored in browser
// cookies. Tokens never reach page script, but cookie jars leak (backups,
// shared machines), so credential cookies are sealed server-side.
type Encryptor struct {
	key [32]byte
}

// NewEncryptor creates an encryptor from a 32-byte key
func NewEncryptor(key []byte) (Encryptor, error) {
	if len(key) != 32 {
		return Encryptor{}, fmt.Errorf("encryption key must be exactly 32 bytes, got %d", len(key))
	}
	var e Encryptor
	copy(e.key[:], key)
	return e, nil
}

// Encrypt seals plaintext and returns a base64 URL-encoded value safe to
// place in a cookie
func (e Encryptor) Encrypt(plaintext []byte) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &e.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt
func (e Encryptor) Decrypt(encoded string) ([]byte, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(sealed) < 24 {
		return nil, fmt.Errorf("ciphertext too short")
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])

	plaintext, ok := secretbox.Open(nil, sealed[24:], &nonce, &e.key)
	if !ok {
		return nil, fmt.Errorf("failed to decrypt value")
	}
	return plaintext, nil
}
