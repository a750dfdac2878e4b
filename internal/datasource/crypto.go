// File path: internal/datasource/crypto.go
package datasource

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// Decrypter recovers credentials stored under a descriptor's "encrypted"
// wrapper. Encryption at rest itself is owned by the persistence layer; this
// package only needs the inverse operation.
type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// SecretboxDecrypter opens NaCl secretbox payloads: base64(nonce || box)
// sealed with a 32-byte key.
type SecretboxDecrypter struct {
	key [32]byte
}

// NewSecretboxDecrypter parses a base64-encoded 32-byte key.
func NewSecretboxDecrypter(encodedKey string) (*SecretboxDecrypter, error) {
	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(raw))
	}
	d := &SecretboxDecrypter{}
	copy(d.key[:], raw)
	return d, nil
}

func (d *SecretboxDecrypter) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(raw) < 24 {
		return "", fmt.Errorf("ciphertext too short")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &d.key)
	if !ok {
		return "", fmt.Errorf("credential decryption failed")
	}
	return string(plain), nil
}

// Seal is the forward operation, used by the catalog layer and tests.
func (d *SecretboxDecrypter) Seal(plaintext string, nonce [24]byte) string {
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &d.key)
	return base64.StdEncoding.EncodeToString(sealed)
}
