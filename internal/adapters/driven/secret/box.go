// Package secret seals values at rest with NaCl secretbox.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

const (
	keySize   = 32
	nonceSize = 24
)

// ErrOpen is returned when a sealed value cannot be authenticated.
var ErrOpen = errors.New("secret: cannot open sealed value")

// Ensure Box implements the interface.
var _ driven.SecretBox = (*Box)(nil)

// Box seals strings with a fixed key. Sealed values are base64 encoded
// with the random nonce prepended.
type Box struct {
	key [keySize]byte
}

// New returns a box for key.
func New(key [keySize]byte) *Box {
	return &Box{key: key}
}

// FromPassphrase derives the key from a passphrase.
func FromPassphrase(passphrase string) *Box {
	return New(sha256.Sum256([]byte(passphrase)))
}

// LoadOrCreate reads a hex key from path, generating and writing a new
// one when the file does not exist.
func LoadOrCreate(path string) (*Box, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil || len(raw) != keySize {
			return nil, fmt.Errorf("secret: malformed key file %s", path)
		}
		var key [keySize]byte
		copy(key[:], raw)
		return New(key), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("secret: read key: %w", err)
	}

	var key [keySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, fmt.Errorf("secret: generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("secret: create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key[:])), 0600); err != nil {
		return nil, fmt.Errorf("secret: write key: %w", err)
	}
	return New(key), nil
}

// Seal encrypts plaintext.
func (b *Box) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("secret: nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (b *Box) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}
