package crypto

import (
	"encoding/base64"
	"errors"
	"os"
)

var (
	ErrMasterKeyNotSet  = errors.New("master key not set in environment")
	ErrInvalidMasterKey = errors.New("invalid master key: must be base64 of 32 bytes")
)

// NoteCipher encrypts agent-authored internal notes and denial reasons at
// rest. These carry victim-safety detail and must never be readable from a
// raw database dump.
type NoteCipher struct {
	masterKey []byte
}

// NewNoteCipher creates a note cipher with the master key from the
// MASTER_KEY environment variable (base64, 32 bytes).
func NewNoteCipher() (*NoteCipher, error) {
	masterKeyB64 := os.Getenv("MASTER_KEY")
	if masterKeyB64 == "" {
		return nil, ErrMasterKeyNotSet
	}

	masterKey, err := base64.StdEncoding.DecodeString(masterKeyB64)
	if err != nil || len(masterKey) != 32 {
		return nil, ErrInvalidMasterKey
	}

	return &NoteCipher{masterKey: masterKey}, nil
}

// Seal encrypts a note body for storage.
func (nc *NoteCipher) Seal(plaintext string) (string, error) {
	return Encrypt(plaintext, nc.masterKey)
}

// Open decrypts a stored note body.
func (nc *NoteCipher) Open(ciphertext string) (string, error) {
	return Decrypt(ciphertext, nc.masterKey)
}
