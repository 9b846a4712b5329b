package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize     = 32     // Salt size in bytes
	KeySize      = 32     // AES-256 key size
	NonceSize    = 12     // GCM nonce size
	TagSize      = 16     // GCM authentication tag size
	DefaultIters = 210000 // Default PBKDF2 iterations (OWASP minimum)
)

var (
	ErrInvalidEncoding   = errors.New("invalid envelope encoding")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrInvalidKey        = errors.New("invalid key length")
)

// envelopeEncoding rejects non-canonical text so every byte of an envelope is significant
var envelopeEncoding = base64.StdEncoding.Strict()

// DeriveKey hashes a secret into a KeySize symmetric key.
func DeriveKey(secret []byte) []byte {
	sum := sha256.Sum256(secret)
	return sum[:]
}

// KDF handles password-based key derivation with a persisted salt
type KDF struct {
	Salt       []byte
	Iterations int
}

// NewKDF creates a new KDF with a random salt
func NewKDF() (*KDF, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return &KDF{
		Salt:       salt,
		Iterations: DefaultIters,
	}, nil
}

// DeriveKey derives an encryption key from a secret
func (k *KDF) DeriveKey(secret []byte) []byte {
	return pbkdf2.Key(secret, k.Salt, k.Iterations, KeySize, sha256.New)
}

// Encryptor seals and opens envelopes with a fixed key
type Encryptor struct {
	key  []byte
	aead cipher.AEAD
}

// NewEncryptor creates a new encryptor with the given key
func NewEncryptor(key []byte) (*Encryptor, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	owned := make([]byte, len(key))
	copy(owned, key)

	return &Encryptor{key: owned, aead: gcm}, nil
}

// Seal encrypts plaintext and returns nonce || ciphertext || tag
func (e *Encryptor) Seal(plaintext []byte) ([]byte, error) {
	nonce, err := GenerateRandom(NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends ciphertext and tag after the nonce
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open verifies and decrypts nonce || ciphertext || tag
func (e *Encryptor) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < NonceSize+TagSize {
		return nil, ErrInvalidCiphertext
	}

	plaintext, err := e.aead.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// Encrypt seals plaintext and returns the base64 envelope text
func (e *Encryptor) Encrypt(plaintext []byte) (string, error) {
	sealed, err := e.Seal(plaintext)
	if err != nil {
		return "", err
	}
	return envelopeEncoding.EncodeToString(sealed), nil
}

// Decrypt decodes envelope text and opens it
func (e *Encryptor) Decrypt(envelope string) ([]byte, error) {
	sealed, err := envelopeEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return e.Open(sealed)
}

// Destroy clears the encryptor's key from memory
func (e *Encryptor) Destroy() {
	ClearBytes(e.key)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
