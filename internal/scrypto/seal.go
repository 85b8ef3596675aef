package scrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/faanross/simulacra_pdf/internal/spec"
)

var (
	ErrAuthentication = errors.New("authentication failed - wrong passphrase or corrupted data")
	ErrEnvelope       = errors.New("malformed sealed payload")
)

// Sealed payload layout:
// [Salt(32)][Nonce(12)][Encrypted(Magic(4) + Message)][AuthTag(16)]
const overhead = spec.SALT_SIZE + spec.NONCE_SIZE + 4 + spec.TAG_SIZE

// Seal encrypts message with AES-256-GCM under a PBKDF2-derived key so the
// bytes hidden in the document are opaque without the passphrase.
func Seal(message, passphrase []byte) ([]byte, error) {
	return sealWith(rand.Reader, message, passphrase)
}

func sealWith(random io.Reader, message, passphrase []byte) ([]byte, error) {
	salt := make([]byte, spec.SALT_SIZE)
	if _, err := io.ReadFull(random, salt); err != nil {
		return nil, fmt.Errorf("salt generation failed: %w", err)
	}

	gcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, spec.NONCE_SIZE)
	if _, err := io.ReadFull(random, nonce); err != nil {
		return nil, fmt.Errorf("nonce generation failed: %w", err)
	}

	// Magic header verifies decryption independently of the GCM tag
	plain := make([]byte, 4+len(message))
	binary.BigEndian.PutUint32(plain[:4], spec.MAGIC_HEADER)
	copy(plain[4:], message)

	out := make([]byte, 0, overhead+len(message))
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plain, nil), nil
}

// Open reverses Seal.
func Open(sealed, passphrase []byte) ([]byte, error) {
	if len(sealed) < overhead {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrEnvelope, len(sealed), overhead)
	}

	salt := sealed[:spec.SALT_SIZE]
	nonce := sealed[spec.SALT_SIZE : spec.SALT_SIZE+spec.NONCE_SIZE]
	ciphertext := sealed[spec.SALT_SIZE+spec.NONCE_SIZE:]

	gcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}

	if magic := binary.BigEndian.Uint32(plain[:4]); magic != spec.MAGIC_HEADER {
		return nil, fmt.Errorf("%w: invalid magic header %X (expected %X)", ErrEnvelope, magic, uint32(spec.MAGIC_HEADER))
	}
	return plain[4:], nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("GCM creation failed: %w", err)
	}
	return gcm, nil
}
