// AngelaMos | 2026
// security.go

package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	MinSecretLength  = 32
	derivedKeyLength = 32
	fingerprintLen   = 12
)

// DeriveKey expands a server secret into a purpose-bound key. Different info
// strings yield independent keys from the same secret.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf(
			"derive key: secret must be at least %d bytes: %w",
			MinSecretLength,
			ErrInvalidInput,
		)
	}

	reader := hkdf.New(sha256.New, secret, nil, []byte(info))

	key := make([]byte, derivedKeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	return key, nil
}

// Fingerprint returns a short keyed label for a secret value so it can be
// correlated in logs without being written out. Without the key the label
// cannot be recomputed, which matters for low-entropy values like tag codes.
func Fingerprint(key []byte, value string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))[:fingerprintLen]
}
