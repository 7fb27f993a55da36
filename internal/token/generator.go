// AngelaMos | 2026
// generator.go

// Package token issues the opaque 256-bit tokens that address a tag's
// contact page, and derives decoys that share their exact shape.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	ByteLength = 32
	Length     = ByteLength * 2
)

func Generate() (string, error) {
	return GenerateFrom(rand.Reader)
}

func GenerateFrom(r io.Reader) (string, error) {
	buf := make([]byte, ByteLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IsWellFormed reports whether s has the exact shape of an issued token:
// 64 lowercase hex characters.
func IsWellFormed(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
