// AngelaMos | 2026
// decoy.go

package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/carterperez-dev/tagback/internal/core"
)

const (
	decoyKeyInfo = "tagback decoy v1"
	labelKeyInfo = "tagback log label v1"
)

const (
	NamespaceLookup  = "lookup"
	NamespaceExpired = "lookup:expired"
	NamespaceFault   = "lookup:fault"
	NamespaceMissing = "lookup:missing"
)

// DecoyDeriver maps arbitrary input to a value indistinguishable from an
// issued token. The same secret and input always give the same decoy.
type DecoyDeriver struct {
	key      []byte
	labelKey []byte
}

func NewDecoyDeriver(secret []byte) (*DecoyDeriver, error) {
	key, err := core.DeriveKey(secret, decoyKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("decoy deriver: %w", err)
	}

	labelKey, err := core.DeriveKey(secret, labelKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("decoy deriver: %w", err)
	}

	return &DecoyDeriver{key: key, labelKey: labelKey}, nil
}

// Label returns a keyed log fingerprint for input. Its key is independent
// of the decoy key, so labels in logs reveal nothing about decoy output.
func (d *DecoyDeriver) Label(input string) string {
	return core.Fingerprint(d.labelKey, input)
}

func (d *DecoyDeriver) Derive(namespace, input string) string {
	mac := hmac.New(sha256.New, d.key)
	mac.Write([]byte(namespace))
	mac.Write([]byte{0})
	mac.Write([]byte(input))
	return hex.EncodeToString(mac.Sum(nil))
}
