// AngelaMos | 2026
// token_test.go

package token

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/tagback/internal/core"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{}, 1000)

	for range 1000 {
		tok, err := Generate()
		require.NoError(t, err)
		require.Len(t, tok, Length)
		require.True(t, IsWellFormed(tok))

		_, dup := seen[tok]
		require.False(t, dup, "duplicate token generated")
		seen[tok] = struct{}{}
	}
}

func TestGenerateFrom(t *testing.T) {
	tok, err := GenerateFrom(bytes.NewReader(bytes.Repeat([]byte{0xab}, ByteLength)))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ab", ByteLength), tok)
}

type exhaustedReader struct{}

func (exhaustedReader) Read([]byte) (int, error) {
	return 0, errors.New("source exhausted")
}

func TestGenerateFrom_PropagatesFailure(t *testing.T) {
	_, err := GenerateFrom(exhaustedReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source exhausted")

	_, err = GenerateFrom(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
}

func TestIsWellFormed(t *testing.T) {
	valid := strings.Repeat("0f", ByteLength)

	assert.True(t, IsWellFormed(valid))
	assert.False(t, IsWellFormed(""))
	assert.False(t, IsWellFormed(valid[:Length-1]))
	assert.False(t, IsWellFormed(valid+"0"))
	assert.False(t, IsWellFormed(strings.ToUpper(valid)))
	assert.False(t, IsWellFormed(strings.Repeat("g", Length)))
}

func TestNewDecoyDeriver_RequiresStrongSecret(t *testing.T) {
	_, err := NewDecoyDeriver([]byte("short"))
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = NewDecoyDeriver(nil)
	require.Error(t, err)
}

func TestDecoyDeriver(t *testing.T) {
	d, err := NewDecoyDeriver(testSecret)
	require.NoError(t, err)

	t.Run("shape matches a real token", func(t *testing.T) {
		for _, in := range []string{"", "ABC123", "x", strings.Repeat("z", 4096)} {
			got := d.Derive(NamespaceLookup, in)
			assert.Len(t, got, Length)
			assert.True(t, IsWellFormed(got))
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t,
			d.Derive(NamespaceLookup, "ABC123"),
			d.Derive(NamespaceLookup, "ABC123"),
		)
	})

	t.Run("input sensitive", func(t *testing.T) {
		assert.NotEqual(t,
			d.Derive(NamespaceLookup, "ABC123"),
			d.Derive(NamespaceLookup, "ABC124"),
		)
	})

	t.Run("namespaces are separated", func(t *testing.T) {
		assert.NotEqual(t,
			d.Derive(NamespaceLookup, "ABC123"),
			d.Derive(NamespaceExpired, "ABC123"),
		)
		assert.NotEqual(t,
			d.Derive("lookup", ":expiredABC123"),
			d.Derive("lookup:expired", "ABC123"),
		)
	})

	t.Run("secret dependent", func(t *testing.T) {
		other, err := NewDecoyDeriver([]byte("fedcba9876543210fedcba9876543210"))
		require.NoError(t, err)
		assert.NotEqual(t,
			d.Derive(NamespaceLookup, "ABC123"),
			other.Derive(NamespaceLookup, "ABC123"),
		)
	})
}

func TestDecoyDeriver_Label(t *testing.T) {
	d, err := NewDecoyDeriver(testSecret)
	require.NoError(t, err)

	other, err := NewDecoyDeriver(bytes.Repeat([]byte("k"), core.MinSecretLength))
	require.NoError(t, err)

	label := d.Label("ABC123")
	assert.Len(t, label, 12)
	assert.Equal(t, label, d.Label("ABC123"))
	assert.NotEqual(t, label, d.Label("ABC124"))
	assert.NotEqual(t, label, other.Label("ABC123"), "label must depend on the secret")
	assert.False(t, strings.HasPrefix(d.Derive(NamespaceLookup, "ABC123"), label))
}
