// AngelaMos | 2026
// codec_test.go

package identifier

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"zero read as letter O", "v0m493", "VOM493"},
		{"already canonical", "VOM493", "VOM493"},
		{"inner whitespace", "vom 493", "VOM493"},
		{"capital I read as one", "ABC4I2", "ABC412"},
		{"punctuation stripped", "a-b.c/1_2 3", "ABC123"},
		{"truncated to six", "ABC1234567", "ABC123"},
		{"short input stays short", "ab", "AB"},
		{"empty", "", ""},
		{"only junk", "!!  --", ""},
		{"unicode dotless i uppercases to I", "abcı23", "ABC123"},
		{"non ascii dropped", "äbc123", "BC123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "v0m493", "vom 493", "iiiiii", "000000", "I0I0I0", "ABC123",
		"  x y z 9 8 7  ", "ÀÉÎ", "ı0ı0", strings.Repeat("q0", 20),
		"\t\nabc\x00123", "ＡＢＣ１２３",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		assert.LessOrEqual(t, len(once), Length)
		assert.NotContains(t, once, "0")
		assert.NotContains(t, once, "I")
	}
}

func TestNormalize_AmbiguousVariantsCollapse(t *testing.T) {
	assert.Equal(t, Normalize("v0m493"), Normalize("VOM493"))
	assert.Equal(t, "VOM493", Normalize("VOM493"))
	assert.Equal(t, "VOM493", Normalize("vom 493"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		valid   bool
		wantErr string
	}{
		{"valid", "ABC123", true, ""},
		{"valid with O", "VOM493", true, ""},
		{"all letters repeated", "AAA123", false, msgLettersRepeat},
		{"letters collapse to two", "ABA123", false, msgLettersRepeat},
		{"zero is not a digit", "ABC000", false, msgShape},
		{"digits collapse to two", "ABC121", false, msgDigitsRepeat},
		{"zero in digit slot", "ABC010", false, msgShape},
		{"I is not a letter", "AIC123", false, msgShape},
		{"digits first", "123ABC", false, msgShape},
		{"lowercase", "abc123", false, msgShape},
		{"too short", "ABC12", false, msgLength},
		{"too long", "ABC1234", false, msgLength},
		{"empty", "", false, msgLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.wantErr == "" {
				assert.Empty(t, got.Errors)
				return
			}
			assert.Contains(t, got.Errors, tt.wantErr)
		})
	}
}

func TestValidate_ReportsBothClasses(t *testing.T) {
	got := Validate("AAB113")
	assert.False(t, got.Valid)
	assert.Equal(t, []string{msgLettersRepeat, msgDigitsRepeat}, got.Errors)
}

func TestSuggest(t *testing.T) {
	t.Run("ambiguous characters produce a hint", func(t *testing.T) {
		candidate, diags := Suggest("v0m493")
		assert.Equal(t, "VOM493", candidate)
		assert.Equal(t, []string{`did you mean "VOM493"?`}, diags)
	})

	t.Run("case only change is silent", func(t *testing.T) {
		candidate, diags := Suggest("vom493")
		assert.Equal(t, "VOM493", candidate)
		assert.Empty(t, diags)
	})

	t.Run("hint plus validation errors", func(t *testing.T) {
		candidate, diags := Suggest("a-a-a 1 2 3")
		assert.Equal(t, "AAA123", candidate)
		require.Len(t, diags, 2)
		assert.Equal(t, `did you mean "AAA123"?`, diags[0])
		assert.Equal(t, msgLettersRepeat, diags[1])
	})

	t.Run("nothing usable", func(t *testing.T) {
		candidate, diags := Suggest("???")
		assert.Empty(t, candidate)
		assert.Equal(t, []string{msgLength}, diags)
	})
}

func TestGenerate(t *testing.T) {
	for range 500 {
		code, err := Generate(nil)
		require.NoError(t, err)
		require.Len(t, code, Length)
		assert.Regexp(t, shapePattern, code)
	}
}

func TestGenerate_DeterministicReader(t *testing.T) {
	seed := bytes.Repeat([]byte{0x00}, 64)

	code, err := Generate(bytes.NewReader(seed))
	require.NoError(t, err)
	assert.Equal(t, "AAA111", code)
	assert.False(t, IsValid(code))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestGenerate_PropagatesSourceFailure(t *testing.T) {
	_, err := Generate(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}
