// AngelaMos | 2026
// codec.go

// Package identifier implements the six character display code printed on
// tags: three letters followed by three digits, all within a class distinct.
package identifier

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"
)

const (
	Length       = 6
	LetterCount  = 3
	DigitCount   = 3
	Letters      = "ABCDEFGHJKLMNOPQRSTUVWXYZ"
	Digits       = "123456789"
	letterRegexp = "[A-HJ-Z]"
	digitRegexp  = "[1-9]"
)

var shapePattern = regexp.MustCompile(
	"^" + letterRegexp + "{3}" + digitRegexp + "{3}$",
)

// Human readers confuse these pairs. The right-hand side is the canonical
// form; the left-hand side is never part of an alphabet.
var ambiguous = strings.NewReplacer(
	"0", "O",
	"I", "1",
)

const (
	msgLength         = "code must be exactly 6 characters"
	msgShape          = "code must be three letters followed by three digits (no I or 0)"
	msgLettersRepeat  = "the three letters must all be different"
	msgDigitsRepeat   = "the three digits must all be different"
	msgDidYouMeanTmpl = "did you mean %q?"
)

type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func Normalize(raw string) string {
	upper := ambiguous.Replace(strings.ToUpper(raw))

	var b strings.Builder
	b.Grow(Length)

	for _, r := range upper {
		if b.Len() == Length {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func Validate(candidate string) Validation {
	if len(candidate) != Length {
		return Validation{Errors: []string{msgLength}}
	}

	if !shapePattern.MatchString(candidate) {
		return Validation{Errors: []string{msgShape}}
	}

	var errs []string
	if !allDistinct(candidate[:LetterCount]) {
		errs = append(errs, msgLettersRepeat)
	}
	if !allDistinct(candidate[LetterCount:]) {
		errs = append(errs, msgDigitsRepeat)
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}

func IsValid(candidate string) bool {
	return Validate(candidate).Valid
}

// Suggest normalizes raw finder input and explains what is wrong with it.
// A case-only difference does not produce a "did you mean" hint.
func Suggest(raw string) (string, []string) {
	candidate := Normalize(raw)

	var diagnostics []string
	if candidate != strings.ToUpper(strings.TrimSpace(raw)) && candidate != "" {
		diagnostics = append(diagnostics, fmt.Sprintf(msgDidYouMeanTmpl, candidate))
	}

	diagnostics = append(diagnostics, Validate(candidate).Errors...)

	return candidate, diagnostics
}

// Generate draws a uniformly random code of the right shape. Repeated
// characters are possible; callers reject those with Validate.
func Generate(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}

	buf := make([]byte, 0, Length)
	for range LetterCount {
		c, err := pick(r, Letters)
		if err != nil {
			return "", fmt.Errorf("generate identifier: %w", err)
		}
		buf = append(buf, c)
	}
	for range DigitCount {
		c, err := pick(r, Digits)
		if err != nil {
			return "", fmt.Errorf("generate identifier: %w", err)
		}
		buf = append(buf, c)
	}

	return string(buf), nil
}

func pick(r io.Reader, alphabet string) (byte, error) {
	n, err := rand.Int(r, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}

func allDistinct(s string) bool {
	for i := 0; i < len(s); i++ {
		for j := i + 1; j < len(s); j++ {
			if s[i] == s[j] {
				return false
			}
		}
	}
	return true
}
