// AngelaMos | 2026
// keyspace.go

package identifier

// LetterTriples is the number of letter groups with no repeated letter.
func LetterTriples() int64 {
	return distinctTriples(int64(len(Letters)))
}

// DigitTriples is the number of digit groups with no repeated digit.
func DigitTriples() int64 {
	return distinctTriples(int64(len(Digits)))
}

// Capacity is the number of codes that pass Validate.
func Capacity() int64 {
	return LetterTriples() * DigitTriples()
}

// RawSpace counts every code of the right shape, repeats included.
func RawSpace() int64 {
	l := int64(len(Letters))
	d := int64(len(Digits))
	return l * l * l * d * d * d
}

func distinctTriples(n int64) int64 {
	return n * (n - 1) * (n - 2)
}
