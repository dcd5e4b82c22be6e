// Package felt normalizes Starknet field elements.
//
// Field elements are compared and stored as canonical hex strings: lowercase,
// 0x-prefixed, no leading zeros, "0x0" for zero. They never travel as native
// machine integers because they are up to 252 bits wide.
package felt

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// ErrOutOfRange is returned for values that are negative or not below the
// Stark prime.
var ErrOutOfRange = errors.New("value is outside the field")

// Felt is an element of the Stark prime field.
type Felt struct {
	val fp.Element
}

// Zero is the additive identity.
var Zero = Felt{}

// Parse reads a field element from hex ("0x...") or decimal text.
// Surrounding whitespace and one pair of double quotes are ignored.
func Parse(s string) (Felt, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`)
	if s == "" {
		return Felt{}, errors.New("empty field element")
	}

	digits, base := s, 10
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		digits, base = s[2:], 16
	}
	// SetString allows a sign; "0x-1" and "+5" are not field elements.
	v := new(big.Int)
	if _, ok := v.SetString(digits, base); !ok || digits[0] == '-' || digits[0] == '+' {
		return Felt{}, fmt.Errorf("can't parse %q as a field element", s)
	}

	if v.Sign() < 0 || v.Cmp(fp.Modulus()) >= 0 {
		return Felt{}, fmt.Errorf("%w: %s", ErrOutOfRange, s)
	}

	var f Felt
	f.val.SetBigInt(v)
	return f, nil
}

// FromUint64 builds a field element from an unsigned integer.
func FromUint64(v uint64) Felt {
	var f Felt
	f.val.SetUint64(v)
	return f
}

// Canonical parses s and returns its canonical hex form.
func Canonical(s string) (string, error) {
	f, err := Parse(s)
	if err != nil {
		return "", err
	}
	return f.String(), nil
}

// String returns the canonical hex representation.
func (f Felt) String() string {
	return "0x" + f.val.Text(16)
}

// Equal reports whether both elements are the same.
func (f Felt) Equal(other Felt) bool {
	return f.val.Equal(&other.val)
}

// IsZero reports whether f is zero.
func (f Felt) IsZero() bool {
	return f.val.IsZero()
}

// MarshalText implements encoding.TextMarshaler.
func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Felt) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
