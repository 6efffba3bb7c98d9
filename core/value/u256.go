package value

import (
	"math/big"

	"github.com/holiman/uint256"
	"golang.org/x/xerrors"
)

// U256 is an unsigned 256-bit integer backed by holiman/uint256.
//
// - implements value.Value
type U256 struct {
	inner uint256.Int
}

// NewU256 returns the integer of the given value.
func NewU256(v uint64) U256 {
	return U256{inner: *uint256.NewInt(v)}
}

// U256FromBig converts a big integer, failing when it does not fit.
func U256FromBig(b *big.Int) (U256, error) {
	if b.Sign() < 0 {
		return U256{}, ErrUnderflow
	}

	i, overflow := uint256.FromBig(b)
	if overflow {
		return U256{}, ErrOverflow
	}

	return U256{inner: *i}, nil
}

// ParseU256 parses a decimal integer.
func ParseU256(s string) (U256, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return U256{}, xerrors.Errorf("invalid integer '%s'", s)
	}

	return U256FromBig(b)
}

// Type implements value.Value.
func (U256) Type() Type {
	return TypeU256
}

// Big returns the integer as a big integer.
func (u U256) Big() *big.Int {
	return u.inner.ToBig()
}

// String returns the decimal form.
func (u U256) String() string {
	return u.Big().String()
}

// Cmp returns -1, 0 or 1 when u is lower, equal or greater than o.
func (u U256) Cmp(o U256) int {
	return u.inner.Cmp(&o.inner)
}

// Add returns u+o or ErrOverflow.
func (u U256) Add(o U256) (U256, error) {
	var res uint256.Int
	res.Add(&u.inner, &o.inner)

	if res.Lt(&u.inner) {
		return U256{}, ErrOverflow
	}

	return U256{inner: res}, nil
}

// Bytes returns the compact form, like U512.Bytes.
func (u U256) Bytes() []byte {
	be := u.inner.Bytes()

	out := make([]byte, 1+len(be))
	out[0] = byte(len(be))
	for i, b := range be {
		out[len(be)-i] = b
	}

	return out
}

// DecodeU256 reads the compact form and returns the integer and the number of
// bytes consumed.
func DecodeU256(data []byte) (U256, int, error) {
	if len(data) == 0 {
		return U256{}, 0, xerrors.New("missing length byte")
	}

	n := int(data[0])
	if n > 32 {
		return U256{}, 0, xerrors.Errorf("length %d exceeds 32 bytes", n)
	}

	if len(data) < 1+n {
		return U256{}, 0, xerrors.Errorf("expected %d bytes, got %d", n, len(data)-1)
	}

	be := make([]byte, n)
	for i := 0; i < n; i++ {
		be[n-1-i] = data[1+i]
	}

	var res uint256.Int
	res.SetBytes(be)

	return U256{inner: res}, 1 + n, nil
}
