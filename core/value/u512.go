package value

import (
	"math/big"
	"math/bits"

	"golang.org/x/xerrors"
)

const u512Words = 8

// U512Size is the number of bytes of a 512-bit integer.
const U512Size = u512Words * 8

var (
	// ErrOverflow is returned when an addition does not fit the integer.
	ErrOverflow = xerrors.New("arithmetic overflow")

	// ErrUnderflow is returned when a subtraction would be negative.
	ErrUnderflow = xerrors.New("arithmetic underflow")
)

// U512 is an unsigned 512-bit integer. The zero value is 0. It is a
// comparable value type and every arithmetic operation is checked.
//
// - implements value.Value
type U512 struct {
	// words in little-endian order.
	words [u512Words]uint64
}

// MaxU512 is the largest value of a U512.
var MaxU512 = func() U512 {
	var m U512
	for i := range m.words {
		m.words[i] = ^uint64(0)
	}
	return m
}()

// NewU512 returns the integer of the given value.
func NewU512(v uint64) U512 {
	var u U512
	u.words[0] = v
	return u
}

// U512FromBig converts a big integer, failing when it is negative or does not
// fit in 512 bits.
func U512FromBig(b *big.Int) (U512, error) {
	if b.Sign() < 0 {
		return U512{}, ErrUnderflow
	}

	if b.BitLen() > U512Size*8 {
		return U512{}, ErrOverflow
	}

	var u U512
	for i, w := range b.Bits() {
		// big.Word is 32 or 64 bits depending on the platform.
		if bits.UintSize == 64 {
			u.words[i] = uint64(w)
		} else {
			u.words[i/2] |= uint64(w) << (32 * uint(i%2))
		}
	}

	return u, nil
}

// ParseU512 parses a decimal integer.
func ParseU512(s string) (U512, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return U512{}, xerrors.Errorf("invalid integer '%s'", s)
	}

	return U512FromBig(b)
}

// Type implements value.Value.
func (U512) Type() Type {
	return TypeU512
}

// Big returns the integer as a big integer.
func (u U512) Big() *big.Int {
	b := new(big.Int)
	for i := u512Words - 1; i >= 0; i-- {
		b.Lsh(b, 64)
		b.Or(b, new(big.Int).SetUint64(u.words[i]))
	}

	return b
}

// String returns the decimal form.
func (u U512) String() string {
	return u.Big().String()
}

// IsZero returns true for 0.
func (u U512) IsZero() bool {
	return u == U512{}
}

// IsUint64 returns true when the value fits in 64 bits.
func (u U512) IsUint64() bool {
	for _, w := range u.words[1:] {
		if w != 0 {
			return false
		}
	}
	return true
}

// Uint64 returns the low 64 bits.
func (u U512) Uint64() uint64 {
	return u.words[0]
}

// Cmp returns -1, 0 or 1 when u is lower, equal or greater than o.
func (u U512) Cmp(o U512) int {
	for i := u512Words - 1; i >= 0; i-- {
		switch {
		case u.words[i] < o.words[i]:
			return -1
		case u.words[i] > o.words[i]:
			return 1
		}
	}
	return 0
}

// Add returns u+o or ErrOverflow.
func (u U512) Add(o U512) (U512, error) {
	var res U512
	var carry uint64

	for i := 0; i < u512Words; i++ {
		res.words[i], carry = bits.Add64(u.words[i], o.words[i], carry)
	}

	if carry != 0 {
		return U512{}, ErrOverflow
	}

	return res, nil
}

// Sub returns u-o or ErrUnderflow.
func (u U512) Sub(o U512) (U512, error) {
	var res U512
	var borrow uint64

	for i := 0; i < u512Words; i++ {
		res.words[i], borrow = bits.Sub64(u.words[i], o.words[i], borrow)
	}

	if borrow != 0 {
		return U512{}, ErrUnderflow
	}

	return res, nil
}

// littleEndian returns the 64 bytes of the integer, least significant first.
func (u U512) littleEndian() []byte {
	buffer := make([]byte, U512Size)
	for i, w := range u.words {
		for j := 0; j < 8; j++ {
			buffer[i*8+j] = byte(w >> (8 * j))
		}
	}
	return buffer
}

// Bytes returns the compact form: one length byte followed by the
// little-endian bytes without the most significant zeros. Zero is a single
// 0 byte.
func (u U512) Bytes() []byte {
	le := u.littleEndian()

	n := len(le)
	for n > 0 && le[n-1] == 0 {
		n--
	}

	out := make([]byte, 1+n)
	out[0] = byte(n)
	copy(out[1:], le[:n])

	return out
}

// DecodeU512 reads the compact form and returns the integer and the number of
// bytes consumed.
func DecodeU512(data []byte) (U512, int, error) {
	if len(data) == 0 {
		return U512{}, 0, xerrors.New("missing length byte")
	}

	n := int(data[0])
	if n > U512Size {
		return U512{}, 0, xerrors.Errorf("length %d exceeds %d bytes", n, U512Size)
	}

	if len(data) < 1+n {
		return U512{}, 0, xerrors.Errorf("expected %d bytes, got %d", n, len(data)-1)
	}

	var u U512
	for i, b := range data[1 : 1+n] {
		u.words[i/8] |= uint64(b) << (8 * uint(i%8))
	}

	return u, 1 + n, nil
}
