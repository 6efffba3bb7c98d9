// Package gas defines the cost unit of the execution and the counter that
// accumulates it during one session.
//
// The arithmetic is exact integer arithmetic over 512 bits: the sum of the
// charges of a session does not depend on how independent sub-charges were
// grouped, and no addition ever wraps.
package gas

import (
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

// ErrGasLimit is returned when a charge would exceed the limit of the
// session.
var ErrGasLimit = xerrors.New("gas limit exceeded")

// Gas is an amount of gas. The zero value is 0.
type Gas struct {
	v value.U512
}

// FromUint64 returns the amount.
func FromUint64(v uint64) Gas {
	return Gas{v: value.NewU512(v)}
}

// FromU512 returns the amount.
func FromU512(v value.U512) Gas {
	return Gas{v: v}
}

// Parse reads a decimal amount.
func Parse(s string) (Gas, error) {
	v, err := value.ParseU512(s)
	if err != nil {
		return Gas{}, xerrors.Errorf("invalid gas '%s': %v", s, err)
	}

	return FromU512(v), nil
}

// Max is the largest amount.
var Max = FromU512(value.MaxU512)

// Value returns the amount as a 512-bit integer.
func (g Gas) Value() value.U512 {
	return g.v
}

// IsZero returns true for no gas.
func (g Gas) IsZero() bool {
	return g.v.IsZero()
}

// Cmp returns -1, 0 or 1 when g is lower, equal or greater than o.
func (g Gas) Cmp(o Gas) int {
	return g.v.Cmp(o.v)
}

// Add returns g+o, or an error when the sum does not fit.
func (g Gas) Add(o Gas) (Gas, error) {
	sum, err := g.v.Add(o.v)
	if err != nil {
		return Gas{}, err
	}

	return Gas{v: sum}, nil
}

// Sub returns g-o, or an error when o is greater.
func (g Gas) Sub(o Gas) (Gas, error) {
	diff, err := g.v.Sub(o.v)
	if err != nil {
		return Gas{}, err
	}

	return Gas{v: diff}, nil
}

// String returns the decimal form.
func (g Gas) String() string {
	return g.v.String()
}

// Counter accumulates the gas charged during a session and enforces its
// limit. It is not safe for concurrent use: a session is single threaded.
type Counter struct {
	limit Gas
	used  Gas
}

// NewCounter returns a counter starting at zero.
func NewCounter(limit Gas) *Counter {
	return &Counter{limit: limit}
}

// NewCounterWithBaseline returns a counter already charged with the amount.
// It fails when the baseline is above the limit.
func NewCounterWithBaseline(limit, baseline Gas) (*Counter, error) {
	c := NewCounter(limit)

	err := c.Charge(baseline)
	if err != nil {
		return c, err
	}

	return c, nil
}

// Charge adds the amount to the counter. When the sum would exceed the limit
// the counter is set to the limit and ErrGasLimit is returned.
func (c *Counter) Charge(amount Gas) error {
	sum, err := c.used.Add(amount)
	if err != nil || sum.Cmp(c.limit) > 0 {
		used := c.used
		c.used = c.limit

		return xerrors.Errorf("charging %s with %s used of %s: %w", amount, used, c.limit, ErrGasLimit)
	}

	c.used = sum

	return nil
}

// Used returns the gas charged so far.
func (c *Counter) Used() Gas {
	return c.used
}

// Limit returns the limit of the counter.
func (c *Counter) Limit() Gas {
	return c.limit
}

// Remaining returns the gas left before the limit.
func (c *Counter) Remaining() Gas {
	left, err := c.limit.Sub(c.used)
	if err != nil {
		return Gas{}
	}

	return left
}
