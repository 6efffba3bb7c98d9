// Package transform defines the mutations recorded during an execution and
// applied to the global state when the effect is committed.
//
// Multiple transforms to the same key are combined in application order. The
// combination never picks a side silently: a pair that cannot be combined is
// reported with ErrConflict, and an addition to a value of another type with
// ErrTypeMismatch.
package transform

import (
	"fmt"

	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

var (
	// ErrConflict is returned when two transforms of the same key cannot be
	// combined.
	ErrConflict = xerrors.New("conflicting transforms")

	// ErrTypeMismatch is returned when a transform does not apply to the type
	// of the current value.
	ErrTypeMismatch = xerrors.New("type mismatch")
)

// Kind is the discriminant of a transform.
type Kind uint8

const (
	Identity Kind = iota
	Write
	AddInt32
	AddUInt64
	AddUInt256
	AddUInt512
	AddKeys
	Failure
)

var kindNames = [...]string{"Identity", "Write", "AddInt32", "AddUInt64",
	"AddUInt256", "AddUInt512", "AddKeys", "Failure"}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Transform is the mutation of a single key.
type Transform struct {
	kind   Kind
	value  value.Value
	keys   value.NamedKeys
	reason string
}

// NewIdentity returns the transform that keeps the value as is.
func NewIdentity() Transform {
	return Transform{kind: Identity}
}

// NewWrite returns the transform that replaces the value.
func NewWrite(v value.Value) Transform {
	return Transform{kind: Write, value: v}
}

// NewAddInt32 returns a delta for an Int32 value.
func NewAddInt32(delta int32) Transform {
	return Transform{kind: AddInt32, value: value.Int32(delta)}
}

// NewAddUInt64 returns a delta for a UInt64 value.
func NewAddUInt64(delta uint64) Transform {
	return Transform{kind: AddUInt64, value: value.UInt64(delta)}
}

// NewAddUInt256 returns a delta for a U256 value.
func NewAddUInt256(delta value.U256) Transform {
	return Transform{kind: AddUInt256, value: delta}
}

// NewAddUInt512 returns a delta for a U512 value.
func NewAddUInt512(delta value.U512) Transform {
	return Transform{kind: AddUInt512, value: delta}
}

// NewAddKeys returns the transform that inserts named keys into an account or
// a contract.
func NewAddKeys(keys value.NamedKeys) Transform {
	return Transform{kind: AddKeys, keys: keys.Clone()}
}

// NewFailure returns a transform that fails when applied.
func NewFailure(reason string) Transform {
	return Transform{kind: Failure, reason: reason}
}

// NewAdd returns the delta transform matching the type of the value.
func NewAdd(delta value.Value) (Transform, error) {
	switch v := delta.(type) {
	case value.Int32:
		return NewAddInt32(int32(v)), nil
	case value.UInt64:
		return NewAddUInt64(uint64(v)), nil
	case value.U256:
		return NewAddUInt256(v), nil
	case value.U512:
		return NewAddUInt512(v), nil
	default:
		return Transform{}, xerrors.Errorf("%s cannot be added: %w", delta.Type(), ErrTypeMismatch)
	}
}

// Kind returns the discriminant.
func (t Transform) Kind() Kind {
	return t.kind
}

// Value returns the written value or the delta, or nil.
func (t Transform) Value() value.Value {
	return t.value
}

// Keys returns the named keys of an AddKeys transform.
func (t Transform) Keys() value.NamedKeys {
	return t.keys
}

// Reason returns the reason of a Failure transform.
func (t Transform) Reason() string {
	return t.reason
}

// IsAdd returns true for the commutative additions.
func (t Transform) IsAdd() bool {
	switch t.kind {
	case AddInt32, AddUInt64, AddUInt256, AddUInt512, AddKeys:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (t Transform) String() string {
	switch t.kind {
	case Identity:
		return "Identity"
	case Failure:
		return fmt.Sprintf("Failure(%s)", t.reason)
	case AddKeys:
		return fmt.Sprintf("AddKeys(%v)", t.keys.Names())
	default:
		return fmt.Sprintf("%s(%v)", t.kind, t.value)
	}
}

// Apply returns the value after the transform. The current value is nil when
// the key does not exist yet, in which case only Write and Identity can apply.
func (t Transform) Apply(current value.Value) (value.Value, error) {
	switch t.kind {
	case Identity:
		return current, nil
	case Write:
		return t.value, nil
	case Failure:
		return nil, xerrors.Errorf("failure transform: %s", t.reason)
	}

	if current == nil {
		return nil, xerrors.Errorf("%s on missing value: %w", t.kind, ErrTypeMismatch)
	}

	switch t.kind {
	case AddInt32:
		cur, ok := current.(value.Int32)
		if !ok {
			return nil, mismatch(t.kind, current)
		}

		sum := int64(cur) + int64(t.value.(value.Int32))
		if sum > 1<<31-1 || sum < -(1<<31) {
			return nil, value.ErrOverflow
		}

		return value.Int32(sum), nil
	case AddUInt64:
		cur, ok := current.(value.UInt64)
		if !ok {
			return nil, mismatch(t.kind, current)
		}

		delta := t.value.(value.UInt64)
		if cur+delta < cur {
			return nil, value.ErrOverflow
		}

		return cur + delta, nil
	case AddUInt256:
		cur, ok := current.(value.U256)
		if !ok {
			return nil, mismatch(t.kind, current)
		}

		return cur.Add(t.value.(value.U256))
	case AddUInt512:
		cur, ok := current.(value.U512)
		if !ok {
			return nil, mismatch(t.kind, current)
		}

		return cur.Add(t.value.(value.U512))
	case AddKeys:
		return addKeys(current, t.keys)
	default:
		return nil, xerrors.Errorf("unknown transform %s", t.kind)
	}
}

func mismatch(kind Kind, current value.Value) error {
	return xerrors.Errorf("%s on %s: %w", kind, current.Type(), ErrTypeMismatch)
}

func addKeys(current value.Value, keys value.NamedKeys) (value.Value, error) {
	switch v := current.(type) {
	case value.Account:
		nk := v.NamedKeys.Clone()
		for name, k := range keys {
			nk[name] = k
		}

		v.NamedKeys = nk
		return v, nil
	case value.Contract:
		nk := v.NamedKeys.Clone()
		for name, k := range keys {
			nk[name] = k
		}

		v.NamedKeys = nk
		return v, nil
	default:
		return nil, mismatch(AddKeys, current)
	}
}

// Combine returns the single transform equivalent to applying first then
// second.
//
// Identity is neutral and Failure absorbs everything. A Write followed by an
// addition is folded into a Write of the sum, an addition followed by a Write
// is the Write, and two additions of the same kind add up. Any other pair is
// a conflict.
func Combine(first, second Transform) (Transform, error) {
	switch {
	case first.kind == Failure:
		return first, nil
	case second.kind == Failure:
		return second, nil
	case second.kind == Identity:
		return first, nil
	case first.kind == Identity:
		return second, nil
	case second.kind == Write:
		return second, nil
	case first.kind == Write:
		v, err := second.Apply(first.value)
		if err != nil {
			return Transform{}, xerrors.Errorf("%s then %s (%v): %w", first.kind, second.kind, err, ErrConflict)
		}

		return NewWrite(v), nil
	case first.kind != second.kind:
		return Transform{}, xerrors.Errorf("%s then %s: %w", first.kind, second.kind, ErrConflict)
	case first.kind == AddKeys:
		nk := first.keys.Clone()
		for name, k := range second.keys {
			nk[name] = k
		}

		return Transform{kind: AddKeys, keys: nk}, nil
	default:
		sum, err := second.Apply(first.value)
		if err != nil {
			return Transform{}, xerrors.Errorf("%s then %s (%v): %w", first.kind, second.kind, err, ErrConflict)
		}

		return Transform{kind: first.kind, value: sum}, nil
	}
}
