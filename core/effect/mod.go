// Package effect defines the record of the keys touched by an execution: how
// each key was accessed and the transform to apply to it on commit.
package effect

import (
	"sort"

	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/transform"
	"golang.org/x/xerrors"
)

// Op is the kind of access to a key.
type Op uint8

const (
	NoOp Op = iota
	Read
	Write
	Add
)

// String implements fmt.Stringer.
func (op Op) String() string {
	switch op {
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Add:
		return "Add"
	default:
		return "NoOp"
	}
}

// Combine returns the access that covers both. NoOp is neutral, a Write covers
// everything and a Read mixed with an Add becomes a Write.
func (op Op) Combine(other Op) Op {
	switch {
	case op == NoOp:
		return other
	case other == NoOp:
		return op
	case op == Write || other == Write:
		return Write
	case op == other:
		return op
	default:
		return Write
	}
}

// Effect is the set of ops and transforms of one execution.
type Effect struct {
	Ops        map[key.Key]Op
	Transforms map[key.Key]transform.Transform
}

// New returns an empty effect.
func New() Effect {
	return Effect{
		Ops:        make(map[key.Key]Op),
		Transforms: make(map[key.Key]transform.Transform),
	}
}

// IsEmpty returns true when nothing was recorded.
func (e Effect) IsEmpty() bool {
	return len(e.Ops) == 0 && len(e.Transforms) == 0
}

// Size returns the number of keys touched.
func (e Effect) Size() int {
	return len(e.Keys())
}

// Clone returns a deep enough copy: the maps are new, the transforms are
// values.
func (e Effect) Clone() Effect {
	clone := New()

	for k, op := range e.Ops {
		clone.Ops[k] = op
	}

	for k, tr := range e.Transforms {
		clone.Transforms[k] = tr
	}

	return clone
}

// AddOp records the access, combining it with a previous one.
func (e Effect) AddOp(k key.Key, op Op) {
	e.Ops[k] = e.Ops[k].Combine(op)
}

// AddTransform records the transform, combining it with a previous one of the
// same key in application order.
func (e Effect) AddTransform(k key.Key, tr transform.Transform) error {
	prev, found := e.Transforms[k]
	if !found {
		e.Transforms[k] = tr
		return nil
	}

	combined, err := transform.Combine(prev, tr)
	if err != nil {
		return xerrors.Errorf("key %s: %w", k, err)
	}

	e.Transforms[k] = combined

	return nil
}

// Merge appends the other effect after this one. The receiver is left
// untouched and a new effect is returned.
func (e Effect) Merge(other Effect) (Effect, error) {
	res := e.Clone()

	for _, k := range other.Keys() {
		op, found := other.Ops[k]
		if found {
			res.AddOp(k, op)
		}

		tr, found := other.Transforms[k]
		if !found {
			continue
		}

		err := res.AddTransform(k, tr)
		if err != nil {
			return Effect{}, err
		}
	}

	return res, nil
}

// Keys returns every key of the effect in the key order, which is the order
// used to commit.
func (e Effect) Keys() []key.Key {
	seen := make(map[key.Key]struct{}, len(e.Ops)+len(e.Transforms))

	for k := range e.Ops {
		seen[k] = struct{}{}
	}
	for k := range e.Transforms {
		seen[k] = struct{}{}
	}

	keys := make([]key.Key, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Compare(keys[j]) < 0
	})

	return keys
}
