// Package state defines the global state as seen by the execution engine: a
// read view of the values by key, and a store that commits the effects of the
// sessions.
package state

import (
	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/transform"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

// Reader is a read view of the global state.
type Reader interface {
	// Read returns the value at the key, or false when it does not exist.
	Read(k key.Key) (value.Value, bool, error)
}

// Store is the global state. Commit applies the transforms of an effect.
// Either every transform is applied, or none on error.
type Store interface {
	Reader

	Commit(eff effect.Effect) error
}

// Change is the new value of a key.
type Change struct {
	Key   key.Key
	Value value.Value
}

// Changes returns the new values produced by the transforms of the effect over
// the reader, in the commit order of the effect. Identity transforms produce
// nothing.
func Changes(reader Reader, eff effect.Effect) ([]Change, error) {
	var changes []Change

	for _, k := range eff.Keys() {
		tr, found := eff.Transforms[k]
		if !found || tr.Kind() == transform.Identity {
			continue
		}

		v, err := apply(reader, k, tr)
		if err != nil {
			return nil, err
		}

		changes = append(changes, Change{Key: k, Value: v})
	}

	return changes, nil
}

func apply(reader Reader, k key.Key, tr transform.Transform) (value.Value, error) {
	current, found, err := reader.Read(k)
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %v", k, err)
	}

	if !found {
		current = nil
	}

	v, err := tr.Apply(current)
	if err != nil {
		return nil, xerrors.Errorf("failed to apply to %s: %w", k, err)
	}

	return v, nil
}

// Overlay is a read view of an effect applied over a reader, without
// committing it.
type Overlay struct {
	reader Reader
	eff    effect.Effect
}

// NewOverlay returns the view of the effect over the reader.
func NewOverlay(reader Reader, eff effect.Effect) Overlay {
	return Overlay{
		reader: reader,
		eff:    eff.Clone(),
	}
}

// Read implements state.Reader.
func (o Overlay) Read(k key.Key) (value.Value, bool, error) {
	tr, found := o.eff.Transforms[k]
	if !found || tr.Kind() == transform.Identity {
		return o.reader.Read(k)
	}

	v, err := apply(o.reader, k, tr)
	if err != nil {
		return nil, false, err
	}

	return v, true, nil
}
