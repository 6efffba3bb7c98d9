// Package tracking implements the view of the global state used by one
// session. It records every access in an effect instead of writing to the
// state, and can roll back to a checkpoint when a contract call fails.
package tracking

import (
	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state"
	"github.com/JoowonYun/CasperLabs/core/transform"
	"github.com/JoowonYun/CasperLabs/core/value"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/xerrors"
)

// DefaultCacheSize is the number of values of the underlying state kept in
// memory when no size is given.
const DefaultCacheSize = 1024

// ErrInvalidCheckpoint is returned when rolling back to a checkpoint that does
// not exist anymore.
var ErrInvalidCheckpoint = xerrors.New("invalid checkpoint")

type cached struct {
	value value.Value
	found bool
}

// change is the previous record of a key, used to roll back.
type change struct {
	key   key.Key
	op    effect.Op
	hasOp bool
	tr    transform.Transform
	hasTr bool
}

// Copy is the tracking copy of a session. It is not safe for concurrent use.
type Copy struct {
	reader    state.Reader
	cache     *lru.Cache
	eff       effect.Effect
	changelog []change
}

// New returns a tracking copy over the reader. The values read from the reader
// are cached.
func New(reader state.Reader, cacheSize int) (*Copy, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, xerrors.Errorf("failed to create cache: %v", err)
	}

	c := &Copy{
		reader: reader,
		cache:  cache,
		eff:    effect.New(),
	}

	return c, nil
}

// Read returns the current value of the key and records a Read op.
func (c *Copy) Read(k key.Key) (value.Value, bool, error) {
	k = k.Normalize()

	v, err := c.current(k)
	if err != nil {
		return nil, false, err
	}

	c.record(k)
	c.eff.AddOp(k, effect.Read)

	return v, v != nil, nil
}

// Write records the value as the new value of the key.
func (c *Copy) Write(k key.Key, v value.Value) error {
	k = k.Normalize()

	c.record(k)
	c.eff.AddOp(k, effect.Write)

	return c.eff.AddTransform(k, transform.NewWrite(v))
}

// Add records the delta to the value of the key. The current value must exist
// and be of the type of the delta.
func (c *Copy) Add(k key.Key, delta value.Value) error {
	k = k.Normalize()

	tr, err := transform.NewAdd(delta)
	if err != nil {
		return err
	}

	current, err := c.current(k)
	if err != nil {
		return err
	}

	_, err = tr.Apply(current)
	if err != nil {
		return xerrors.Errorf("failed to add to %s: %w", k, err)
	}

	c.record(k)
	c.eff.AddOp(k, effect.Add)

	return c.eff.AddTransform(k, tr)
}

// Effect returns a copy of the effect recorded so far.
func (c *Copy) Effect() effect.Effect {
	return c.eff.Clone()
}

// Checkpoint returns the checkpoint of the current effect.
func (c *Copy) Checkpoint() int {
	return len(c.changelog)
}

// Rollback restores the effect of the checkpoint. Later checkpoints become
// invalid.
func (c *Copy) Rollback(checkpoint int) error {
	if checkpoint < 0 || checkpoint > len(c.changelog) {
		return xerrors.Errorf("checkpoint %d of %d: %w", checkpoint, len(c.changelog), ErrInvalidCheckpoint)
	}

	for i := len(c.changelog) - 1; i >= checkpoint; i-- {
		ch := c.changelog[i]

		if ch.hasOp {
			c.eff.Ops[ch.key] = ch.op
		} else {
			delete(c.eff.Ops, ch.key)
		}

		if ch.hasTr {
			c.eff.Transforms[ch.key] = ch.tr
		} else {
			delete(c.eff.Transforms, ch.key)
		}
	}

	c.changelog = c.changelog[:checkpoint]

	return nil
}

func (c *Copy) record(k key.Key) {
	op, hasOp := c.eff.Ops[k]
	tr, hasTr := c.eff.Transforms[k]

	c.changelog = append(c.changelog, change{
		key:   k,
		op:    op,
		hasOp: hasOp,
		tr:    tr,
		hasTr: hasTr,
	})
}

// current returns the value of the key with the recorded transform applied, or
// nil when it does not exist.
func (c *Copy) current(k key.Key) (value.Value, error) {
	base, err := c.base(k)
	if err != nil {
		return nil, err
	}

	tr, found := c.eff.Transforms[k]
	if !found || tr.Kind() == transform.Identity {
		return base, nil
	}

	v, err := tr.Apply(base)
	if err != nil {
		return nil, xerrors.Errorf("failed to apply to %s: %w", k, err)
	}

	return v, nil
}

func (c *Copy) base(k key.Key) (value.Value, error) {
	entry, found := c.cache.Get(k)
	if found {
		return entry.(cached).value, nil
	}

	v, found, err := c.reader.Read(k)
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %v", k, err)
	}

	if !found {
		v = nil
	}

	c.cache.Add(k, cached{value: v, found: found})

	return v, nil
}
