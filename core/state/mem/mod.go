// Package mem implements an in-memory global state.
//
// A store saves its own updates and looks up the keys it does not know in its
// parent, which makes staging an effect cheap: the child holds the changes and
// the parent is left untouched.
package mem

import (
	"sync"

	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

// Store is an in-memory global state.
//
// - implements state.Store
type Store struct {
	sync.RWMutex

	parent *Store
	values map[key.Key]value.Value
}

// New returns an empty store.
func New() *Store {
	return &Store{
		values: make(map[key.Key]value.Value),
	}
}

// Read implements state.Reader.
func (s *Store) Read(k key.Key) (value.Value, bool, error) {
	s.RLock()
	defer s.RUnlock()

	v := s.read(k)

	return v, v != nil, nil
}

func (s *Store) read(k key.Key) value.Value {
	v, found := s.values[k]
	if found {
		return v
	}

	if s.parent == nil {
		return nil
	}

	v, _, _ = s.parent.Read(k)

	return v
}

// Put sets the value of the key directly.
func (s *Store) Put(k key.Key, v value.Value) {
	s.Lock()
	s.values[k] = v
	s.Unlock()
}

// Commit implements state.Store. It applies the transforms of the effect in
// the key order.
func (s *Store) Commit(eff effect.Effect) error {
	s.Lock()
	defer s.Unlock()

	changes, err := state.Changes(lockedReader{s}, eff)
	if err != nil {
		return xerrors.Errorf("failed to commit: %w", err)
	}

	for _, change := range changes {
		s.values[change.Key] = change.Value
	}

	return nil
}

// Stage returns a child store with the effect committed. The store itself is
// not modified.
func (s *Store) Stage(eff effect.Effect) (*Store, error) {
	child := s.makeChild()

	err := child.Commit(eff)
	if err != nil {
		return nil, err
	}

	return child, nil
}

// Len returns the number of keys stored by this store and its parents.
func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.keys(make(map[key.Key]struct{})))
}

func (s *Store) keys(seen map[key.Key]struct{}) map[key.Key]struct{} {
	for k := range s.values {
		seen[k] = struct{}{}
	}

	if s.parent != nil {
		s.parent.RLock()
		s.parent.keys(seen)
		s.parent.RUnlock()
	}

	return seen
}

func (s *Store) makeChild() *Store {
	return &Store{
		parent: s,
		values: make(map[key.Key]value.Value),
	}
}

// lockedReader reads a store whose lock is already held.
type lockedReader struct {
	s *Store
}

func (r lockedReader) Read(k key.Key) (value.Value, bool, error) {
	v := r.s.read(k)
	return v, v != nil, nil
}
