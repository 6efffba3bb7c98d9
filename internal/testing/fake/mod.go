// Package fake provides the fakes and helpers shared by the tests of the
// module.
package fake

import (
	"fmt"

	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/execution/native"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

var fakeErr = xerrors.New("fake error")

// GetError returns the error used by the fakes.
func GetError() error {
	return fakeErr
}

// Err returns the message of an error wrapping the fake error.
func Err(msg string) string {
	return fmt.Sprintf("%s: %v", msg, fakeErr)
}

// Reader is a fake read view of the global state.
//
// - implements state.Reader
type Reader struct {
	Values map[key.Key]value.Value
	err    error
}

// NewReader returns a reader of the values.
func NewReader(values map[key.Key]value.Value) Reader {
	return Reader{Values: values}
}

// NewBadReader returns a reader that always fails.
func NewBadReader() Reader {
	return Reader{err: fakeErr}
}

// Read implements state.Reader.
func (r Reader) Read(k key.Key) (value.Value, bool, error) {
	if r.err != nil {
		return nil, false, r.err
	}

	v, found := r.Values[k]

	return v, found, nil
}

// Store is a fake global state.
//
// - implements state.Store
type Store struct {
	Reader

	Committed []effect.Effect
	errCommit error
}

// NewStore returns a store over the values that records the commits.
func NewStore(values map[key.Key]value.Value) *Store {
	return &Store{Reader: NewReader(values)}
}

// NewBadStore returns a store that fails to commit.
func NewBadStore() *Store {
	return &Store{errCommit: fakeErr}
}

// Commit implements state.Store.
func (s *Store) Commit(eff effect.Effect) error {
	if s.errCommit != nil {
		return s.errCommit
	}

	s.Committed = append(s.Committed, eff)

	return nil
}

// Contract is a fake native contract that runs a function.
//
// - implements native.Contract
type Contract struct {
	uid string
	fn  func(ctx native.Context, entry string, a args.List) (value.Value, error)
}

// NewContract returns a contract of the identifier running the function.
func NewContract(uid string, fn func(native.Context, string, args.List) (value.Value, error)) Contract {
	return Contract{uid: uid, fn: fn}
}

// UID implements native.Contract.
func (c Contract) UID() string {
	return c.uid
}

// Call implements native.Contract.
func (c Contract) Call(ctx native.Context, entry string, a args.List) (value.Value, error) {
	return c.fn(ctx, entry, a)
}
