// Package runtime implements the host of the native contracts for one session.
//
// The runtime owns the gas counter, the reference generator and the tracking
// copy of the session. Contract calls push frames on a stack: each frame
// knows the references its contract can use, and the local storage of the
// contract. A reference is usable only when the frame knows it with at least
// the rights it claims, so references cannot be forged.
package runtime

import (
	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/execution/native"
	"github.com/JoowonYun/CasperLabs/core/execution/rng"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state/tracking"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

var (
	// ErrForgedReference is returned when a contract uses a reference it does
	// not know with the claimed rights.
	ErrForgedReference = xerrors.New("forged reference")

	// ErrInvalidAccess is returned when the rights of a reference do not allow
	// the operation.
	ErrInvalidAccess = xerrors.New("invalid access")

	// ErrContractNotFound is returned when calling a key that does not hold a
	// contract.
	ErrContractNotFound = xerrors.New("contract not found")

	// ErrCallDepth is returned when the call stack is too deep.
	ErrCallDepth = xerrors.New("call depth exceeded")
)

// MaxCallDepth is the maximum number of nested contract calls.
const MaxCallDepth = 32

// Costs is the gas charged by each host operation.
type Costs struct {
	NewURef      gas.Gas
	Read         gas.Gas
	Write        gas.Gas
	Add          gas.Gas
	ReadLocal    gas.Gas
	WriteLocal   gas.Gas
	GetKey       gas.Gas
	CallContract gas.Gas
	Revert       gas.Gas
}

// Params are the dependencies of a runtime.
type Params struct {
	DeployHash execution.DeployHash
	Phase      execution.Phase
	Counter    *gas.Counter
	Generator  *rng.Generator
	Tracking   *tracking.Copy
	Registry   *native.Service
	Costs      Costs
}

// frame is the context of one contract call.
type frame struct {
	seed  [32]byte
	named value.NamedKeys
	known map[uref.Addr]uref.AccessRights
}

func newFrame(base key.Key, named value.NamedKeys, refs ...uref.URef) *frame {
	f := &frame{
		seed:  base.Addr(),
		named: named,
		known: make(map[uref.Addr]uref.AccessRights),
	}

	for _, k := range named {
		if u, ok := k.AsURef(); ok {
			f.learn(u)
		}
	}

	for _, u := range refs {
		f.learn(u)
	}

	return f
}

func (f *frame) learn(u uref.URef) {
	f.known[u.Addr()] |= u.Rights()
}

// learnValue makes the references carried by the value usable.
func (f *frame) learnValue(v value.Value) {
	switch val := v.(type) {
	case value.Key:
		if u, ok := val.Key.AsURef(); ok {
			f.learn(u)
		}
	case value.Option:
		if !val.IsNone() {
			f.learnValue(val.Some)
		}
	}
}

// Runtime is the host of one session. It is not safe for concurrent use.
//
// - implements native.Context
type Runtime struct {
	deployHash execution.DeployHash
	phase      execution.Phase
	counter    *gas.Counter
	generator  *rng.Generator
	tc         *tracking.Copy
	registry   *native.Service
	costs      Costs

	stack []*frame

	// fatal is the error that terminated the session. Once set, every host
	// operation fails with it.
	fatal error
}

// New returns the runtime of the session.
func New(p Params) *Runtime {
	return &Runtime{
		deployHash: p.DeployHash,
		phase:      p.Phase,
		counter:    p.Counter,
		generator:  p.Generator,
		tc:         p.Tracking,
		registry:   p.Registry,
		costs:      p.Costs,
	}
}

// Run executes the function in the frame of the base key, an account usually.
// The frame knows the references of the named keys and the grants. The error
// that terminated the session, if any, takes precedence over the error of the
// function.
func (rt *Runtime) Run(base key.Key, named value.NamedKeys, grants []uref.URef,
	fn func(native.Context) (value.Value, error)) (value.Value, error) {

	if rt.fatal != nil {
		return nil, rt.fatal
	}

	rt.stack = append(rt.stack, newFrame(base, named, grants...))
	defer rt.pop()

	v, err := fn(rt)
	if rt.fatal != nil {
		return nil, rt.fatal
	}

	if err != nil {
		return nil, err
	}

	return v, nil
}

// Err returns the error that terminated the session, or nil.
func (rt *Runtime) Err() error {
	return rt.fatal
}

// Phase implements native.Context.
func (rt *Runtime) Phase() execution.Phase {
	return rt.phase
}

// DeployHash implements native.Context.
func (rt *Runtime) DeployHash() execution.DeployHash {
	return rt.deployHash
}

// Charge implements native.Context. Exhausting the gas terminates the session.
func (rt *Runtime) Charge(amount gas.Gas) error {
	if rt.fatal != nil {
		return rt.fatal
	}

	err := rt.counter.Charge(amount)
	if err != nil {
		rt.fatal = err
		return err
	}

	return nil
}

// NewURef implements native.Context.
func (rt *Runtime) NewURef(init value.Value) (uref.URef, error) {
	err := rt.Charge(rt.costs.NewURef)
	if err != nil {
		return uref.URef{}, err
	}

	u := rt.generator.NewURef(uref.ReadAddWrite)

	err = rt.tc.Write(key.NewURef(u), init)
	if err != nil {
		return uref.URef{}, xerrors.Errorf("failed to write %s: %w", u, err)
	}

	rt.top().learn(u)

	return u, nil
}

// Read implements native.Context.
func (rt *Runtime) Read(u uref.URef) (value.Value, bool, error) {
	err := rt.use(rt.costs.Read, u, uref.Read)
	if err != nil {
		return nil, false, err
	}

	return rt.tc.Read(key.NewURef(u))
}

// Write implements native.Context.
func (rt *Runtime) Write(u uref.URef, v value.Value) error {
	err := rt.use(rt.costs.Write, u, uref.Write)
	if err != nil {
		return err
	}

	return rt.tc.Write(key.NewURef(u), v)
}

// Add implements native.Context.
func (rt *Runtime) Add(u uref.URef, delta value.Value) error {
	err := rt.use(rt.costs.Add, u, uref.Add)
	if err != nil {
		return err
	}

	return rt.tc.Add(key.NewURef(u), delta)
}

// ReadLocal implements native.Context.
func (rt *Runtime) ReadLocal(local []byte) (value.Value, bool, error) {
	err := rt.Charge(rt.costs.ReadLocal)
	if err != nil {
		return nil, false, err
	}

	f := rt.top()

	v, found, err := rt.tc.Read(key.NewLocal(f.seed, local))
	if err != nil || !found {
		return nil, false, err
	}

	f.learnValue(v)

	return v, true, nil
}

// WriteLocal implements native.Context.
func (rt *Runtime) WriteLocal(local []byte, v value.Value) error {
	err := rt.Charge(rt.costs.WriteLocal)
	if err != nil {
		return err
	}

	return rt.tc.Write(key.NewLocal(rt.top().seed, local), v)
}

// GetKey implements native.Context.
func (rt *Runtime) GetKey(name string) (key.Key, bool, error) {
	err := rt.Charge(rt.costs.GetKey)
	if err != nil {
		return key.Key{}, false, err
	}

	k, found := rt.top().named[name]

	return k, found, nil
}

// HasAccess implements native.Context.
func (rt *Runtime) HasAccess(u uref.URef, rights uref.AccessRights) bool {
	return rt.check(u, rights) == nil
}

// CallContract implements native.Context. The effect of a failed call is
// rolled back, and the references returned by a successful call become usable
// by the caller.
func (rt *Runtime) CallContract(ref key.Key, entry string, a args.List,
	grants ...uref.URef) (value.Value, error) {

	err := rt.Charge(rt.costs.CallContract)
	if err != nil {
		return nil, err
	}

	if len(rt.stack) >= MaxCallDepth {
		return nil, xerrors.Errorf("calling %s: %w", ref, ErrCallDepth)
	}

	for _, g := range grants {
		err := rt.check(g, uref.None)
		if err != nil {
			return nil, xerrors.Errorf("invalid grant: %w", err)
		}
	}

	if u, ok := ref.AsURef(); ok {
		err := rt.check(u, uref.Read)
		if err != nil {
			return nil, xerrors.Errorf("invalid contract reference: %w", err)
		}
	}

	v, found, err := rt.tc.Read(ref)
	if err != nil {
		return nil, xerrors.Errorf("failed to read contract: %v", err)
	}

	contract, ok := v.(value.Contract)
	if !found || !ok {
		return nil, xerrors.Errorf("%s: %w", ref, ErrContractNotFound)
	}

	impl, err := rt.registry.Get(contract.Name)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", err.Error(), ErrContractNotFound)
	}

	checkpoint := rt.tc.Checkpoint()

	rt.stack = append(rt.stack, newFrame(ref, contract.NamedKeys, grants...))
	res, err := impl.Call(rt, entry, a)
	rt.pop()

	if rt.fatal != nil || err != nil {
		rollbackErr := rt.tc.Rollback(checkpoint)
		if rollbackErr != nil {
			return nil, xerrors.Errorf("failed to roll back: %v", rollbackErr)
		}

		if rt.fatal != nil {
			return nil, rt.fatal
		}

		return nil, xerrors.Errorf("call to '%s' failed: %w", contract.Name, err)
	}

	rt.top().learnValue(res)

	return res, nil
}

// Revert implements native.Context.
func (rt *Runtime) Revert(code uint32) error {
	err := rt.Charge(rt.costs.Revert)
	if err != nil {
		return err
	}

	rt.fatal = execution.Revert(code)

	return rt.fatal
}

// use charges the cost and checks the reference for the operation.
func (rt *Runtime) use(cost gas.Gas, u uref.URef, needed uref.AccessRights) error {
	err := rt.Charge(cost)
	if err != nil {
		return err
	}

	return rt.check(u, needed)
}

func (rt *Runtime) check(u uref.URef, needed uref.AccessRights) error {
	known, found := rt.top().known[u.Addr()]
	if !found || !known.Contains(u.Rights()) {
		return xerrors.Errorf("%s: %w", u, ErrForgedReference)
	}

	if !u.Rights().Contains(needed) {
		return xerrors.Errorf("%s needs %s: %w", u, needed, ErrInvalidAccess)
	}

	return nil
}

func (rt *Runtime) top() *frame {
	return rt.stack[len(rt.stack)-1]
}

func (rt *Runtime) pop() {
	rt.stack = rt.stack[:len(rt.stack)-1]
}
