// Package native implements the registry of the native smart contracts and
// defines the host interface they run against.
//
// A native smart contract is written in Go and packaged with the application.
// It is stored in the global state as a contract value naming it, and the
// execution dispatches a call to it by looking up that name in the registry.
package native

import (
	"sort"

	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

// Context is the host interface of a running contract. Every operation is
// charged before it is performed, and fails once the session is terminated.
type Context interface {
	// Phase returns the phase of the session.
	Phase() execution.Phase

	// DeployHash returns the deploy of the session.
	DeployHash() execution.DeployHash

	// Charge adds the amount to the gas of the session.
	Charge(amount gas.Gas) error

	// NewURef creates a reference holding the initial value. The contract
	// gets every right on it.
	NewURef(init value.Value) (uref.URef, error)

	// Read returns the value of the reference, which must be readable.
	Read(u uref.URef) (value.Value, bool, error)

	// Write sets the value of the reference, which must be writeable.
	Write(u uref.URef, v value.Value) error

	// Add adds the delta to the value of the reference, which must be
	// addable.
	Add(u uref.URef, delta value.Value) error

	// ReadLocal returns the value in the local storage of the contract. A
	// reference read from the local storage can be used by the contract.
	ReadLocal(local []byte) (value.Value, bool, error)

	// WriteLocal sets the value in the local storage of the contract.
	WriteLocal(local []byte, v value.Value) error

	// GetKey returns the named key of the contract.
	GetKey(name string) (key.Key, bool, error)

	// HasAccess returns true when the contract can use the reference with the
	// rights.
	HasAccess(u uref.URef, rights uref.AccessRights) bool

	// CallContract calls the entry point of the contract stored at the key.
	// The grants are the references the callee will be able to use.
	CallContract(ref key.Key, entry string, a args.List, grants ...uref.URef) (value.Value, error)

	// Revert terminates the session with the code. The returned error must be
	// returned by the contract.
	Revert(code uint32) error
}

// Contract is the interface to implement to register a smart contract that will
// be executed natively.
type Contract interface {
	// UID returns the unique 4-bytes identifier of the contract.
	UID() string

	// Call runs the entry point of the contract.
	Call(ctx Context, entry string, a args.List) (value.Value, error)
}

// Service is the registry of the native contracts.
type Service struct {
	contracts    map[string]Contract
	contractUIDs map[string]struct{}
}

// NewExecution returns an empty registry.
func NewExecution() *Service {
	return &Service{
		contracts:    map[string]Contract{},
		contractUIDs: map[string]struct{}{},
	}
}

// Set stores the contract using the name as the key. A contract value of the
// state triggers this contract by using the same name.
func (ns *Service) Set(name string, contract Contract) {
	if _, ok := ns.contracts[name]; ok {
		panic(xerrors.Errorf("contract '%s' already registered", name))
	}

	uid := contract.UID()

	// UIDs are expected to be 4 bytes long, always.
	if len(uid) != 4 {
		panic(xerrors.Errorf("contract UID '%x' for '%s' is not 4 bytes long", uid, name))
	}

	if _, ok := ns.contractUIDs[uid]; ok {
		panic(xerrors.Errorf("contract UID '%x' for '%s' already registered", uid, name))
	}

	ns.contracts[name] = contract
	ns.contractUIDs[uid] = struct{}{}
}

// Get returns the contract of the name.
func (ns *Service) Get(name string) (Contract, error) {
	contract := ns.contracts[name]
	if contract == nil {
		return nil, xerrors.Errorf("unknown contract '%s'", name)
	}

	return contract, nil
}

// Names returns the names of the registered contracts in alphabetical order.
func (ns *Service) Names() []string {
	names := make([]string, 0, len(ns.contracts))
	for name := range ns.contracts {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
