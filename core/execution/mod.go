// Package execution defines the result of a deploy phase execution and the
// fail-and-charge discipline that produces it.
//
// A session runs one phase of one deploy. It owns a gas counter, a reference
// generator and an effect, and terminates with exactly one Result. A failed
// session still carries the gas it was charged and an effect, possibly empty.
package execution

import (
	"encoding/hex"
	"fmt"

	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

// ErrGasLimit is returned when a session exhausts its gas.
var ErrGasLimit = gas.ErrGasLimit

// ErrAccountNotFound is returned when the deploy account is missing from the
// state.
var ErrAccountNotFound = xerrors.New("account not found")

// RevertError is the error of a session terminated explicitly by a contract.
type RevertError struct {
	Code uint32
}

// Revert returns the error for the code.
func Revert(code uint32) *RevertError {
	return &RevertError{Code: code}
}

// Error implements error.
func (e *RevertError) Error() string {
	return fmt.Sprintf("reverted with code %d", e.Code)
}

// Phase identifies the stage of a deploy.
type Phase uint8

const (
	// System is the phase of the executions run by the node itself, like the
	// genesis.
	System Phase = iota
	Payment
	Session
	FinalizePayment
)

// Phases are the stages of a deploy in execution order.
var Phases = []Phase{Payment, Session, FinalizePayment}

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case System:
		return "system"
	case Payment:
		return "payment"
	case Session:
		return "session"
	case FinalizePayment:
		return "finalize_payment"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// ParsePhase returns the phase of the name.
func ParsePhase(name string) (Phase, error) {
	for _, p := range []Phase{System, Payment, Session, FinalizePayment} {
		if p.String() == name {
			return p, nil
		}
	}

	return 0, xerrors.Errorf("unknown phase '%s'", name)
}

// DeployHash is the identifier of a deploy, shared by all its phases.
type DeployHash [32]byte

// ParseDeployHash reads a hash from its hex form.
func ParseDeployHash(s string) (DeployHash, error) {
	var h DeployHash

	b, err := hex.DecodeString(s)
	if err != nil {
		return h, xerrors.Errorf("malformed deploy hash: %v", err)
	}

	if len(b) != len(h) {
		return h, xerrors.Errorf("deploy hash is %d bytes long", len(b))
	}

	copy(h[:], b)

	return h, nil
}

// String returns the hex form of the hash.
func (h DeployHash) String() string {
	return hex.EncodeToString(h[:])
}

// Result is the outcome of a session. It is a success when Err is nil. The
// effect is always present.
type Result struct {
	Effect effect.Effect
	Cost   gas.Gas
	Err    error

	// Value is what the session code returned, if anything.
	Value value.Value
}

// Success returns the result of a session that completed.
func Success(eff effect.Effect, cost gas.Gas) Result {
	return Result{Effect: eff.Clone(), Cost: cost}
}

// Failure returns the result of a session that terminated with the error.
func Failure(err error, eff effect.Effect, cost gas.Gas) Result {
	return Result{Effect: eff.Clone(), Cost: cost, Err: err}
}

// IsSuccess returns true when the session completed.
func (r Result) IsSuccess() bool {
	return r.Err == nil
}

// RevertCode returns the code when the session was reverted.
func (r Result) RevertCode() (uint32, bool) {
	var revert *RevertError
	if xerrors.As(r.Err, &revert) {
		return revert.Code, true
	}

	return 0, false
}

// OnFailCharge runs the step once. When it succeeds the value is returned with
// a nil result and nothing is charged. When it fails, the returned result is a
// failure with the error, an empty effect and the cost computed only then.
// The caller must terminate its session with that result.
func OnFailCharge[T any](step func() (T, error), cost func() gas.Gas) (T, *Result) {
	return OnFailChargeWith(step, cost, effect.New)
}

// OnFailChargeWith is OnFailCharge where the effect of the failure is built by
// the function, which runs only on the failure path.
func OnFailChargeWith[T any](step func() (T, error), cost func() gas.Gas,
	effectFn func() effect.Effect) (T, *Result) {

	v, err := step()
	if err != nil {
		res := Failure(err, effectFn(), cost())
		return v, &res
	}

	return v, nil
}

// Charge returns a lazy cost of a fixed amount.
func Charge(g gas.Gas) func() gas.Gas {
	return func() gas.Gas {
		return g
	}
}

// Request is the input of one session.
type Request struct {
	DeployHash DeployHash
	Phase      Phase
	GasLimit   gas.Gas
	Account    key.Key

	// Code is the name of the contract run as the session code. Its entry
	// point "call" receives the arguments.
	Code string
	Args args.List
}

// Service is the execution service that runs one session against a read view
// of the global state.
type Service interface {
	Exec(reader Reader, req Request) Result
}

// Reader is the read view of the global state a session runs on.
type Reader interface {
	// Read returns the value at the key, or false when it does not exist.
	Read(k key.Key) (value.Value, bool, error)
}
