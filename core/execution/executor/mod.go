// Package executor implements the execution service of the engine: it runs the
// sessions of the deploys against a read view of the global state.
//
// Each session owns its gas counter, its reference generator and its tracking
// copy, so independent deploys can run in parallel. Only the commit of their
// effects is ordered.
package executor

import (
	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/execution/native"
	"github.com/JoowonYun/CasperLabs/core/execution/rng"
	"github.com/JoowonYun/CasperLabs/core/execution/runtime"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state/tracking"
	"github.com/JoowonYun/CasperLabs/core/transform"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

// EntryCall is the entry point of the session code.
const EntryCall = "call"

// Config is the configuration of the executor.
type Config struct {
	// BaseCost is charged at the start of every session.
	BaseCost gas.Gas

	// Costs are the costs of the host operations.
	Costs runtime.Costs

	// CacheSize is the number of state values cached by a session.
	CacheSize int
}

// Executor is the execution service.
//
// - implements execution.Service
type Executor struct {
	registry *native.Service
	config   Config
}

// NewExecutor returns an executor of the contracts of the registry.
func NewExecutor(registry *native.Service, config Config) *Executor {
	return &Executor{
		registry: registry,
		config:   config,
	}
}

// Exec implements execution.Service. It runs the session code of the request
// in the frame of the account. A failed session costs the gas used so far,
// which is the whole limit when the gas is exhausted.
func (e *Executor) Exec(reader execution.Reader, req execution.Request) execution.Result {
	counter := gas.NewCounter(req.GasLimit)

	err := counter.Charge(e.config.BaseCost)
	if err != nil {
		return execution.Failure(err, effect.New(), counter.Used())
	}

	tc, err := tracking.New(reader, e.config.CacheSize)
	if err != nil {
		return execution.Failure(err, effect.New(), counter.Used())
	}

	account, res := execution.OnFailChargeWith(func() (value.Account, error) {
		return loadAccount(tc, req.Account)
	}, counter.Used, accountEffect(req.Account))
	if res != nil {
		return *res
	}

	contract, res := execution.OnFailChargeWith(func() (native.Contract, error) {
		return e.registry.Get(req.Code)
	}, counter.Used, tc.Effect)
	if res != nil {
		return *res
	}

	rt := runtime.New(runtime.Params{
		DeployHash: req.DeployHash,
		Phase:      req.Phase,
		Counter:    counter,
		Generator:  rng.New(req.DeployHash, req.Phase),
		Tracking:   tc,
		Registry:   e.registry,
		Costs:      e.config.Costs,
	})

	grants := []uref.URef{account.MainPurse.Value()}

	v, err := rt.Run(req.Account, account.NamedKeys, grants, func(ctx native.Context) (value.Value, error) {
		return contract.Call(ctx, EntryCall, req.Args)
	})
	if err != nil {
		return execution.Failure(err, tc.Effect(), counter.Used())
	}

	success := execution.Success(tc.Effect(), counter.Used())
	success.Value = v

	return success
}

func loadAccount(tc *tracking.Copy, k key.Key) (value.Account, error) {
	if k.Kind() != key.Account {
		return value.Account{}, xerrors.Errorf("%s is not an account key", k)
	}

	v, found, err := tc.Read(k)
	if err != nil {
		return value.Account{}, xerrors.Errorf("failed to read account: %v", err)
	}

	if !found {
		return value.Account{}, xerrors.Errorf("%s: %w", k, execution.ErrAccountNotFound)
	}

	account, ok := v.(value.Account)
	if !ok {
		return value.Account{}, xerrors.Errorf("%s holds %s: %w", k, v.Type(), execution.ErrAccountNotFound)
	}

	return account, nil
}

// accountEffect returns the effect of a session that could not load its
// account: the key was read and is left unchanged.
func accountEffect(k key.Key) func() effect.Effect {
	return func() effect.Effect {
		eff := effect.New()
		eff.AddOp(k, effect.Read)
		eff.Transforms[k] = transform.NewIdentity()

		return eff
	}
}
