package runtime

import (
	"testing"

	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/execution/native"
	"github.com/JoowonYun/CasperLabs/core/execution/rng"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state/mem"
	"github.com/JoowonYun/CasperLabs/core/state/tracking"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/JoowonYun/CasperLabs/core/value"
	"github.com/JoowonYun/CasperLabs/internal/testing/fake"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

var (
	account     = key.NewAccount([32]byte{1})
	contractKey = key.NewHash([32]byte{7})
)

func TestRuntime_References(t *testing.T) {
	rt, tc := makeRuntime(t, gas.FromUint64(1000), nil)

	_, err := rt.Run(account, nil, nil, func(ctx native.Context) (value.Value, error) {
		u, err := ctx.NewURef(value.NewU512(1))
		require.NoError(t, err)
		require.Equal(t, uref.ReadAddWrite, u.Rights())

		require.NoError(t, ctx.Add(u, value.NewU512(2)))

		v, found, err := ctx.Read(u)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, value.NewU512(3), v)

		require.NoError(t, ctx.Write(u, value.NewU512(9)))

		readOnly := u.WithRights(uref.Read)
		require.True(t, ctx.HasAccess(readOnly, uref.Read))
		require.False(t, ctx.HasAccess(readOnly, uref.Write))

		err = ctx.Write(readOnly, value.Unit{})
		require.ErrorIs(t, err, ErrInvalidAccess)

		_, _, err = ctx.Read(uref.New(uref.Addr{9}, uref.Read))
		require.ErrorIs(t, err, ErrForgedReference)

		return nil, nil
	})
	require.NoError(t, err)

	eff := tc.Effect()
	require.Equal(t, 1, eff.Size())

	for k, tr := range eff.Transforms {
		require.Equal(t, key.URef, k.Kind())
		require.Equal(t, value.NewU512(9), tr.Value())
		require.Equal(t, effect.Write, eff.Ops[k])
	}
}

func TestRuntime_RightsCannotBeEscalated(t *testing.T) {
	rt, _ := makeRuntime(t, gas.FromUint64(1000), nil)

	ref := uref.New(uref.Addr{5}, uref.Read)

	_, err := rt.Run(account, value.NamedKeys{"ref": key.NewURef(ref)}, nil,
		func(ctx native.Context) (value.Value, error) {
			k, found, err := ctx.GetKey("ref")
			require.NoError(t, err)
			require.True(t, found)

			u, _ := k.AsURef()
			require.True(t, ctx.HasAccess(u, uref.Read))
			require.False(t, ctx.HasAccess(u.WithRights(uref.ReadWrite), uref.Write))

			_, found, err = ctx.GetKey("none")
			require.NoError(t, err)
			require.False(t, found)

			return nil, nil
		})
	require.NoError(t, err)
}

func TestRuntime_CallContract(t *testing.T) {
	registry := native.NewExecution()
	registry.Set("test", fake.NewContract("test", func(ctx native.Context, entry string,
		a args.List) (value.Value, error) {

		switch entry {
		case "create":
			u, err := ctx.NewURef(value.UInt64(1))
			if err != nil {
				return nil, err
			}

			err = ctx.WriteLocal([]byte("ref"), value.NewKey(key.NewURef(u)))
			if err != nil {
				return nil, err
			}

			return value.NewKey(key.NewURef(u.WithRights(uref.Read))), nil
		case "bump":
			v, found, err := ctx.ReadLocal([]byte("ref"))
			if err != nil || !found {
				return nil, xerrors.Errorf("missing ref: %v", err)
			}

			u, _ := v.(value.Key).Key.AsURef()

			return nil, ctx.Add(u, value.UInt64(1))
		case "fail":
			_, err := ctx.NewURef(value.Unit{})
			if err != nil {
				return nil, err
			}

			return nil, xerrors.New("oops")
		default:
			return nil, xerrors.Errorf("unknown entry '%s'", entry)
		}
	}))

	rt, tc := makeRuntime(t, gas.FromUint64(1000), registry)

	_, err := rt.Run(account, nil, nil, func(ctx native.Context) (value.Value, error) {
		res, err := ctx.CallContract(contractKey, "create", nil)
		require.NoError(t, err)

		u, ok := res.(value.Key).Key.AsURef()
		require.True(t, ok)

		// The caller got read access on the returned reference only.
		v, _, err := ctx.Read(u)
		require.NoError(t, err)
		require.Equal(t, value.UInt64(1), v)
		require.False(t, ctx.HasAccess(u.WithRights(uref.ReadAddWrite), uref.Add))

		_, err = ctx.CallContract(contractKey, "bump", nil)
		require.NoError(t, err)

		v, _, err = ctx.Read(u)
		require.NoError(t, err)
		require.Equal(t, value.UInt64(2), v)

		before := tc.Effect()

		_, err = ctx.CallContract(contractKey, "fail", nil)
		require.EqualError(t, err, "call to 'test' failed: oops")
		require.Equal(t, before, tc.Effect())

		_, err = ctx.CallContract(contractKey, "create", nil, uref.New(uref.Addr{9}, uref.Read))
		require.ErrorIs(t, err, ErrForgedReference)

		_, err = ctx.CallContract(key.NewHash([32]byte{8}), "create", nil)
		require.ErrorIs(t, err, ErrContractNotFound)

		return nil, nil
	})
	require.NoError(t, err)
}

func TestRuntime_UnknownContract(t *testing.T) {
	store := mem.New()
	store.Put(contractKey, value.Contract{Name: "ghost"})

	rt, _ := makeRuntimeOver(t, store, gas.FromUint64(1000), native.NewExecution())

	_, err := rt.Run(account, nil, nil, func(ctx native.Context) (value.Value, error) {
		return ctx.CallContract(contractKey, "call", nil)
	})
	require.ErrorIs(t, err, ErrContractNotFound)
	require.EqualError(t, err, "unknown contract 'ghost': contract not found")
}

func TestRuntime_CallDepth(t *testing.T) {
	registry := native.NewExecution()
	registry.Set("test", fake.NewContract("test", func(ctx native.Context, entry string,
		a args.List) (value.Value, error) {

		return ctx.CallContract(contractKey, entry, a)
	}))

	rt, _ := makeRuntime(t, gas.FromUint64(1000), registry)

	_, err := rt.Run(account, nil, nil, func(ctx native.Context) (value.Value, error) {
		return ctx.CallContract(contractKey, "call", nil)
	})
	require.ErrorIs(t, err, ErrCallDepth)
}

func TestRuntime_GasLimitIsSticky(t *testing.T) {
	rt, _ := makeRuntime(t, gas.FromUint64(10), nil)

	_, err := rt.Run(account, nil, nil, func(ctx native.Context) (value.Value, error) {
		require.NoError(t, ctx.Charge(gas.FromUint64(4)))

		err := ctx.Charge(gas.FromUint64(7))
		require.ErrorIs(t, err, execution.ErrGasLimit)

		// Everything fails after the gas is exhausted.
		_, err = ctx.NewURef(value.Unit{})
		require.ErrorIs(t, err, execution.ErrGasLimit)

		// The error is ignored by the contract.
		return value.Unit{}, nil
	})
	require.ErrorIs(t, err, execution.ErrGasLimit)
	require.ErrorIs(t, rt.Err(), execution.ErrGasLimit)

	_, err = rt.Run(account, nil, nil, func(native.Context) (value.Value, error) {
		return nil, nil
	})
	require.ErrorIs(t, err, execution.ErrGasLimit)
}

func TestRuntime_RevertIsSticky(t *testing.T) {
	registry := native.NewExecution()
	registry.Set("test", fake.NewContract("test", func(ctx native.Context, entry string,
		a args.List) (value.Value, error) {

		return nil, ctx.Revert(7)
	}))

	rt, _ := makeRuntime(t, gas.FromUint64(1000), registry)

	_, err := rt.Run(account, nil, nil, func(ctx native.Context) (value.Value, error) {
		_, err := ctx.CallContract(contractKey, "call", nil)
		require.Error(t, err)

		return value.Unit{}, nil
	})

	var revert *execution.RevertError
	require.True(t, xerrors.As(err, &revert))
	require.Equal(t, uint32(7), revert.Code)
}

func TestRuntime_ChargesCosts(t *testing.T) {
	costs := Costs{
		NewURef: gas.FromUint64(1),
		Read:    gas.FromUint64(2),
		GetKey:  gas.FromUint64(4),
	}

	store := mem.New()
	counter := gas.NewCounter(gas.FromUint64(100))
	tc, err := tracking.New(store, 0)
	require.NoError(t, err)

	rt := New(Params{
		Phase:     execution.Session,
		Counter:   counter,
		Generator: rng.New(execution.DeployHash{}, execution.Session),
		Tracking:  tc,
		Registry:  native.NewExecution(),
		Costs:     costs,
	})

	require.Equal(t, execution.Session, rt.Phase())
	require.Equal(t, execution.DeployHash{}, rt.DeployHash())

	_, err = rt.Run(account, nil, nil, func(ctx native.Context) (value.Value, error) {
		u, err := ctx.NewURef(value.Unit{})
		require.NoError(t, err)

		_, _, err = ctx.Read(u)
		require.NoError(t, err)

		_, _, err = ctx.GetKey("x")
		return nil, err
	})
	require.NoError(t, err)
	require.Equal(t, gas.FromUint64(7), counter.Used())
}

// -----------------------------------------------------------------------------
// Utility functions

func makeRuntime(t *testing.T, limit gas.Gas, registry *native.Service) (*Runtime, *tracking.Copy) {
	store := mem.New()
	store.Put(contractKey, value.Contract{Name: "test"})

	if registry == nil {
		registry = native.NewExecution()
	}

	return makeRuntimeOver(t, store, limit, registry)
}

func makeRuntimeOver(t *testing.T, store *mem.Store, limit gas.Gas,
	registry *native.Service) (*Runtime, *tracking.Copy) {

	tc, err := tracking.New(store, 0)
	require.NoError(t, err)

	rt := New(Params{
		DeployHash: execution.DeployHash{1},
		Phase:      execution.Session,
		Counter:    gas.NewCounter(limit),
		Generator:  rng.New(execution.DeployHash{1}, execution.Session),
		Tracking:   tc,
		Registry:   registry,
	})

	return rt, tc
}
