package execution

import (
	"testing"

	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/transform"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestOnFailCharge_Success(t *testing.T) {
	res := runCharged(func() (struct{}, error) { return struct{}{}, nil },
		gas.FromUint64(123), gas.FromUint64(456))

	require.True(t, res.IsSuccess())
	require.Equal(t, gas.FromUint64(123), res.Cost)
}

func TestOnFailCharge_Failure(t *testing.T) {
	res := runCharged(func() (struct{}, error) { return struct{}{}, ErrGasLimit },
		gas.FromUint64(123), gas.FromUint64(456))

	require.False(t, res.IsSuccess())
	require.ErrorIs(t, res.Err, ErrGasLimit)
	require.Equal(t, gas.FromUint64(456), res.Cost)
	require.True(t, res.Effect.IsEmpty())
	require.NotNil(t, res.Effect.Ops)
}

func TestOnFailCharge_Laziness(t *testing.T) {
	calls := 0
	cost := func() gas.Gas {
		calls++
		return gas.FromUint64(1)
	}

	v, res := OnFailCharge(func() (int, error) { return 42, nil }, cost)
	require.Nil(t, res)
	require.Equal(t, 42, v)
	require.Equal(t, 0, calls)

	_, res = OnFailCharge(func() (int, error) { return 0, xerrors.New("oops") }, cost)
	require.NotNil(t, res)
	require.Equal(t, 1, calls)
	require.EqualError(t, res.Err, "oops")
}

func TestOnFailChargeWith_Effect(t *testing.T) {
	k := key.NewHash([32]byte{42})
	built := 0

	effectFn := func() effect.Effect {
		built++

		eff := effect.New()
		eff.AddOp(k, effect.Read)
		eff.Transforms[k] = transform.NewIdentity()

		return eff
	}

	session := func(step func() (struct{}, error)) Result {
		_, res := OnFailChargeWith(step, Charge(gas.FromUint64(456)), effectFn)
		if res != nil {
			return *res
		}

		return Success(effect.New(), gas.Gas{})
	}

	res := session(func() (struct{}, error) { return struct{}{}, nil })
	require.True(t, res.IsSuccess())
	require.Equal(t, 0, built)

	res = session(func() (struct{}, error) { return struct{}{}, ErrGasLimit })
	require.False(t, res.IsSuccess())
	require.Equal(t, gas.FromUint64(456), res.Cost)
	require.Len(t, res.Effect.Ops, 1)
	require.Len(t, res.Effect.Transforms, 1)
	require.Equal(t, effect.Read, res.Effect.Ops[k])
	require.Equal(t, transform.NewIdentity(), res.Effect.Transforms[k])
	require.Equal(t, 1, built)
}

func TestResult_RevertCode(t *testing.T) {
	res := Failure(xerrors.Errorf("call: %w", Revert(3)), effect.New(), gas.FromUint64(1))

	code, ok := res.RevertCode()
	require.True(t, ok)
	require.Equal(t, uint32(3), code)
	require.EqualError(t, res.Err, "call: reverted with code 3")

	_, ok = Success(effect.New(), gas.Gas{}).RevertCode()
	require.False(t, ok)
}

func TestResult_EffectIsCopied(t *testing.T) {
	eff := effect.New()
	res := Success(eff, gas.Gas{})

	eff.AddOp(key.NewHash([32]byte{}), effect.Write)
	require.True(t, res.Effect.IsEmpty())
}

func TestPhase_String(t *testing.T) {
	for _, p := range []Phase{System, Payment, Session, FinalizePayment} {
		parsed, err := ParsePhase(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
	}

	require.Equal(t, "phase(9)", Phase(9).String())

	_, err := ParsePhase("commit")
	require.EqualError(t, err, "unknown phase 'commit'")
}

func TestDeployHash_Parse(t *testing.T) {
	h := DeployHash{1, 2, 3}

	parsed, err := ParseDeployHash(h.String())
	require.NoError(t, err)
	require.Equal(t, h, parsed)

	_, err = ParseDeployHash("zz")
	require.Error(t, err)

	_, err = ParseDeployHash("0102")
	require.EqualError(t, err, "deploy hash is 2 bytes long")
}

// -----------------------------------------------------------------------------
// Utility functions

func runCharged[T any](step func() (T, error), success, failure gas.Gas) Result {
	_, res := OnFailCharge(step, Charge(failure))
	if res != nil {
		return *res
	}

	return Success(effect.New(), success)
}
