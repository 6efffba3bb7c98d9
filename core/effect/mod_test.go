package effect

import (
	"testing"

	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/transform"
	"github.com/JoowonYun/CasperLabs/core/value"
	"github.com/stretchr/testify/require"
)

func TestOp_Combine(t *testing.T) {
	require.Equal(t, Read, NoOp.Combine(Read))
	require.Equal(t, Add, Add.Combine(NoOp))
	require.Equal(t, Read, Read.Combine(Read))
	require.Equal(t, Add, Add.Combine(Add))
	require.Equal(t, Write, Read.Combine(Add))
	require.Equal(t, Write, Add.Combine(Read))
	require.Equal(t, Write, Write.Combine(Read))
	require.Equal(t, Write, Read.Combine(Write))

	require.Equal(t, "NoOp", NoOp.String())
	require.Equal(t, "Add", Add.String())
}

func TestEffect_AddTransform(t *testing.T) {
	eff := New()
	require.True(t, eff.IsEmpty())

	k := key.NewHash([32]byte{1})

	eff.AddOp(k, Write)
	require.NoError(t, eff.AddTransform(k, transform.NewWrite(value.NewU512(1))))
	require.NoError(t, eff.AddTransform(k, transform.NewAddUInt512(value.NewU512(2))))

	require.Equal(t, transform.NewWrite(value.NewU512(3)), eff.Transforms[k])
	require.Equal(t, 1, eff.Size())

	err := eff.AddTransform(k, transform.NewAddInt32(1))
	require.ErrorIs(t, err, transform.ErrConflict)
	require.Equal(t, transform.NewWrite(value.NewU512(3)), eff.Transforms[k])
}

func TestEffect_Merge(t *testing.T) {
	a := key.NewHash([32]byte{1})
	b := key.NewHash([32]byte{2})

	first := New()
	first.AddOp(a, Read)
	first.Transforms[a] = transform.NewIdentity()

	second := New()
	second.AddOp(a, Write)
	second.AddOp(b, Add)
	second.Transforms[a] = transform.NewWrite(value.Unit{})
	second.Transforms[b] = transform.NewAddUInt64(1)

	merged, err := first.Merge(second)
	require.NoError(t, err)
	require.Equal(t, Write, merged.Ops[a])
	require.Equal(t, Add, merged.Ops[b])
	require.Equal(t, transform.NewWrite(value.Unit{}), merged.Transforms[a])
	require.Len(t, first.Ops, 1)

	bad := New()
	bad.Transforms[b] = transform.NewAddInt32(1)

	_, err = merged.Merge(bad)
	require.ErrorIs(t, err, transform.ErrConflict)
}

func TestEffect_Keys(t *testing.T) {
	eff := New()
	eff.AddOp(key.NewHash([32]byte{3}), Read)
	eff.Transforms[key.NewAccount([32]byte{9})] = transform.NewIdentity()
	eff.AddOp(key.NewHash([32]byte{1}), Read)
	eff.Transforms[key.NewHash([32]byte{1})] = transform.NewIdentity()

	keys := eff.Keys()
	require.Equal(t, []key.Key{
		key.NewAccount([32]byte{9}),
		key.NewHash([32]byte{1}),
		key.NewHash([32]byte{3}),
	}, keys)
}

func TestEffect_Clone(t *testing.T) {
	eff := New()
	k := key.NewHash([32]byte{})
	eff.AddOp(k, Read)

	clone := eff.Clone()
	clone.AddOp(key.NewHash([32]byte{1}), Write)

	require.Len(t, eff.Ops, 1)
	require.Len(t, clone.Ops, 2)
}
