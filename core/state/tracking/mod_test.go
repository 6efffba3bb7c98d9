package tracking

import (
	"testing"

	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state/mem"
	"github.com/JoowonYun/CasperLabs/core/transform"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/JoowonYun/CasperLabs/core/value"
	"github.com/JoowonYun/CasperLabs/internal/testing/fake"
	"github.com/stretchr/testify/require"
)

func TestCopy_Read(t *testing.T) {
	store := mem.New()
	a := key.NewHash([32]byte{1})
	store.Put(a, value.UInt64(1))

	c, err := New(store, 0)
	require.NoError(t, err)

	v, found, err := c.Read(a)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, value.UInt64(1), v)

	_, found, err = c.Read(key.NewHash([32]byte{2}))
	require.NoError(t, err)
	require.False(t, found)

	eff := c.Effect()
	require.Equal(t, effect.Read, eff.Ops[a])
	require.Len(t, eff.Ops, 2)
	require.Empty(t, eff.Transforms)

	// The cache serves the value even when the store changed below.
	store.Put(a, value.UInt64(5))
	v, _, _ = c.Read(a)
	require.Equal(t, value.UInt64(1), v)

	c, err = New(fake.NewBadReader(), 1)
	require.NoError(t, err)

	_, _, err = c.Read(a)
	require.EqualError(t, err, fake.Err("failed to read "+a.String()))
}

func TestCopy_WriteAndAdd(t *testing.T) {
	store := mem.New()
	purse := key.NewURef(uref.New(uref.Addr{1}, uref.ReadAddWrite))

	c, err := New(store, 16)
	require.NoError(t, err)

	require.NoError(t, c.Write(purse, value.NewU512(10)))
	require.NoError(t, c.Add(purse, value.NewU512(5)))

	v, found, err := c.Read(purse.Normalize())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, value.NewU512(15), v)

	eff := c.Effect()
	require.Equal(t, effect.Write, eff.Ops[purse.Normalize()])
	require.Equal(t, transform.NewWrite(value.NewU512(15)), eff.Transforms[purse.Normalize()])

	err = c.Add(purse, value.Int32(1))
	require.ErrorIs(t, err, transform.ErrTypeMismatch)

	err = c.Add(purse, value.MaxU512)
	require.ErrorIs(t, err, value.ErrOverflow)

	err = c.Add(key.NewHash([32]byte{}), value.NewU512(1))
	require.ErrorIs(t, err, transform.ErrTypeMismatch)

	err = c.Add(purse, value.String("x"))
	require.ErrorIs(t, err, transform.ErrTypeMismatch)

	// Failed adds leave nothing behind.
	require.Equal(t, eff, c.Effect())
}

func TestCopy_AddOverState(t *testing.T) {
	store := mem.New()
	k := key.NewHash([32]byte{1})
	store.Put(k, value.NewU512(100))

	c, err := New(store, 16)
	require.NoError(t, err)

	require.NoError(t, c.Add(k, value.NewU512(1)))
	require.NoError(t, c.Add(k, value.NewU512(2)))

	eff := c.Effect()
	require.Equal(t, effect.Add, eff.Ops[k])
	require.Equal(t, transform.NewAddUInt512(value.NewU512(3)), eff.Transforms[k])

	require.NoError(t, store.Commit(eff))

	v, _, _ := store.Read(k)
	require.Equal(t, value.NewU512(103), v)
}

func TestCopy_Rollback(t *testing.T) {
	c, err := New(mem.New(), 16)
	require.NoError(t, err)

	a := key.NewHash([32]byte{1})
	b := key.NewHash([32]byte{2})

	require.NoError(t, c.Write(a, value.UInt64(1)))
	cp := c.Checkpoint()

	require.NoError(t, c.Add(a, value.UInt64(1)))
	require.NoError(t, c.Write(b, value.Unit{}))
	_, _, err = c.Read(key.NewHash([32]byte{3}))
	require.NoError(t, err)
	require.Equal(t, 3, c.Effect().Size())

	require.NoError(t, c.Rollback(cp))

	eff := c.Effect()
	require.Equal(t, 1, eff.Size())
	require.Equal(t, effect.Write, eff.Ops[a])
	require.Equal(t, transform.NewWrite(value.UInt64(1)), eff.Transforms[a])

	err = c.Rollback(cp + 1)
	require.ErrorIs(t, err, ErrInvalidCheckpoint)

	require.NoError(t, c.Rollback(0))
	require.True(t, c.Effect().IsEmpty())
}
