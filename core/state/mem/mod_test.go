package mem

import (
	"testing"

	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state"
	"github.com/JoowonYun/CasperLabs/core/transform"
	"github.com/JoowonYun/CasperLabs/core/value"
	"github.com/stretchr/testify/require"
)

var _ state.Store = (*Store)(nil)

func TestStore_Commit(t *testing.T) {
	s := New()
	k := key.NewHash([32]byte{1})

	_, found, err := s.Read(k)
	require.NoError(t, err)
	require.False(t, found)

	eff := effect.New()
	eff.Transforms[k] = transform.NewWrite(value.NewU512(1))
	require.NoError(t, s.Commit(eff))

	eff = effect.New()
	eff.Transforms[k] = transform.NewAddUInt512(value.NewU512(2))
	require.NoError(t, s.Commit(eff))

	v, found, err := s.Read(k)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, value.NewU512(3), v)
}

func TestStore_CommitIsAtomic(t *testing.T) {
	s := New()
	a := key.NewHash([32]byte{1})
	b := key.NewHash([32]byte{2})

	eff := effect.New()
	eff.Transforms[a] = transform.NewWrite(value.Unit{})
	eff.Transforms[b] = transform.NewAddInt32(1)

	err := s.Commit(eff)
	require.ErrorIs(t, err, transform.ErrTypeMismatch)

	_, found, _ := s.Read(a)
	require.False(t, found)
}

func TestStore_Stage(t *testing.T) {
	s := New()
	a := key.NewHash([32]byte{1})
	b := key.NewHash([32]byte{2})
	s.Put(a, value.UInt64(1))

	eff := effect.New()
	eff.Transforms[b] = transform.NewWrite(value.UInt64(2))

	child, err := s.Stage(eff)
	require.NoError(t, err)

	v, found, _ := child.Read(a)
	require.True(t, found)
	require.Equal(t, value.UInt64(1), v)

	_, found, _ = s.Read(b)
	require.False(t, found)

	require.Equal(t, 1, s.Len())
	require.Equal(t, 2, child.Len())

	eff.Transforms[b] = transform.NewAddInt32(1)
	_, err = s.Stage(eff)
	require.Error(t, err)
}
