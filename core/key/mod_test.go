package key

import (
	"sort"
	"testing"

	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/stretchr/testify/require"
)

func TestKey_Normalize(t *testing.T) {
	u := uref.New(uref.Addr{1}, uref.ReadWrite)

	k := NewURef(u)
	require.NotEqual(t, k, NewURef(u.RemoveAccessRights()))
	require.Equal(t, k.Normalize(), NewURef(u.RemoveAccessRights()))

	back, ok := k.AsURef()
	require.True(t, ok)
	require.Equal(t, u, back)

	_, ok = NewHash([32]byte{}).AsURef()
	require.False(t, ok)
}

func TestKey_Compare(t *testing.T) {
	keys := []Key{
		NewURef(uref.New(uref.Addr{1}, uref.Read)),
		NewHash([32]byte{2}),
		NewAccount([32]byte{9}),
		NewHash([32]byte{1}),
		NewURef(uref.New(uref.Addr{1}, uref.None)),
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	require.Equal(t, NewAccount([32]byte{9}), keys[0])
	require.Equal(t, NewHash([32]byte{1}), keys[1])
	require.Equal(t, NewHash([32]byte{2}), keys[2])
	require.Equal(t, uref.None, keys[3].rights)
	require.Equal(t, uref.Read, keys[4].rights)

	require.Equal(t, 0, keys[1].Compare(NewHash([32]byte{1})))
}

func TestKey_NewLocal(t *testing.T) {
	a := NewLocal([32]byte{1}, []byte("purse"))
	b := NewLocal([32]byte{1}, []byte("purse"))
	c := NewLocal([32]byte{2}, []byte("purse"))
	d := NewLocal([32]byte{1}, []byte("other"))

	require.Equal(t, Local, a.Kind())
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, a, d)
}

func TestKey_Bytes(t *testing.T) {
	keys := []Key{
		NewAccount([32]byte{1}),
		NewHash([32]byte{2}),
		NewURef(uref.New(uref.Addr{3}, uref.ReadAdd)),
		NewLocal([32]byte{4}, []byte{5}),
	}

	for _, k := range keys {
		data := k.Bytes()
		require.Len(t, data, Size)

		back, err := FromBytes(data)
		require.NoError(t, err)
		require.Equal(t, k, back)
	}

	_, err := FromBytes([]byte{1})
	require.EqualError(t, err, "invalid key length 1")

	data := NewHash([32]byte{}).Bytes()
	data[0] = 9
	_, err = FromBytes(data)
	require.EqualError(t, err, "unknown key kind 9")

	data[0] = byte(Hash)
	data[Size-1] = byte(uref.Read)
	_, err = FromBytes(data)
	require.EqualError(t, err, "hash key cannot carry rights")
}

func TestKey_StringAndParse(t *testing.T) {
	keys := []Key{
		NewAccount([32]byte{1}),
		NewHash([32]byte{2}),
		NewURef(uref.New(uref.Addr{3}, uref.ReadAdd)),
		NewLocal([32]byte{4}, []byte{5}),
	}

	for _, k := range keys {
		back, err := Parse(k.String())
		require.NoError(t, err)
		require.Equal(t, k, back)
	}

	_, err := Parse("nope")
	require.EqualError(t, err, "malformed key 'nope'")

	_, err = Parse("hash-0011")
	require.EqualError(t, err, "address is 2 bytes long")

	_, err = Parse("what-0000000000000000000000000000000000000000000000000000000000000000")
	require.EqualError(t, err, "unknown key kind 'what'")
}
