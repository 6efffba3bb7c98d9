// Package key defines the addresses of the locations in the global state.
//
// A key is a small comparable value so that it can be used directly as a map
// key. The state is always addressed by normalized keys: a reference key
// carries access rights while it is held by a contract, but the location it
// names does not depend on them.
package key

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/JoowonYun/CasperLabs/core/uref"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// Kind is the discriminant of a key.
type Kind uint8

const (
	// Account addresses an account by its public key hash.
	Account Kind = iota
	// Hash addresses an immutable location by its hash.
	Hash
	// URef addresses the location of an unforgeable reference.
	URef
	// Local addresses an entry of the local storage of a contract.
	Local
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Account:
		return "account"
	case Hash:
		return "hash"
	case URef:
		return "uref"
	case Local:
		return "local"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Size is the length of the binary form of a key.
const Size = 1 + uref.AddrLength + 1

// Key is the address of a location in the global state.
type Key struct {
	kind   Kind
	addr   [32]byte
	rights uref.AccessRights
}

// NewAccount returns the key of the account.
func NewAccount(addr [32]byte) Key {
	return Key{kind: Account, addr: addr}
}

// NewHash returns a hash key.
func NewHash(addr [32]byte) Key {
	return Key{kind: Hash, addr: addr}
}

// NewURef returns the key of the reference, keeping its rights.
func NewURef(u uref.URef) Key {
	return Key{kind: URef, addr: u.Addr(), rights: u.Rights()}
}

// NewLocal returns the key of an entry of a local storage. The seed isolates
// the storage of one contract from the others.
func NewLocal(seed [32]byte, local []byte) Key {
	h, _ := blake2b.New256(nil)
	h.Write(seed[:])
	h.Write(local)

	k := Key{kind: Local}
	copy(k.addr[:], h.Sum(nil))

	return k
}

// Kind returns the discriminant of the key.
func (k Key) Kind() Kind {
	return k.kind
}

// Addr returns the 32 bytes of the key.
func (k Key) Addr() [32]byte {
	return k.addr
}

// AsURef returns the reference named by the key, if it is one.
func (k Key) AsURef() (uref.URef, bool) {
	if k.kind != URef {
		return uref.URef{}, false
	}

	return uref.New(k.addr, k.rights), true
}

// Normalize returns the key without the access rights.
func (k Key) Normalize() Key {
	k.rights = uref.None
	return k
}

// Compare orders keys by kind, then address, then rights. It returns -1, 0 or
// 1.
func (k Key) Compare(o Key) int {
	if k.kind != o.kind {
		if k.kind < o.kind {
			return -1
		}
		return 1
	}

	cmp := bytes.Compare(k.addr[:], o.addr[:])
	if cmp != 0 {
		return cmp
	}

	switch {
	case k.rights < o.rights:
		return -1
	case k.rights > o.rights:
		return 1
	default:
		return 0
	}
}

// Bytes returns the binary form of the key.
func (k Key) Bytes() []byte {
	buffer := make([]byte, Size)
	buffer[0] = byte(k.kind)
	copy(buffer[1:], k.addr[:])
	buffer[Size-1] = byte(k.rights)

	return buffer
}

// FromBytes reads a key from its binary form.
func FromBytes(data []byte) (Key, error) {
	if len(data) != Size {
		return Key{}, xerrors.Errorf("invalid key length %d", len(data))
	}

	k := Key{
		kind:   Kind(data[0]),
		rights: uref.AccessRights(data[Size-1]),
	}

	if k.kind > Local {
		return Key{}, xerrors.Errorf("unknown key kind %d", data[0])
	}

	if k.kind != URef && k.rights != uref.None {
		return Key{}, xerrors.Errorf("%s key cannot carry rights", k.kind)
	}

	copy(k.addr[:], data[1:1+uref.AddrLength])

	return k, nil
}

// String returns a readable form, "<kind>-<hex>". Reference keys use the
// reference format.
func (k Key) String() string {
	if u, ok := k.AsURef(); ok {
		return u.String()
	}

	return fmt.Sprintf("%s-%s", k.kind, hex.EncodeToString(k.addr[:]))
}

// Parse reads a key from its readable form.
func Parse(s string) (Key, error) {
	if strings.HasPrefix(s, "uref-") {
		u, err := uref.Parse(s)
		if err != nil {
			return Key{}, err
		}

		return NewURef(u), nil
	}

	prefix, raw, found := strings.Cut(s, "-")
	if !found {
		return Key{}, xerrors.Errorf("malformed key '%s'", s)
	}

	addr, err := hex.DecodeString(raw)
	if err != nil {
		return Key{}, xerrors.Errorf("failed to decode address: %v", err)
	}

	if len(addr) != 32 {
		return Key{}, xerrors.Errorf("address is %d bytes long", len(addr))
	}

	var k Key
	copy(k.addr[:], addr)

	switch prefix {
	case "account":
		k.kind = Account
	case "hash":
		k.kind = Hash
	case "local":
		k.kind = Local
	default:
		return Key{}, xerrors.Errorf("unknown key kind '%s'", prefix)
	}

	return k, nil
}
