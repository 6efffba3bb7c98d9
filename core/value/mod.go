// Package value defines the values stored in the global state and their
// deterministic binary encoding.
//
// Wide integers are first-class values with checked arithmetic so that the
// balances and the gas can never wrap silently.
package value

import (
	"fmt"
	"sort"

	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/uref"
)

// Type is the discriminant of a stored value.
type Type uint8

const (
	TypeUnit Type = iota
	TypeInt32
	TypeUInt64
	TypeU256
	TypeU512
	TypeString
	TypeBytes
	TypeKey
	TypeOption
	TypeAccount
	TypeContract
)

var typeNames = map[Type]string{
	TypeUnit:     "unit",
	TypeInt32:    "int32",
	TypeUInt64:   "uint64",
	TypeU256:     "u256",
	TypeU512:     "u512",
	TypeString:   "string",
	TypeBytes:    "bytes",
	TypeKey:      "key",
	TypeOption:   "option",
	TypeAccount:  "account",
	TypeContract: "contract",
}

// String implements fmt.Stringer.
func (t Type) String() string {
	name, found := typeNames[t]
	if !found {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return name
}

// Value is a value of the global state.
type Value interface {
	Type() Type
}

// Unit is the empty value.
//
// - implements value.Value
type Unit struct{}

// Type implements value.Value.
func (Unit) Type() Type { return TypeUnit }

// Int32 is a signed 32-bit integer.
//
// - implements value.Value
type Int32 int32

// Type implements value.Value.
func (Int32) Type() Type { return TypeInt32 }

// UInt64 is an unsigned 64-bit integer.
//
// - implements value.Value
type UInt64 uint64

// Type implements value.Value.
func (UInt64) Type() Type { return TypeUInt64 }

// String is a text value.
//
// - implements value.Value
type String string

// Type implements value.Value.
func (String) Type() Type { return TypeString }

// Bytes is an opaque byte string.
//
// - implements value.Value
type Bytes []byte

// Type implements value.Value.
func (Bytes) Type() Type { return TypeBytes }

// Key is a value holding a key of the state.
//
// - implements value.Value
type Key struct {
	Key key.Key
}

// NewKey returns the value of the key.
func NewKey(k key.Key) Key {
	return Key{Key: k}
}

// Type implements value.Value.
func (Key) Type() Type { return TypeKey }

// Option is a value that may be absent. Some is nil for None.
//
// - implements value.Value
type Option struct {
	Some Value
}

// None returns the empty option.
func None() Option {
	return Option{}
}

// Some returns an option holding the value.
func Some(v Value) Option {
	return Option{Some: v}
}

// Type implements value.Value.
func (Option) Type() Type { return TypeOption }

// IsNone returns true when the option is empty.
func (o Option) IsNone() bool {
	return o.Some == nil
}

// NamedKeys maps human readable names to keys.
type NamedKeys map[string]key.Key

// Names returns the names in lexicographical order.
func (nk NamedKeys) Names() []string {
	names := make([]string, 0, len(nk))
	for name := range nk {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Clone returns a copy of the map.
func (nk NamedKeys) Clone() NamedKeys {
	clone := make(NamedKeys, len(nk))
	for name, k := range nk {
		clone[name] = k
	}
	return clone
}

// Account is the value stored under an account key.
//
// - implements value.Value
type Account struct {
	PublicKey [32]byte
	NamedKeys NamedKeys
	MainPurse uref.PurseID
}

// Type implements value.Value.
func (Account) Type() Type { return TypeAccount }

// Contract is the value stored under the key of a contract. Name is the name
// of the native implementation in the execution registry.
//
// - implements value.Value
type Contract struct {
	Name            string
	NamedKeys       NamedKeys
	ProtocolVersion uint64
}

// Type implements value.Value.
func (Contract) Type() Type { return TypeContract }
