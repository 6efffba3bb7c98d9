// Package uref defines the unforgeable references used to address the
// locations of the global state, and the access rights they carry.
//
// A reference is a 32-byte address and a set of rights. Holding a reference
// with enough rights is what authorizes the access to the location it names,
// and the only way to obtain a new one is to draw it from the deterministic
// generator of the running session.
package uref

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// AddrLength is the length in bytes of a reference address.
const AddrLength = 32

// Addr is the address part of a reference.
type Addr [AddrLength]byte

// String returns the hexadecimal form of the address.
func (a Addr) String() string {
	return hex.EncodeToString(a[:])
}

// AccessRights is a bit set of the operations allowed on a reference.
type AccessRights uint8

const (
	// None gives no access.
	None AccessRights = 0
	// Read allows reading the location.
	Read AccessRights = 1 << 0
	// Write allows overwriting the location.
	Write AccessRights = 1 << 1
	// Add allows adding a commutative delta to the location.
	Add AccessRights = 1 << 2

	ReadWrite    = Read | Write
	ReadAdd      = Read | Add
	AddWrite     = Add | Write
	ReadAddWrite = Read | Add | Write
)

// Contains returns true when every right of other is also in the set.
func (r AccessRights) Contains(other AccessRights) bool {
	return r&other == other
}

// IsReadable returns true when the Read right is set.
func (r AccessRights) IsReadable() bool {
	return r.Contains(Read)
}

// IsWriteable returns true when the Write right is set.
func (r AccessRights) IsWriteable() bool {
	return r.Contains(Write)
}

// IsAddable returns true when the Add right is set.
func (r AccessRights) IsAddable() bool {
	return r.Contains(Add)
}

// Valid returns true when no unknown bit is set.
func (r AccessRights) Valid() bool {
	return r&^ReadAddWrite == 0
}

// String formats the rights as a three digit octal-like number, which is the
// form used in formatted references.
func (r AccessRights) String() string {
	return fmt.Sprintf("%03d", uint8(r))
}

// URef is an unforgeable reference: an address and the rights of its holder.
type URef struct {
	addr   Addr
	rights AccessRights
}

// New returns a reference to the address with the given rights.
func New(addr Addr, rights AccessRights) URef {
	return URef{
		addr:   addr,
		rights: rights,
	}
}

// Addr returns the address of the reference.
func (u URef) Addr() Addr {
	return u.addr
}

// Rights returns the access rights of the reference.
func (u URef) Rights() AccessRights {
	return u.rights
}

// WithRights returns a copy of the reference with different rights.
func (u URef) WithRights(rights AccessRights) URef {
	u.rights = rights
	return u
}

// RemoveAccessRights returns the reference without any right, which is the
// form used to address the global state.
func (u URef) RemoveAccessRights() URef {
	return u.WithRights(None)
}

// String returns the formatted form "uref-<hex>-<rights>".
func (u URef) String() string {
	return fmt.Sprintf("uref-%s-%s", u.addr, u.rights)
}

// Parse reads a reference from its formatted form.
func Parse(s string) (URef, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] != "uref" {
		return URef{}, xerrors.Errorf("malformed uref '%s'", s)
	}

	raw, err := hex.DecodeString(parts[1])
	if err != nil {
		return URef{}, xerrors.Errorf("failed to decode address: %v", err)
	}

	if len(raw) != AddrLength {
		return URef{}, xerrors.Errorf("address is %d bytes long", len(raw))
	}

	r, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return URef{}, xerrors.Errorf("failed to parse rights: %v", err)
	}

	rights := AccessRights(r)
	if !rights.Valid() {
		return URef{}, xerrors.Errorf("invalid rights %d", r)
	}

	var addr Addr
	copy(addr[:], raw)

	return New(addr, rights), nil
}

// PurseID is a reference restricted to denote a location that holds value.
type PurseID struct {
	uref URef
}

// NewPurseID wraps the reference.
func NewPurseID(u URef) PurseID {
	return PurseID{uref: u}
}

// Value returns the wrapped reference.
func (p PurseID) Value() URef {
	return p.uref
}

// String implements fmt.Stringer.
func (p PurseID) String() string {
	return "purse-" + p.uref.String()
}
