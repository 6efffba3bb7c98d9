// Package mint implements the mint system contract. It creates the purses and
// holds their balances.
//
// A purse is a reference holding the unit value. Its balance lives behind a
// second reference only the mint knows: the local storage of the mint maps
// the address of the purse to the balance reference. Holding a purse with the
// right rights is what allows querying, crediting or debiting it.
package mint

import (
	"fmt"

	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/execution/native"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

const (
	// ContractName is the name of the contract in the registry, and the name
	// of the mint in the named keys of the accounts.
	ContractName = "mint"

	// ContractUID is the unique identifier of the contract.
	ContractUID = "mint"
)

// Entry points of the contract.
const (
	EntryMint     = "mint"
	EntryCreate   = "create"
	EntryBalance  = "balance"
	EntryTransfer = "transfer"
)

// Error is a numbered error of the mint.
type Error uint32

// Errors of the mint, numbered from 1.
const (
	InsufficientFunds Error = iota + 1
	SourceNotFound
	DestNotFound
	InvalidURef
	InvalidAccessRights
	InvalidArgument
	UnknownEntryPoint
)

var errorNames = map[Error]string{
	InsufficientFunds:   "insufficient funds",
	SourceNotFound:      "source not found",
	DestNotFound:        "destination not found",
	InvalidURef:         "invalid uref",
	InvalidAccessRights: "invalid access rights",
	InvalidArgument:     "invalid argument",
	UnknownEntryPoint:   "unknown entry point",
}

// Error implements error.
func (e Error) Error() string {
	name, found := errorNames[e]
	if !found {
		return fmt.Sprintf("mint error %d", uint32(e))
	}

	return fmt.Sprintf("mint error %d: %s", uint32(e), name)
}

// commands defines the entry points of the mint contract. This interface helps
// in testing the contract.
type commands interface {
	mint(ctx native.Context, amount value.U512) (uref.URef, error)
	balance(ctx native.Context, purse uref.URef) (value.Option, error)
	transfer(ctx native.Context, source, target uref.URef, amount value.U512) error
}

// RegisterContract registers the mint contract to the given registry.
func RegisterContract(exec *native.Service, c Contract) {
	exec.Set(ContractName, c)
}

// Contract is the mint system contract.
//
// - implements native.Contract
type Contract struct {
	cmd commands
}

// NewContract returns a new mint contract.
func NewContract() Contract {
	return Contract{cmd: mintCommand{}}
}

// UID implements native.Contract.
func (Contract) UID() string {
	return ContractUID
}

// Call implements native.Contract. It runs the entry point.
func (c Contract) Call(ctx native.Context, entry string, a args.List) (value.Value, error) {
	switch entry {
	case EntryMint:
		amount, err := a.U512(0)
		if err != nil {
			return nil, xerrors.Errorf("failed to mint: %v: %w", err, InvalidArgument)
		}

		return c.newPurse(ctx, amount)
	case EntryCreate:
		return c.newPurse(ctx, value.NewU512(0))
	case EntryBalance:
		purse, err := a.URef(0)
		if err != nil {
			return nil, xerrors.Errorf("failed to get balance: %v: %w", err, InvalidArgument)
		}

		return c.cmd.balance(ctx, purse)
	case EntryTransfer:
		source, target, amount, err := transferArgs(a)
		if err != nil {
			return nil, xerrors.Errorf("failed to transfer: %v: %w", err, InvalidArgument)
		}

		err = c.cmd.transfer(ctx, source, target, amount)
		if err != nil {
			return nil, xerrors.Errorf("failed to transfer: %w", err)
		}

		return value.Unit{}, nil
	default:
		return nil, xerrors.Errorf("entry '%s': %w", entry, UnknownEntryPoint)
	}
}

func (c Contract) newPurse(ctx native.Context, amount value.U512) (value.Value, error) {
	purse, err := c.cmd.mint(ctx, amount)
	if err != nil {
		return nil, xerrors.Errorf("failed to mint: %w", err)
	}

	return value.NewKey(key.NewURef(purse)), nil
}

func transferArgs(a args.List) (uref.URef, uref.URef, value.U512, error) {
	source, err := a.URef(0)
	if err != nil {
		return uref.URef{}, uref.URef{}, value.U512{}, err
	}

	target, err := a.URef(1)
	if err != nil {
		return uref.URef{}, uref.URef{}, value.U512{}, err
	}

	amount, err := a.U512(2)
	if err != nil {
		return uref.URef{}, uref.URef{}, value.U512{}, err
	}

	return source, target, amount, nil
}

// mintCommand implements the entry points of the mint.
//
// - implements commands
type mintCommand struct{}

// mint implements commands. It creates the balance then the purse, and links
// them in the local storage of the mint.
func (mintCommand) mint(ctx native.Context, amount value.U512) (uref.URef, error) {
	balance, err := ctx.NewURef(amount)
	if err != nil {
		return uref.URef{}, xerrors.Errorf("failed to create balance: %w", err)
	}

	purse, err := ctx.NewURef(value.Unit{})
	if err != nil {
		return uref.URef{}, xerrors.Errorf("failed to create purse: %w", err)
	}

	addr := purse.Addr()

	err = ctx.WriteLocal(addr[:], value.NewKey(key.NewURef(balance)))
	if err != nil {
		return uref.URef{}, xerrors.Errorf("failed to link balance: %w", err)
	}

	return purse, nil
}

// balance implements commands. A purse that is not granted with the read right,
// or that does not exist, has no balance.
func (mintCommand) balance(ctx native.Context, purse uref.URef) (value.Option, error) {
	if !ctx.HasAccess(purse, uref.Read) {
		return value.None(), nil
	}

	amount, found, err := lookup(ctx, purse)
	if err != nil {
		return value.Option{}, err
	}

	if !found {
		return value.None(), nil
	}

	balance, _, err := ctx.Read(amount)
	if err != nil {
		return value.Option{}, err
	}

	return value.Some(balance), nil
}

// transfer implements commands. It debits the source and credits the target.
func (mintCommand) transfer(ctx native.Context, source, target uref.URef, amount value.U512) error {
	if !ctx.HasAccess(source, uref.Write) || !ctx.HasAccess(target, uref.Add) {
		return InvalidAccessRights
	}

	sourceBalance, found, err := lookup(ctx, source)
	if err != nil {
		return err
	}
	if !found {
		return SourceNotFound
	}

	targetBalance, found, err := lookup(ctx, target)
	if err != nil {
		return err
	}
	if !found {
		return DestNotFound
	}

	v, _, err := ctx.Read(sourceBalance)
	if err != nil {
		return err
	}

	current, ok := v.(value.U512)
	if !ok {
		return xerrors.Errorf("balance of %s is %v: %w", source, v, InvalidURef)
	}

	left, err := current.Sub(amount)
	if err != nil {
		return InsufficientFunds
	}

	err = ctx.Write(sourceBalance, left)
	if err != nil {
		return xerrors.Errorf("failed to debit: %w", err)
	}

	err = ctx.Add(targetBalance, amount)
	if err != nil {
		return xerrors.Errorf("failed to credit: %w", err)
	}

	return nil
}

// lookup returns the balance reference of the purse.
func lookup(ctx native.Context, purse uref.URef) (uref.URef, bool, error) {
	addr := purse.Addr()

	v, found, err := ctx.ReadLocal(addr[:])
	if err != nil {
		return uref.URef{}, false, xerrors.Errorf("failed to read local: %w", err)
	}

	if !found {
		return uref.URef{}, false, nil
	}

	ref, ok := v.(value.Key)
	if !ok {
		return uref.URef{}, false, xerrors.Errorf("local %x holds %v: %w", addr, v, InvalidURef)
	}

	balance, ok := ref.Key.AsURef()
	if !ok {
		return uref.URef{}, false, xerrors.Errorf("local %x holds %s: %w", addr, ref.Key, InvalidURef)
	}

	return balance, true, nil
}
