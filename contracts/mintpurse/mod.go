// Package mintpurse implements a session contract that checks the mint: it
// mints a purse and verifies that its balance is the minted amount. Any
// failure reverts the session with a numbered code.
package mintpurse

import (
	"github.com/JoowonYun/CasperLabs/contracts/mint"
	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/execution/native"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

const (
	// ContractName is the name of the contract in the registry.
	ContractName = "mint_purse"

	// ContractUID is the unique identifier of the contract.
	ContractUID = "mtps"

	// EntryCall is the entry point run as session code.
	EntryCall = "call"
)

// Revert codes of the contract.
const (
	PurseNotCreated uint32 = iota + 1
	MintNotFound
	BalanceNotFound
	BalanceMismatch
)

// DefaultAmount is the amount minted when no argument is given.
var DefaultAmount = value.NewU512(12345)

// RegisterContract registers the contract to the given registry.
func RegisterContract(exec *native.Service, c Contract) {
	exec.Set(ContractName, c)
}

// Contract is the mint purse session contract.
//
// - implements native.Contract
type Contract struct{}

// NewContract returns a new contract.
func NewContract() Contract {
	return Contract{}
}

// UID implements native.Contract.
func (Contract) UID() string {
	return ContractUID
}

// Call implements native.Contract. The only entry point mints the amount of
// the first argument, or the default amount, and checks the balance.
func (Contract) Call(ctx native.Context, entry string, a args.List) (value.Value, error) {
	if entry != EntryCall {
		return nil, xerrors.Errorf("unknown entry point '%s'", entry)
	}

	amount := DefaultAmount
	if a.Len() > 0 {
		var err error
		amount, err = a.U512(0)
		if err != nil {
			return nil, xerrors.Errorf("invalid amount: %v", err)
		}
	}

	mintKey, found, err := ctx.GetKey(mint.ContractName)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ctx.Revert(MintNotFound)
	}

	res, err := ctx.CallContract(mintKey, mint.EntryMint, args.New(amount))
	if err != nil {
		return nil, ctx.Revert(PurseNotCreated)
	}

	purseKey, ok := res.(value.Key)
	if !ok {
		return nil, ctx.Revert(PurseNotCreated)
	}

	purse, ok := purseKey.Key.AsURef()
	if !ok {
		return nil, ctx.Revert(PurseNotCreated)
	}

	res, err = ctx.CallContract(mintKey, mint.EntryBalance,
		args.New(value.NewKey(key.NewURef(purse))), purse)
	if err != nil {
		return nil, err
	}

	balance, ok := res.(value.Option)
	if !ok || balance.IsNone() {
		return nil, ctx.Revert(BalanceNotFound)
	}

	got, ok := balance.Some.(value.U512)
	if !ok || got.Cmp(amount) != 0 {
		return nil, ctx.Revert(BalanceMismatch)
	}

	return value.NewKey(key.NewURef(purse)), nil
}
