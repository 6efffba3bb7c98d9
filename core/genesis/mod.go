// Package genesis creates the initial global state: the mint contract and the
// accounts with their main purse.
package genesis

import (
	engine "github.com/JoowonYun/CasperLabs"
	"github.com/JoowonYun/CasperLabs/contracts/mint"
	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/execution/native"
	"github.com/JoowonYun/CasperLabs/core/execution/rng"
	"github.com/JoowonYun/CasperLabs/core/execution/runtime"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state"
	"github.com/JoowonYun/CasperLabs/core/state/tracking"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// DeployHash is the deploy identifier of the genesis. The references of the
// genesis are drawn from its system phase.
var DeployHash = execution.DeployHash(blake2b.Sum256([]byte("genesis")))

// SystemAccount is the account the genesis runs as.
var SystemAccount = key.NewAccount([32]byte{})

// Account is an account created by the genesis.
type Account struct {
	PublicKey [32]byte
	Balance   value.U512
}

// Config is the content of the genesis.
type Config struct {
	Accounts        []Account
	ProtocolVersion uint64
}

// Result describes the created state.
type Result struct {
	// Mint is the reference of the mint contract, with the read right only.
	Mint uref.URef

	// Purses are the main purses of the accounts, in the order of the
	// configuration.
	Purses []uref.URef

	Effect effect.Effect
}

// Run creates the genesis state and commits it to the store. The registry
// must hold the mint contract.
func Run(store state.Store, registry *native.Service, cfg Config) (Result, error) {
	_, err := registry.Get(mint.ContractName)
	if err != nil {
		return Result{}, xerrors.Errorf("mint not registered: %v", err)
	}

	tc, err := tracking.New(store, 0)
	if err != nil {
		return Result{}, err
	}

	gen := rng.New(DeployHash, execution.System)

	mintRef := gen.NewURef(uref.ReadAddWrite)

	err = tc.Write(key.NewURef(mintRef), value.Contract{
		Name:            mint.ContractName,
		ProtocolVersion: cfg.ProtocolVersion,
	})
	if err != nil {
		return Result{}, xerrors.Errorf("failed to write mint: %v", err)
	}

	public := mintRef.WithRights(uref.Read)
	mintKey := key.NewURef(public)

	rt := runtime.New(runtime.Params{
		DeployHash: DeployHash,
		Phase:      execution.System,
		Counter:    gas.NewCounter(gas.Max),
		Generator:  gen,
		Tracking:   tc,
		Registry:   registry,
	})

	res := Result{Mint: public}

	_, err = rt.Run(SystemAccount, value.NamedKeys{mint.ContractName: mintKey}, nil,
		func(ctx native.Context) (value.Value, error) {
			for _, acct := range cfg.Accounts {
				purse, err := createAccount(ctx, tc, mintKey, acct)
				if err != nil {
					return nil, err
				}

				res.Purses = append(res.Purses, purse)
			}

			return nil, nil
		})
	if err != nil {
		return Result{}, xerrors.Errorf("genesis failed: %v", err)
	}

	res.Effect = tc.Effect()

	err = store.Commit(res.Effect)
	if err != nil {
		return Result{}, xerrors.Errorf("failed to commit genesis: %v", err)
	}

	engine.Logger.Info().
		Str("mint", public.String()).
		Int("accounts", len(cfg.Accounts)).
		Int("keys", res.Effect.Size()).
		Msg("genesis committed")

	return res, nil
}

func createAccount(ctx native.Context, tc *tracking.Copy, mintKey key.Key, acct Account) (uref.URef, error) {
	res, err := ctx.CallContract(mintKey, mint.EntryMint, args.New(acct.Balance))
	if err != nil {
		return uref.URef{}, xerrors.Errorf("failed to mint purse of %x: %v", acct.PublicKey, err)
	}

	purseKey, ok := res.(value.Key)
	if !ok {
		return uref.URef{}, xerrors.Errorf("mint returned %v", res)
	}

	purse, ok := purseKey.Key.AsURef()
	if !ok {
		return uref.URef{}, xerrors.Errorf("mint returned %s", purseKey.Key)
	}

	err = tc.Write(key.NewAccount(acct.PublicKey), value.Account{
		PublicKey: acct.PublicKey,
		NamedKeys: value.NamedKeys{mint.ContractName: mintKey},
		MainPurse: uref.NewPurseID(purse),
	})
	if err != nil {
		return uref.URef{}, xerrors.Errorf("failed to write account %x: %v", acct.PublicKey, err)
	}

	return purse, nil
}
