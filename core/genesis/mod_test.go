package genesis

import (
	"testing"

	"github.com/JoowonYun/CasperLabs/contracts/mint"
	"github.com/JoowonYun/CasperLabs/core/execution/native"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state/mem"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/JoowonYun/CasperLabs/core/value"
	"github.com/JoowonYun/CasperLabs/internal/testing/fake"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	store := mem.New()
	registry := native.NewExecution()
	mint.RegisterContract(registry, mint.NewContract())

	cfg := Config{
		Accounts: []Account{
			{PublicKey: [32]byte{1}, Balance: value.NewU512(1000)},
			{PublicKey: [32]byte{2}, Balance: value.NewU512(0)},
		},
		ProtocolVersion: 1,
	}

	res, err := Run(store, registry, cfg)
	require.NoError(t, err)
	require.Equal(t, uref.Read, res.Mint.Rights())
	require.Len(t, res.Purses, 2)

	v, found, err := store.Read(key.NewURef(res.Mint).Normalize())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, value.Contract{Name: mint.ContractName, ProtocolVersion: 1}, v)

	v, found, err = store.Read(key.NewAccount([32]byte{1}))
	require.NoError(t, err)
	require.True(t, found)

	account := v.(value.Account)
	require.Equal(t, uref.NewPurseID(res.Purses[0]), account.MainPurse)
	require.Equal(t, key.NewURef(res.Mint), account.NamedKeys[mint.ContractName])

	// mint, 2 accounts, and for each purse the purse, its balance and the
	// local entry of the mint.
	require.Equal(t, 9, store.Len())
}

func TestRun_IsDeterministic(t *testing.T) {
	cfg := Config{Accounts: []Account{{PublicKey: [32]byte{1}, Balance: value.NewU512(5)}}}

	registry := native.NewExecution()
	mint.RegisterContract(registry, mint.NewContract())

	first, err := Run(mem.New(), registry, cfg)
	require.NoError(t, err)

	second, err := Run(mem.New(), registry, cfg)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestRun_Failures(t *testing.T) {
	_, err := Run(mem.New(), native.NewExecution(), Config{})
	require.EqualError(t, err, "mint not registered: unknown contract 'mint'")

	registry := native.NewExecution()
	mint.RegisterContract(registry, mint.NewContract())

	_, err = Run(fake.NewBadStore(), registry, Config{})
	require.EqualError(t, err, fake.Err("failed to commit genesis"))
}

func TestRun_Log(t *testing.T) {
	registry := native.NewExecution()
	mint.RegisterContract(registry, mint.NewContract())

	logger, check := fake.CheckLog("genesis committed")
	defer setLogger(logger)()

	_, err := Run(mem.New(), registry, Config{})
	require.NoError(t, err)

	check(t)
}
