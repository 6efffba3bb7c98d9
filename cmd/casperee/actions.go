package main

import (
	"fmt"
	"strings"

	engine "github.com/JoowonYun/CasperLabs"
	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/execution/executor"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/genesis"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/value"
	"github.com/rs/xid"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

func genesisAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}

	defer e.Close()

	cfg, err := e.cfg.GenesisConfig()
	if err != nil {
		return err
	}

	for _, raw := range c.StringSlice("account") {
		acct, err := parseAccount(raw)
		if err != nil {
			return err
		}

		cfg.Accounts = append(cfg.Accounts, acct)
	}

	res, err := genesis.Run(e.store, e.registry, cfg)
	if err != nil {
		return xerrors.Errorf("genesis failed: %v", err)
	}

	fmt.Fprintf(c.App.Writer, "mint: %s\n", res.Mint)

	rows := make([][]string, len(cfg.Accounts))
	for i, acct := range cfg.Accounts {
		rows[i] = []string{
			key.NewAccount(acct.PublicKey).String(),
			res.Purses[i].String(),
			acct.Balance.String(),
		}
	}

	render(c.App.Writer, []string{"Account", "Main purse", "Balance"}, rows)

	return nil
}

func execAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}

	defer e.Close()

	d, err := makeDeploy(c, e)
	if err != nil {
		return err
	}

	svc, err := e.service(c)
	if err != nil {
		return err
	}

	res := executor.ExecuteDeploy(svc, e.store, d)

	printDeploy(c.App.Writer, res)

	if !c.Bool("dry-run") {
		err = executor.Commit(e.store, []executor.DeployResult{res})
		if err != nil {
			return err
		}

		engine.Logger.Info().
			Str("deploy", d.Hash.String()).
			Str("cost", res.Cost.String()).
			Int("keys", res.Effect.Size()).
			Msg("deploy committed")
	}

	if res.Err != nil {
		return xerrors.Errorf("deploy failed: %v", res.Err)
	}

	return nil
}

func queryAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}

	defer e.Close()

	var rows [][]string

	raw := c.String("key")
	if raw != "" {
		k, err := key.Parse(raw)
		if err != nil {
			return xerrors.Errorf("invalid key: %v", err)
		}

		v, found, err := e.store.Read(k.Normalize())
		if err != nil {
			return err
		}

		if !found {
			return xerrors.Errorf("key %s not found", k)
		}

		rows = append(rows, []string{k.String(), v.Type().String(), formatValue(v)})
	} else {
		err = e.store.ForEach(func(k key.Key, v value.Value) error {
			rows = append(rows, []string{k.String(), v.Type().String(), formatValue(v)})
			return nil
		})
		if err != nil {
			return err
		}
	}

	render(c.App.Writer, []string{"Key", "Type", "Value"}, rows)

	return nil
}

func makeDeploy(c *cli.Context, e *env) (executor.Deploy, error) {
	pk, err := parsePublicKey(c.String("account"))
	if err != nil {
		return executor.Deploy{}, err
	}

	limit, err := e.cfg.Limit()
	if err != nil {
		return executor.Deploy{}, err
	}

	if c.String("gas-limit") != "" {
		limit, err = gas.Parse(c.String("gas-limit"))
		if err != nil {
			return executor.Deploy{}, err
		}
	}

	hash := execution.DeployHash(blake2b.Sum256(xid.New().Bytes()))
	if c.String("deploy") != "" {
		hash, err = execution.ParseDeployHash(c.String("deploy"))
		if err != nil {
			return executor.Deploy{}, err
		}
	}

	session, err := makeCode(c.String("session"), c.String("args"))
	if err != nil {
		return executor.Deploy{}, xerrors.Errorf("session: %v", err)
	}

	payment, err := makeCode(c.String("payment"), c.String("payment-args"))
	if err != nil {
		return executor.Deploy{}, xerrors.Errorf("payment: %v", err)
	}

	d := executor.Deploy{
		Hash:     hash,
		Account:  key.NewAccount(pk),
		GasLimit: limit,
		Payment:  payment,
		Session:  session,
	}

	return d, nil
}

func makeCode(name, rawArgs string) (executor.Code, error) {
	code := executor.Code{Name: name}

	if rawArgs == "" {
		return code, nil
	}

	list, err := args.ParseJSON([]byte(rawArgs))
	if err != nil {
		return executor.Code{}, xerrors.Errorf("invalid arguments: %v", err)
	}

	code.Args = list

	return code, nil
}

func parseAccount(raw string) (genesis.Account, error) {
	hexKey, rawBalance, found := strings.Cut(raw, ":")
	if !found {
		return genesis.Account{}, xerrors.Errorf("malformed account '%s'", raw)
	}

	pk, err := parsePublicKey(hexKey)
	if err != nil {
		return genesis.Account{}, err
	}

	balance, err := value.ParseU512(rawBalance)
	if err != nil {
		return genesis.Account{}, xerrors.Errorf("invalid balance: %v", err)
	}

	return genesis.Account{PublicKey: pk, Balance: balance}, nil
}
