// Package main implements the command line of the execution engine. It
// installs the genesis, executes deploys and queries the global state stored
// in a bbolt or badger database.
//
//	casperee --db state.db genesis --account <hex>:1000000
//	casperee --db state.db exec --account <hex> --session mint_purse
//	casperee --db state.db query
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/JoowonYun/CasperLabs/internal/tracing"
	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp(os.Stdout).Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "casperee",
		Usage:  "run the execution engine over a local global state",
		Writer: out,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:  "db",
				Usage: "path to the database of the global state",
				Value: "casperee.db",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "database engine, bolt or badger",
				Value: "bolt",
			},
			&cli.PathFlag{
				Name:  "config",
				Usage: "path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "level of the logger, overrides the configuration",
			},
			&cli.BoolFlag{
				Name:  "tracing",
				Usage: "send the spans to the Jaeger agent of the environment",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "genesis",
				Usage: "install the mint and the genesis accounts",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "account",
						Usage: "additional account as <hex public key>:<balance>",
					},
				},
				Action: genesisAction,
			},
			{
				Name:  "exec",
				Usage: "execute a deploy and commit its effect",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account",
						Usage:    "hex encoded public key of the account",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "session",
						Usage:    "name of the session contract",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "args",
						Usage: "JSON arguments of the session",
					},
					&cli.StringFlag{
						Name:  "payment",
						Usage: "name of the payment contract",
					},
					&cli.StringFlag{
						Name:  "payment-args",
						Usage: "JSON arguments of the payment",
					},
					&cli.StringFlag{
						Name:  "gas-limit",
						Usage: "gas limit of each phase, overrides the configuration",
					},
					&cli.StringFlag{
						Name:  "deploy",
						Usage: "hex encoded deploy hash, random when empty",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "print the effect without committing it",
					},
				},
				Action: execAction,
			},
			{
				Name:  "query",
				Usage: "print a value of the global state, or all of them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "key",
						Usage: "key of the value, e.g. account-<hex> or uref-<hex>-<rights>",
					},
				},
				Action: queryAction,
			},
		},
		After: func(*cli.Context) error {
			return tracing.CloseAll()
		},
	}
}
