package main

import (
	"encoding/hex"

	engine "github.com/JoowonYun/CasperLabs"
	"github.com/JoowonYun/CasperLabs/config"
	"github.com/JoowonYun/CasperLabs/contracts/mint"
	"github.com/JoowonYun/CasperLabs/contracts/mintpurse"
	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/execution/executor"
	"github.com/JoowonYun/CasperLabs/core/execution/native"
	"github.com/JoowonYun/CasperLabs/core/execution/telemetry"
	"github.com/JoowonYun/CasperLabs/core/state/disk"
	"github.com/JoowonYun/CasperLabs/core/store/kv"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

// env is what the actions share: the configuration and the global state.
type env struct {
	cfg      config.Config
	db       kv.DB
	store    *disk.Store
	registry *native.Service
}

func openEnv(c *cli.Context) (*env, error) {
	cfg := config.Default()

	path := c.Path("config")
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	level := c.String("log-level")
	if level == "" {
		level = cfg.Log.Level
	}

	err := engine.SetLogLevel(level)
	if err != nil {
		return nil, xerrors.Errorf("invalid log level: %v", err)
	}

	db, err := kv.Open(kv.Engine(c.String("backend")), c.Path("db"))
	if err != nil {
		return nil, xerrors.Errorf("failed to open database: %v", err)
	}

	registry := native.NewExecution()
	mint.RegisterContract(registry, mint.NewContract())
	mintpurse.RegisterContract(registry, mintpurse.NewContract())

	e := &env{
		cfg:      cfg,
		db:       db,
		store:    disk.New(db),
		registry: registry,
	}

	return e, nil
}

// service returns the executor wrapped with the telemetry. The spans are
// dropped unless the tracing is enabled.
func (e *env) service(c *cli.Context) (execution.Service, error) {
	exec := executor.NewExecutor(e.registry, e.cfg.Executor())

	var opts []telemetry.Option
	if !c.Bool("tracing") {
		opts = append(opts, telemetry.WithTracer(opentracing.NoopTracer{}))
	}

	svc, err := telemetry.NewService(exec, "casperee", opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to create service: %v", err)
	}

	return svc, nil
}

func (e *env) Close() error {
	return e.db.Close()
}

func parsePublicKey(s string) ([32]byte, error) {
	var pk [32]byte

	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(pk) {
		return pk, xerrors.Errorf("public key '%s' must be 32 hex encoded bytes", s)
	}

	copy(pk[:], raw)

	return pk, nil
}
