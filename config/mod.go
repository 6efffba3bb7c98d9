// Package config defines the YAML configuration of the engine: the gas costs,
// the default gas limit, the genesis accounts and the logging level.
//
// A configuration file only needs the fields it changes; the others keep the
// default values.
//
//	gas_limit: "1000000"
//	costs:
//	  new_uref: 20
//	genesis:
//	  accounts:
//	    - public_key: 0101010101010101010101010101010101010101010101010101010101010101
//	      balance: "1000000000"
//	log:
//	  level: debug
package config

import (
	"encoding/hex"
	"os"

	"github.com/JoowonYun/CasperLabs/core/execution/executor"
	"github.com/JoowonYun/CasperLabs/core/execution/runtime"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/genesis"
	"github.com/JoowonYun/CasperLabs/core/value"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Costs are the costs of the host operations.
type Costs struct {
	Base         uint64 `yaml:"base"`
	NewURef      uint64 `yaml:"new_uref"`
	Read         uint64 `yaml:"read"`
	Write        uint64 `yaml:"write"`
	Add          uint64 `yaml:"add"`
	ReadLocal    uint64 `yaml:"read_local"`
	WriteLocal   uint64 `yaml:"write_local"`
	GetKey       uint64 `yaml:"get_key"`
	CallContract uint64 `yaml:"call_contract"`
	Revert       uint64 `yaml:"revert"`
}

// Account is a genesis account. The public key is hex encoded and the balance
// is a decimal amount.
type Account struct {
	PublicKey string `yaml:"public_key"`
	Balance   string `yaml:"balance"`
}

// Genesis is the content of the initial state.
type Genesis struct {
	ProtocolVersion uint64    `yaml:"protocol_version"`
	Accounts        []Account `yaml:"accounts"`
}

// Log is the configuration of the logger.
type Log struct {
	Level string `yaml:"level"`
}

// Config is the configuration of the engine.
type Config struct {
	// GasLimit is the limit of a phase when the deploy does not set one.
	GasLimit string `yaml:"gas_limit"`

	// CacheSize is the number of state values cached by a session.
	CacheSize int `yaml:"cache_size"`

	// Workers is the number of deploys executed in parallel.
	Workers int `yaml:"workers"`

	Costs   Costs   `yaml:"costs"`
	Genesis Genesis `yaml:"genesis"`
	Log     Log     `yaml:"log"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		GasLimit:  "1000000",
		CacheSize: 1024,
		Workers:   4,
		Costs: Costs{
			Base:         100,
			NewURef:      10,
			Read:         1,
			Write:        2,
			Add:          2,
			ReadLocal:    1,
			WriteLocal:   2,
			GetKey:       1,
			CallContract: 5,
			Revert:       1,
		},
		Genesis: Genesis{ProtocolVersion: 1},
		Log:     Log{Level: "info"},
	}
}

// Load reads the file at the path over the default configuration and
// validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, xerrors.Errorf("failed to read config: %v", err)
	}

	return Parse(data)
}

// Parse reads the YAML document over the default configuration and validates
// the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	err := yaml.UnmarshalStrict(data, &cfg)
	if err != nil {
		return Config{}, xerrors.Errorf("failed to unmarshal config: %v", err)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, xerrors.Errorf("invalid config: %v", err)
	}

	return cfg, nil
}

// Validate returns an error if a field can't be used.
func (c Config) Validate() error {
	_, err := c.Limit()
	if err != nil {
		return err
	}

	if c.CacheSize < 0 {
		return xerrors.Errorf("negative cache size %d", c.CacheSize)
	}

	if c.Workers < 0 {
		return xerrors.Errorf("negative number of workers %d", c.Workers)
	}

	_, err = c.GenesisConfig()
	if err != nil {
		return err
	}

	_, err = zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return xerrors.Errorf("invalid log level: %v", err)
	}

	return nil
}

// Limit returns the default gas limit.
func (c Config) Limit() (gas.Gas, error) {
	return gas.Parse(c.GasLimit)
}

// Executor returns the configuration of the executor.
func (c Config) Executor() executor.Config {
	return executor.Config{
		BaseCost: gas.FromUint64(c.Costs.Base),
		Costs: runtime.Costs{
			NewURef:      gas.FromUint64(c.Costs.NewURef),
			Read:         gas.FromUint64(c.Costs.Read),
			Write:        gas.FromUint64(c.Costs.Write),
			Add:          gas.FromUint64(c.Costs.Add),
			ReadLocal:    gas.FromUint64(c.Costs.ReadLocal),
			WriteLocal:   gas.FromUint64(c.Costs.WriteLocal),
			GetKey:       gas.FromUint64(c.Costs.GetKey),
			CallContract: gas.FromUint64(c.Costs.CallContract),
			Revert:       gas.FromUint64(c.Costs.Revert),
		},
		CacheSize: c.CacheSize,
	}
}

// GenesisConfig returns the configuration of the genesis.
func (c Config) GenesisConfig() (genesis.Config, error) {
	cfg := genesis.Config{
		ProtocolVersion: c.Genesis.ProtocolVersion,
		Accounts:        make([]genesis.Account, len(c.Genesis.Accounts)),
	}

	for i, acct := range c.Genesis.Accounts {
		pk, err := hex.DecodeString(acct.PublicKey)
		if err != nil || len(pk) != 32 {
			return genesis.Config{}, xerrors.Errorf("account %d: public key must be 32 hex encoded bytes", i)
		}

		balance, err := value.ParseU512(acct.Balance)
		if err != nil {
			return genesis.Config{}, xerrors.Errorf("account %d: invalid balance: %v", i, err)
		}

		copy(cfg.Accounts[i].PublicKey[:], pk)
		cfg.Accounts[i].Balance = balance
	}

	return cfg, nil
}
