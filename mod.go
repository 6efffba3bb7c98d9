// Package engine is the root of the execution engine. It holds the few
// process-wide helpers that the packages share: the logger that the outer
// layers write to and the list of Prometheus collectors that a metrics
// endpoint can register.
//
// The execution core (core/...) never writes to the logger on its own; the
// telemetry wrapper, the genesis installer and the command line do.
package engine

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const defaultLevel = zerolog.InfoLevel

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).Level(defaultLevel).
	With().Timestamp().Logger().
	With().Caller().Logger()

// PromCollectors exposes the Prometheus collectors created by the packages.
// They are not registered by default so that a user of the engine can pick
// the registry.
var PromCollectors []prometheus.Collector

// SetLogLevel changes the level of the global logger. An unknown level is
// reported and the logger is left untouched.
func SetLogLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}

	Logger = Logger.Level(lvl)

	return nil
}
