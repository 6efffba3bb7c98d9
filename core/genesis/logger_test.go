package genesis

import (
	engine "github.com/JoowonYun/CasperLabs"
	"github.com/rs/zerolog"
)

// setLogger replaces the global logger and returns the function restoring it.
func setLogger(logger zerolog.Logger) func() {
	prev := engine.Logger
	engine.Logger = logger

	return func() {
		engine.Logger = prev
	}
}
