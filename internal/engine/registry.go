package engine

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
)

// Factory builds an Engine instance from its configuration.
type Factory func(cfg common.EngineConfig, deps Deps) (Engine, error)

// Deps carries shared collaborators into engine constructors.
type Deps struct {
	Runner Runner
	Logger *slog.Logger
}

// registry of engine provider factories, populated below or explicitly
// via Register.
var providers = map[string]Factory{
	ProviderGosseract: func(cfg common.EngineConfig, deps Deps) (Engine, error) {
		return NewGosseractEngine(cfg, deps.Logger), nil
	},
	ProviderTesseractCLI: func(cfg common.EngineConfig, deps Deps) (Engine, error) {
		return NewTesseractCLIEngine(cfg, deps.Runner, deps.Logger), nil
	},
}

// Register registers an engine provider factory by name.
func Register(provider string, factory Factory) {
	providers[provider] = factory
}

// Build instantiates every enabled engine from cfgs and returns them with
// their trust weights keyed by engine ID. Disabled entries are skipped;
// an unknown provider fails the whole build so misconfiguration surfaces
// at startup rather than mid-run.
func Build(cfgs []common.EngineConfig, deps Deps) ([]Engine, map[string]float64, error) {
	var engines []Engine
	weights := make(map[string]float64, len(cfgs))

	for i := range cfgs {
		cfg := cfgs[i]
		if !cfg.Enabled {
			continue
		}
		factory, ok := providers[cfg.Provider]
		if !ok {
			return nil, nil, fmt.Errorf("unknown engine provider: %s", cfg.Provider)
		}
		eng, err := factory(cfg, deps)
		if err != nil {
			return nil, nil, fmt.Errorf("build engine %s: %w", cfg.ID, err)
		}
		engines = append(engines, eng)
		weights[cfg.ID] = cfg.Weight
	}

	if len(engines) == 0 {
		return nil, nil, fmt.Errorf("no engines enabled")
	}
	return engines, weights, nil
}
