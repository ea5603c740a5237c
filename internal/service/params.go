package service

import (
	"github.com/dev-shahrooz/Smart-Pricing/internal/config"
	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
)

// EngineParams maps the runtime config onto the engine tunables. Knobs the
// config does not expose keep their defaults.
func EngineParams(cfg *config.Config) engine.Params {
	p := engine.DefaultParams()
	p.LowFitQuality = cfg.LowFitQuality
	p.PriceCeilingMultiple = cfg.PriceCeilingMultiple
	p.BaselineWeight = cfg.BaselineWeight
	p.DegenerateWeightFloor = cfg.DegenerateWeightFloor
	p.MaxSpanMultiple = cfg.MaxSpanMultiple
	return p
}
