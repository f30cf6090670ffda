package agent

import (
	"fmt"

	"github.com/carver-bot/carver/internal/config"
	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/internal/gun"
	"github.com/carver-bot/carver/internal/movement"
	"github.com/carver-bot/carver/internal/radar"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Config tunes one agent.
type Config struct {
	// Seed for the pattern-breaking jitter. Zero seeds from the clock.
	Seed uint64
	// MeleeThreshold is the largest opponent count still played as a duel.
	MeleeThreshold int
	// SwitchToDuel re-selects duel policies mid-episode once enough
	// opponents are destroyed.
	SwitchToDuel bool
	// ImpactMinEnergy is the own energy below which hits are not recorded.
	ImpactMinEnergy float64
	Route           []geom.XY
	Radar           radar.Config
	Gun             gun.Config
}

// DefaultConfig returns the stock agent settings.
func DefaultConfig() Config {
	route, _ := geo.ParseRoute(movement.DefaultRoute)
	return Config{
		MeleeThreshold:  1,
		ImpactMinEnergy: 30,
		Route:           route,
		Radar:           radar.DefaultConfig(),
		Gun:             gun.DefaultConfig(),
	}
}

// ConfigFrom converts the loaded configuration.
func ConfigFrom(c config.AgentConfig) (Config, error) {
	route, err := geo.ParseRoute(c.PatrolRoute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid agent.patrolRoute: %w", err)
	}

	mode := gun.LowEnergyMode(c.Gun.MeleeLowEnergy)
	switch mode {
	case gun.LowEnergyMax, gun.LowEnergyFixed:
	default:
		return Config{}, fmt.Errorf("invalid gun.meleeLowEnergy %q", c.Gun.MeleeLowEnergy)
	}

	return Config{
		Seed:            c.Seed,
		MeleeThreshold:  c.MeleeThreshold,
		SwitchToDuel:    c.SwitchToDuel,
		ImpactMinEnergy: c.Radar.ImpactMinEnergy,
		Route:           route,
		Radar:           radar.Config{Hysteresis: c.Radar.Hysteresis},
		Gun: gun.Config{
			Power: gun.PowerPolicy{
				Scale:          c.Gun.PowerScale,
				Max:            c.Gun.MaxPower,
				LowEnergy:      c.Gun.LowEnergy,
				LowPower:       c.Gun.LowPower,
				MeleeLowEnergy: mode,
			},
			AlignDegrees: c.Gun.AlignDegrees,
		},
	}, nil
}
