package agent

import (
	"testing"

	"github.com/carver-bot/carver/internal/config"
	"github.com/carver-bot/carver/internal/gun"
	"github.com/carver-bot/carver/internal/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaded() config.AgentConfig {
	return config.AgentConfig{
		Seed:           9,
		MeleeThreshold: 1,
		PatrolRoute:    movement.DefaultRoute,
		Radar:          config.RadarConfig{Hysteresis: 70, ImpactMinEnergy: 30},
		Gun: config.GunConfig{
			PowerScale:     500,
			MaxPower:       3,
			LowEnergy:      20,
			LowPower:       1.2,
			MeleeLowEnergy: "fixed",
			AlignDegrees:   10,
		},
	}
}

func TestConfigFrom(t *testing.T) {
	cfg, err := ConfigFrom(loaded())
	require.NoError(t, err)

	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Len(t, cfg.Route, 4)
	assert.Equal(t, 70.0, cfg.Radar.Hysteresis)
	assert.Equal(t, 30.0, cfg.ImpactMinEnergy)
	assert.Equal(t, gun.LowEnergyFixed, cfg.Gun.Power.MeleeLowEnergy)
	assert.Equal(t, 1.2, cfg.Gun.Power.LowPower)
}

func TestConfigFrom_Invalid(t *testing.T) {
	c := loaded()
	c.PatrolRoute = "[[1,2]"
	_, err := ConfigFrom(c)
	assert.ErrorContains(t, err, "patrolRoute")

	c = loaded()
	c.Gun.MeleeLowEnergy = "half"
	_, err = ConfigFrom(c)
	assert.ErrorContains(t, err, "meleeLowEnergy")
}

func TestDefaultConfig_MatchesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.MeleeThreshold)
	assert.Len(t, cfg.Route, 4)
	assert.Equal(t, gun.DefaultConfig(), cfg.Gun)
}
