package gun

import "math"

// Firepower bounds accepted by the host.
const (
	MinPower = 0.1
	MaxPower = 3.0
)

// LowEnergyMode selects the firepower used in multi-opponent mode when own
// energy is scarce.
type LowEnergyMode string

const (
	LowEnergyMax   LowEnergyMode = "max"
	LowEnergyFixed LowEnergyMode = "fixed"
)

// PowerPolicy is the three-tier firepower rule.
type PowerPolicy struct {
	Scale          float64 // distance-scaled tier: Scale / distance
	Max            float64
	LowEnergy      float64 // at or below this own energy the low tier applies
	LowPower       float64
	MeleeLowEnergy LowEnergyMode
}

// DefaultPowerPolicy returns the stock tiers.
func DefaultPowerPolicy() PowerPolicy {
	return PowerPolicy{
		Scale:          500,
		Max:            3,
		LowEnergy:      20,
		LowPower:       1.2,
		MeleeLowEnergy: LowEnergyMax,
	}
}

// Power picks the firepower for a shot at distance with the given own energy.
func (p PowerPolicy) Power(distance, energy float64, melee bool) float64 {
	limit := p.Limit()

	var power float64
	switch {
	case energy <= p.LowEnergy && melee && p.MeleeLowEnergy != LowEnergyFixed:
		power = limit
	case energy <= p.LowEnergy:
		power = p.LowPower
	case distance <= 0:
		power = limit
	default:
		power = p.Scale / distance
	}
	return math.Max(MinPower, math.Min(limit, power))
}

// Limit is the highest firepower the policy will use.
func (p PowerPolicy) Limit() float64 {
	if p.Max <= 0 {
		return MaxPower
	}
	return math.Min(p.Max, MaxPower)
}

// Speed is the projectile speed for a firepower.
func Speed(power float64) float64 {
	return 20 - 3*power
}
