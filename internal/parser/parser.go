// Package parser converts host command arguments into core events and state.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/carver-bot/carver/internal/util"
	"github.com/carver-bot/carver/pkg/core"
)

// ErrArgCount is returned when a command carries the wrong number of arguments.
var ErrArgCount = errors.New("wrong number of arguments")

// Argument counts per payload.
const (
	OwnStateArgs  = 12
	SightingArgs  = 7
	ImpactArgs    = 5
	CollisionArgs = 2
)

// parseUintFromFloat parses a string that may be an integer ("32") or float ("32.00") into uint64.
// Hosts that only have a float number type serialize counts as floats.
func parseUintFromFloat(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("parseUintFromFloat: %q is not a valid uint64", s)
	}
	return uint64(f), nil
}

// parseIntFromFloat parses a string that may be an integer or float into int64.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// parseFloat parses a finite float; NaN and infinities are rejected.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parseFloat: %q is not finite", s)
	}
	return f, nil
}

// floats parses every argument as a finite float, naming the first bad one.
func floats(data []string, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, err := parseFloat(data[i])
		if err != nil {
			return nil, fmt.Errorf("error converting %s to float: %w", name, err)
		}
		out[i] = v
	}
	return out, nil
}

func checkArgs(data []string, want int) error {
	if len(data) != want {
		return fmt.Errorf("%w: want %d, got %d", ErrArgCount, want, len(data))
	}
	return nil
}

// Parser provides pure []string -> core value conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseOwnState parses tick, x, y, heading, energy, gunHeading, gunHeat,
// radarHeading, distanceRemaining, arenaWidth, arenaHeight, opponents.
func (p *Parser) ParseOwnState(data []string) (core.OwnState, error) {
	var s core.OwnState
	if err := checkArgs(data, OwnStateArgs); err != nil {
		return s, err
	}
	util.CleanArgs(data)

	tick, err := parseIntFromFloat(data[0])
	if err != nil {
		return s, fmt.Errorf("error converting tick to int: %w", err)
	}
	s.Tick = tick

	v, err := floats(data[1:11], "x", "y", "heading", "energy", "gunHeading", "gunHeat",
		"radarHeading", "distanceRemaining", "arenaWidth", "arenaHeight")
	if err != nil {
		return s, err
	}
	s.X, s.Y, s.Heading, s.Energy = v[0], v[1], v[2], v[3]
	s.GunHeading, s.GunHeat, s.RadarHeading, s.DistanceRemaining = v[4], v[5], v[6], v[7]
	s.Arena = core.Arena{Width: v[8], Height: v[9]}

	opponents, err := parseUintFromFloat(data[11])
	if err != nil {
		return s, fmt.Errorf("error converting opponents to uint: %w", err)
	}
	s.Opponents = int(opponents)

	if !s.Arena.Known() {
		p.logger.Debug("Own state without arena bounds", "tick", s.Tick)
	}
	return s, nil
}

// ParseSighting parses name, bearing, distance, energy, heading, velocity, tick.
func (p *Parser) ParseSighting(data []string) (core.Sighting, error) {
	var sg core.Sighting
	if err := checkArgs(data, SightingArgs); err != nil {
		return sg, err
	}
	util.CleanArgs(data)

	if data[0] == "" {
		return sg, errors.New("sighting without opponent name")
	}
	sg.Name = data[0]

	v, err := floats(data[1:6], "bearing", "distance", "energy", "heading", "velocity")
	if err != nil {
		return sg, err
	}
	sg.Bearing, sg.Distance, sg.Energy, sg.Heading, sg.Velocity = v[0], v[1], v[2], v[3], v[4]

	tick, err := parseIntFromFloat(data[6])
	if err != nil {
		return sg, fmt.Errorf("error converting tick to int: %w", err)
	}
	sg.Tick = tick
	return sg, nil
}

// ParseImpact parses name, bearing, power, heading, velocity.
func (p *Parser) ParseImpact(data []string) (core.Impact, error) {
	var im core.Impact
	if err := checkArgs(data, ImpactArgs); err != nil {
		return im, err
	}
	util.CleanArgs(data)
	im.Name = data[0]

	v, err := floats(data[1:5], "bearing", "power", "heading", "velocity")
	if err != nil {
		return im, err
	}
	im.Bearing, im.Power, im.Heading, im.Velocity = v[0], v[1], v[2], v[3]
	return im, nil
}

// ParseDestroyed parses the name of the destroyed opponent.
func (p *Parser) ParseDestroyed(data []string) (core.OpponentDestroyed, error) {
	if err := checkArgs(data, 1); err != nil {
		return core.OpponentDestroyed{}, err
	}
	util.CleanArgs(data)
	return core.OpponentDestroyed{Name: data[0]}, nil
}

// ParseCollision parses name, bearing.
func (p *Parser) ParseCollision(data []string) (core.Collision, error) {
	if err := checkArgs(data, CollisionArgs); err != nil {
		return core.Collision{}, err
	}
	util.CleanArgs(data)

	bearing, err := parseFloat(data[1])
	if err != nil {
		return core.Collision{}, fmt.Errorf("error converting bearing to float: %w", err)
	}
	return core.Collision{Name: data[0], Bearing: bearing}, nil
}

// ParseWall parses the bearing of the wall contact.
func (p *Parser) ParseWall(data []string) (core.WallHit, error) {
	if err := checkArgs(data, 1); err != nil {
		return core.WallHit{}, err
	}
	util.CleanArgs(data)

	bearing, err := parseFloat(data[0])
	if err != nil {
		return core.WallHit{}, fmt.Errorf("error converting bearing to float: %w", err)
	}
	return core.WallHit{Bearing: bearing}, nil
}
