package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/carver-bot/carver/internal/agent"
	"github.com/carver-bot/carver/internal/config"
	"github.com/carver-bot/carver/internal/dispatcher"
	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/internal/handlers"
	"github.com/carver-bot/carver/internal/logging"
	"github.com/carver-bot/carver/pkg/core"
	"github.com/carver-bot/carver/pkg/hostlink"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Demo engagement against a scripted opponent circling the arena centre.
const (
	demoOpponent = "demo.Circler"
	demoEpisodes = 4
	demoTicks    = 300
	demoRadius   = 200.0
	demoTurnRate = 2.0 // degrees per tick along the circle
	demoShotGap  = 25  // ticks between the opponent's shots
)

// Per-tick actuator limits of the demo host.
const (
	maxBodyTurn   = 10.0
	maxWeaponTurn = 20.0
	maxSensorTurn = 45.0
	maxSpeed      = 8.0
	gunCooling    = 0.1
)

// demoHost is a minimal host: it integrates the committed commands into the
// agent's own state and scripts one opponent.
type demoHost struct {
	arena     core.Arena
	own       core.OwnState
	opp       geom.XY
	oppAngle  float64
	oppEnergy float64
	d         *dispatcher.Dispatcher
}

// dispatchDemoEvent sends one command through the dispatcher as a host frame.
func (h *demoHost) dispatchDemoEvent(command string, args ...string) (hostlink.Response, error) {
	frame, err := json.Marshal(hostlink.Request{Command: command, Args: args})
	if err != nil {
		return hostlink.Response{}, err
	}
	req, err := hostlink.DecodeRequest(frame)
	if err != nil {
		return hostlink.Response{}, err
	}
	result, err := h.d.Dispatch(dispatcher.Event{Command: req.Command, Args: req.Args, Timestamp: time.Now()})
	if err != nil {
		return hostlink.Fail(req, err), err
	}
	return hostlink.OK(req, result), nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func (h *demoHost) ownArgs() []string {
	s := h.own
	return []string{
		strconv.FormatInt(s.Tick, 10), ftoa(s.X), ftoa(s.Y), ftoa(s.Heading), ftoa(s.Energy),
		ftoa(s.GunHeading), ftoa(s.GunHeat), ftoa(s.RadarHeading), ftoa(s.DistanceRemaining),
		ftoa(h.arena.Width), ftoa(h.arena.Height), strconv.Itoa(s.Opponents),
	}
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

// apply integrates one tick of commands.
func (h *demoHost) apply(cmds []core.Command) {
	s := &h.own
	for _, c := range cmds {
		switch c.Kind {
		case core.TurnSensor:
			s.RadarHeading = geo.NormalizeHeading(s.RadarHeading + clamp(c.Value, maxSensorTurn))
		case core.TurnWeapon:
			s.GunHeading = geo.NormalizeHeading(s.GunHeading + clamp(c.Value, maxWeaponTurn))
		case core.Fire:
			if s.GunHeat == 0 {
				s.GunHeat = 1 + c.Value/5
				s.Energy -= c.Value
				h.oppEnergy = math.Max(0, h.oppEnergy-2*c.Value)
			}
		case core.TurnBody:
			s.Heading = geo.NormalizeHeading(s.Heading + clamp(c.Value, maxBodyTurn))
		case core.MoveForward:
			s.DistanceRemaining = c.Value
		}
	}

	step := clamp(s.DistanceRemaining, maxSpeed)
	p := geo.Clamp(h.arena, geo.Project(s.Position(), s.Heading, step), 18)
	s.X, s.Y = p.X, p.Y
	s.DistanceRemaining -= step
	s.GunHeat = math.Max(0, s.GunHeat-gunCooling)

	h.oppAngle += demoTurnRate
	center := geom.XY{X: h.arena.Width / 2, Y: h.arena.Height / 2}
	h.opp = geo.Project(center, h.oppAngle, demoRadius)
}

func (h *demoHost) sighting() []string {
	pos := h.own.Position()
	bearing := geo.NormalizeBearing(geo.AbsoluteBearing(pos, h.opp) - h.own.Heading)
	speed := demoRadius * geo.Radians(demoTurnRate)
	return []string{
		demoOpponent, ftoa(bearing), ftoa(geo.Distance(pos, h.opp)), ftoa(h.oppEnergy),
		ftoa(geo.NormalizeHeading(h.oppAngle + 90)), ftoa(speed), strconv.FormatInt(h.own.Tick, 10),
	}
}

// episode plays one engagement and reports whether the agent won.
func (h *demoHost) episode(out io.Writer, round int) error {
	h.own = core.OwnState{X: 100, Y: 100, Energy: 100, Arena: h.arena, Opponents: 1}
	h.oppAngle, h.oppEnergy = 0, 100
	h.opp = geo.Project(geom.XY{X: h.arena.Width / 2, Y: h.arena.Height / 2}, 0, demoRadius)

	resp, err := h.dispatchDemoEvent(handlers.CmdEpisodeStart, h.ownArgs()...)
	if err != nil {
		return err
	}
	h.apply(resp.Result.([]core.Command))

	for tick := int64(1); tick <= demoTicks; tick++ {
		h.own.Tick = tick
		if _, err := h.dispatchDemoEvent(handlers.CmdSighting, h.sighting()...); err != nil {
			return err
		}
		if tick%demoShotGap == 0 {
			// the scripted opponent fires: it pays the energy, and every
			// other shot lands
			h.oppEnergy -= 2
			if tick%(2*demoShotGap) == 0 {
				h.own.Energy -= 10
				if _, err := h.dispatchDemoEvent(handlers.CmdImpact, demoOpponent, "180", "2", "0", "0"); err != nil {
					return err
				}
			}
		}

		switch {
		case h.oppEnergy <= 0:
			_, err = h.dispatchDemoEvent(handlers.CmdVictory)
		case h.own.Energy <= 0 || tick == demoTicks:
			_, err = h.dispatchDemoEvent(handlers.CmdDeath)
		}
		if err != nil {
			return err
		}

		resp, err := h.dispatchDemoEvent(handlers.CmdTick, h.ownArgs()...)
		if err != nil {
			return err
		}
		cmds := resp.Result.([]core.Command)
		if len(cmds) == 0 {
			fmt.Fprintf(out, "round %d: ended at tick %d, own energy %.1f, opponent energy %.1f\n",
				round, tick, h.own.Energy, h.oppEnergy)
			return nil
		}
		h.apply(cmds)
	}
	return nil
}

// runDemo plays scripted engagements against the configured storage backend
// and prints the strategy memory it leaves behind.
func runDemo(out io.Writer) error {
	agentCfg, err := agent.ConfigFrom(config.GetAgentConfig())
	if err != nil {
		return err
	}
	a, err := agent.New(agentCfg, agent.Dependencies{
		Store:  storageBackend,
		Logger: Logger,
	})
	if err != nil {
		return err
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(ZLogger))
	if err != nil {
		return err
	}
	defer d.Close()

	s := handlers.NewSession("demo", handlers.Dependencies{
		Agent:      a,
		LogManager: SlogManager,
		Version:    CurrentVersion,
		BuildDate:  BuildDate,
	})
	s.Register(d)

	host := &demoHost{arena: core.Arena{Width: 800, Height: 600}, d: d}
	start := time.Now()
	for round := 1; round <= demoEpisodes; round++ {
		if err := host.episode(out, round); err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
	}

	rec, err := storageBackend.Get(demoOpponent)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "memory for %s: strategy %s, exploring %t, losses %d, wins %d, scores %v\n",
		demoOpponent, rec.Strategy, rec.Exploring, rec.Losses, rec.Wins, rec.Scores)
	Logger.Info("Demo finished", "duration", time.Since(start))
	return nil
}
