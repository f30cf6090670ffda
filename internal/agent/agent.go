// Package agent runs the per-tick decision loop for one combat agent: it
// applies host events, then steers the radar, the weapon and the body in that
// order and commits every command at a single barrier.
package agent

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/gun"
	"github.com/carver-bot/carver/internal/movement"
	"github.com/carver-bot/carver/internal/queue"
	"github.com/carver-bot/carver/internal/radar"
	"github.com/carver-bot/carver/internal/strategy"
	"github.com/carver-bot/carver/internal/target"
	"github.com/carver-bot/carver/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Store is the persistence an agent needs.
type Store interface {
	strategy.Store
	RecordEpisode(s *episode.Summary) error
}

// Telemetry receives engagement points.
type Telemetry interface {
	WriteEpisode(s episode.Summary) error
	WriteShot(opponent string, power, distance float64, at time.Time) error
}

// Dependencies holds everything an agent needs besides its Config.
type Dependencies struct {
	Store     Store
	Telemetry Telemetry // optional
	Logger    *slog.Logger
	Episodes  *episode.Context // optional, created when nil
	Rand      *rand.Rand       // optional, seeded from Config.Seed when nil
}

// Agent is the decision core of one session. All methods are safe for
// concurrent use; ticks are serialised.
type Agent struct {
	cfg      Config
	deps     Dependencies
	logger   *slog.Logger
	selector *strategy.Selector
	metrics  *metrics
	rng      *rand.Rand
	gun      *gun.FireControl

	mu        sync.Mutex
	own       core.OwnState
	estimator *target.Estimator
	impact    target.Impact
	radar     radar.Policy
	reaction  *movement.Reaction
	planner   movement.Planner
	patrol    *movement.Patrol
	strategy  strategy.Strategy
	chosen    bool    // strategy memory consulted this episode
	oppEnergy float64 // last energy seen for the episode's opponent
	ram       []core.Command
	barrier   *queue.Queue[core.Command]
}

// New creates an agent. No episode is running until StartEpisode.
func New(cfg Config, deps Dependencies) (*Agent, error) {
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Episodes == nil {
		deps.Episodes = episode.NewContext()
	}
	if deps.Rand == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		deps.Rand = rand.New(rand.NewPCG(seed, seed))
	}
	if len(cfg.Route) == 0 {
		cfg.Route = DefaultConfig().Route
	}

	a := &Agent{
		cfg:       cfg,
		deps:      deps,
		logger:    deps.Logger,
		selector:  strategy.NewSelector(deps.Store, deps.Logger),
		metrics:   m,
		rng:       deps.Rand,
		gun:       gun.New(cfg.Gun),
		estimator: target.NewEstimator(),
		patrol:    movement.NewPatrol(cfg.Route),
		barrier:   queue.New[core.Command](),
	}
	a.reaction = movement.NewReaction(a.rng)
	a.radar = radar.NewSingleOpponent(cfg.Radar)
	a.planner = movement.NewOscillator(a.reaction)
	return a, nil
}

// Episodes returns the episode context.
func (a *Agent) Episodes() *episode.Context {
	return a.deps.Episodes
}

// Running reports whether an episode is in progress.
func (a *Agent) Running() bool {
	_, ok := a.deps.Episodes.Current()
	return ok
}

// modeFor picks the scan policy from the opponent count.
func (a *Agent) modeFor(opponents int) radar.Mode {
	if opponents > a.cfg.MeleeThreshold {
		return radar.ModeMulti
	}
	return radar.ModeSingle
}

// StartEpisode begins a new engagement and returns its opening commands. A
// running episode is abandoned without scoring.
func (a *Agent) StartEpisode(own core.OwnState) []core.Command {
	a.mu.Lock()
	defer a.mu.Unlock()

	if prev, ok := a.deps.Episodes.Current(); ok {
		a.logger.Warn("episode abandoned", "episode", prev.ID, "round", prev.Round)
		a.deps.Episodes.End(episode.Running, a.own.Energy, a.oppEnergy)
	}

	a.own = own
	a.estimator.Reset()
	a.impact.Reset()
	a.reaction = movement.NewReaction(a.rng)
	a.strategy = strategy.Oscillate
	a.chosen = false
	a.oppEnergy = 0
	a.ram = nil
	a.barrier.Clear()

	mode := a.modeFor(own.Opponents)
	a.usePolicies(mode)
	ep := a.deps.Episodes.Begin(string(mode), own.Opponents)
	a.deps.Episodes.Update(func(e *episode.Episode) { e.Strategy = a.planner.Name() })

	a.logger.Debug("episode started", "episode", ep.ID, "round", ep.Round, "mode", mode, "opponents", own.Opponents)
	return []core.Command{a.radar.Start()}
}

// usePolicies installs the radar and movement policies for mode.
func (a *Agent) usePolicies(mode radar.Mode) {
	if mode == radar.ModeMulti {
		a.radar = radar.NewMultiOpponent()
		a.patrol.Start(a.own)
		a.planner = a.patrol
		return
	}
	a.radar = radar.NewSingleOpponent(a.cfg.Radar)
	a.planner = a.plannerFor(a.strategy)
}

func (a *Agent) plannerFor(s strategy.Strategy) movement.Planner {
	if s == strategy.StopAndGo {
		return movement.NewStopAndGo(a.reaction)
	}
	return movement.NewOscillator(a.reaction)
}

// Tick applies the events received since the previous tick, then decides
// radar, weapon and body commands for own. It returns nil when no episode is
// running, including when one of events ended it.
func (a *Agent) Tick(own core.OwnState, events ...core.Event) []core.Command {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.Running() {
		return nil
	}
	a.own = own
	a.ram = a.ram[:0]

	for i, ev := range events {
		a.apply(ev)
		if !a.Running() {
			if rest := len(events) - i - 1; rest > 0 {
				a.logger.Debug("events after episode end dropped", "count", rest)
			}
			return nil
		}
	}

	ctx := context.Background()
	a.metrics.ticks.Add(ctx, 1)

	locked := a.estimator.State()
	melee := a.radar.Mode() == radar.ModeMulti

	a.barrier.Push(a.radar.Step(locked, a.impact, own))

	weapon := a.ram
	if len(weapon) == 0 {
		weapon = a.gun.Aim(locked, own, melee)
	}
	a.barrier.Push(weapon...)
	a.countShots(weapon, locked)

	_, fired := a.estimator.ConsumeFire()
	a.barrier.Push(a.planner.Plan(movement.Input{Own: own, Target: locked, Fired: fired})...)

	a.deps.Episodes.Update(func(e *episode.Episode) { e.Ticks++ })
	return a.barrier.GetAndEmpty()
}

func (a *Agent) countShots(cmds []core.Command, locked target.State) {
	for _, c := range cmds {
		if c.Kind != core.Fire {
			continue
		}
		a.metrics.shots.Add(context.Background(), 1)
		a.deps.Episodes.Update(func(e *episode.Episode) { e.Shots++ })
		if a.deps.Telemetry != nil {
			if err := a.deps.Telemetry.WriteShot(locked.Name, c.Value, locked.Distance, time.Now()); err != nil {
				a.logger.Debug("shot telemetry failed", "error", err)
			}
		}
	}
}

// apply folds one host event into the agent state.
func (a *Agent) apply(ev core.Event) {
	switch ev := ev.(type) {
	case core.Sighting:
		a.onSighting(ev)
	case core.Impact:
		if a.own.Energy > a.cfg.ImpactMinEnergy {
			a.radar.OnHit()
			a.impact.Record(ev, a.own.Heading)
		}
		a.reaction.OnImpact()
	case core.OpponentDestroyed:
		a.onDestroyed(ev)
	case core.Collision:
		a.ram = a.gun.Ram(ev, a.own)
	case core.WallHit:
		a.reaction.OnWall()
	case core.SelfDestroyed:
		a.finish(episode.Lost)
	case core.Victory:
		a.finish(episode.Won)
	}
}

func (a *Agent) onSighting(sg core.Sighting) {
	locked := a.estimator.State()
	attacker := sg.Name == a.impact.Name && !a.impact.None()
	if !a.radar.ShouldTrack(sg, locked) && !attacker {
		return
	}
	if attacker {
		a.impact.Reset()
	}

	st := a.estimator.Update(sg, a.own)
	if st.Name != locked.Name {
		a.logger.Debug("target locked", "target", st.Name, "previous", locked.Name, "distance", st.Distance)
		a.onLock(st)
	}

	ep, _ := a.deps.Episodes.Current()
	if st.Name == ep.Opponent {
		a.oppEnergy = st.Energy
	}
}

// onLock records the episode opponent and, in a duel, consults strategy
// memory on the first lock.
func (a *Agent) onLock(st target.State) {
	ep, _ := a.deps.Episodes.Current()

	if a.radar.Mode() == radar.ModeMulti {
		a.deps.Episodes.Update(func(e *episode.Episode) { e.Opponent = st.Name })
		return
	}
	if ep.Opponent != "" {
		return
	}
	a.deps.Episodes.Update(func(e *episode.Episode) { e.Opponent = st.Name })

	if a.chosen || ep.Mode != string(radar.ModeSingle) {
		return
	}
	a.chosen = true
	a.strategy = a.selector.Choose(st.Name)
	a.planner = a.plannerFor(a.strategy)
	a.deps.Episodes.Update(func(e *episode.Episode) { e.Strategy = a.planner.Name() })
	a.logger.Debug("strategy selected", "opponent", st.Name, "strategy", a.strategy.String())
}

func (a *Agent) onDestroyed(ev core.OpponentDestroyed) {
	if ev.Name == a.impact.Name {
		a.impact.Reset()
	}
	if a.radar.WasTracking(ev.Name, a.estimator.State()) {
		a.estimator.Reset()
		a.logger.Debug("target released", "target", ev.Name)
	}

	if a.cfg.SwitchToDuel && a.radar.Mode() == radar.ModeMulti &&
		a.own.Opponents != 0 && a.own.Opponents <= a.cfg.MeleeThreshold {
		a.usePolicies(radar.ModeSingle)
		a.deps.Episodes.Update(func(e *episode.Episode) { e.Strategy = a.planner.Name() })
		a.logger.Debug("switched to duel policies", "opponents", a.own.Opponents)
	}
}

// finish closes the episode, scores strategy memory for duels and records
// the result. Store and telemetry failures are logged.
func (a *Agent) finish(outcome episode.Outcome) {
	sum, ok := a.deps.Episodes.End(outcome, a.own.Energy, a.oppEnergy)
	if !ok {
		return
	}

	if a.chosen && sum.Opponent != "" {
		if outcome == episode.Won {
			a.selector.Won(sum.Opponent, sum.OwnEnergy)
		} else {
			a.selector.Lost(sum.Opponent, sum.OpponentEnergy)
		}
	}

	if err := a.deps.Store.RecordEpisode(&sum); err != nil {
		a.logger.Warn("failed to record episode", "episode", sum.ID, "error", err)
	}
	if a.deps.Telemetry != nil {
		if err := a.deps.Telemetry.WriteEpisode(sum); err != nil {
			a.logger.Warn("episode telemetry failed", "episode", sum.ID, "error", err)
		}
	}

	a.metrics.episodes.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", string(outcome))))
	a.logger.Info("episode finished",
		"episode", sum.ID,
		"round", sum.Round,
		"outcome", string(outcome),
		"opponent", sum.Opponent,
		"strategy", sum.Strategy,
		"ticks", sum.Ticks,
		"shots", sum.Shots)

	a.estimator.Reset()
	a.impact.Reset()
	a.ram = nil
}
