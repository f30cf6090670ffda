package agent

import (
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/radar"
	"github.com/carver-bot/carver/internal/storage/memory"
	"github.com/carver-bot/carver/internal/storage/mocks"
	"github.com/carver-bot/carver/internal/strategy"
	"github.com/carver-bot/carver/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var arena = core.Arena{Width: 800, Height: 600}

func duelState(tick int64) core.OwnState {
	return core.OwnState{
		Tick:      tick,
		X:         400,
		Y:         300,
		Energy:    100,
		Arena:     arena,
		Opponents: 1,
	}
}

func newTestAgent(t *testing.T, cfg Config, store Store) *Agent {
	t.Helper()
	a, err := New(cfg, Dependencies{
		Store:  store,
		Logger: slog.New(slog.DiscardHandler),
		Rand:   rand.New(rand.NewPCG(7, 7)),
	})
	require.NoError(t, err)
	return a
}

func kinds(cmds []core.Command) []core.CommandKind {
	out := make([]core.CommandKind, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Kind)
	}
	return out
}

func find(cmds []core.Command, kind core.CommandKind) (core.Command, bool) {
	for _, c := range cmds {
		if c.Kind == kind {
			return c, true
		}
	}
	return core.Command{}, false
}

// ahead is a sighting straight ahead of an agent facing north.
func ahead(name string, energy float64, tick int64) core.Sighting {
	return core.Sighting{Name: name, Bearing: 0, Distance: 200, Energy: energy, Tick: tick}
}

func TestTick_NoEpisode(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())

	assert.False(t, a.Running())
	assert.Nil(t, a.Tick(duelState(1), ahead("X", 50, 1)))
}

func TestStartEpisode_Duel(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())

	cmds := a.StartEpisode(duelState(0))
	assert.Equal(t, []core.Command{{Kind: core.TurnSensor, Value: radar.Sweep}}, cmds)
	assert.True(t, a.Running())

	snap := a.Snapshot()
	assert.Equal(t, radar.ModeSingle, snap.Mode)
	assert.Equal(t, "sweeping", snap.Radar)
	assert.Equal(t, "oscillate", snap.Planner)
	assert.Equal(t, 1, snap.Episode.Round)
}

func TestTick_SweepsWithoutTarget(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))

	cmds := a.Tick(duelState(1))
	assert.Equal(t, []core.Command{{Kind: core.TurnSensor, Value: radar.Sweep}}, cmds)
}

func TestTick_RoundRobinOrder(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))

	own := duelState(1)
	own.DistanceRemaining = 77
	cmds := a.Tick(own, ahead("X", 50, 1))

	assert.Equal(t, []core.CommandKind{
		core.TurnSensor,
		core.TurnWeapon, core.Fire,
		core.TurnBody, core.MoveForward,
	}, kinds(cmds))

	fire, _ := find(cmds, core.Fire)
	assert.InDelta(t, 2.5, fire.Value, 1e-9, "500 / 200")

	snap := a.Snapshot()
	assert.Equal(t, "X", snap.Lock)
	assert.Equal(t, "tracking", snap.Radar)
	assert.Equal(t, int64(1), snap.Episode.Ticks)
	assert.Equal(t, 1, snap.Episode.Shots)
	assert.Equal(t, "X", snap.Episode.Opponent)
}

func TestTick_LowEnergyFixedPower(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))

	own := duelState(1)
	own.Energy = 15
	cmds := a.Tick(own, ahead("X", 50, 1))

	fire, ok := find(cmds, core.Fire)
	require.True(t, ok)
	assert.InDelta(t, 1.2, fire.Value, 1e-9)
}

func TestTick_HotGunHoldsFire(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))

	own := duelState(1)
	own.GunHeat = 0.6
	cmds := a.Tick(own, ahead("X", 50, 1))

	_, ok := find(cmds, core.Fire)
	assert.False(t, ok)
}

func TestTick_InferredShotTriggersBurst(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))

	own := duelState(1)
	own.DistanceRemaining = 77
	a.Tick(own, ahead("X", 50, 1))

	own.Tick = 2
	quiet := a.Tick(own, ahead("X", 50, 2))
	move, _ := find(quiet, core.MoveForward)
	assert.InDelta(t, 77, math.Abs(move.Value), 1e-9, "no shot keeps the current leg")

	own.Tick = 3
	burst := a.Tick(own, ahead("X", 47, 3))
	move, _ = find(burst, core.MoveForward)
	assert.NotEqual(t, 77.0, math.Abs(move.Value), "a 3 point drop is a shot and redraws the leg")

	own.Tick = 4
	after := a.Tick(own, ahead("X", 47, 4))
	move, _ = find(after, core.MoveForward)
	assert.InDelta(t, 77, math.Abs(move.Value), 1e-9, "the shot is consumed once")
}

func TestTick_RamOverridesAim(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))

	own := duelState(1)
	own.Heading = 90
	cmds := a.Tick(own, ahead("X", 50, 1), core.Collision{Name: "X", Bearing: 10})

	var weapon []core.Command
	for _, c := range cmds {
		if c.Kind == core.TurnWeapon || c.Kind == core.Fire {
			weapon = append(weapon, c)
		}
	}
	assert.Equal(t, []core.Command{
		{Kind: core.TurnWeapon, Value: 100},
		{Kind: core.Fire, Value: 3},
	}, weapon)
}

func TestTick_WallFlipsBackOff(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))
	require.Equal(t, 1.0, a.reaction.BackDir)

	a.Tick(duelState(1), core.WallHit{Bearing: 180})
	assert.Equal(t, -1.0, a.reaction.BackDir)
}

func TestTick_ImpactFlipsLateralDirection(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))

	a.Tick(duelState(1), core.Impact{Name: "X", Bearing: 45, Power: 2})
	assert.Equal(t, -1.0, a.reaction.MoveNeg)
	assert.Equal(t, "X", a.Snapshot().Attacker)

	low := duelState(2)
	low.Energy = 25
	a.Tick(low, core.Impact{Name: "Y", Bearing: 45, Power: 2})
	assert.Equal(t, 1.0, a.reaction.MoveNeg)
	assert.Equal(t, "X", a.Snapshot().Attacker, "hits below the energy floor are not recorded")
}

func TestTick_DestroyedReleasesLock(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))
	a.Tick(duelState(1), ahead("X", 50, 1))

	cmds := a.Tick(duelState(2), core.OpponentDestroyed{Name: "X"})
	assert.Equal(t, []core.Command{{Kind: core.TurnSensor, Value: radar.Sweep}}, cmds)
	assert.Equal(t, "", a.Snapshot().Lock)
}

func TestSingleOpponentHysteresis(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	a.StartEpisode(duelState(0))
	a.Tick(duelState(1), core.Sighting{Name: "X", Distance: 300, Energy: 100, Tick: 1})

	a.Tick(duelState(2), core.Sighting{Name: "Y", Distance: 250, Energy: 100, Tick: 2})
	assert.Equal(t, "X", a.Snapshot().Lock)

	a.Tick(duelState(3), core.Sighting{Name: "Y", Distance: 200, Energy: 100, Tick: 3})
	assert.Equal(t, "Y", a.Snapshot().Lock)
	assert.Equal(t, "X", a.Snapshot().Episode.Opponent, "the duel partner is the first lock")
}

func TestEpisode_LossScoresStrategyMemory(t *testing.T) {
	store := memory.New()
	a := newTestAgent(t, DefaultConfig(), store)
	a.StartEpisode(duelState(0))
	a.Tick(duelState(1), ahead("X", 60, 1))
	a.Tick(duelState(2), ahead("X", 40, 2))

	own := duelState(3)
	own.Energy = 0
	assert.Nil(t, a.Tick(own, core.SelfDestroyed{}, ahead("X", 40, 3)))
	assert.False(t, a.Running())

	r, err := store.Get("X")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Losses)
	assert.Equal(t, -40.0, r.Scores[strategy.Oscillate])

	eps, err := store.Episodes("X", 0)
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, episode.Lost, eps[0].Outcome)
	assert.Equal(t, "oscillate", eps[0].Strategy)
	assert.Equal(t, int64(2), eps[0].Ticks)
	assert.Equal(t, 40.0, eps[0].OpponentEnergy)
}

func TestEpisode_WinScoresOwnEnergy(t *testing.T) {
	store := memory.New()
	a := newTestAgent(t, DefaultConfig(), store)
	a.StartEpisode(duelState(0))
	a.Tick(duelState(1), ahead("X", 60, 1))

	own := duelState(2)
	own.Energy = 64
	a.Tick(own, core.Victory{})

	r, _ := store.Get("X")
	assert.Equal(t, 64.0, r.Scores[strategy.Oscillate])
	assert.Equal(t, 1, r.Wins)
}

func TestEpisode_SwitchesPatternAfterThreeLosses(t *testing.T) {
	store := memory.New()
	a := newTestAgent(t, DefaultConfig(), store)

	for round := range 3 {
		a.StartEpisode(duelState(0))
		a.Tick(duelState(1), ahead("X", 50, 1))
		assert.Equal(t, "oscillate", a.Snapshot().Planner, "round %d", round+1)
		a.Tick(duelState(2), core.SelfDestroyed{})
	}

	a.StartEpisode(duelState(0))
	a.Tick(duelState(1), ahead("X", 50, 1))
	snap := a.Snapshot()
	assert.Equal(t, "stop-and-go", snap.Planner)
	assert.Equal(t, "stop-and-go", snap.Episode.Strategy)
	assert.True(t, snap.Memory)
}

func TestEpisode_StoreFailuresAreLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBackend(ctrl)

	down := errors.New("down")
	store.EXPECT().Update("X", gomock.Any()).Return(down).Times(2)
	store.EXPECT().RecordEpisode(gomock.Any()).Return(down)

	a := newTestAgent(t, DefaultConfig(), store)
	a.StartEpisode(duelState(0))

	cmds := a.Tick(duelState(1), ahead("X", 50, 1))
	assert.NotEmpty(t, cmds)
	assert.Equal(t, "oscillate", a.Snapshot().Planner)

	a.Tick(duelState(2), core.SelfDestroyed{})
	assert.False(t, a.Running())
}

func TestEpisode_RecordsSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBackend(ctrl)
	store.EXPECT().Update("X", gomock.Any()).Return(nil).Times(2)

	var got *episode.Summary
	store.EXPECT().RecordEpisode(gomock.Any()).DoAndReturn(func(s *episode.Summary) error {
		got = s
		return nil
	})

	a := newTestAgent(t, DefaultConfig(), store)
	a.StartEpisode(duelState(0))
	a.Tick(duelState(1), ahead("X", 50, 1))
	own := duelState(2)
	own.Energy = 12
	a.Tick(own, core.Victory{})

	require.NotNil(t, got)
	assert.Equal(t, episode.Won, got.Outcome)
	assert.Equal(t, "X", got.Opponent)
	assert.Equal(t, 12.0, got.OwnEnergy)
	assert.Equal(t, "single", got.Mode)
	assert.Equal(t, 1, got.Shots)
}

func TestMelee_NeverTouchesStrategyMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBackend(ctrl)
	store.EXPECT().RecordEpisode(gomock.Any()).Return(nil)

	a := newTestAgent(t, DefaultConfig(), store)
	own := duelState(0)
	own.Opponents = 3
	a.StartEpisode(own)
	assert.Equal(t, radar.ModeMulti, a.Snapshot().Mode)
	assert.Equal(t, "patrol", a.Snapshot().Planner)

	own.Tick = 1
	cmds := a.Tick(own)
	assert.Equal(t, []core.CommandKind{core.TurnSensor, core.TurnBody, core.MoveForward}, kinds(cmds))

	own.Tick = 2
	a.Tick(own, ahead("A", 80, 2))
	assert.Equal(t, "A", a.Snapshot().Episode.Opponent)

	own.Tick = 3
	a.Tick(own, core.Victory{})
}

func TestMelee_RadarTurnsToAttackerWithoutLock(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())
	own := duelState(0)
	own.Opponents = 3
	a.StartEpisode(own)

	own.Tick = 1
	cmds := a.Tick(own, core.Impact{Name: "B", Bearing: 90, Power: 1})
	assert.Equal(t, core.Command{Kind: core.TurnSensor, Value: 90}, cmds[0])
	assert.Equal(t, "B", a.Snapshot().Attacker)

	own.Tick = 2
	a.Tick(own, core.Sighting{Name: "B", Bearing: 90, Distance: 300, Energy: 90, Tick: 2})
	snap := a.Snapshot()
	assert.Equal(t, "", snap.Attacker, "seeing the attacker clears the impact record")
	assert.Equal(t, "B", snap.Lock)
}

func TestMelee_SwitchToDuel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SwitchToDuel = true
	a := newTestAgent(t, cfg, memory.New())

	own := duelState(0)
	own.Opponents = 2
	a.StartEpisode(own)
	require.Equal(t, radar.ModeMulti, a.Snapshot().Mode)

	own.Tick = 1
	own.Opponents = 1
	a.Tick(own, core.OpponentDestroyed{Name: "A"})

	snap := a.Snapshot()
	assert.Equal(t, radar.ModeSingle, snap.Mode)
	assert.Equal(t, "oscillate", snap.Planner)
	assert.Equal(t, "multi", snap.Episode.Mode)
}

func TestMelee_NoSwitchByDefault(t *testing.T) {
	a := newTestAgent(t, DefaultConfig(), memory.New())

	own := duelState(0)
	own.Opponents = 2
	a.StartEpisode(own)
	own.Opponents = 1
	a.Tick(own, core.OpponentDestroyed{Name: "A"})

	assert.Equal(t, radar.ModeMulti, a.Snapshot().Mode)
}

func TestStartEpisode_AbandonsRunningEpisode(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBackend(ctrl)

	a := newTestAgent(t, DefaultConfig(), store)
	a.StartEpisode(duelState(0))
	a.StartEpisode(duelState(0))

	assert.Equal(t, 2, a.Episodes().Round())
}

type recordingTelemetry struct {
	episodes []episode.Summary
	shots    int
}

func (r *recordingTelemetry) WriteEpisode(s episode.Summary) error {
	r.episodes = append(r.episodes, s)
	return nil
}

func (r *recordingTelemetry) WriteShot(string, float64, float64, time.Time) error {
	r.shots++
	return nil
}

func TestTelemetry(t *testing.T) {
	tel := &recordingTelemetry{}
	a, err := New(DefaultConfig(), Dependencies{
		Store:     memory.New(),
		Telemetry: tel,
		Logger:    slog.New(slog.DiscardHandler),
		Rand:      rand.New(rand.NewPCG(1, 2)),
	})
	require.NoError(t, err)

	a.StartEpisode(duelState(0))
	a.Tick(duelState(1), ahead("X", 50, 1))
	a.Tick(duelState(2), core.Victory{})

	assert.Equal(t, 1, tel.shots)
	require.Len(t, tel.episodes, 1)
	assert.Equal(t, episode.Won, tel.episodes[0].Outcome)
}

func TestTick_DeterministicWithSeed(t *testing.T) {
	run := func() [][]core.Command {
		a := newTestAgent(t, DefaultConfig(), memory.New())
		a.StartEpisode(duelState(0))
		var out [][]core.Command
		energy := 60.0
		for tick := int64(1); tick <= 20; tick++ {
			own := duelState(tick)
			if tick%4 == 0 {
				energy -= 2
			}
			out = append(out, a.Tick(own, core.Sighting{
				Name: "X", Bearing: 30, Distance: 250, Energy: energy,
				Heading: float64(tick * 10), Velocity: 8, Tick: tick,
			}))
		}
		return out
	}

	assert.Equal(t, run(), run())
}
