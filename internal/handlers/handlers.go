// Package handlers binds host commands to one agent session.
package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/carver-bot/carver/internal/agent"
	"github.com/carver-bot/carver/internal/dispatcher"
	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/influx"
	"github.com/carver-bot/carver/internal/logging"
	"github.com/carver-bot/carver/internal/monitor"
	"github.com/carver-bot/carver/internal/parser"
	"github.com/carver-bot/carver/internal/queue"
	"github.com/carver-bot/carver/internal/storage"
	"github.com/carver-bot/carver/internal/util"
	"github.com/carver-bot/carver/pkg/core"
)

// Host commands.
const (
	CmdVersion      = ":VERSION:"
	CmdEpisodeStart = ":EPISODE:START:"
	CmdSighting     = ":SIGHTING:"
	CmdImpact       = ":IMPACT:"
	CmdDestroyed    = ":DESTROYED:"
	CmdCollision    = ":COLLISION:"
	CmdWall         = ":WALL:"
	CmdDeath        = ":DEATH:"
	CmdVictory      = ":VICTORY:"
	CmdTick         = ":TICK:"
	CmdStatus       = ":STATUS:"
	CmdHistory      = ":HISTORY:"
	CmdLog          = ":LOG:"
	CmdMetric       = ":METRIC:"
)

// logBufferSize bounds host log lines waiting to be written.
const logBufferSize = 1000

var (
	// ErrNoEpisode is returned by :TICK: outside an episode.
	ErrNoEpisode = errors.New("no episode running")
	// ErrUnavailable is returned by commands whose backing service is not configured.
	ErrUnavailable = errors.New("service not configured")
)

// Dependencies holds all dependencies needed by a session
type Dependencies struct {
	Agent      *agent.Agent
	LogManager *logging.SlogManager
	Monitor    *monitor.Service // optional
	History    storage.History  // optional
	Influx     *influx.Manager  // optional
	Version    string
	BuildDate  string
}

// Session owns the host-facing state of one connected agent: the parser and
// the events waiting for the next tick.
type Session struct {
	ID      string
	deps    Dependencies
	parser  *parser.Parser
	pending *queue.Queue[core.Event]

	writeLogFunc func(functionName, data, level string)
}

// NewSession creates a session for one host connection.
func NewSession(id string, deps Dependencies) *Session {
	s := &Session{
		ID:      id,
		deps:    deps,
		parser:  parser.NewParser(deps.LogManager.Logger()),
		pending: queue.New[core.Event](),
	}
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

func (s *Session) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// SetMonitor sets the status service answering :STATUS:
func (s *Session) SetMonitor(m *monitor.Service) {
	s.deps.Monitor = m
}

// Pending returns the number of events waiting for the next tick.
func (s *Session) Pending() int {
	return s.pending.Len()
}

// Register adds every host command to d.
func (s *Session) Register(d *dispatcher.Dispatcher) {
	d.Register(CmdVersion, func(e dispatcher.Event) (any, error) {
		return []string{s.deps.Version, s.deps.BuildDate}, nil
	})

	d.Register(CmdEpisodeStart, func(e dispatcher.Event) (any, error) {
		return s.StartEpisode(e.Args)
	}, dispatcher.Logged())

	d.Register(CmdSighting, s.queued(func(args []string) (core.Event, error) {
		return s.parser.ParseSighting(args)
	}))
	d.Register(CmdImpact, s.queued(func(args []string) (core.Event, error) {
		return s.parser.ParseImpact(args)
	}))
	d.Register(CmdDestroyed, s.queued(func(args []string) (core.Event, error) {
		return s.parser.ParseDestroyed(args)
	}))
	d.Register(CmdCollision, s.queued(func(args []string) (core.Event, error) {
		return s.parser.ParseCollision(args)
	}))
	d.Register(CmdWall, s.queued(func(args []string) (core.Event, error) {
		return s.parser.ParseWall(args)
	}))
	d.Register(CmdDeath, s.queued(func([]string) (core.Event, error) {
		return core.SelfDestroyed{}, nil
	}), dispatcher.Logged())
	d.Register(CmdVictory, s.queued(func([]string) (core.Event, error) {
		return core.Victory{}, nil
	}), dispatcher.Logged())

	d.Register(CmdTick, func(e dispatcher.Event) (any, error) {
		return s.Tick(e.Args)
	})

	d.Register(CmdStatus, func(e dispatcher.Event) (any, error) {
		if s.deps.Monitor == nil {
			return s.deps.Agent.Snapshot(), nil
		}
		return s.deps.Monitor.GetStatus(), nil
	})

	d.Register(CmdHistory, func(e dispatcher.Event) (any, error) {
		return s.History(e.Args)
	})

	d.Register(CmdLog, func(e dispatcher.Event) (any, error) {
		return nil, s.Log(e.Args)
	}, dispatcher.Buffered(logBufferSize))

	d.Register(CmdMetric, func(e dispatcher.Event) (any, error) {
		return nil, s.Metric(e.Args)
	})
}

// queued wraps a parse function into a handler that holds the event for the
// next tick.
func (s *Session) queued(parse func([]string) (core.Event, error)) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		ev, err := parse(e.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Command, err)
		}
		s.pending.Push(ev)
		return "ok", nil
	}
}

// StartEpisode begins an episode from the own state in data. Events still
// pending from a previous episode are discarded.
func (s *Session) StartEpisode(data []string) ([]core.Command, error) {
	functionName := CmdEpisodeStart

	own, err := s.parser.ParseOwnState(data)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error parsing own state: %v`, err), "ERROR")
		return nil, err
	}
	if n := s.pending.Len(); n > 0 {
		s.pending.Clear()
		s.writeLog(functionName, fmt.Sprintf(`Discarded %d events from the previous episode`, n), "DEBUG")
	}
	return s.deps.Agent.StartEpisode(own), nil
}

// Tick applies every pending event, in arrival order, and returns the
// commands for this tick. The list is empty when the tick ended the episode.
func (s *Session) Tick(data []string) ([]core.Command, error) {
	own, err := s.parser.ParseOwnState(data)
	if err != nil {
		return nil, err
	}
	if !s.deps.Agent.Running() {
		s.pending.Clear()
		return nil, ErrNoEpisode
	}

	cmds := s.deps.Agent.Tick(own, s.pending.GetAndEmpty()...)
	if cmds == nil {
		cmds = []core.Command{}
	}
	return cmds, nil
}

// History returns finished episodes, newest first. Args: opponent (empty for
// all), limit.
func (s *Session) History(data []string) ([]episode.Summary, error) {
	if s.deps.History == nil {
		return nil, fmt.Errorf("%w: episode history", ErrUnavailable)
	}
	util.CleanArgs(data)

	var opponent string
	limit := 10
	if len(data) > 0 {
		opponent = data[0]
	}
	if len(data) > 1 {
		n, err := strconv.Atoi(data[1])
		if err != nil {
			return nil, fmt.Errorf("error converting limit to int: %w", err)
		}
		limit = n
	}

	eps, err := s.deps.History.Episodes(opponent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read episode history: %w", err)
	}
	if eps == nil {
		eps = []episode.Summary{}
	}
	return eps, nil
}

// Log writes a host log line. Args: function name, level, message.
func (s *Session) Log(data []string) error {
	if len(data) < 3 {
		return fmt.Errorf("%w: want 3, got %d", parser.ErrArgCount, len(data))
	}
	util.CleanArgs(data)
	s.writeLog(data[0], data[2], data[1])
	return nil
}

// Metric writes a host supplied metric point. An empty bucket selects the
// default one.
func (s *Session) Metric(data []string) error {
	if s.deps.Influx == nil {
		return fmt.Errorf("%w: influx", ErrUnavailable)
	}
	bucket, point, err := influx.ProcessMetricData(data, util.TrimQuotes)
	if err != nil {
		return err
	}
	if bucket == "" {
		bucket = s.deps.Influx.Bucket()
	}
	point.AddTag("session", s.ID)
	return s.deps.Influx.WritePoint(bucket, point)
}
