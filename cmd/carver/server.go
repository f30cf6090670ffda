package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/carver-bot/carver/internal/agent"
	"github.com/carver-bot/carver/internal/config"
	"github.com/carver-bot/carver/internal/dispatcher"
	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/handlers"
	"github.com/carver-bot/carver/internal/influx"
	"github.com/carver-bot/carver/internal/logging"
	"github.com/carver-bot/carver/internal/monitor"
	"github.com/carver-bot/carver/internal/storage"
	"github.com/carver-bot/carver/internal/strategy"
	"github.com/carver-bot/carver/internal/worker"
	"github.com/carver-bot/carver/pkg/hostlink"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

type serverDeps struct {
	AgentConfig agent.Config
	Monitor     config.MonitorConfig
	Storage     storage.Backend
	Influx      *influx.Manager // optional
	Writer      *worker.Manager // optional, sessions record synchronously without it
}

// writerStore keeps strategy memory synchronous and hands episode records to
// the background writer.
type writerStore struct {
	strategy.Store
	worker.Recorder
}

// server accepts host connections and runs one agent session per connection.
type server struct {
	deps     serverDeps
	sessions sync.WaitGroup
}

func newServer(deps serverDeps) *server {
	return &server{deps: deps}
}

// Wait blocks until every session has ended.
func (s *server) Wait() {
	s.sessions.Wait()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		Logger.ErrorContext(ctx, "failed to accept", "error", err)
		return
	}
	defer conn.CloseNow()

	s.sessions.Add(1)
	defer s.sessions.Done()

	id := uuid.NewString()
	sess, err := s.newSession(id)
	if err != nil {
		Logger.ErrorContext(ctx, "failed to create session", "error", err)
		conn.Close(websocket.StatusInternalError, "session setup failed")
		return
	}
	defer sess.close()

	Logger.Info("Host connected", "session", id, "remote", r.RemoteAddr)
	err = serve(ctx, conn, sess.dispatcher)
	switch {
	case websocket.CloseStatus(err) == websocket.StatusNormalClosure,
		websocket.CloseStatus(err) == websocket.StatusGoingAway:
		Logger.Info("Host disconnected", "session", id)
	case errors.Is(err, context.Canceled):
		conn.Close(websocket.StatusGoingAway, "shutting down")
		Logger.Info("Session closed by shutdown", "session", id)
	default:
		Logger.Warn("Session ended", "session", id, "error", err)
	}

	if ep, ok := sess.agent.Episodes().Current(); ok {
		Logger.Info("Episode left unfinished", "session", id, "episode", ep.ID, "round", ep.Round)
	}
	if OTelProvider != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := OTelProvider.Flush(flushCtx); err != nil {
			Logger.Warn("Failed to flush session logs", "session", id, "error", err)
		}
	}
}

// session is everything one host connection owns.
type session struct {
	agent      *agent.Agent
	handlers   *handlers.Session
	dispatcher *dispatcher.Dispatcher
	monitor    *monitor.Service // nil without a status directory
}

func (s *session) close() {
	if s.monitor != nil {
		s.monitor.Stop()
	}
	s.dispatcher.Close()
}

// newSession wires an agent, its dispatcher and its status monitor.
func (s *server) newSession(id string) (*session, error) {
	episodes := episode.NewContext()
	logger := SlogManager.SessionLogger(func() []slog.Attr {
		attrs := []slog.Attr{slog.String("session", id)}
		if ep, ok := episodes.Current(); ok {
			attrs = append(attrs, slog.String("episode", ep.ID.String()), slog.Int("round", ep.Round))
		}
		return attrs
	})

	var store agent.Store = s.deps.Storage
	var telemetry agent.Telemetry
	switch {
	case s.deps.Writer != nil:
		store = writerStore{Store: s.deps.Storage, Recorder: s.deps.Writer}
		telemetry = s.deps.Writer
	case s.deps.Influx != nil:
		telemetry = s.deps.Influx
	}

	a, err := agent.New(s.deps.AgentConfig, agent.Dependencies{
		Store:     store,
		Telemetry: telemetry,
		Logger:    logger,
		Episodes:  episodes,
	})
	if err != nil {
		return nil, err
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(ZLogger.With().Str("session", id).Logger()))
	if err != nil {
		return nil, err
	}

	history, _ := s.deps.Storage.(storage.History)
	h := handlers.NewSession(id, handlers.Dependencies{
		Agent:      a,
		LogManager: SlogManager,
		History:    history,
		Influx:     s.deps.Influx,
		Version:    CurrentVersion,
		BuildDate:  BuildDate,
	})
	sess := &session{agent: a, handlers: h, dispatcher: d}

	if s.deps.Monitor.StatusDir != "" {
		deps := monitor.Dependencies{
			Agent:      a,
			History:    history,
			Pending:    h.Pending,
			LogManager: SlogManager,
			Session:    id,
			StatusDir:  s.deps.Monitor.StatusDir,
			Interval:   s.deps.Monitor.Interval,
		}
		if s.deps.Writer != nil {
			deps.Writer = s.deps.Writer
		}
		sess.monitor = monitor.NewService(deps)
		if err := sess.monitor.Start(); err != nil {
			Logger.Warn("Status monitor not started", "session", id, "error", err)
		}
		h.SetMonitor(sess.monitor)
	}
	h.Register(d)
	return sess, nil
}

// serve answers host requests in order until the connection or ctx ends.
func serve(ctx context.Context, conn *websocket.Conn, d *dispatcher.Dispatcher) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var resp hostlink.Response
		req, err := hostlink.DecodeRequest(data)
		if err != nil {
			resp = hostlink.Fail(req, err)
		} else {
			result, err := d.Dispatch(dispatcher.Event{
				Command:   req.Command,
				Args:      req.Args,
				Timestamp: time.Now(),
			})
			if err != nil {
				resp = hostlink.Fail(req, err)
			} else {
				resp = hostlink.OK(req, result)
			}
		}

		out, err := resp.Encode()
		if err != nil {
			out, _ = hostlink.Fail(req, err).Encode()
		}
		if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
			return err
		}
	}
}
