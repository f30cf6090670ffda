package agent

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/carver-bot/carver/internal/agent"

type metrics struct {
	ticks    metric.Int64Counter
	shots    metric.Int64Counter
	episodes metric.Int64Counter
}

// newMetrics uses the global OTel meter (no-op if not configured).
func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)

	out.ticks, err = m.Int64Counter("agent.ticks",
		metric.WithDescription("Total ticks decided"))
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	out.shots, err = m.Int64Counter("agent.shots",
		metric.WithDescription("Total fire commands issued"))
	if err != nil {
		return nil, fmt.Errorf("creating shots counter: %w", err)
	}

	out.episodes, err = m.Int64Counter("agent.episodes",
		metric.WithDescription("Finished episodes by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating episodes counter: %w", err)
	}

	return &out, nil
}
