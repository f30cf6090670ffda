// Package convert provides functions to convert between GORM models and domain types
package convert

import (
	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/model"
	"github.com/carver-bot/carver/internal/strategy"
	"gorm.io/datatypes"
)

// RecordToGorm converts a strategy.Record to a GORM model.StrategyRecord.
// The row ID is not set.
func RecordToGorm(r strategy.Record) model.StrategyRecord {
	return model.StrategyRecord{
		OpponentName: r.Opponent,
		Strategy:     int(r.Strategy),
		Exploring:    r.Exploring,
		Losses:       r.Losses,
		Wins:         r.Wins,
		Scores: datatypes.NewJSONType(model.Scores{
			Oscillate: r.Scores[strategy.Oscillate],
			StopAndGo: r.Scores[strategy.StopAndGo],
		}),
	}
}

// GormToRecord converts a GORM model.StrategyRecord to a strategy.Record.
func GormToRecord(m model.StrategyRecord) strategy.Record {
	scores := m.Scores.Data()
	r := strategy.Record{
		Opponent:  m.OpponentName,
		Strategy:  strategy.Strategy(m.Strategy),
		Exploring: m.Exploring,
		Losses:    m.Losses,
		Wins:      m.Wins,
	}
	r.Scores[strategy.Oscillate] = scores.Oscillate
	r.Scores[strategy.StopAndGo] = scores.StopAndGo
	return r
}

// SummaryToGorm converts a finished episode to a GORM model.EpisodeResult.
func SummaryToGorm(s episode.Summary) model.EpisodeResult {
	return model.EpisodeResult{
		EpisodeID:      s.ID,
		Round:          s.Round,
		Mode:           s.Mode,
		OpponentName:   s.Opponent,
		Strategy:       s.Strategy,
		Outcome:        string(s.Outcome),
		OwnEnergy:      s.OwnEnergy,
		OpponentEnergy: s.OpponentEnergy,
		Ticks:          s.Ticks,
		Shots:          s.Shots,
		StartedAt:      s.Started,
		EndedAt:        s.Ended,
	}
}

// GormToSummary converts a GORM model.EpisodeResult to an episode.Summary.
func GormToSummary(m model.EpisodeResult) episode.Summary {
	return episode.Summary{
		Episode: episode.Episode{
			ID:       m.EpisodeID,
			Round:    m.Round,
			Mode:     m.Mode,
			Opponent: m.OpponentName,
			Strategy: m.Strategy,
			Started:  m.StartedAt,
			Ticks:    m.Ticks,
			Shots:    m.Shots,
		},
		Outcome:        episode.Outcome(m.Outcome),
		OwnEnergy:      m.OwnEnergy,
		OpponentEnergy: m.OpponentEnergy,
		Ended:          m.EndedAt,
	}
}
