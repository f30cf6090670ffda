package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&CarverInfo{},
	&StrategyRecord{},
	&EpisodeResult{},
}

// CarverInfo identifies the build that created the database
type CarverInfo struct {
	gorm.Model
	Version string `json:"version" gorm:"size:32"`
}

func (*CarverInfo) TableName() string {
	return "carver_infos"
}

// Scores holds the net score of each movement pattern
type Scores struct {
	Oscillate float64 `json:"oscillate"`
	StopAndGo float64 `json:"stopAndGo"`
}

// StrategyRecord is the movement memory for one opponent identity
type StrategyRecord struct {
	ID           uint                       `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt    time.Time                  `json:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
	OpponentName string                     `json:"opponentName" gorm:"size:128;uniqueIndex:idx_strategy_opponent"`
	Strategy     int                        `json:"strategy"`
	Exploring    bool                       `json:"exploring"`
	Losses       int                        `json:"losses"`
	Wins         int                        `json:"wins"`
	Scores       datatypes.JSONType[Scores] `json:"scores"`
}

func (*StrategyRecord) TableName() string {
	return "strategy_records"
}

// EpisodeResult is one finished engagement
type EpisodeResult struct {
	ID             uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	EpisodeID      uuid.UUID `json:"episodeId" gorm:"type:char(36);uniqueIndex:idx_episode_uuid"`
	Round          int       `json:"round"`
	Mode           string    `json:"mode" gorm:"size:16"`
	OpponentName   string    `json:"opponentName" gorm:"size:128;index:idx_episode_opponent"`
	Strategy       string    `json:"strategy" gorm:"size:32"`
	Outcome        string    `json:"outcome" gorm:"size:8"`
	OwnEnergy      float64   `json:"ownEnergy"`
	OpponentEnergy float64   `json:"opponentEnergy"`
	Ticks          int64     `json:"ticks"`
	Shots          int       `json:"shots"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt"`
}

func (*EpisodeResult) TableName() string {
	return "episode_results"
}
