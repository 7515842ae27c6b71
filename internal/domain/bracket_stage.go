package domain

import (
	"time"

	"github.com/google/uuid"
)

// StageStatus is the state machine of a bracket stage run.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusPaired    StageStatus = "paired"
	StageStatusResolving StageStatus = "resolving"
	StageStatusAdvanced  StageStatus = "advanced"
)

// BracketStage tracks one stage run of a season. Transitions are
// conditional writes keyed on the current status, so two concurrent
// stage runs cannot both perform the pairing step. PairSeed is fixed at
// creation and drives both the shuffle and the per-match battle seeds.
type BracketStage struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SeasonID  int         `json:"seasonId" gorm:"not null;uniqueIndex:idx_bracket_stages_season_stage"`
	Stage     Stage       `json:"stage" gorm:"type:varchar(10);not null;uniqueIndex:idx_bracket_stages_season_stage"`
	Status    StageStatus `json:"status" gorm:"type:varchar(10);not null;default:'pending'"`
	PairSeed  int64       `json:"pairSeed" gorm:"not null"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (BracketStage) TableName() string {
	return "bracket_stages"
}
