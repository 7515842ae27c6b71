package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MatchOutcome distinguishes how a match result was produced.
type MatchOutcome string

const (
	// MatchOutcomePending means the match has not been resolved yet.
	MatchOutcomePending MatchOutcome = "pending"
	// MatchOutcomeResolved means the battle resolver produced the winner.
	MatchOutcomeResolved MatchOutcome = "resolved"
	// MatchOutcomeForfeit means one side fielded no team and lost
	// automatically.
	MatchOutcomeForfeit MatchOutcome = "forfeit"
	// MatchOutcomeFallback means the resolver could not run (no team on
	// either side) and the winner was picked by the seeded fallback.
	MatchOutcomeFallback MatchOutcome = "fallback"
)

// Match pairs exactly two distinct competitors within a stage. The
// battle seed and turn log are persisted so a disputed outcome can be
// replayed exactly.
type Match struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SeasonID   int            `json:"seasonId" gorm:"not null;uniqueIndex:idx_matches_season_stage_number"`
	Stage      Stage          `json:"stage" gorm:"type:varchar(10);not null;uniqueIndex:idx_matches_season_stage_number"`
	Number     int            `json:"number" gorm:"not null;uniqueIndex:idx_matches_season_stage_number"`
	SideAID    uuid.UUID      `json:"sideAId" gorm:"type:uuid;not null"`
	SideBID    uuid.UUID      `json:"sideBId" gorm:"type:uuid;not null"`
	WinnerID   *uuid.UUID     `json:"winnerId" gorm:"type:uuid"`
	Outcome    MatchOutcome   `json:"outcome" gorm:"type:varchar(10);not null;default:'pending'"`
	BattleSeed int64          `json:"battleSeed" gorm:"not null"`
	TotalTurns int            `json:"totalTurns" gorm:"not null;default:0"`
	TurnLog    datatypes.JSON `json:"turnLog" gorm:"type:jsonb;default:'[]'"`
	ResolvedAt *time.Time     `json:"resolvedAt"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// TableName returns the table name for GORM
func (Match) TableName() string {
	return "matches"
}

// IsResolved reports whether the match has a determined winner.
func (m *Match) IsResolved() bool {
	return m.Outcome != MatchOutcomePending
}
