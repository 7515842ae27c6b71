package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entrant is one competitor's participation record for one bracket
// stage. The unique index over (season, stage, competitor) is the
// storage-level guard against duplicate advancement writes, which are
// the corruption mode the pairing engine defends against.
type Entrant struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SeasonID     int        `json:"seasonId" gorm:"not null;uniqueIndex:idx_entrants_season_stage_competitor"`
	Stage        Stage      `json:"stage" gorm:"type:varchar(10);not null;uniqueIndex:idx_entrants_season_stage_competitor"`
	CompetitorID uuid.UUID  `json:"competitorId" gorm:"type:uuid;not null;uniqueIndex:idx_entrants_season_stage_competitor"`
	MatchID      *uuid.UUID `json:"matchId" gorm:"type:uuid"`
	IsBye        bool       `json:"isBye" gorm:"not null;default:false"`
	IsWinner     *bool      `json:"isWinner"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (Entrant) TableName() string {
	return "entrants"
}

// Resolved reports whether the entrant's stage result is decided.
func (e *Entrant) Resolved() bool {
	return e.IsWinner != nil
}
