package domain

import (
	"time"

	"github.com/google/uuid"
)

// QualifierAreas is the number of ladder areas competitors are split
// across. New registrations are assigned to the smaller area.
const QualifierAreas = 2

// FinalistsPerArea is how many signed-up competitors per area seed the
// finals bracket.
const FinalistsPerArea = 16

// QualifierRank is a competitor's slot on the qualifying ladder that
// seeds the finals. Position is 1-based within an area. SignedUp is the
// weekly participation flag, reset at the start of each enrollment
// window.
type QualifierRank struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompetitorID uuid.UUID `json:"competitorId" gorm:"type:uuid;not null;uniqueIndex"`
	Area         int       `json:"area" gorm:"not null;index:idx_qualifier_ranks_area_position"`
	Position     int       `json:"position" gorm:"not null;index:idx_qualifier_ranks_area_position"`
	SignedUp     bool      `json:"signedUp" gorm:"not null;default:false"`
	Wins         int       `json:"wins" gorm:"not null;default:0"`
	Losses       int       `json:"losses" gorm:"not null;default:0"`
	WinStreak    int       `json:"winStreak" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (QualifierRank) TableName() string {
	return "qualifier_ranks"
}
