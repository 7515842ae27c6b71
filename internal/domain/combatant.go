package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AttackKind selects which attack/defense pair a combatant fights with.
type AttackKind string

const (
	AttackPhysical AttackKind = "physical"
	AttackMagic    AttackKind = "magic"
)

// FieldedCombatant is one slot of a competitor's fielded team. Rows are
// a read-only projection at match time; the bracket core never writes
// them outside of tests.
type FieldedCombatant struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompetitorID    uuid.UUID      `json:"competitorId" gorm:"type:uuid;not null;index"`
	OwnerLevel      int            `json:"ownerLevel" gorm:"not null;default:0"`
	Slot            int            `json:"slot" gorm:"not null;default:0"`
	Name            string         `json:"name" gorm:"not null"`
	HPMax           int            `json:"hpMax" gorm:"not null"`
	PhysicalAttack  int            `json:"physicalAttack" gorm:"not null;default:0"`
	MagicAttack     int            `json:"magicAttack" gorm:"not null;default:0"`
	PhysicalDefense int            `json:"physicalDefense" gorm:"not null;default:0"`
	MagicDefense    int            `json:"magicDefense" gorm:"not null;default:0"`
	Speed           int            `json:"speed" gorm:"not null;default:0"`
	Grade           int            `json:"grade" gorm:"not null;default:0"`
	AttackKind      AttackKind     `json:"attackKind" gorm:"type:varchar(10);not null;default:'physical'"`
	Skills          datatypes.JSON `json:"skills" gorm:"type:jsonb;default:'[]'"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// TableName returns the table name for GORM
func (FieldedCombatant) TableName() string {
	return "fielded_combatants"
}
