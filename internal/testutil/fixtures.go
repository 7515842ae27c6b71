package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/service"
	"gorm.io/gorm"
)

// FrozenClock returns a clock pinned to a fixed instant.
func FrozenClock(at time.Time) service.Clock {
	return func() time.Time { return at }
}

// Fixed weekdays of a known ISO week (2026 week 35), used to pin the
// weekly phase in tests.
var (
	Monday   = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	Tuesday  = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	Friday   = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	SundayPM = time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)
)

// BearerToken mints a token the auth middleware accepts, signed with
// the test config secret.
func BearerToken(t *testing.T, competitorID uuid.UUID) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": competitorID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(TestConfig().JWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

// QualifierBuilder creates ladder slots with a builder pattern
type QualifierBuilder struct {
	competitorID uuid.UUID
	area         int
	position     int
	signedUp     bool
}

// NewQualifierBuilder creates a new QualifierBuilder with default values
func NewQualifierBuilder() *QualifierBuilder {
	return &QualifierBuilder{
		competitorID: uuid.New(),
		area:         1,
		position:     1,
	}
}

// WithCompetitorID sets the competitor id
func (b *QualifierBuilder) WithCompetitorID(id uuid.UUID) *QualifierBuilder {
	b.competitorID = id
	return b
}

// WithArea sets the ladder area
func (b *QualifierBuilder) WithArea(area int) *QualifierBuilder {
	b.area = area
	return b
}

// WithPosition sets the ladder position
func (b *QualifierBuilder) WithPosition(position int) *QualifierBuilder {
	b.position = position
	return b
}

// SignedUp flags weekly participation
func (b *QualifierBuilder) SignedUp() *QualifierBuilder {
	b.signedUp = true
	return b
}

// Build creates the ladder slot in the database
func (b *QualifierBuilder) Build(t *testing.T, db *gorm.DB) *domain.QualifierRank {
	t.Helper()

	rank := &domain.QualifierRank{
		ID:           uuid.New(),
		CompetitorID: b.competitorID,
		Area:         b.area,
		Position:     b.position,
		SignedUp:     b.signedUp,
	}
	if err := db.Create(rank).Error; err != nil {
		t.Fatalf("failed to create qualifier rank: %v", err)
	}
	return rank
}

// TeamBuilder creates fielded-team projections with a builder pattern
type TeamBuilder struct {
	competitorID uuid.UUID
	ownerLevel   int
	combatants   int
	hp           int
	attack       int
	defense      int
	speed        int
	grade        int
}

// NewTeamBuilder creates a new TeamBuilder with default values
func NewTeamBuilder(competitorID uuid.UUID) *TeamBuilder {
	return &TeamBuilder{
		competitorID: competitorID,
		ownerLevel:   50,
		combatants:   3,
		hp:           5000,
		attack:       1200,
		defense:      400,
		speed:        100,
		grade:        3,
	}
}

// WithCombatants sets how many combatants the team fields
func (b *TeamBuilder) WithCombatants(n int) *TeamBuilder {
	b.combatants = n
	return b
}

// WithOwnerLevel sets the competitor's level
func (b *TeamBuilder) WithOwnerLevel(level int) *TeamBuilder {
	b.ownerLevel = level
	return b
}

// WithStats overrides the per-combatant stat line
func (b *TeamBuilder) WithStats(hp, attack, defense, speed int) *TeamBuilder {
	b.hp = hp
	b.attack = attack
	b.defense = defense
	b.speed = speed
	return b
}

// Build creates the fielded combatant rows in the database
func (b *TeamBuilder) Build(t *testing.T, db *gorm.DB) []*domain.FieldedCombatant {
	t.Helper()

	rows := make([]*domain.FieldedCombatant, 0, b.combatants)
	for i := 0; i < b.combatants; i++ {
		row := &domain.FieldedCombatant{
			ID:              uuid.New(),
			CompetitorID:    b.competitorID,
			OwnerLevel:      b.ownerLevel,
			Slot:            i + 1,
			Name:            fmt.Sprintf("combatant_%d", i+1),
			HPMax:           b.hp,
			PhysicalAttack:  b.attack,
			PhysicalDefense: b.defense,
			MagicDefense:    b.defense,
			Speed:           b.speed,
			Grade:           b.grade,
			AttackKind:      domain.AttackPhysical,
			Skills:          []byte("[]"),
		}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("failed to create fielded combatant: %v", err)
		}
		rows = append(rows, row)
	}
	return rows
}

// SeedLadder fills both areas with signed-up competitors and fielded
// teams, returning the competitor ids in creation order.
func SeedLadder(t *testing.T, db *gorm.DB, perArea int) []uuid.UUID {
	t.Helper()

	var ids []uuid.UUID
	for area := 1; area <= domain.QualifierAreas; area++ {
		for pos := 1; pos <= perArea; pos++ {
			id := uuid.New()
			NewQualifierBuilder().
				WithCompetitorID(id).
				WithArea(area).
				WithPosition(pos).
				SignedUp().
				Build(t, db)
			NewTeamBuilder(id).Build(t, db)
			ids = append(ids, id)
		}
	}
	return ids
}
