package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"gorm.io/gorm"
)

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *teamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) FieldedTeam(ctx context.Context, competitorID uuid.UUID) ([]*domain.FieldedCombatant, error) {
	var combatants []*domain.FieldedCombatant
	err := r.db.WithContext(ctx).
		Where("competitor_id = ?", competitorID).
		Order("slot ASC").
		Find(&combatants).Error
	if err != nil {
		return nil, err
	}
	return combatants, nil
}
