package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entrantRepository struct {
	db *gorm.DB
}

func NewEntrantRepository(db *gorm.DB) *entrantRepository {
	return &entrantRepository{db: db}
}

func (r *entrantRepository) Create(ctx context.Context, entrant *domain.Entrant) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "season_id"}, {Name: "stage"}, {Name: "competitor_id"}},
			DoNothing: true,
		}).
		Create(entrant).Error
}

func (r *entrantRepository) GetByStage(ctx context.Context, seasonID int, stage domain.Stage) ([]*domain.Entrant, error) {
	var entrants []*domain.Entrant
	err := r.db.WithContext(ctx).
		Where("season_id = ? AND stage = ?", seasonID, stage).
		Order("created_at ASC").
		Find(&entrants).Error
	if err != nil {
		return nil, err
	}
	return entrants, nil
}

func (r *entrantRepository) SetMatch(ctx context.Context, entrantID, matchID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Entrant{}).
		Where("id = ?", entrantID).
		Update("match_id", matchID).Error
}

func (r *entrantRepository) SetBye(ctx context.Context, entrantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Entrant{}).
		Where("id = ?", entrantID).
		Updates(map[string]interface{}{"is_bye": true, "is_winner": true}).Error
}

func (r *entrantRepository) SetResult(ctx context.Context, entrantID uuid.UUID, won bool) error {
	return r.db.WithContext(ctx).
		Model(&domain.Entrant{}).
		Where("id = ?", entrantID).
		Update("is_winner", won).Error
}
