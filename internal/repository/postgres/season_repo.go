package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seasonRepository struct {
	db *gorm.DB
}

func NewSeasonRepository(db *gorm.DB) *seasonRepository {
	return &seasonRepository{db: db}
}

func (r *seasonRepository) Upsert(ctx context.Context, season *domain.Season) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"phase", "phase_starts_at", "phase_ends_at", "updated_at"}),
		}).
		Create(season).Error
}

func (r *seasonRepository) GetByID(ctx context.Context, id int) (*domain.Season, error) {
	var season domain.Season
	err := r.db.WithContext(ctx).First(&season, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &season, nil
}

func (r *seasonRepository) SetChampion(ctx context.Context, seasonID int, championID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Season{}).
		Where("id = ?", seasonID).
		Update("champion_id", championID).Error
}
