package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bracketStageRepository struct {
	db *gorm.DB
}

func NewBracketStageRepository(db *gorm.DB) *bracketStageRepository {
	return &bracketStageRepository{db: db}
}

func (r *bracketStageRepository) Ensure(ctx context.Context, seasonID int, stage domain.Stage, pairSeed int64) (*domain.BracketStage, error) {
	row := &domain.BracketStage{
		ID:       uuid.New(),
		SeasonID: seasonID,
		Stage:    stage,
		Status:   domain.StageStatusPending,
		PairSeed: pairSeed,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "season_id"}, {Name: "stage"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	// Re-read so a lost insert race still returns the winning row's
	// seed and status.
	return r.Get(ctx, seasonID, stage)
}

func (r *bracketStageRepository) Get(ctx context.Context, seasonID int, stage domain.Stage) (*domain.BracketStage, error) {
	var row domain.BracketStage
	err := r.db.WithContext(ctx).
		First(&row, "season_id = ? AND stage = ?", seasonID, stage).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *bracketStageRepository) Transition(ctx context.Context, seasonID int, stage domain.Stage, from, to domain.StageStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.BracketStage{}).
		Where("season_id = ? AND stage = ? AND status = ?", seasonID, stage, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
