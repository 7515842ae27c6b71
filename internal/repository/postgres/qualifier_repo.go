package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"gorm.io/gorm"
)

type qualifierRepository struct {
	db *gorm.DB
}

func NewQualifierRepository(db *gorm.DB) *qualifierRepository {
	return &qualifierRepository{db: db}
}

func (r *qualifierRepository) Create(ctx context.Context, rank *domain.QualifierRank) error {
	return r.db.WithContext(ctx).Create(rank).Error
}

func (r *qualifierRepository) GetByCompetitor(ctx context.Context, competitorID uuid.UUID) (*domain.QualifierRank, error) {
	var rank domain.QualifierRank
	err := r.db.WithContext(ctx).
		First(&rank, "competitor_id = ?", competitorID).Error
	if err != nil {
		return nil, err
	}
	return &rank, nil
}

func (r *qualifierRepository) TopN(ctx context.Context, area, n int) ([]*domain.QualifierRank, error) {
	var ranks []*domain.QualifierRank
	err := r.db.WithContext(ctx).
		Where("area = ? AND signed_up = true", area).
		Order("position ASC").
		Limit(n).
		Find(&ranks).Error
	if err != nil {
		return nil, err
	}
	return ranks, nil
}

func (r *qualifierRepository) ListByArea(ctx context.Context, area int) ([]*domain.QualifierRank, error) {
	var ranks []*domain.QualifierRank
	err := r.db.WithContext(ctx).
		Where("area = ?", area).
		Order("position ASC").
		Find(&ranks).Error
	if err != nil {
		return nil, err
	}
	return ranks, nil
}

func (r *qualifierRepository) CountByArea(ctx context.Context, area int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.QualifierRank{}).
		Where("area = ?", area).
		Count(&count).Error
	return count, err
}

func (r *qualifierRepository) MaxPosition(ctx context.Context, area int) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&domain.QualifierRank{}).
		Where("area = ?", area).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *qualifierRepository) RecordResult(ctx context.Context, competitorID uuid.UUID, won bool) error {
	updates := map[string]interface{}{
		"wins":       gorm.Expr("wins + 1"),
		"win_streak": gorm.Expr("win_streak + 1"),
	}
	if !won {
		updates = map[string]interface{}{
			"losses":     gorm.Expr("losses + 1"),
			"win_streak": 0,
		}
	}
	return r.db.WithContext(ctx).
		Model(&domain.QualifierRank{}).
		Where("competitor_id = ?", competitorID).
		Updates(updates).Error
}

func (r *qualifierRepository) SetSignedUp(ctx context.Context, competitorID uuid.UUID, signedUp bool) error {
	return r.db.WithContext(ctx).
		Model(&domain.QualifierRank{}).
		Where("competitor_id = ?", competitorID).
		Update("signed_up", signedUp).Error
}

func (r *qualifierRepository) ResetSignups(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&domain.QualifierRank{}).
		Where("signed_up = true").
		Update("signed_up", false).Error
}
