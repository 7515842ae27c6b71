package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type rewardClaimRepository struct {
	db *gorm.DB
}

func NewRewardClaimRepository(db *gorm.DB) *rewardClaimRepository {
	return &rewardClaimRepository{db: db}
}

func (r *rewardClaimRepository) Insert(ctx context.Context, claim *domain.StageRewardClaim) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "competitor_id"}, {Name: "season_id"}, {Name: "stage"}},
			DoNothing: true,
		}).
		Create(claim)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *rewardClaimRepository) GetByCompetitor(ctx context.Context, seasonID int, competitorID uuid.UUID) ([]*domain.StageRewardClaim, error) {
	var claims []*domain.StageRewardClaim
	err := r.db.WithContext(ctx).
		Where("season_id = ? AND competitor_id = ?", seasonID, competitorID).
		Order("created_at ASC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *rewardClaimRepository) ListUndelivered(ctx context.Context, seasonID int) ([]*domain.StageRewardClaim, error) {
	var claims []*domain.StageRewardClaim
	err := r.db.WithContext(ctx).
		Where("season_id = ? AND delivered = false", seasonID).
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *rewardClaimRepository) MarkDelivered(ctx context.Context, claimID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.StageRewardClaim{}).
		Where("id = ?", claimID).
		Updates(map[string]interface{}{"delivered": true, "delivered_at": time.Now().UTC()}).Error
}
