package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *ledgerRepository {
	return &ledgerRepository{db: db}
}

// Grant writes one ledger line for the gold portion and one per item
// bundle, all inside a transaction so a payout lands whole or not at
// all.
func (r *ledgerRepository) Grant(ctx context.Context, competitorID uuid.UUID, seasonID int, stage domain.Stage, spec domain.RewardSpec) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if spec.Gold > 0 {
			line := &domain.RewardGrant{
				ID:           uuid.New(),
				CompetitorID: competitorID,
				SeasonID:     seasonID,
				Stage:        stage,
				Gold:         spec.Gold,
			}
			if err := tx.Create(line).Error; err != nil {
				return err
			}
		}
		for _, item := range spec.Items {
			line := &domain.RewardGrant{
				ID:           uuid.New(),
				CompetitorID: competitorID,
				SeasonID:     seasonID,
				Stage:        stage,
				ItemID:       item.ItemID,
				ItemCount:    item.Count,
			}
			if err := tx.Create(line).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
