package postgres

import (
	"context"
	"time"

	"github.com/liuclever/summonking/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *matchRepository {
	return &matchRepository{db: db}
}

// Create inserts a match slot. (season_id, stage, number) is unique, so a
// concurrent pairing attempt inserting the same slot is a silent no-op.
func (r *matchRepository) Create(ctx context.Context, match *domain.Match) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "season_id"}, {Name: "stage"}, {Name: "number"}},
			DoNothing: true,
		}).
		Create(match).Error
}

func (r *matchRepository) GetByStage(ctx context.Context, seasonID int, stage domain.Stage) ([]*domain.Match, error) {
	var matches []*domain.Match
	err := r.db.WithContext(ctx).
		Where("season_id = ? AND stage = ?", seasonID, stage).
		Order("number ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) GetBySeason(ctx context.Context, seasonID int) ([]*domain.Match, error) {
	var matches []*domain.Match
	err := r.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order("created_at ASC, number ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) Resolve(ctx context.Context, match *domain.Match) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&domain.Match{}).
		Where("id = ? AND outcome = ?", match.ID, domain.MatchOutcomePending).
		Updates(map[string]interface{}{
			"winner_id":   match.WinnerID,
			"outcome":     match.Outcome,
			"total_turns": match.TotalTurns,
			"turn_log":    match.TurnLog,
			"resolved_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	match.ResolvedAt = &now
	return true, nil
}
