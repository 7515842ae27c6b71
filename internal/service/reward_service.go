package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/repository"
)

// RewardService issues stage rewards at most once per (competitor,
// season, stage). The claim row is the idempotency record; delivery
// into the ledger happens after the claim and is retried by the
// reconciliation sweep if it fails.
type RewardService struct {
	claimRepo repository.RewardClaimRepository
	ledger    repository.RewardLedger
}

func NewRewardService(claimRepo repository.RewardClaimRepository, ledger repository.RewardLedger) *RewardService {
	return &RewardService{claimRepo: claimRepo, ledger: ledger}
}

// Grant issues the stage reward to the competitor. An already-claimed
// stage is success, not an error. A delivery failure after the claim is
// recorded leaves the claim undelivered for RetryUndelivered; the
// caller still sees success because the claim itself held.
func (s *RewardService) Grant(ctx context.Context, competitorID uuid.UUID, seasonID int, stage domain.Stage) error {
	spec, ok := domain.StageRewards[stage]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStage, stage)
	}

	claim := &domain.StageRewardClaim{
		ID:           uuid.New(),
		CompetitorID: competitorID,
		SeasonID:     seasonID,
		Stage:        stage,
	}
	inserted, err := s.claimRepo.Insert(ctx, claim)
	if err != nil {
		return fmt.Errorf("insert reward claim: %w", err)
	}
	if !inserted {
		// Already claimed by an earlier run.
		return nil
	}

	if err := s.deliver(ctx, claim, spec); err != nil {
		log.Printf("WARN [RewardService] delivery deferred for competitor=%s season=%d stage=%s: %v",
			competitorID, seasonID, stage, err)
	}
	return nil
}

func (s *RewardService) deliver(ctx context.Context, claim *domain.StageRewardClaim, spec domain.RewardSpec) error {
	if err := s.ledger.Grant(ctx, claim.CompetitorID, claim.SeasonID, claim.Stage, spec); err != nil {
		return err
	}
	return s.claimRepo.MarkDelivered(ctx, claim.ID)
}

// RetryUndelivered sweeps claims whose ledger grant never landed and
// delivers them. Returns how many claims were delivered this pass.
func (s *RewardService) RetryUndelivered(ctx context.Context, seasonID int) (int, error) {
	claims, err := s.claimRepo.ListUndelivered(ctx, seasonID)
	if err != nil {
		return 0, fmt.Errorf("list undelivered claims: %w", err)
	}
	delivered := 0
	for _, claim := range claims {
		spec, ok := domain.StageRewards[claim.Stage]
		if !ok {
			log.Printf("ERROR [RewardService] undelivered claim %s has unknown stage %q", claim.ID, claim.Stage)
			continue
		}
		if err := s.deliver(ctx, claim, spec); err != nil {
			log.Printf("WARN [RewardService] redelivery failed for claim %s: %v", claim.ID, err)
			continue
		}
		delivered++
	}
	return delivered, nil
}

// ClaimStatus returns the competitor's claims for a season.
func (s *RewardService) ClaimStatus(ctx context.Context, seasonID int, competitorID uuid.UUID) ([]*domain.StageRewardClaim, error) {
	return s.claimRepo.GetByCompetitor(ctx, seasonID, competitorID)
}
