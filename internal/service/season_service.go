package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/repository"
	"gorm.io/gorm"
)

// SeasonService owns ladder registration and weekly signup.
type SeasonService struct {
	phase         *PhaseService
	qualifierRepo repository.QualifierRepository
}

func NewSeasonService(phase *PhaseService, qualifierRepo repository.QualifierRepository) *SeasonService {
	return &SeasonService{phase: phase, qualifierRepo: qualifierRepo}
}

// Register puts the competitor on the qualifier ladder, assigned to the
// smaller area at the next free position. Only valid during enrollment.
func (s *SeasonService) Register(ctx context.Context, competitorID uuid.UUID) (*domain.QualifierRank, error) {
	if err := s.phase.AssertPhase(domain.PhaseEnrollment); err != nil {
		return nil, err
	}
	if _, err := s.phase.EnsureSeason(ctx); err != nil {
		return nil, err
	}

	existing, err := s.qualifierRepo.GetByCompetitor(ctx, competitorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up ladder slot: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyRegistered
	}

	area, err := s.smallestArea(ctx)
	if err != nil {
		return nil, err
	}
	position, err := s.qualifierRepo.MaxPosition(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("next ladder position: %w", err)
	}

	rank := &domain.QualifierRank{
		ID:           uuid.New(),
		CompetitorID: competitorID,
		Area:         area,
		Position:     position + 1,
	}
	if err := s.qualifierRepo.Create(ctx, rank); err != nil {
		return nil, fmt.Errorf("create ladder slot: %w", err)
	}
	return rank, nil
}

func (s *SeasonService) smallestArea(ctx context.Context) (int, error) {
	bestArea, bestCount := 1, int64(-1)
	for area := 1; area <= domain.QualifierAreas; area++ {
		count, err := s.qualifierRepo.CountByArea(ctx, area)
		if err != nil {
			return 0, fmt.Errorf("count area %d: %w", area, err)
		}
		if bestCount < 0 || count < bestCount {
			bestArea, bestCount = area, count
		}
	}
	return bestArea, nil
}

// Signup flags the competitor's weekly participation. Only valid during
// the signup window; registering on the ladder is a precondition.
func (s *SeasonService) Signup(ctx context.Context, competitorID uuid.UUID) error {
	if err := s.phase.AssertPhase(domain.PhaseSignup); err != nil {
		return err
	}
	rank, err := s.qualifierRepo.GetByCompetitor(ctx, competitorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotRegistered
	}
	if err != nil {
		return fmt.Errorf("look up ladder slot: %w", err)
	}
	if rank.SignedUp {
		return domain.ErrAlreadySignedUp
	}
	return s.qualifierRepo.SetSignedUp(ctx, competitorID, true)
}

// Ranking returns the ladder of one area in position order.
func (s *SeasonService) Ranking(ctx context.Context, area int) ([]*domain.QualifierRank, error) {
	if area < 1 || area > domain.QualifierAreas {
		return nil, fmt.Errorf("area must be between 1 and %d", domain.QualifierAreas)
	}
	return s.qualifierRepo.ListByArea(ctx, area)
}

// ResetSignups clears every weekly participation flag. Runs at the
// start of each enrollment window.
func (s *SeasonService) ResetSignups(ctx context.Context) error {
	return s.qualifierRepo.ResetSignups(ctx)
}
