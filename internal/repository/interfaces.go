package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
)

type SeasonRepository interface {
	// Upsert creates the season row if missing and refreshes its phase
	// window; the season ID is derived from the calendar so the same
	// week always hits the same row.
	Upsert(ctx context.Context, season *domain.Season) error
	GetByID(ctx context.Context, id int) (*domain.Season, error)
	SetChampion(ctx context.Context, seasonID int, championID uuid.UUID) error
}

type EntrantRepository interface {
	// Create inserts an entrant; inserting a duplicate (season, stage,
	// competitor) key is a silent no-op so stage advancement retries
	// stay idempotent.
	Create(ctx context.Context, entrant *domain.Entrant) error
	GetByStage(ctx context.Context, seasonID int, stage domain.Stage) ([]*domain.Entrant, error)
	SetMatch(ctx context.Context, entrantID, matchID uuid.UUID) error
	SetBye(ctx context.Context, entrantID uuid.UUID) error
	SetResult(ctx context.Context, entrantID uuid.UUID, won bool) error
}

type MatchRepository interface {
	Create(ctx context.Context, match *domain.Match) error
	GetByStage(ctx context.Context, seasonID int, stage domain.Stage) ([]*domain.Match, error)
	GetBySeason(ctx context.Context, seasonID int) ([]*domain.Match, error)
	// Resolve records the outcome only if the match is still pending;
	// it reports whether this call performed the write.
	Resolve(ctx context.Context, match *domain.Match) (bool, error)
}

type BracketStageRepository interface {
	// Ensure creates the stage row in Pending with the given pairing
	// seed if it does not exist, and returns the current row either way.
	Ensure(ctx context.Context, seasonID int, stage domain.Stage, pairSeed int64) (*domain.BracketStage, error)
	Get(ctx context.Context, seasonID int, stage domain.Stage) (*domain.BracketStage, error)
	// Transition moves the stage from one status to the next with a
	// conditional write, reporting whether this call won the transition.
	Transition(ctx context.Context, seasonID int, stage domain.Stage, from, to domain.StageStatus) (bool, error)
}

type RewardClaimRepository interface {
	// Insert records the claim, reporting false without error when the
	// (competitor, season, stage) key is already claimed.
	Insert(ctx context.Context, claim *domain.StageRewardClaim) (bool, error)
	GetByCompetitor(ctx context.Context, seasonID int, competitorID uuid.UUID) ([]*domain.StageRewardClaim, error)
	ListUndelivered(ctx context.Context, seasonID int) ([]*domain.StageRewardClaim, error)
	MarkDelivered(ctx context.Context, claimID uuid.UUID) error
}

type QualifierRepository interface {
	Create(ctx context.Context, rank *domain.QualifierRank) error
	GetByCompetitor(ctx context.Context, competitorID uuid.UUID) (*domain.QualifierRank, error)
	// TopN returns signed-up competitors of an area ordered by ladder
	// position.
	TopN(ctx context.Context, area, n int) ([]*domain.QualifierRank, error)
	ListByArea(ctx context.Context, area int) ([]*domain.QualifierRank, error)
	CountByArea(ctx context.Context, area int) (int64, error)
	MaxPosition(ctx context.Context, area int) (int, error)
	SetSignedUp(ctx context.Context, competitorID uuid.UUID, signedUp bool) error
	// RecordResult folds a finals outcome into the competitor's ladder
	// tallies: a win bumps wins and the streak, a loss bumps losses and
	// resets the streak.
	RecordResult(ctx context.Context, competitorID uuid.UUID, won bool) error
	ResetSignups(ctx context.Context) error
}

type TeamRepository interface {
	// FieldedTeam returns the competitor's combatants in slot order; an
	// empty slice means no team is fielded.
	FieldedTeam(ctx context.Context, competitorID uuid.UUID) ([]*domain.FieldedCombatant, error)
}

// RewardLedger is the inventory/currency collaborator the issuer
// delivers into once a claim is recorded.
type RewardLedger interface {
	Grant(ctx context.Context, competitorID uuid.UUID, seasonID int, stage domain.Stage, spec domain.RewardSpec) error
}

type Repositories struct {
	Season       SeasonRepository
	Entrant      EntrantRepository
	Match        MatchRepository
	BracketStage BracketStageRepository
	RewardClaim  RewardClaimRepository
	Qualifier    QualifierRepository
	Team         TeamRepository
	Ledger       RewardLedger
}
