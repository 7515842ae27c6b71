package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/battle"
	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/repository"
	"gorm.io/gorm"
)

// BracketService runs the finals bracket: seeding from the qualifier
// ladder, per-stage pairing, match resolution, and advancement. Every
// step is safe to re-run; conditional writes on the stage row and the
// storage-level uniqueness guards make duplicate triggers harmless.
type BracketService struct {
	phase   *PhaseService
	rewards *RewardService

	seasonRepo    repository.SeasonRepository
	entrantRepo   repository.EntrantRepository
	matchRepo     repository.MatchRepository
	stageRepo     repository.BracketStageRepository
	qualifierRepo repository.QualifierRepository
	teamRepo      repository.TeamRepository
}

func NewBracketService(phase *PhaseService, rewards *RewardService, repos *repository.Repositories) *BracketService {
	return &BracketService{
		phase:         phase,
		rewards:       rewards,
		seasonRepo:    repos.Season,
		entrantRepo:   repos.Entrant,
		matchRepo:     repos.Match,
		stageRepo:     repos.BracketStage,
		qualifierRepo: repos.Qualifier,
		teamRepo:      repos.Team,
	}
}

// SeedFinals enters the top signed-up competitors of every area into
// the opening stage and grants their entry rewards. Re-running after a
// partial failure finishes the remainder.
func (s *BracketService) SeedFinals(ctx context.Context) error {
	season, err := s.phase.EnsureSeason(ctx)
	if err != nil {
		return err
	}

	opening := domain.BracketStages[0]
	if _, err := s.stageRepo.Ensure(ctx, season.ID, opening, s.newPairSeed()); err != nil {
		return fmt.Errorf("ensure opening stage: %w", err)
	}

	seeded := 0
	for area := 1; area <= domain.QualifierAreas; area++ {
		finalists, err := s.qualifierRepo.TopN(ctx, area, domain.FinalistsPerArea)
		if err != nil {
			return fmt.Errorf("load area %d finalists: %w", area, err)
		}
		for _, rank := range finalists {
			if err := s.enterStage(ctx, season.ID, opening, rank.CompetitorID); err != nil {
				return err
			}
			seeded++
		}
	}
	log.Printf("INFO [BracketService] season %d seeded %d finalists into stage %s", season.ID, seeded, opening)
	return nil
}

// enterStage records the entrant and grants the stage's entry reward.
// Both writes are idempotent.
func (s *BracketService) enterStage(ctx context.Context, seasonID int, stage domain.Stage, competitorID uuid.UUID) error {
	entrant := &domain.Entrant{
		ID:           uuid.New(),
		SeasonID:     seasonID,
		Stage:        stage,
		CompetitorID: competitorID,
	}
	if err := s.entrantRepo.Create(ctx, entrant); err != nil {
		return fmt.Errorf("enter stage %s: %w", stage, err)
	}
	if err := s.rewards.Grant(ctx, competitorID, seasonID, stage); err != nil {
		return fmt.Errorf("grant stage %s reward: %w", stage, err)
	}
	return nil
}

// RunStage drives one stage to completion: pair, resolve, advance.
// Missing or already-finished work is skipped, so a duplicate trigger
// or a crash-and-retry converges on the same final state.
func (s *BracketService) RunStage(ctx context.Context, stage domain.Stage) error {
	if !stage.Playable() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStage, stage)
	}
	season, err := s.phase.EnsureSeason(ctx)
	if err != nil {
		return err
	}

	entrants, err := s.entrantRepo.GetByStage(ctx, season.ID, stage)
	if err != nil {
		return fmt.Errorf("load stage %s entrants: %w", stage, err)
	}
	if len(entrants) == 0 {
		log.Printf("INFO [BracketService] season %d stage %s has no entrants, nothing to run", season.ID, stage)
		return nil
	}

	stageRow, err := s.stageRepo.Ensure(ctx, season.ID, stage, s.newPairSeed())
	if err != nil {
		return fmt.Errorf("ensure stage %s: %w", stage, err)
	}
	if stageRow.Status == domain.StageStatusAdvanced {
		return nil
	}

	if len(entrants) == 1 {
		if err := s.crown(ctx, season.ID, entrants[0].CompetitorID); err != nil {
			return err
		}
		_, err := s.stageRepo.Transition(ctx, season.ID, stage, stageRow.Status, domain.StageStatusAdvanced)
		return err
	}

	switch stageRow.Status {
	case domain.StageStatusPending:
		// Claim the pairing step before writing any match row, so
		// concurrent triggers cannot both pair the stage.
		won, err := s.stageRepo.Transition(ctx, season.ID, stage, domain.StageStatusPending, domain.StageStatusPaired)
		if err != nil {
			return err
		}
		if !won {
			log.Printf("INFO [BracketService] season %d stage %s pairing claimed by another run", season.ID, stage)
			return nil
		}
		if err := s.ensureMatches(ctx, season.ID, stage, stageRow, entrants); err != nil {
			return err
		}
	case domain.StageStatusPaired:
		// A previous run claimed the pairing and died partway. The
		// pairing is deterministic, so redoing it fills the gaps.
		if err := s.ensureMatches(ctx, season.ID, stage, stageRow, entrants); err != nil {
			return err
		}
	}
	if _, err := s.stageRepo.Transition(ctx, season.ID, stage, domain.StageStatusPaired, domain.StageStatusResolving); err != nil {
		return err
	}

	if err := s.resolveMatches(ctx, season.ID, stage); err != nil {
		return err
	}
	return s.advance(ctx, season.ID, stage)
}

// ensureMatches materializes the pairing. The pairing is a pure
// function of the entrant list and the persisted seed, so re-running it
// recreates exactly the matches a crashed run left missing.
func (s *BracketService) ensureMatches(ctx context.Context, seasonID int, stage domain.Stage, stageRow *domain.BracketStage, entrants []*domain.Entrant) error {
	byCompetitor := make(map[uuid.UUID]*domain.Entrant, len(entrants))
	ids := make([]uuid.UUID, 0, len(entrants))
	for _, e := range entrants {
		if _, dup := byCompetitor[e.CompetitorID]; !dup {
			byCompetitor[e.CompetitorID] = e
			ids = append(ids, e.CompetitorID)
		}
	}

	pairing, err := Pair(ids, stageRow.PairSeed)
	if err != nil {
		return err
	}
	for _, dup := range pairing.Duplicates {
		log.Printf("WARN [BracketService] season %d stage %s dropped duplicate entrant %s", seasonID, stage, dup)
	}

	existing, err := s.matchRepo.GetByStage(ctx, seasonID, stage)
	if err != nil {
		return fmt.Errorf("load stage %s matches: %w", stage, err)
	}
	byNumber := make(map[int]*domain.Match, len(existing))
	for _, m := range existing {
		byNumber[m.Number] = m
	}

	created := false
	for i, pair := range pairing.Pairs {
		number := i + 1
		if _, ok := byNumber[number]; ok {
			continue
		}
		match := &domain.Match{
			ID:         uuid.New(),
			SeasonID:   seasonID,
			Stage:      stage,
			Number:     number,
			SideAID:    pair[0],
			SideBID:    pair[1],
			Outcome:    domain.MatchOutcomePending,
			BattleSeed: stageRow.PairSeed + int64(number),
			TurnLog:    []byte("[]"),
		}
		if err := s.matchRepo.Create(ctx, match); err != nil {
			return fmt.Errorf("create stage %s match %d: %w", stage, number, err)
		}
		created = true
	}
	if created {
		// Re-read so entrants link to whichever row won the insert when
		// a concurrent repair created the same slot.
		existing, err = s.matchRepo.GetByStage(ctx, seasonID, stage)
		if err != nil {
			return fmt.Errorf("load stage %s matches: %w", stage, err)
		}
		for _, m := range existing {
			byNumber[m.Number] = m
		}
	}

	for i, pair := range pairing.Pairs {
		match, ok := byNumber[i+1]
		if !ok {
			return fmt.Errorf("stage %s match %d missing after pairing", stage, i+1)
		}
		for _, id := range pair {
			entrant := byCompetitor[id]
			if entrant.MatchID == nil {
				if err := s.entrantRepo.SetMatch(ctx, entrant.ID, match.ID); err != nil {
					return fmt.Errorf("link entrant to match: %w", err)
				}
			}
		}
	}

	if pairing.Bye != nil {
		entrant := byCompetitor[*pairing.Bye]
		if !entrant.IsBye {
			if err := s.entrantRepo.SetBye(ctx, entrant.ID); err != nil {
				return fmt.Errorf("record bye: %w", err)
			}
		}
	}
	return nil
}

// resolveMatches settles every pending match of the stage, then mirrors
// every settled outcome onto its entrants. The mirror pass runs over all
// matches because a crash between the outcome write and the mirror, or a
// concurrent run winning the outcome write, leaves a settled match whose
// winner is not yet recorded.
func (s *BracketService) resolveMatches(ctx context.Context, seasonID int, stage domain.Stage) error {
	matches, err := s.matchRepo.GetByStage(ctx, seasonID, stage)
	if err != nil {
		return fmt.Errorf("load stage %s matches: %w", stage, err)
	}
	for _, match := range matches {
		if match.IsResolved() {
			continue
		}
		if err := s.resolveMatch(ctx, match); err != nil {
			return err
		}
	}

	matches, err = s.matchRepo.GetByStage(ctx, seasonID, stage)
	if err != nil {
		return fmt.Errorf("load stage %s matches: %w", stage, err)
	}
	entrants, err := s.entrantRepo.GetByStage(ctx, seasonID, stage)
	if err != nil {
		return fmt.Errorf("load stage %s entrants: %w", stage, err)
	}
	for _, match := range matches {
		if !match.IsResolved() {
			return fmt.Errorf("stage %s match %d still pending after resolution", stage, match.Number)
		}
		if err := s.recordResults(ctx, match, entrants); err != nil {
			return err
		}
	}
	return nil
}

func (s *BracketService) resolveMatch(ctx context.Context, match *domain.Match) error {
	teamA, err := s.loadTeam(ctx, match.SideAID)
	if err != nil {
		return err
	}
	teamB, err := s.loadTeam(ctx, match.SideBID)
	if err != nil {
		return err
	}

	result, err := battle.Resolve(teamA, teamB, match.BattleSeed)
	switch {
	case errors.Is(err, battle.ErrNoCombatants):
		// Neither side fielded a team. The seeded coin flip keeps the
		// outcome reproducible and visibly distinct from a real battle.
		winner := match.SideAID
		if rand.New(rand.NewSource(match.BattleSeed)).Intn(2) == 1 {
			winner = match.SideBID
		}
		match.WinnerID = &winner
		match.Outcome = domain.MatchOutcomeFallback
		match.TurnLog = []byte("[]")
	case err != nil:
		return fmt.Errorf("resolve match %d: %w", match.Number, err)
	case result.Forfeit:
		match.WinnerID = &result.WinnerID
		match.Outcome = domain.MatchOutcomeForfeit
		match.TurnLog = []byte("[]")
	default:
		logJSON, err := json.Marshal(result.Log)
		if err != nil {
			return fmt.Errorf("encode turn log: %w", err)
		}
		match.WinnerID = &result.WinnerID
		match.Outcome = domain.MatchOutcomeResolved
		match.TotalTurns = result.TotalTurns
		match.TurnLog = logJSON
	}

	if _, err := s.matchRepo.Resolve(ctx, match); err != nil {
		return fmt.Errorf("persist match %d outcome: %w", match.Number, err)
	}
	return nil
}

// recordResults mirrors the match outcome onto both entrants and the
// ladder tallies. Already-mirrored entrants are skipped, so the tallies
// count each result once.
func (s *BracketService) recordResults(ctx context.Context, match *domain.Match, entrants []*domain.Entrant) error {
	for _, e := range entrants {
		if e.MatchID == nil || *e.MatchID != match.ID || e.Resolved() {
			continue
		}
		won := match.WinnerID != nil && *match.WinnerID == e.CompetitorID
		if err := s.entrantRepo.SetResult(ctx, e.ID, won); err != nil {
			return fmt.Errorf("record entrant result: %w", err)
		}
		if err := s.qualifierRepo.RecordResult(ctx, e.CompetitorID, won); err != nil {
			return fmt.Errorf("record ladder tally: %w", err)
		}
	}
	return nil
}

// advance moves the stage's winners into the next stage, or crowns the
// champion after the final.
func (s *BracketService) advance(ctx context.Context, seasonID int, stage domain.Stage) error {
	entrants, err := s.entrantRepo.GetByStage(ctx, seasonID, stage)
	if err != nil {
		return err
	}

	var winners []uuid.UUID
	for _, e := range entrants {
		if e.IsBye || (e.IsWinner != nil && *e.IsWinner) {
			winners = append(winners, e.CompetitorID)
		}
	}
	if len(winners) == 0 {
		return fmt.Errorf("stage %s advanced with no winners", stage)
	}

	next, ok := stage.Next()
	if !ok {
		return fmt.Errorf("%w: %q has no next stage", domain.ErrUnknownStage, stage)
	}

	if next == domain.StageChampion {
		if len(winners) != 1 {
			return fmt.Errorf("final stage produced %d winners", len(winners))
		}
		if err := s.crown(ctx, seasonID, winners[0]); err != nil {
			return err
		}
	} else {
		for _, winner := range winners {
			if err := s.enterStage(ctx, seasonID, next, winner); err != nil {
				return err
			}
		}
	}

	won, err := s.stageRepo.Transition(ctx, seasonID, stage, domain.StageStatusResolving, domain.StageStatusAdvanced)
	if err != nil {
		return err
	}
	if won {
		log.Printf("INFO [BracketService] season %d stage %s advanced %d winners", seasonID, stage, len(winners))
	}
	return nil
}

// crown records the season champion and grants the champion reward.
func (s *BracketService) crown(ctx context.Context, seasonID int, championID uuid.UUID) error {
	if err := s.seasonRepo.SetChampion(ctx, seasonID, championID); err != nil {
		return fmt.Errorf("set champion: %w", err)
	}
	if err := s.enterStage(ctx, seasonID, domain.StageChampion, championID); err != nil {
		return err
	}
	log.Printf("INFO [BracketService] season %d champion is %s", seasonID, championID)
	return nil
}

// loadTeam builds the resolver snapshot from the fielded-team
// projection. An empty snapshot is the forfeit case.
func (s *BracketService) loadTeam(ctx context.Context, competitorID uuid.UUID) (*battle.Team, error) {
	rows, err := s.teamRepo.FieldedTeam(ctx, competitorID)
	if err != nil {
		return nil, fmt.Errorf("load fielded team for %s: %w", competitorID, err)
	}
	team := &battle.Team{CompetitorID: competitorID}
	for _, row := range rows {
		if row.OwnerLevel > team.Level {
			team.Level = row.OwnerLevel
		}
		var skills []string
		if len(row.Skills) > 0 {
			// A malformed skills blob only loses the skill labels.
			_ = json.Unmarshal(row.Skills, &skills)
		}
		team.Combatants = append(team.Combatants, &battle.Combatant{
			ID:              row.ID,
			Name:            row.Name,
			HPMax:           row.HPMax,
			HPCurrent:       row.HPMax,
			PhysicalAttack:  row.PhysicalAttack,
			MagicAttack:     row.MagicAttack,
			PhysicalDefense: row.PhysicalDefense,
			MagicDefense:    row.MagicDefense,
			Speed:           row.Speed,
			Grade:           row.Grade,
			AttackKind:      battle.AttackKind(row.AttackKind),
			Skills:          skills,
		})
	}
	return team, nil
}

func (s *BracketService) newPairSeed() int64 {
	return s.phase.Now().UnixNano()
}

// StageState is one stage's slice of the bracket projection.
type StageState struct {
	Stage   domain.Stage       `json:"stage"`
	Name    string             `json:"name"`
	Status  domain.StageStatus `json:"status"`
	Matches []*domain.Match    `json:"matches"`
	ByeID   *uuid.UUID         `json:"byeId"`
}

// BracketState is the season bracket as clients see it.
type BracketState struct {
	SeasonID    int          `json:"seasonId"`
	Phase       domain.Phase `json:"phase"`
	WindowStart time.Time    `json:"windowStart"`
	WindowEnd   time.Time    `json:"windowEnd"`
	ChampionID  *uuid.UUID   `json:"championId"`
	Stages      []StageState `json:"stages"`
}

// State assembles the current season's bracket projection.
func (s *BracketService) State(ctx context.Context) (*BracketState, error) {
	season, err := s.phase.EnsureSeason(ctx)
	if err != nil {
		return nil, err
	}
	phase, start, end := s.phase.CurrentPhase()

	state := &BracketState{
		SeasonID:    season.ID,
		Phase:       phase,
		WindowStart: start,
		WindowEnd:   end,
		ChampionID:  season.ChampionID,
	}
	matches, err := s.matchRepo.GetBySeason(ctx, season.ID)
	if err != nil {
		return nil, fmt.Errorf("load season %d matches: %w", season.ID, err)
	}
	byStage := make(map[domain.Stage][]*domain.Match, len(domain.BracketStages))
	for _, m := range matches {
		byStage[m.Stage] = append(byStage[m.Stage], m)
	}

	for _, stage := range domain.BracketStages {
		ss := StageState{Stage: stage, Name: stage.DisplayName(), Status: domain.StageStatusPending}
		row, err := s.stageRepo.Get(ctx, season.ID, stage)
		switch {
		case err == nil:
			ss.Status = row.Status
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Stage not reached yet.
		default:
			return nil, fmt.Errorf("load stage %s: %w", stage, err)
		}
		ss.Matches = byStage[stage]
		if ss.Matches == nil {
			ss.Matches = []*domain.Match{}
		}
		entrants, err := s.entrantRepo.GetByStage(ctx, season.ID, stage)
		if err != nil {
			return nil, fmt.Errorf("load stage %s entrants: %w", stage, err)
		}
		for _, e := range entrants {
			if e.IsBye {
				id := e.CompetitorID
				ss.ByeID = &id
				break
			}
		}
		state.Stages = append(state.Stages, ss)
	}
	return state, nil
}
