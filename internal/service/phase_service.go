package service

import (
	"context"
	"fmt"
	"time"

	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/repository"
)

// Clock supplies the current time. Production wiring passes time.Now;
// tests pin the week.
type Clock func() time.Time

// PhaseService derives the weekly phase from the wall clock. The phase
// is never stored as the source of truth; the season row just mirrors
// the computed value so readers get it without redoing the arithmetic.
type PhaseService struct {
	clock      Clock
	seasonRepo repository.SeasonRepository
}

func NewPhaseService(seasonRepo repository.SeasonRepository, clock Clock) *PhaseService {
	if clock == nil {
		clock = time.Now
	}
	return &PhaseService{clock: clock, seasonRepo: seasonRepo}
}

// Now returns the service's current time in UTC.
func (s *PhaseService) Now() time.Time {
	return s.clock().UTC()
}

// weekStart returns Monday 00:00 UTC of at's ISO week.
func weekStart(at time.Time) time.Time {
	at = at.UTC()
	weekday := int(at.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	day := at.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// PhaseAt computes the phase and its window for a point in time.
//
// The weekly cadence: Monday is enrollment, Tuesday through Thursday is
// signup, Friday 00:00 through Sunday 20:00 is battle, and the rest of
// Sunday is finished.
func PhaseAt(at time.Time) (domain.Phase, time.Time, time.Time) {
	start := weekStart(at)
	enrollmentEnd := start.AddDate(0, 0, 1)  // Tue 00:00
	signupEnd := start.AddDate(0, 0, 4)      // Fri 00:00
	battleEnd := start.AddDate(0, 0, 6).Add(20 * time.Hour) // Sun 20:00
	nextWeek := start.AddDate(0, 0, 7)

	at = at.UTC()
	switch {
	case at.Before(enrollmentEnd):
		return domain.PhaseEnrollment, start, enrollmentEnd
	case at.Before(signupEnd):
		return domain.PhaseSignup, enrollmentEnd, signupEnd
	case at.Before(battleEnd):
		return domain.PhaseBattle, signupEnd, battleEnd
	default:
		return domain.PhaseFinished, battleEnd, nextWeek
	}
}

// CurrentPhase returns the active phase and its window.
func (s *PhaseService) CurrentPhase() (domain.Phase, time.Time, time.Time) {
	return PhaseAt(s.Now())
}

// AssertPhase returns nil when the required phase is active, otherwise
// a PhaseError describing the active window.
func (s *PhaseService) AssertPhase(required domain.Phase) error {
	phase, start, end := s.CurrentPhase()
	if phase == required {
		return nil
	}
	return &domain.PhaseError{
		Current:     phase,
		Required:    required,
		WindowStart: start,
		WindowEnd:   end,
	}
}

// EnsureSeason upserts this week's season row with the computed phase
// and window and returns it.
func (s *PhaseService) EnsureSeason(ctx context.Context) (*domain.Season, error) {
	now := s.Now()
	phase, start, end := PhaseAt(now)
	season := &domain.Season{
		ID:            domain.SeasonID(now),
		Phase:         phase,
		PhaseStartsAt: start,
		PhaseEndsAt:   end,
	}
	if err := s.seasonRepo.Upsert(ctx, season); err != nil {
		return nil, fmt.Errorf("ensure season %d: %w", season.ID, err)
	}
	return s.seasonRepo.GetByID(ctx, season.ID)
}
