package service_test

import (
	"testing"
	"time"

	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/service"
	"github.com/stretchr/testify/assert"
)

// 2026-08-24 is a Monday.
func weekday(day int, hour int) time.Time {
	return time.Date(2026, 8, 24+day-1, hour, 0, 0, 0, time.UTC)
}

func TestPhaseAt_WeeklyCadence(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want domain.Phase
	}{
		{"monday morning is enrollment", weekday(1, 9), domain.PhaseEnrollment},
		{"monday midnight is enrollment", weekday(1, 0), domain.PhaseEnrollment},
		{"tuesday is signup", weekday(2, 0), domain.PhaseSignup},
		{"thursday evening is signup", weekday(4, 23), domain.PhaseSignup},
		{"friday midnight is battle", weekday(5, 0), domain.PhaseBattle},
		{"sunday afternoon is battle", weekday(7, 19), domain.PhaseBattle},
		{"sunday evening is finished", weekday(7, 20), domain.PhaseFinished},
		{"sunday night is finished", weekday(7, 23), domain.PhaseFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase, start, end := service.PhaseAt(tt.at)
			assert.Equal(t, tt.want, phase)
			assert.False(t, tt.at.Before(start), "window start after query time")
			assert.True(t, tt.at.Before(end), "window end before query time")
		})
	}
}

func TestPhaseAt_WindowBoundaries(t *testing.T) {
	phase, start, end := service.PhaseAt(weekday(3, 12))
	assert.Equal(t, domain.PhaseSignup, phase)
	assert.Equal(t, weekday(2, 0), start)
	assert.Equal(t, weekday(5, 0), end)

	phase, start, end = service.PhaseAt(weekday(6, 12))
	assert.Equal(t, domain.PhaseBattle, phase)
	assert.Equal(t, weekday(5, 0), start)
	assert.Equal(t, weekday(7, 20), end)
}

func TestSeasonID_StableWithinWeek(t *testing.T) {
	monday := weekday(1, 0)
	sunday := weekday(7, 23)

	assert.Equal(t, domain.SeasonID(monday), domain.SeasonID(sunday))
	assert.NotEqual(t, domain.SeasonID(monday), domain.SeasonID(monday.AddDate(0, 0, 7)))
}

func TestAssertPhase(t *testing.T) {
	phaseService := service.NewPhaseService(nil, func() time.Time { return weekday(2, 10) })

	assert.NoError(t, phaseService.AssertPhase(domain.PhaseSignup))

	err := phaseService.AssertPhase(domain.PhaseBattle)
	assert.Error(t, err)
	assert.True(t, domain.IsPhaseError(err))

	var pe *domain.PhaseError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.PhaseSignup, pe.Current)
	assert.Equal(t, domain.PhaseBattle, pe.Required)
	assert.Equal(t, weekday(2, 0), pe.WindowStart)
	assert.Equal(t, weekday(5, 0), pe.WindowEnd)
}
