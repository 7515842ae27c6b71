package domain

import (
	"time"

	"github.com/google/uuid"
)

// Phase represents a time-boxed segment of a season's weekly cycle
type Phase string

const (
	PhaseEnrollment Phase = "enrollment"
	PhaseSignup     Phase = "signup"
	PhaseBattle     Phase = "battle"
	PhaseFinished   Phase = "finished"
)

// Season is one weekly recurrence of the tournament. The ID encodes the
// calendar slot as year*100 + ISO week, so the same week always maps to
// the same season row.
type Season struct {
	ID            int        `json:"id" gorm:"primary_key;autoIncrement:false"`
	Phase         Phase      `json:"phase" gorm:"type:varchar(20);not null;default:'enrollment'"`
	PhaseStartsAt time.Time  `json:"phaseStartsAt"`
	PhaseEndsAt   time.Time  `json:"phaseEndsAt"`
	ChampionID    *uuid.UUID `json:"championId" gorm:"type:uuid"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (Season) TableName() string {
	return "seasons"
}

// SeasonID computes the season identifier for a point in time.
func SeasonID(at time.Time) int {
	year, week := at.ISOWeek()
	return year*100 + week
}
