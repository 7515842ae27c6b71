package domain

import (
	"errors"
	"fmt"
	"time"
)

// Registration/signup errors
var (
	ErrAlreadyRegistered = errors.New("competitor is already on the qualifier ladder")
	ErrNotRegistered     = errors.New("competitor is not on the qualifier ladder")
	ErrAlreadySignedUp   = errors.New("competitor already signed up this season")
	ErrSeasonNotFound    = errors.New("season not found")
)

// Bracket errors
var (
	ErrUnknownStage     = errors.New("unknown bracket stage")
	ErrPairingInvariant = errors.New("pairing invariant violated")
)

// PhaseError rejects an operation attempted outside its valid time
// window. It carries the phase that is currently active and its window
// so callers can surface a useful rejection.
type PhaseError struct {
	Current     Phase
	Required    Phase
	WindowStart time.Time
	WindowEnd   time.Time
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("operation requires %s phase, current phase is %s (%s until %s)",
		e.Required, e.Current,
		e.WindowStart.Format(time.RFC3339), e.WindowEnd.Format(time.RFC3339))
}

// IsPhaseError reports whether err is a phase-window rejection.
func IsPhaseError(err error) bool {
	var pe *PhaseError
	return errors.As(err, &pe)
}
