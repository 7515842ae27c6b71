package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/liuclever/summonking/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ERROR [handlers] failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Error       string `json:"error"`
	Phase       string `json:"phase,omitempty"`
	Required    string `json:"requiredPhase,omitempty"`
	WindowStart string `json:"windowStart,omitempty"`
	WindowEnd   string `json:"windowEnd,omitempty"`
}

// writeServiceError maps service errors onto HTTP statuses. Phase
// rejections carry the active window so clients can show when the
// operation opens.
func writeServiceError(w http.ResponseWriter, err error) {
	var pe *domain.PhaseError
	if errors.As(err, &pe) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:       pe.Error(),
			Phase:       string(pe.Current),
			Required:    string(pe.Required),
			WindowStart: pe.WindowStart.Format("2006-01-02T15:04:05Z07:00"),
			WindowEnd:   pe.WindowEnd.Format("2006-01-02T15:04:05Z07:00"),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrAlreadySignedUp):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotRegistered):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSeasonNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnknownStage):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.Printf("ERROR [handlers] internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
