package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/service"
)

// BracketHandler serves the bracket projection and the admin triggers.
type BracketHandler struct {
	bracketService *service.BracketService
}

func NewBracketHandler(bracketService *service.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bracketService}
}

func (h *BracketHandler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.bracketService.State(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *BracketHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if err := h.bracketService.SeedFinals(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"seeded": true})
}

type AdvanceRequest struct {
	Stage string `json:"stage"`
}

func (h *BracketHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	stage := domain.Stage(req.Stage)
	if err := h.bracketService.RunStage(r.Context(), stage); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stage": req.Stage, "status": "run"})
}
