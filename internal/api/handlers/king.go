package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/liuclever/summonking/internal/api/middleware"
	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/service"
)

// KingHandler serves registration, signup, ranking, and reward status.
type KingHandler struct {
	seasonService *service.SeasonService
	rewardService *service.RewardService
	phaseService  *service.PhaseService
}

func NewKingHandler(seasonService *service.SeasonService, rewardService *service.RewardService, phaseService *service.PhaseService) *KingHandler {
	return &KingHandler{
		seasonService: seasonService,
		rewardService: rewardService,
		phaseService:  phaseService,
	}
}

type RegisterResponse struct {
	CompetitorID string `json:"competitorId"`
	Area         int    `json:"area"`
	Position     int    `json:"position"`
}

func (h *KingHandler) Register(w http.ResponseWriter, r *http.Request) {
	competitorID, ok := middleware.GetCompetitorID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rank, err := h.seasonService.Register(r.Context(), competitorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		CompetitorID: rank.CompetitorID.String(),
		Area:         rank.Area,
		Position:     rank.Position,
	})
}

func (h *KingHandler) Signup(w http.ResponseWriter, r *http.Request) {
	competitorID, ok := middleware.GetCompetitorID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.seasonService.Signup(r.Context(), competitorID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"signedUp": true})
}

type RankingEntry struct {
	CompetitorID string `json:"competitorId"`
	Position     int    `json:"position"`
	SignedUp     bool   `json:"signedUp"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	WinStreak    int    `json:"winStreak"`
}

type RankingResponse struct {
	Area    int            `json:"area"`
	Entries []RankingEntry `json:"entries"`
}

func (h *KingHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	area := 1
	if raw := r.URL.Query().Get("area"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid area", http.StatusBadRequest)
			return
		}
		area = parsed
	}

	ranks, err := h.seasonService.Ranking(r.Context(), area)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := RankingResponse{Area: area, Entries: make([]RankingEntry, 0, len(ranks))}
	for _, rank := range ranks {
		resp.Entries = append(resp.Entries, RankingEntry{
			CompetitorID: rank.CompetitorID.String(),
			Position:     rank.Position,
			SignedUp:     rank.SignedUp,
			Wins:         rank.Wins,
			Losses:       rank.Losses,
			WinStreak:    rank.WinStreak,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type RewardClaimEntry struct {
	Stage       string     `json:"stage"`
	StageName   string     `json:"stageName"`
	Gold        int        `json:"gold"`
	Delivered   bool       `json:"delivered"`
	DeliveredAt *time.Time `json:"deliveredAt"`
}

type RewardsResponse struct {
	SeasonID int                `json:"seasonId"`
	Claims   []RewardClaimEntry `json:"claims"`
}

func (h *KingHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	competitorID, ok := middleware.GetCompetitorID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	seasonID := domain.SeasonID(h.phaseService.Now())
	claims, err := h.rewardService.ClaimStatus(r.Context(), seasonID, competitorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := RewardsResponse{SeasonID: seasonID, Claims: make([]RewardClaimEntry, 0, len(claims))}
	for _, claim := range claims {
		entry := RewardClaimEntry{
			Stage:       string(claim.Stage),
			StageName:   claim.Stage.DisplayName(),
			Delivered:   claim.Delivered,
			DeliveredAt: claim.DeliveredAt,
		}
		if spec, ok := domain.StageRewards[claim.Stage]; ok {
			entry.Gold = spec.Gold
		}
		resp.Claims = append(resp.Claims, entry)
	}
	writeJSON(w, http.StatusOK, resp)
}
