package service

import (
	"github.com/liuclever/summonking/internal/repository"
)

type Services struct {
	Phase   *PhaseService
	Season  *SeasonService
	Bracket *BracketService
	Reward  *RewardService
}

func NewServices(repos *repository.Repositories, clock Clock) *Services {
	phase := NewPhaseService(repos.Season, clock)
	reward := NewRewardService(repos.RewardClaim, repos.Ledger)
	return &Services{
		Phase:   phase,
		Season:  NewSeasonService(phase, repos.Qualifier),
		Bracket: NewBracketService(phase, reward, repos),
		Reward:  reward,
	}
}
