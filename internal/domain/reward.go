package domain

import (
	"time"

	"github.com/google/uuid"
)

// StageRewardClaim is the idempotency record for stage rewards. At most
// one claim exists per (competitor, season, stage); its presence means
// the reward was granted and must not be granted again. Delivered is
// false while the ledger grant is still outstanding, which is the
// "claimed, not yet delivered" state swept by reconciliation.
type StageRewardClaim struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompetitorID uuid.UUID  `json:"competitorId" gorm:"type:uuid;not null;uniqueIndex:idx_reward_claims_key"`
	SeasonID     int        `json:"seasonId" gorm:"not null;uniqueIndex:idx_reward_claims_key"`
	Stage        Stage      `json:"stage" gorm:"type:varchar(10);not null;uniqueIndex:idx_reward_claims_key"`
	Delivered    bool       `json:"delivered" gorm:"not null;default:false"`
	DeliveredAt  *time.Time `json:"deliveredAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// TableName returns the table name for GORM
func (StageRewardClaim) TableName() string {
	return "stage_reward_claims"
}

// RewardItem is one item bundle within a stage reward.
type RewardItem struct {
	ItemID int `json:"itemId"`
	Count  int `json:"count"`
}

// RewardSpec is the configured payout for reaching a stage.
type RewardSpec struct {
	Gold  int          `json:"gold"`
	Items []RewardItem `json:"items"`
}

// StageRewards maps each stage to its payout. Reaching a stage rewards
// participation, not just advancement, so every entrant of a stage
// holds that stage's claim.
var StageRewards = map[Stage]RewardSpec{
	StageRoundOf32: {Gold: 50000, Items: []RewardItem{{ItemID: 5001, Count: 10}, {ItemID: 5002, Count: 5}}},
	StageRoundOf16: {Gold: 100000, Items: []RewardItem{{ItemID: 5001, Count: 15}, {ItemID: 5002, Count: 10}}},
	StageRoundOf8:  {Gold: 150000, Items: []RewardItem{{ItemID: 5001, Count: 20}, {ItemID: 5002, Count: 15}}},
	StageRoundOf4:  {Gold: 250000, Items: []RewardItem{{ItemID: 5001, Count: 30}, {ItemID: 5002, Count: 20}}},
	StageFinal:     {Gold: 350000, Items: []RewardItem{{ItemID: 5001, Count: 40}, {ItemID: 5002, Count: 25}}},
	StageChampion:  {Gold: 450000, Items: []RewardItem{{ItemID: 5001, Count: 50}, {ItemID: 5002, Count: 30}}},
}

// RewardGrant is one append-only ledger line written when a claim is
// delivered.
type RewardGrant struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompetitorID uuid.UUID `json:"competitorId" gorm:"type:uuid;not null;index"`
	SeasonID     int       `json:"seasonId" gorm:"not null"`
	Stage        Stage     `json:"stage" gorm:"type:varchar(10);not null"`
	Gold         int       `json:"gold" gorm:"not null"`
	ItemID       int       `json:"itemId" gorm:"not null;default:0"`
	ItemCount    int       `json:"itemCount" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName returns the table name for GORM
func (RewardGrant) TableName() string {
	return "reward_grants"
}
