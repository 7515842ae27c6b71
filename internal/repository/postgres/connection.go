package postgres

import (
	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.Season{},
		&domain.Entrant{},
		&domain.Match{},
		&domain.BracketStage{},
		&domain.StageRewardClaim{},
		&domain.RewardGrant{},
		&domain.QualifierRank{},
		&domain.FieldedCombatant{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Season:       NewSeasonRepository(db),
		Entrant:      NewEntrantRepository(db),
		Match:        NewMatchRepository(db),
		BracketStage: NewBracketStageRepository(db),
		RewardClaim:  NewRewardClaimRepository(db),
		Qualifier:    NewQualifierRepository(db),
		Team:         NewTeamRepository(db),
		Ledger:       NewLedgerRepository(db),
	}
}
