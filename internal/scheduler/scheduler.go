package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/liuclever/summonking/internal/domain"
	"github.com/liuclever/summonking/internal/service"
)

// Scheduler fires the weekly cadence: signup reset at the start of
// enrollment, finals seeding when the signup window closes, and stage
// runs across the battle window. Every job body is idempotent in the
// service layer, so an extra trigger or a restart mid-week is harmless.
type Scheduler struct {
	services *service.Services
	sched    gocron.Scheduler
}

func New(services *service.Services) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{services: services, sched: sched}, nil
}

// Start registers the weekly jobs and begins running them.
func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		def  gocron.JobDefinition
		run  func(context.Context) error
	}{
		{
			name: "signup-reset",
			def: gocron.WeeklyJob(1, gocron.NewWeekdays(time.Monday),
				gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
			run: s.services.Season.ResetSignups,
		},
		{
			name: "seed-finals",
			def: gocron.WeeklyJob(1, gocron.NewWeekdays(time.Friday),
				gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
			run: func(ctx context.Context) error {
				return s.services.Bracket.SeedFinals(ctx)
			},
		},
		{
			name: "run-round-of-32",
			def: gocron.WeeklyJob(1, gocron.NewWeekdays(time.Friday),
				gocron.NewAtTimes(gocron.NewAtTime(12, 0, 0))),
			run: s.stageRunner(domain.StageRoundOf32),
		},
		{
			name: "run-round-of-16",
			def: gocron.WeeklyJob(1, gocron.NewWeekdays(time.Saturday),
				gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
			run: s.stageRunner(domain.StageRoundOf16),
		},
		{
			name: "run-round-of-8",
			def: gocron.WeeklyJob(1, gocron.NewWeekdays(time.Saturday),
				gocron.NewAtTimes(gocron.NewAtTime(12, 0, 0))),
			run: s.stageRunner(domain.StageRoundOf8),
		},
		{
			name: "run-semifinals",
			def: gocron.WeeklyJob(1, gocron.NewWeekdays(time.Sunday),
				gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
			run: s.stageRunner(domain.StageRoundOf4),
		},
		{
			name: "run-final",
			def: gocron.WeeklyJob(1, gocron.NewWeekdays(time.Sunday),
				gocron.NewAtTimes(gocron.NewAtTime(12, 0, 0))),
			run: s.stageRunner(domain.StageFinal),
		},
		{
			name: "reward-reconciliation",
			def:  gocron.DurationJob(1 * time.Hour),
			run:  s.retryRewards,
		},
	}

	for _, job := range jobs {
		name, run := job.name, job.run
		_, err := s.sched.NewJob(job.def, gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if err := run(ctx); err != nil {
				log.Printf("ERROR [scheduler] job %s failed: %v", name, err)
				return
			}
			log.Printf("INFO [scheduler] job %s completed", name)
		}))
		if err != nil {
			return fmt.Errorf("register job %s: %w", name, err)
		}
	}

	s.sched.Start()
	log.Printf("INFO [scheduler] started with %d weekly jobs", len(jobs))
	return nil
}

func (s *Scheduler) stageRunner(stage domain.Stage) func(context.Context) error {
	return func(ctx context.Context) error {
		return s.services.Bracket.RunStage(ctx, stage)
	}
}

func (s *Scheduler) retryRewards(ctx context.Context) error {
	seasonID := domain.SeasonID(s.services.Phase.Now())
	delivered, err := s.services.Reward.RetryUndelivered(ctx, seasonID)
	if err != nil {
		return err
	}
	if delivered > 0 {
		log.Printf("INFO [scheduler] redelivered %d reward claims for season %d", delivered, seasonID)
	}
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
