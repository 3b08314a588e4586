package infra

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// GoalReviewer is the scheduled job contract.
type GoalReviewer interface {
	ReviewGoals(ctx context.Context) error
}

// Scheduler runs the nightly goal review.
type Scheduler struct {
	cron     *cron.Cron
	reviewer GoalReviewer
}

func NewScheduler(reviewer GoalReviewer) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		reviewer: reviewer,
	}
}

// Start registers the nightly review at 02:00 server time.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 2 * * *", func() {
		ctx := context.Background()
		log.Println("[CRON] Nightly goal review triggered")
		if err := s.reviewer.ReviewGoals(ctx); err != nil {
			log.Printf("ERROR: Nightly goal review failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[OK] Scheduler started (nightly goal review at 02:00)")
	return nil
}

func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.cron.Stop()
	log.Println("[OK] Scheduler stopped")
}
