package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"financeagent/internal/domain"
)

// ReviewService runs the scheduled goal review: it scans every user's
// active goals and records an audit entry for goals past their
// deadline.
type ReviewService struct {
	userRepo  domain.UserRepository
	goalRepo  domain.GoalRepository
	auditRepo domain.AuditRepository
}

func NewReviewService(userRepo domain.UserRepository, goalRepo domain.GoalRepository, auditRepo domain.AuditRepository) *ReviewService {
	return &ReviewService{
		userRepo:  userRepo,
		goalRepo:  goalRepo,
		auditRepo: auditRepo,
	}
}

// ReviewGoals checks all users. A failure for one user does not stop
// the review of the others.
func (s *ReviewService) ReviewGoals(ctx context.Context) error {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for goal review: %w", err)
	}

	now := time.Now().UTC()
	for _, user := range users {
		if err := s.reviewUser(ctx, user.ID, now); err != nil {
			log.Printf("[WARN] goal review failed for user %s: %v", user.ID, err)
		}
	}

	return nil
}

func (s *ReviewService) reviewUser(ctx context.Context, userID uuid.UUID, now time.Time) error {
	goals, err := s.goalRepo.ListActive(ctx, userID)
	if err != nil {
		return err
	}

	for _, goal := range goals {
		if goal.Deadline == nil || goal.Deadline.After(now) {
			continue
		}

		entry := &domain.AuditLogEntry{
			ID:     uuid.New(),
			UserID: userID,
			Task:   "nightly goal review",
			DecisionProcess: fmt.Sprintf(
				"goal %q passed its deadline (%s) at %.0f%% progress",
				goal.Name, goal.Deadline.Format("2006-01-02"), goal.Progress()),
			ToolsUsed: []string{"manage_financial_goals"},
			Timestamp: now,
		}
		if err := s.auditRepo.Save(ctx, entry); err != nil {
			return err
		}

		log.Printf("[CRON] Goal %q overdue for user %s (%.0f%% complete)", goal.Name, userID, goal.Progress())
	}

	return nil
}
