// Package scheduler runs the weekly digest job: every saved plan config
// is regenerated and the resulting summary mailed to its owner.
package scheduler

import (
	"fmt"

	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ConfigStore lists the saved plan configs to regenerate.
type ConfigStore interface {
	ListPlanConfigs() ([]models.StoredPlanConfig, error)
}

// PlanGenerator regenerates a plan for a stored config.
type PlanGenerator interface {
	GeneratePlanForUser(userID int64, req *models.PlanRequest) (*models.PlanResponse, error)
}

// DigestSender mails the regenerated plan.
type DigestSender interface {
	SendWeeklyDigest(to, username, summary string, actions, riskFlags []string) error
}

// Scheduler drives the periodic digest job.
type Scheduler struct {
	cron   *cron.Cron
	store  ConfigStore
	plans  PlanGenerator
	mailer DigestSender
	log    *logrus.Logger
}

// NewScheduler initializes a new scheduler
func NewScheduler(store ConfigStore, plans PlanGenerator, mailer DigestSender, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		store:  store,
		plans:  plans,
		mailer: mailer,
		log:    log,
	}
}

// Start registers the digest job under the given cron spec and starts
// the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunDigest); err != nil {
		return fmt.Errorf("failed to schedule digest job: %w", err)
	}
	s.cron.Start()
	s.log.Infof("Digest job scheduled: %s", spec)
	return nil
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunDigest regenerates every saved plan and mails the digest. A single
// user's failure is logged and skipped so the rest of the batch still
// goes out.
func (s *Scheduler) RunDigest() {
	configs, err := s.store.ListPlanConfigs()
	if err != nil {
		s.log.Errorf("Digest run failed to list plan configs: %v", err)
		return
	}

	sent := 0
	for _, stored := range configs {
		cfg := stored.Config
		resp, err := s.plans.GeneratePlanForUser(stored.UserID, &cfg)
		if err != nil {
			s.log.Warnf("Digest skipped user %d: %v", stored.UserID, err)
			continue
		}
		if err := s.mailer.SendWeeklyDigest(stored.Email, stored.Username, resp.Summary, resp.WeeklyActions, resp.RiskFlags); err != nil {
			s.log.Warnf("Digest mail failed for user %d: %v", stored.UserID, err)
			continue
		}
		sent++
	}
	s.log.Infof("Digest run complete: %d/%d sent", sent, len(configs))
}
