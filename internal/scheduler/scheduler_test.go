package scheduler

import (
	"errors"
	"io"
	"testing"

	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/sirupsen/logrus"
)

type fakeStore struct {
	configs []models.StoredPlanConfig
	err     error
}

func (f *fakeStore) ListPlanConfigs() ([]models.StoredPlanConfig, error) {
	return f.configs, f.err
}

type fakePlans struct {
	failFor map[int64]bool
	calls   []int64
}

func (f *fakePlans) GeneratePlanForUser(userID int64, req *models.PlanRequest) (*models.PlanResponse, error) {
	f.calls = append(f.calls, userID)
	if f.failFor[userID] {
		return nil, errors.New("pipeline failed")
	}
	return &models.PlanResponse{
		Summary:       "summary",
		WeeklyActions: []string{"pay up"},
	}, nil
}

type fakeMailer struct {
	sentTo  []string
	failFor map[string]bool
}

func (f *fakeMailer) SendWeeklyDigest(to, username, summary string, actions, riskFlags []string) error {
	if f.failFor[to] {
		return errors.New("smtp down")
	}
	f.sentTo = append(f.sentTo, to)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRunDigestSkipsFailuresAndContinues(t *testing.T) {
	store := &fakeStore{configs: []models.StoredPlanConfig{
		{UserID: 1, Username: "alice", Email: "alice@example.com"},
		{UserID: 2, Username: "bob", Email: "bob@example.com"},
		{UserID: 3, Username: "carol", Email: "carol@example.com"},
	}}
	plans := &fakePlans{failFor: map[int64]bool{2: true}}
	mailer := &fakeMailer{failFor: map[string]bool{"carol@example.com": true}}

	s := NewScheduler(store, plans, mailer, testLogger())
	s.RunDigest()

	if len(plans.calls) != 3 {
		t.Errorf("plan calls %d, want 3", len(plans.calls))
	}
	if len(mailer.sentTo) != 1 || mailer.sentTo[0] != "alice@example.com" {
		t.Errorf("sent to %v, want only alice", mailer.sentTo)
	}
}

func TestRunDigestListFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	plans := &fakePlans{}
	mailer := &fakeMailer{}

	s := NewScheduler(store, plans, mailer, testLogger())
	s.RunDigest()

	if len(plans.calls) != 0 {
		t.Errorf("no plans should run when listing fails, got %d calls", len(plans.calls))
	}
}
