package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Dan9191/payplan-service/internal/actions"
	"github.com/Dan9191/payplan-service/internal/busday"
	"github.com/Dan9191/payplan-service/internal/config"
	"github.com/Dan9191/payplan-service/internal/holiday"
	"github.com/Dan9191/payplan-service/internal/ics"
	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/Dan9191/payplan-service/internal/risk"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the storage surface the service depends on.
type Repository interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	SavePaydays(userID int64, dates []string) error
	FindPaydays(userID int64) ([]string, error)
	SavePlanConfig(userID int64, cfg *models.PlanRequest) error
	ListPlanConfigs() ([]models.StoredPlanConfig, error)
}

// ClosureSource supplies operator-published closure dates merged into
// the custom skip list when a request opts in. May be nil.
type ClosureSource interface {
	FetchClosures() ([]string, error)
}

// Clock supplies the current time. Injected so plan generation stays
// deterministic under test.
type Clock func() time.Time

// Service handles business logic
type Service struct {
	repo     Repository
	closures ClosureSource
	log      *logrus.Logger
	config   *config.Config
	shifter  *busday.Shifter
	now      Clock
}

// NewService initializes a new service. closures may be nil when no
// closure feed is configured.
func NewService(repo Repository, closures ClosureSource, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		closures: closures,
		log:      log,
		config:   cfg,
		shifter:  busday.NewShifter(log),
		now:      time.Now,
	}
}

// SetClock overrides the service clock.
func (s *Service) SetClock(now Clock) {
	s.now = now
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", NewClientError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", NewClientError("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// SavePaydays stores the authenticated user's payday dates.
func (s *Service) SavePaydays(ctx context.Context, dates []string) error {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := validateDates(dates, "payday"); err != nil {
		return err
	}
	if err := s.repo.SavePaydays(userID, dates); err != nil {
		return err
	}
	s.log.Infof("Stored %d paydays for user %d", len(dates), userID)
	return nil
}

// GetPaydays returns the authenticated user's stored payday dates.
func (s *Service) GetPaydays(ctx context.Context) ([]string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindPaydays(userID)
}

// HolidaysForYear exposes the computed federal holiday set, sorted by
// date.
func (s *Service) HolidaysForYear(year int) []map[string]string {
	set := holiday.ForYear(year)
	dates := make([]string, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]map[string]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, map[string]string{"date": d, "name": set[d]})
	}
	return out
}

// GeneratePlan runs the plan pipeline for the authenticated caller.
func (s *Service) GeneratePlan(ctx context.Context, req *models.PlanRequest) (*models.PlanResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.GeneratePlanForUser(userID, req)
}

// GeneratePlanForUser runs the full pipeline: validate, resolve paydays,
// shift due dates, detect risks, build the weekly actions and summary,
// encode the calendar and assemble the response.
func (s *Service) GeneratePlanForUser(userID int64, req *models.PlanRequest) (*models.PlanResponse, error) {
	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		return nil, NewClientError(fmt.Sprintf("invalid timezone %q", req.Timezone))
	}
	if req.Country != "US" && req.Country != "None" {
		return nil, NewClientError(fmt.Sprintf("invalid country %q, want US or None", req.Country))
	}
	if err := validateDates(req.Paydays, "payday"); err != nil {
		return nil, err
	}
	if err := validateDates(req.CustomSkipDates, "custom skip date"); err != nil {
		return nil, err
	}

	paydays, err := s.resolvePaydays(userID, req)
	if err != nil {
		return nil, err
	}
	skipDates := s.resolveSkipDates(req)

	items := sortedItems(req.Items)

	shiftRes, err := s.shifter.Shift(items, loc, busday.Options{
		Enabled:         req.ShiftEnabled,
		Country:         req.Country,
		CustomSkipDates: skipDates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to shift due dates: %w", err)
	}

	flags, err := risk.Detect(shiftRes.Items, loc, risk.Params{
		Paydays:         paydays,
		MinBuffer:       req.MinBuffer,
		BusinessDayMode: req.ShiftEnabled,
		MovedDates:      shiftRes.MovedDates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect risks: %w", err)
	}

	now := s.now().In(loc)
	weekly := actions.WeeklyInstallments(shiftRes.Items, loc, now)

	calendar, err := ics.Encode(shiftRes.Items, loc, now)
	if err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}

	resp := &models.PlanResponse{
		Summary:       actions.Summary(shiftRes.Items, weekly, flags, loc),
		WeeklyActions: actions.WeeklyActions(shiftRes.Items, loc, now),
		RiskFlags:     actions.FormatRiskFlags(flags),
		CalendarICS:   calendar,
		Installments:  actions.NormalizeOutput(shiftRes.Items),
		MovedDates:    shiftRes.MovedDates,
	}

	if req.Save {
		saved := *req
		saved.Save = false
		if err := s.repo.SavePlanConfig(userID, &saved); err != nil {
			return nil, fmt.Errorf("failed to save plan config: %w", err)
		}
	}

	s.log.Infof("Generated plan for user %d: %d items, %d risk flags, %d moved dates",
		userID, len(items), len(flags), len(shiftRes.MovedDates))
	return resp, nil
}

// resolvePaydays prefers an explicit payday list; otherwise the user's
// stored paydays are loaded when the request asks for them. No paydays
// at all simply disables cash-crunch detection downstream.
func (s *Service) resolvePaydays(userID int64, req *models.PlanRequest) ([]string, error) {
	if len(req.Paydays) > 0 {
		return req.Paydays, nil
	}
	if !req.UseStoredPaydays {
		return nil, nil
	}
	paydays, err := s.repo.FindPaydays(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored paydays: %w", err)
	}
	if len(paydays) == 0 {
		return nil, NewClientError("missing payday configuration: no stored paydays for this user")
	}
	return paydays, nil
}

// resolveSkipDates unions the request's custom skip dates with the
// closure feed when the request opts in. A feed failure degrades to the
// request's own dates; the feed is advisory.
func (s *Service) resolveSkipDates(req *models.PlanRequest) []string {
	skipDates := req.CustomSkipDates
	if !req.IncludeClosureFeed || s.closures == nil {
		return skipDates
	}

	closures, err := s.closures.FetchClosures()
	if err != nil {
		s.log.Warnf("Closure feed unavailable, proceeding without it: %v", err)
		return skipDates
	}

	seen := make(map[string]struct{}, len(skipDates))
	merged := make([]string, 0, len(skipDates)+len(closures))
	for _, d := range skipDates {
		seen[d] = struct{}{}
		merged = append(merged, d)
	}
	for _, d := range closures {
		if _, ok := seen[d]; !ok {
			merged = append(merged, d)
		}
	}
	sort.Strings(merged)
	return merged
}

// sortedItems normalizes input order so the pipeline output does not
// depend on how the caller arranged the list.
func sortedItems(items []models.Installment) []models.Installment {
	sorted := make([]models.Installment, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DueDate != sorted[j].DueDate {
			return sorted[i].DueDate < sorted[j].DueDate
		}
		if sorted[i].Provider != sorted[j].Provider {
			return sorted[i].Provider < sorted[j].Provider
		}
		return sorted[i].InstallmentNo < sorted[j].InstallmentNo
	})
	return sorted
}

func validateDates(dates []string, kind string) error {
	for _, d := range dates {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return NewClientError(fmt.Sprintf("invalid %s %q, want YYYY-MM-DD", kind, d))
		}
	}
	return nil
}

func userIDFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value("userID").(string)
	if !ok || userIDStr == "" {
		return 0, fmt.Errorf("user ID not found in context")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return userID, nil
}
