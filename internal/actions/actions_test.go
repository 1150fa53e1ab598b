package actions

import (
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/shopspring/decimal"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func item(provider, due string, amount, lateFee int64) models.ShiftedInstallment {
	return models.ShiftedInstallment{
		Installment: models.Installment{
			Provider: provider,
			DueDate:  due,
			Amount:   decimal.NewFromInt(amount),
			Currency: "USD",
			LateFee:  decimal.NewFromInt(lateFee),
		},
	}
}

func TestWeeklyInstallmentsWindowInclusive(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, time.June, 10, 15, 30, 0, 0, loc) // Tuesday

	items := []models.ShiftedInstallment{
		item("Today", "2025-06-10", 10, 0),
		item("LastDay", "2025-06-17", 10, 0), // today+7, still in
		item("TooLate", "2025-06-18", 10, 0), // today+8, out
		item("Past", "2025-06-09", 10, 0),    // yesterday, out
		item("Bad", "nonsense", 10, 0),
	}

	weekly := WeeklyInstallments(items, loc, now)
	if len(weekly) != 2 {
		t.Fatalf("weekly %d, want 2: %+v", len(weekly), weekly)
	}
	if weekly[0].Provider != "Today" || weekly[1].Provider != "LastDay" {
		t.Errorf("wrong window contents: %+v", weekly)
	}
}

func TestWeeklyActionsOrderingAndSuffixes(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, loc)

	autopayWeekend := item("Zip", "2025-06-14", 20, 0) // Saturday
	autopayWeekend.Autopay = true

	items := []models.ShiftedInstallment{
		item("Affirm", "2025-06-12", 30, 5),
		item("Klarna", "2025-06-11", 50, 7),
		item("Afterpay", "2025-06-13", 25, 0),
		autopayWeekend,
	}

	lines := WeeklyActions(items, loc, now)
	if len(lines) != 4 {
		t.Fatalf("lines %d, want 4: %v", len(lines), lines)
	}

	// Late fee descending, then amount ascending.
	if !strings.HasPrefix(lines[0], "Wednesday Jun 11: Pay Klarna $50.00") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[0], "(highest late fee $7.00)") {
		t.Errorf("line 0 missing highest-fee marker: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Pay Affirm $30.00") || !strings.Contains(lines[1], "(late fee $5.00)") {
		t.Errorf("line 1 = %q", lines[1])
	}
	// Zero-fee entries sort by amount ascending.
	if !strings.Contains(lines[2], "Pay Zip $20.00") {
		t.Errorf("line 2 = %q", lines[2])
	}
	if !strings.Contains(lines[2], "autopay drafts on a weekend") {
		t.Errorf("line 2 missing weekend-autopay caution: %q", lines[2])
	}
	if !strings.Contains(lines[3], "Pay Afterpay $25.00") || strings.Contains(lines[3], "late fee") {
		t.Errorf("line 3 = %q", lines[3])
	}
}

func TestSummaryEmptyWindow(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	got := Summary([]models.ShiftedInstallment{item("Klarna", "2025-09-01", 50, 0)}, nil, nil, loc)
	if !strings.Contains(got, "No payments due in the next 7 days") {
		t.Errorf("empty-window summary = %q", got)
	}
}

func TestSummaryStructure(t *testing.T) {
	loc := mustLoc(t, "America/New_York")

	weekly := []models.ShiftedInstallment{
		item("Klarna", "2025-06-11", 50, 7),
		item("Affirm", "2025-06-12", 30, 5),
		item("Afterpay", "2025-06-13", 25, 0),
		item("Zip", "2025-06-14", 20, 0),
	}
	all := append([]models.ShiftedInstallment{item("Sezzle", "2025-07-01", 40, 0)}, weekly...)

	crunch, err := models.NewRiskFlag(models.RiskCashCrunch, models.SeverityHigh, "2025-06-13", "$105.00 in payments fall within 3 days of your 2025-06-13 payday")
	if err != nil {
		t.Fatal(err)
	}
	collision, err := models.NewRiskFlag(models.RiskCollision, models.SeverityMedium, "2025-06-12", "2 payments due on Thursday 2025-06-12")
	if err != nil {
		t.Fatal(err)
	}

	got := Summary(all, weekly, []models.RiskFlag{*collision, *crunch}, loc)
	lines := strings.Split(got, "\n")
	if len(lines) != 7 {
		t.Fatalf("summary has %d lines, want 7:\n%s", len(lines), got)
	}

	if !strings.Contains(lines[0], "4 payment(s) totaling $125.00") || !strings.Contains(lines[0], "(5 in your full schedule)") {
		t.Errorf("totals line = %q", lines[0])
	}
	// High-severity cash crunch takes the headline; the collision note
	// still appears because the headline does not cover collisions.
	if !strings.HasPrefix(lines[1], "⚠️ ") || !strings.Contains(lines[1], "payday") {
		t.Errorf("headline = %q", lines[1])
	}
	if !strings.Contains(lines[2], "2025-06-12") {
		t.Errorf("collision note = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "🔴 Priority: pay Klarna $50.00") {
		t.Errorf("priority line = %q", lines[3])
	}
	if !strings.HasPrefix(lines[4], "🟡 Then: pay Affirm $30.00") {
		t.Errorf("then line = %q", lines[4])
	}
	if !strings.HasPrefix(lines[5], "🟢 Finally: pay Zip $20.00") {
		t.Errorf("finally line = %q", lines[5])
	}
	// High severity present: closing line suggests deferring the
	// lowest-late-fee top-3 provider.
	if !strings.Contains(lines[6], "Zip is the safest to defer") {
		t.Errorf("closing line = %q", lines[6])
	}
}

func TestSummaryNoRisksClosingLine(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	weekly := []models.ShiftedInstallment{item("Klarna", "2025-06-11", 50, 0)}

	got := Summary(weekly, weekly, nil, loc)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("summary has %d lines, want 3:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[2], "You're in good shape") {
		t.Errorf("closing line = %q", lines[2])
	}
}

func TestFormatRiskFlags(t *testing.T) {
	mk := func(tp models.RiskType, sev models.Severity) models.RiskFlag {
		f, err := models.NewRiskFlag(tp, sev, "2025-06-16", "msg")
		if err != nil {
			t.Fatal(err)
		}
		return *f
	}

	flags := []models.RiskFlag{
		mk(models.RiskCollision, models.SeverityMedium),
		mk(models.RiskCashCrunch, models.SeverityHigh),
		mk(models.RiskWeekendAutopay, models.SeverityLow),
		mk(models.RiskShiftedToBusiness, models.SeverityInfo),
	}
	got := FormatRiskFlags(flags)
	want := []string{"⚠️ msg", "💸 msg", "📅 msg", "ℹ️ msg"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("flag %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizeOutputOmitsShiftFields(t *testing.T) {
	shifted := item("Klarna", "2025-06-16", 50, 0)
	shifted.WasShifted = true
	shifted.OriginalDueDate = "2025-06-14"
	shifted.ShiftedDueDate = "2025-06-16"
	shifted.ShiftReason = models.ShiftReasonWeekend

	out := NormalizeOutput([]models.ShiftedInstallment{
		shifted,
		item("Affirm", "2025-06-12", 30, 0),
	})

	if !out[0].WasShifted || out[0].OriginalDueDate != "2025-06-14" || out[0].ShiftReason != models.ShiftReasonWeekend {
		t.Errorf("shifted projection = %+v", out[0])
	}
	if out[1].WasShifted || out[1].OriginalDueDate != "" || out[1].ShiftReason != "" {
		t.Errorf("unshifted projection must omit shift fields, got %+v", out[1])
	}
}
