package ics

import (
	"encoding/base64"
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

func item(provider string, n int, due string) models.ShiftedInstallment {
	return models.ShiftedInstallment{
		Installment: models.Installment{
			Provider:      provider,
			InstallmentNo: n,
			DueDate:       due,
			Amount:        decimal.NewFromInt(50),
			Currency:      "USD",
			LateFee:       decimal.NewFromInt(7),
		},
	}
}

func decode(t *testing.T, encoded string) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("calendar body is not valid base64: %v", err)
	}
	return string(raw)
}

func TestEncodeStructure(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	encoded, err := Encode([]models.ShiftedInstallment{item("Klarna", 2, "2025-06-16")}, loc, now)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body := decode(t, encoded)

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"CALSCALE:GREGORIAN\r\n",
		"METHOD:PUBLISH\r\n",
		"X-WR-TIMEZONE:America/New_York\r\n",
		"DTSTAMP:20250610T120000Z\r\n",
		"DTSTART;TZID=America/New_York:20250616T090000\r\n",
		"DTEND;TZID=America/New_York:20250616T093000\r\n",
		"SUMMARY:Klarna payment $50.00\r\n",
		"TRIGGER:-PT24H\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("calendar body missing %q:\n%s", want, body)
		}
	}
	if strings.Count(body, "BEGIN:VALARM") != 1 {
		t.Errorf("want exactly one reminder, body:\n%s", body)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	items := []models.ShiftedInstallment{item("Klarna", 2, "2025-06-16"), item("Affirm", 1, "2025-06-18")}

	a, err := Encode(items, loc, now)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode(items, loc, now)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if a != b {
		t.Error("identical input must produce byte-identical calendar output")
	}
}

func TestEventUIDStableAcrossShift(t *testing.T) {
	plain := item("Klarna", 2, "2025-06-14")

	shifted := item("Klarna", 2, "2025-06-16")
	shifted.WasShifted = true
	shifted.OriginalDueDate = "2025-06-14"
	shifted.ShiftedDueDate = "2025-06-16"
	shifted.ShiftReason = models.ShiftReasonWeekend

	if eventUID(plain) != eventUID(shifted) {
		t.Error("UID must be derived from the original due date so re-exports dedupe")
	}
}

func TestEncodeShiftedEvent(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	shifted := item("Klarna", 2, "2025-06-16")
	shifted.WasShifted = true
	shifted.OriginalDueDate = "2025-06-14"
	shifted.ShiftedDueDate = "2025-06-16"
	shifted.ShiftReason = models.ShiftReasonWeekend

	encoded, err := Encode([]models.ShiftedInstallment{shifted}, loc, now)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body := decode(t, encoded)

	if !strings.Contains(body, "SUMMARY:Klarna payment $50.00 (shifted)\r\n") {
		t.Errorf("shifted title missing:\n%s", body)
	}
	if !strings.Contains(body, `Original due date: 2025-06-14\nShifted to: 2025-06-16 (weekend)`) {
		t.Errorf("shift description lines missing:\n%s", body)
	}
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`a\b`, `a\\b`},
		{"a;b", `a\;b`},
		{"a,b", `a\,b`},
		{"a\nb", `a\nb`},
		{"a\r\nb", `a\nb`},
		{"Pay, Later; Inc.", `Pay\, Later\; Inc.`},
	}
	for _, tt := range tests {
		if got := escapeText(tt.in); got != tt.want {
			t.Errorf("escapeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeEscapesProviderName(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	it := item("Pay, Later; Inc.", 1, "2025-06-16")
	encoded, err := Encode([]models.ShiftedInstallment{it}, loc, now)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body := decode(t, encoded)
	if !strings.Contains(body, `SUMMARY:Pay\, Later\; Inc. payment $50.00`) {
		t.Errorf("provider name not escaped:\n%s", body)
	}
}

func TestEncodeSkipsUnparseableDates(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	encoded, err := Encode([]models.ShiftedInstallment{
		item("Klarna", 1, "garbage"),
		item("Affirm", 1, "2025-06-16"),
	}, loc, now)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body := decode(t, encoded)
	if strings.Count(body, "BEGIN:VEVENT") != 1 {
		t.Errorf("item without a calendar position must be skipped:\n%s", body)
	}
}
