// Package ics renders a shifted payment schedule as an RFC 5545
// calendar body, base64-encoded for transport.
package ics

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/google/uuid"
)

const (
	prodID    = "-//payplan-service//Payment Plan//EN"
	stampUTC  = "20060102T150405Z"
	localTime = "20060102T150405"
	eventHour = 9 // events start 09:00 local
)

// uidNamespace seeds the deterministic event UIDs. Fixed forever so a
// re-export produces identical UIDs and calendar apps update in place
// instead of duplicating.
var uidNamespace = uuid.MustParse("9fbf1f54-5db0-4f2b-a5b0-6a0c3f8f6b2e")

// Encode renders one VEVENT per installment with a 24-hour display
// reminder and returns the whole document base64-encoded. Items whose
// due date cannot be parsed carry no calendar position and are skipped.
func Encode(items []models.ShiftedInstallment, loc *time.Location, now time.Time) (string, error) {
	if loc == nil {
		return "", fmt.Errorf("calendar encoding requires a timezone")
	}

	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+prodID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "METHOD:PUBLISH")
	writeLine(&b, "X-WR-TIMEZONE:"+loc.String())

	stamp := now.UTC().Format(stampUTC)
	for _, item := range items {
		due, err := time.ParseInLocation(models.DateLayout, item.DueDate, loc)
		if err != nil {
			continue
		}
		writeEvent(&b, item, due, loc, stamp)
	}

	writeLine(&b, "END:VCALENDAR")
	return base64.StdEncoding.EncodeToString([]byte(b.String())), nil
}

func writeEvent(b *strings.Builder, item models.ShiftedInstallment, due time.Time, loc *time.Location, stamp string) {
	start := time.Date(due.Year(), due.Month(), due.Day(), eventHour, 0, 0, 0, loc)
	end := start.Add(30 * time.Minute)

	title := fmt.Sprintf("%s payment $%s", item.Provider, item.Amount.StringFixed(2))
	if item.WasShifted {
		title += " (shifted)"
	}

	descLines := []string{
		"Provider: " + item.Provider,
		"Amount: $" + item.Amount.StringFixed(2),
		fmt.Sprintf("Installment: %d", item.InstallmentNo),
		"Late fee: $" + item.LateFee.StringFixed(2),
		"Autopay: " + onOff(item.Autopay),
	}
	if item.WasShifted {
		descLines = append(descLines,
			"Original due date: "+item.OriginalDueDate,
			fmt.Sprintf("Shifted to: %s (%s)", item.ShiftedDueDate, strings.ToLower(string(item.ShiftReason))),
		)
	}

	writeLine(b, "BEGIN:VEVENT")
	writeLine(b, "UID:"+eventUID(item))
	writeLine(b, "DTSTAMP:"+stamp)
	writeLine(b, fmt.Sprintf("DTSTART;TZID=%s:%s", loc.String(), start.Format(localTime)))
	writeLine(b, fmt.Sprintf("DTEND;TZID=%s:%s", loc.String(), end.Format(localTime)))
	writeLine(b, "SUMMARY:"+escapeText(title))
	writeLine(b, "DESCRIPTION:"+escapeText(strings.Join(descLines, "\n")))
	writeLine(b, "BEGIN:VALARM")
	writeLine(b, "ACTION:DISPLAY")
	writeLine(b, "DESCRIPTION:"+escapeText(title+" due tomorrow"))
	writeLine(b, "TRIGGER:-PT24H")
	writeLine(b, "END:VALARM")
	writeLine(b, "END:VEVENT")
}

// eventUID derives a stable UID from provider, installment number and
// the original due date, so the same installment always maps to the
// same calendar event across exports.
func eventUID(item models.ShiftedInstallment) string {
	seed := item.DueDate
	if item.WasShifted {
		seed = item.OriginalDueDate
	}
	id := uuid.NewSHA1(uidNamespace, []byte(fmt.Sprintf("%s|%d|%s", item.Provider, item.InstallmentNo, seed)))
	return id.String() + "@payplan"
}

// escapeText applies RFC 5545 text escaping: backslash, comma and
// semicolon are backslash-escaped and newlines become the literal
// two-character sequence \n.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// writeLine terminates every content line with CRLF as the format
// requires.
func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}
