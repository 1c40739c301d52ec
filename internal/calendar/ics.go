// Package calendar renders event records as an iCalendar (.ics) feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/econcal/internal/event"
)

// CalendarName is written as X-WR-CALNAME
const CalendarName = "Economic Calendar"

// GenerateICS generates one iCalendar document holding a VEVENT per record.
// Records whose date cannot be parsed are left out.
func GenerateICS(records []event.Record, now time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//econcal//econcal//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(CalendarName)))

	// Identical rows from overlapping weeks share a UID; number repeats
	seen := make(map[string]int)
	for _, rec := range records {
		start := rec.StartsAt()
		if start.IsZero() {
			continue
		}

		uid := rec.ID()
		seen[uid]++
		if n := seen[uid]; n > 1 {
			uid = fmt.Sprintf("%s-%d", uid, n)
		}

		writeEvent(&ics, rec, start, uid, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, rec event.Record, start time.Time, uid string, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	// UID - unique identifier for the event
	ics.WriteString(fmt.Sprintf("UID:%s@econcal\r\n", uid))

	// DTSTAMP - timestamp when this calendar entry was created
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))

	if rec.IsAllDay() {
		ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", start.Format("20060102")))
		ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", start.AddDate(0, 0, 1).Format("20060102")))
	} else {
		ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(start)))
	}

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary(rec))))
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description(rec))))

	if impact := rec.Impact.String(); impact != "" {
		ics.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", escapeICS(impact)))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

func summary(rec event.Record) string {
	currency := rec.CurrencyCode.String()
	if currency == "" {
		currency = "N/A"
	}
	if impact := rec.Impact.String(); impact != "" {
		return fmt.Sprintf("%s event (%s impact)", currency, impact)
	}
	return fmt.Sprintf("%s event", currency)
}

func description(rec event.Record) string {
	var lines []string
	for _, f := range []struct {
		label string
		v     event.Value
	}{
		{"Actual", rec.Actual},
		{"Forecast", rec.Forecast},
		{"Previous", rec.Previous},
	} {
		if !f.v.IsNull() {
			lines = append(lines, fmt.Sprintf("%s: %s", f.label, f.v.String()))
		}
	}
	if len(lines) == 0 {
		return "No figures published"
	}
	return strings.Join(lines, "\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
