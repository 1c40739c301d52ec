package event

import "time"

// ParseDate attempts to parse a starts_at string into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Supports formats: "2022-01-03T08:30:00Z", "2022-01-03T08:30:00.000-05:00",
// "2022-01-03T08:30:00", "2022-01-03"
func ParseDate(text string) time.Time {
	if text == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC()
		}
	}

	return time.Time{}
}

// StartsAt parses the record's Date column.
// The CSV output never uses this; the source text is written as-is.
func (r Record) StartsAt() time.Time {
	s, ok := r.Date.Str()
	if !ok {
		return time.Time{}
	}
	return ParseDate(s)
}

// IsAllDay reports whether the all_day flag is a true boolean
func (r Record) IsAllDay() bool {
	b, ok := r.AllDay.Bool()
	return ok && b
}
