// Package week handles ISO-8601 week identifiers and the week schedules the
// collector walks through.
package week

import (
	"fmt"
	"time"
)

// ID is an ISO-8601 (year, week) pair
type ID struct {
	Year int
	Week int
}

// String renders the identifier as YYYY-Www with the week zero-padded
func (id ID) String() string {
	return fmt.Sprintf("%04d-W%02d", id.Year, id.Week)
}

// Of returns the ISO week containing t, evaluated in UTC
func Of(t time.Time) ID {
	year, w := t.UTC().ISOWeek()
	return ID{Year: year, Week: w}
}

// Current returns the ISO week containing now
func Current(now time.Time) ID {
	return Of(now)
}

// Year lists the weeks to request for one calendar year. Dates are generated
// from January 1 in steps of seven days while they remain in year and not
// after now. Dates whose ISO week belongs to a neighbouring ISO year are
// dropped so each year yields week 1 upward with no repeats.
func Year(year int, now time.Time) []ID {
	now = now.UTC()
	ids := make([]ID, 0, 53)

	for date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); date.Year() == year && !date.After(now); date = date.AddDate(0, 0, 7) {
		id := Of(date)
		if id.Year != year {
			continue
		}
		ids = append(ids, id)
	}

	return ids
}

// Range lists the weeks for every year in [from, to], in ascending order
func Range(from, to int, now time.Time) []ID {
	var ids []ID
	for year := from; year <= to; year++ {
		ids = append(ids, Year(year, now)...)
	}
	return ids
}
