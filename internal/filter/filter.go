// Package filter narrows an event table before it is written.
//
// Filters match on the currency and impact columns:
//   - Currencies (exact, case-insensitive)
//   - Impacts (exact, case-insensitive)
//   - AllDay (when set, only all-day or only timed events)
//
// An empty filter matches every record, so the default run writes the table
// unchanged.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Currencies = filter.ParseList("USD,EUR")
//	f.Impacts = []string{"high"}
//	table = f.Apply(table)
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/econcal/internal/event"
)

// Filter represents record filtering criteria
type Filter struct {
	Currencies []string `json:"currencies,omitempty"`
	Impacts    []string `json:"impacts,omitempty"`
	// AllDay, when non-nil, keeps only records whose all_day flag equals it
	AllDay *bool `json:"all_day,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
func NewFilter() *Filter {
	return &Filter{
		Currencies: []string{},
		Impacts:    []string{},
	}
}

// ParseList splits a comma-separated flag value, dropping blanks
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.Currencies) == 0 && len(f.Impacts) == 0 && f.AllDay == nil)
}

// Matches checks if a record matches all active filter criteria.
// Null or non-string columns never match a non-empty list.
func (f *Filter) Matches(rec event.Record) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Currencies) > 0 && !matchAny(rec.CurrencyCode, f.Currencies) {
		return false
	}

	if len(f.Impacts) > 0 && !matchAny(rec.Impact, f.Impacts) {
		return false
	}

	if f.AllDay != nil {
		b, ok := rec.AllDay.Bool()
		if !ok || b != *f.AllDay {
			return false
		}
	}

	return true
}

func matchAny(v event.Value, candidates []string) bool {
	s, ok := v.Str()
	if !ok {
		return false
	}
	for _, c := range candidates {
		if strings.EqualFold(s, c) {
			return true
		}
	}
	return false
}

// Apply returns a table holding only matching records, in their original order.
// If the filter is empty, returns the original table unchanged.
func (f *Filter) Apply(table *event.Table) *event.Table {
	if f.IsEmpty() {
		return table
	}
	return table.Filter(f.Matches)
}

// String returns a human-readable description of the active filter criteria.
// Format: "Currencies: USD, EUR | Impacts: high | All-day only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Currencies) > 0 {
		parts = append(parts, fmt.Sprintf("Currencies: %s", strings.Join(f.Currencies, ", ")))
	}

	if len(f.Impacts) > 0 {
		parts = append(parts, fmt.Sprintf("Impacts: %s", strings.Join(f.Impacts, ", ")))
	}

	if f.AllDay != nil {
		if *f.AllDay {
			parts = append(parts, "All-day only")
		} else {
			parts = append(parts, "Timed only")
		}
	}

	return strings.Join(parts, " | ")
}
