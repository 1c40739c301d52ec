package event

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Columns is the fixed output column order
var Columns = []string{"Date", "Currency_Code", "Impact", "Actual", "Forecast", "Previous", "All_Day"}

// Record is one economic-calendar event occurrence.
// JSON tags match the keys of the calendar payload; CSV tags match Columns.
type Record struct {
	Date         Value `json:"starts_at" csv:"Date"`
	CurrencyCode Value `json:"currency_code" csv:"Currency_Code"`
	Impact       Value `json:"impact" csv:"Impact"`
	Actual       Value `json:"actual" csv:"Actual"`
	Forecast     Value `json:"forecast" csv:"Forecast"`
	Previous     Value `json:"previous" csv:"Previous"`
	AllDay       Value `json:"all_day" csv:"All_Day"`
}

// ErrNotObject is returned when an event entry is not a JSON object
var ErrNotObject = errors.New("event entry is not a JSON object")

// fields maps each payload key to the column it fills
func (r *Record) fields() []struct {
	key string
	dst *Value
} {
	return []struct {
		key string
		dst *Value
	}{
		{"starts_at", &r.Date},
		{"currency_code", &r.CurrencyCode},
		{"impact", &r.Impact},
		{"actual", &r.Actual},
		{"forecast", &r.Forecast},
		{"previous", &r.Previous},
		{"all_day", &r.AllDay},
	}
}

// DecodeRecord projects the seven named keys of an event object onto a
// Record. Keys match exactly; missing keys are null and others are ignored.
func DecodeRecord(obj map[string]json.RawMessage) (Record, error) {
	var rec Record
	for _, f := range rec.fields() {
		raw, ok := obj[f.key]
		if !ok {
			continue
		}
		if err := f.dst.UnmarshalJSON(raw); err != nil {
			return Record{}, fmt.Errorf("field %s: %w", f.key, err)
		}
	}
	return rec, nil
}

// UnmarshalJSON decodes an event object with exact key matching
func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	rec, err := DecodeRecord(obj)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// Values returns the record's columns in Columns order
func (r Record) Values() []Value {
	return []Value{r.Date, r.CurrencyCode, r.Impact, r.Actual, r.Forecast, r.Previous, r.AllDay}
}

// Row returns the record's columns as plain Go values in Columns order
func (r Record) Row() []any {
	values := r.Values()
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v.Interface()
	}
	return row
}

// Strings returns the record's columns rendered as CSV cells
func (r Record) Strings() []string {
	values := r.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

// Equal reports whether every column of r equals the same column of o
func (r Record) Equal(o Record) bool {
	a, b := r.Values(), o.Values()
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ID returns a deterministic identifier built from every column.
// Identical events pulled by overlapping weeks share an ID.
func (r Record) ID() string {
	h := sha1.New()
	h.Write([]byte(strings.Join(r.Strings(), "|")))
	return fmt.Sprintf("%x", h.Sum(nil))
}
