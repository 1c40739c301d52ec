package event

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	payload := `{
		"starts_at": "2022-01-03T08:30:00Z",
		"currency_code": "USD",
		"impact": "High",
		"actual": "3.2%",
		"forecast": 3.0,
		"previous": null,
		"all_day": false,
		"title": "ignored"
	}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	s, ok := rec.Date.Str()
	assert.True(t, ok)
	assert.Equal(t, "2022-01-03T08:30:00Z", s)

	s, _ = rec.CurrencyCode.Str()
	assert.Equal(t, "USD", s)

	n, ok := rec.Forecast.Num()
	require.True(t, ok, "forecast kind = %s", rec.Forecast.Kind())
	assert.True(t, n.Equal(decimalOf(t, "3")))
	assert.Equal(t, "3.0", rec.Forecast.String())

	assert.True(t, rec.Previous.IsNull())

	b, ok := rec.AllDay.Bool()
	assert.True(t, ok)
	assert.False(t, b)
}

func TestRecord_UnmarshalJSON_ExactKeys(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"impact":"High","Impact":"Low","STARTS_AT":"bogus"}`), &rec))

	assert.Equal(t, "High", rec.Impact.String())
	assert.True(t, rec.Date.IsNull(), "case-variant keys must not fill columns")
}

func TestRecord_UnmarshalJSON_NotObject(t *testing.T) {
	for _, in := range []string{`null`, `"USD"`, `[1]`, `3`} {
		t.Run(in, func(t *testing.T) {
			var rec Record
			assert.ErrorIs(t, rec.UnmarshalJSON([]byte(in)), ErrNotObject)
		})
	}
}

func TestRecord_MissingFieldsAreNull(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"currency_code":"EUR"}`), &rec))

	for i, v := range rec.Values() {
		if Columns[i] == "Currency_Code" {
			continue
		}
		assert.True(t, v.IsNull(), "column %s kind = %s, want null", Columns[i], v.Kind())
	}
}

func TestDecodeRecord_InvalidField(t *testing.T) {
	_, err := DecodeRecord(map[string]json.RawMessage{"actual": json.RawMessage(`tru`)})
	assert.Error(t, err)
}

func TestRecord_Row(t *testing.T) {
	rec := Record{
		Date:         StringValue("2022-01-03T08:30:00Z"),
		CurrencyCode: StringValue("USD"),
		Impact:       StringValue("High"),
		Actual:       StringValue("3.2%"),
		Forecast:     StringValue("3.0%"),
		Previous:     StringValue("2.9%"),
		AllDay:       BoolValue(false),
	}

	want := []any{"2022-01-03T08:30:00Z", "USD", "High", "3.2%", "3.0%", "2.9%", false}
	assert.Equal(t, want, rec.Row())
}

func TestRecord_ID(t *testing.T) {
	a := Record{Date: StringValue("2022-01-03T08:30:00Z"), CurrencyCode: StringValue("USD")}
	b := Record{Date: StringValue("2022-01-03T08:30:00Z"), CurrencyCode: StringValue("USD")}
	c := Record{Date: StringValue("2022-01-03T08:30:00Z"), CurrencyCode: StringValue("EUR")}

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Len(t, a.ID(), 40) // SHA1 hex
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", NullValue(), ""},
		{"string", StringValue("3.2%"), "3.2%"},
		{"number", NumberValue(decimalOf(t, "-0.25")), "-0.25"},
		{"true", BoolValue(true), "True"},
		{"false", BoolValue(false), "False"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestValue_NumbersKeepSourceText(t *testing.T) {
	for _, in := range []string{`60.0`, `1e5`, `2.50`, `-0`, `100000.0`} {
		t.Run(in, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(in), &v))
			require.Equal(t, KindNumber, v.Kind())

			assert.Equal(t, in, v.String())
			cell, err := v.MarshalCSV()
			require.NoError(t, err)
			assert.Equal(t, in, cell)
		})
	}

	var a, b Value
	require.NoError(t, json.Unmarshal([]byte(`60.0`), &a))
	require.NoError(t, json.Unmarshal([]byte(`60`), &b))
	assert.True(t, a.Equal(b), "numbers compare by value")
}

func TestValue_JSONPassThrough(t *testing.T) {
	inputs := []string{`null`, `"USD"`, `1.25`, `60.0`, `1e5`, `true`, `{"a":1}`, `[1,2]`}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(in), &v))
			out, err := json.Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, in, string(out))
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{"", KindNull},
		{"True", KindBool},
		{"False", KindBool},
		{"1.5", KindNumber},
		{"-3", KindNumber},
		{"60.0", KindNumber},
		{"1e5", KindNumber},
		{"3.2%", KindString},
		{"1e5x", KindString},
		{"007", KindString},
		{" 1", KindString},
		{"USD", KindString},
		{"2022-01-03T08:30:00Z", KindString},
		{".", KindString},
		{"-", KindString},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := ParseValue(tt.in)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.in, v.String(), "round trip")
		})
	}
}

func TestTable_HeadTail(t *testing.T) {
	table := NewTable()
	for i := 0; i < 12; i++ {
		table.Append(Record{Actual: NumberValue(decimal.NewFromInt(int64(i)))})
	}
	require.Equal(t, 12, table.Len())

	head := table.Head(5)
	require.Len(t, head, 5)
	assert.Equal(t, "0", head[0].Actual.String())
	assert.Equal(t, "4", head[4].Actual.String())

	tail := table.Tail(5)
	require.Len(t, tail, 5)
	assert.Equal(t, "7", tail[0].Actual.String())
	assert.Equal(t, "11", tail[4].Actual.String())

	short := NewTable(Record{}, Record{})
	assert.Len(t, short.Head(5), 2)
	assert.Len(t, short.Tail(5), 2)
}

func TestTable_KeepsDuplicatesInOrder(t *testing.T) {
	a := Record{CurrencyCode: StringValue("USD")}
	b := Record{CurrencyCode: StringValue("EUR")}

	table := NewTable(a, b)
	table.Append(a)

	got := table.Records()
	require.Len(t, got, 3)
	assert.True(t, got[0].Equal(a))
	assert.True(t, got[1].Equal(b))
	assert.True(t, got[2].Equal(a))

	got[0] = b
	assert.True(t, table.Records()[0].Equal(a), "Records() should return a copy")
}

func TestTable_Filter(t *testing.T) {
	table := NewTable(
		Record{CurrencyCode: StringValue("USD")},
		Record{CurrencyCode: StringValue("EUR")},
		Record{CurrencyCode: StringValue("USD")},
	)

	usd := table.Filter(func(r Record) bool {
		s, _ := r.CurrencyCode.Str()
		return s == "USD"
	})

	assert.Equal(t, 2, usd.Len())
	assert.Equal(t, 3, table.Len(), "source table unchanged")
}
