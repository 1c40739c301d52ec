package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/econcal/internal/event"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *event.Table {
	return event.NewTable(
		event.Record{
			Date:         event.StringValue("2022-01-03T08:30:00Z"),
			CurrencyCode: event.StringValue("USD"),
			Impact:       event.StringValue("High"),
			Actual:       event.StringValue("3.2%"),
			Forecast:     event.StringValue("3.0%"),
			Previous:     event.StringValue("2.9%"),
			AllDay:       event.BoolValue(false),
		},
		event.Record{
			Date:         event.StringValue("2022-01-03T00:00:00Z"),
			CurrencyCode: event.StringValue("GBP"),
			Impact:       event.StringValue("none"),
			AllDay:       event.BoolValue(true),
		},
		event.Record{
			Date:         event.StringValue("2022-01-07T13:30:00Z"),
			CurrencyCode: event.StringValue("USD"),
			Impact:       event.StringValue("High"),
			Actual:       event.NumberValue(decimal.RequireFromString("3.9")),
			Forecast:     event.StringValue(`4.1, "revised"`),
			Previous:     event.NumberValue(decimal.RequireFromString("-0.25")),
			AllDay:       event.BoolValue(false),
		},
	)
}

func assertSameRows(t *testing.T, want, got *event.Table) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i, w := range want.Records() {
		assert.Equal(t, w.Strings(), got.Records()[i].Strings(), "row %d", i)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Currency_Code,Impact,Actual,Forecast,Previous,All_Day", lines[0])
	assert.Equal(t, "2022-01-03T08:30:00Z,USD,High,3.2%,3.0%,2.9%,False", lines[1])
	assert.Equal(t, "2022-01-03T00:00:00Z,GBP,none,,,,True", lines[2])
	assert.Equal(t, `2022-01-07T13:30:00Z,USD,High,3.9,"4.1, ""revised""",-0.25,False`, lines[3])
}

func TestWriteCSV_NumbersAsPublished(t *testing.T) {
	var rec event.Record
	require.NoError(t, json.Unmarshal([]byte(`{"starts_at":"2022-01-03T15:00:00Z","currency_code":"USD","impact":"high","actual":60.0,"forecast":1e5,"previous":2.50,"all_day":false}`), &rec))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, event.NewTable(rec)))
	written := buf.String()

	lines := strings.Split(strings.TrimRight(written, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2022-01-03T15:00:00Z,USD,high,60.0,1e5,2.50,False", lines[1])

	got, err := ReadCSV(strings.NewReader(written))
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, rec.Strings(), got.Records()[0].Strings())
	assert.Equal(t, event.KindNumber, got.Records()[0].Forecast.Kind())
}

func TestWriteCSV_EmptyTableHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, event.NewTable()))
	assert.Equal(t, "Date,Currency_Code,Impact,Actual,Forecast,Previous,All_Day", strings.TrimSpace(buf.String()))
}

func TestCSVRoundTrip(t *testing.T) {
	table := sampleTable()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assertSameRows(t, table, got)

	// Kinds survive where the text is unambiguous
	third := got.Records()[2]
	assert.Equal(t, event.KindNumber, third.Actual.Kind())
	assert.Equal(t, event.KindBool, third.AllDay.Kind())
	assert.True(t, got.Records()[1].Actual.IsNull())
}

func TestCSVFile_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.csv")
	sink := &CSVFile{Path: path}

	require.NoError(t, sink.Save(context.Background(), sampleTable()))

	got, err := LoadCSV(path)
	require.NoError(t, err)
	assertSameRows(t, sampleTable(), got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCSVFile_SaveCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&CSVFile{Path: path}).Save(ctx, sampleTable())
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no output should be written")
}

func TestJSONFile_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, (&JSONFile{Path: path}).Save(context.Background(), sampleTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 3)

	assert.Equal(t, "2022-01-03T08:30:00Z", got[0]["starts_at"])
	assert.Equal(t, false, got[0]["all_day"])
	assert.Nil(t, got[1]["actual"])
	assert.Contains(t, got[1], "actual", "null fields are written explicitly")
	assert.Equal(t, 3.9, got[2]["actual"])
}

func TestICSFile_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ics")
	sink := &ICSFile{Path: path, Now: func() time.Time { return time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC) }}
	require.NoError(t, sink.Save(context.Background(), sampleTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "BEGIN:VEVENT"))
}

func TestNewFileSink(t *testing.T) {
	for _, tt := range []struct {
		format Format
		want   any
	}{
		{FormatCSV, &CSVFile{}},
		{FormatJSON, &JSONFile{}},
		{FormatICS, &ICSFile{}},
	} {
		sink, err := NewFileSink(tt.format, "x")
		require.NoError(t, err)
		assert.IsType(t, tt.want, sink)
	}

	_, err := NewFileSink("xml", "x")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("parquet")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "events.db")

	store, err := NewSQLiteStore(dbPath, "run-1")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, sampleTable()))

	n, err := store.CountRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := store.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assertSameRows(t, sampleTable(), got)
	assert.True(t, got.Records()[1].Forecast.IsNull())

	// A second run appends without touching the first
	second, err := NewSQLiteStore(dbPath, "run-2")
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Save(ctx, event.NewTable(sampleTable().Records()[0])))

	n, err = store.CountRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = store.CountRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
