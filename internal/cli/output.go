package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/pfrederiksen/econcal/internal/collector"
	"github.com/pfrederiksen/econcal/internal/event"
)

// PreviewRows is how many rows the preview shows from each end of the table
const PreviewRows = 5

// OutputFormat specifies the preview format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// PreviewResult is the JSON shape of a preview
type PreviewResult struct {
	RunID       string         `json:"run_id"`
	CollectedAt time.Time      `json:"collected_at"`
	EventCount  int            `json:"event_count"`
	Head        []event.Record `json:"head"`
	Tail        []event.Record `json:"tail"`
}

// WritePreview writes the first and last PreviewRows rows of the table
func WritePreview(w io.Writer, runID string, table *event.Table, format OutputFormat, now time.Time) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, &PreviewResult{
			RunID:       runID,
			CollectedAt: now.UTC(),
			EventCount:  table.Len(),
			Head:        table.Head(PreviewRows),
			Tail:        table.Tail(PreviewRows),
		})
	case FormatText:
		return writeText(w, table)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *PreviewResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText prints the head and tail as aligned columns, row positions first
func writeText(w io.Writer, table *event.Table) error {
	if table.Len() == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	if err := writeRows(w, table.Head(PreviewRows), 0); err != nil {
		return err
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))

	tail := table.Tail(PreviewRows)
	if err := writeRows(w, tail, table.Len()-len(tail)); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n[%s rows x %d columns]\n", humanize.Comma(int64(table.Len())), len(event.Columns))
	return nil
}

func writeRows(w io.Writer, records []event.Record, offset int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(event.Columns, "\t"))
	for i, rec := range records {
		cells := rec.Strings()
		for j, c := range cells {
			if c == "" {
				cells[j] = "None"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\n", offset+i, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// WriteSummary prints a one-paragraph account of the run
func WriteSummary(w io.Writer, result *collector.Result, written int, dest string) {
	fmt.Fprintf(w, "Collected %s from %s in %s",
		english.Plural(result.Table.Len(), "event", ""),
		english.Plural(len(result.Weeks), "week", ""),
		result.Duration.Round(time.Millisecond))
	if len(result.Failed) > 0 {
		fmt.Fprintf(w, " (%s skipped)", english.Plural(len(result.Failed), "week", ""))
	}
	fmt.Fprintln(w)

	if dest != "" {
		fmt.Fprintf(w, "Wrote %s to %s\n", english.Plural(written, "row", ""), dest)
	}
	for _, f := range result.Failed {
		fmt.Fprintf(w, "  skipped %s: %v\n", f.Week, f.Err)
	}
}
