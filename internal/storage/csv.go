package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/pfrederiksen/econcal/internal/event"
)

// DefaultCSVPath matches the file name the calendar dumps have always used
const DefaultCSVPath = "./events.csv"

// CSVFile writes the table as CSV to Path
type CSVFile struct {
	Path string
}

// Save writes the table to the CSV file
func (c *CSVFile) Save(ctx context.Context, table *event.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(c.Path, func(f *os.File) error {
		return WriteCSV(f, table)
	})
}

// WriteCSV writes the header row and one row per record, without an index column
func WriteCSV(w io.Writer, table *event.Table) error {
	records := table.Records()
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("encoding CSV: %w", err)
	}
	return nil
}

// ReadCSV reads a file produced by WriteCSV back into a table.
// Cells are decoded with event.ParseValue.
func ReadCSV(r io.Reader) (*event.Table, error) {
	var records []event.Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("decoding CSV: %w", err)
	}
	return event.NewTable(records...), nil
}

// LoadCSV reads a CSV file from disk
func LoadCSV(path string) (*event.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}
