package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/econcal/internal/event"
)

// JSONFile writes the table as a JSON array of event objects to Path
type JSONFile struct {
	Path string
}

// Save writes the table to the JSON file
func (j *JSONFile) Save(ctx context.Context, table *event.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(j.Path, func(f *os.File) error {
		return WriteJSON(f, table)
	})
}

// WriteJSON encodes the records using the calendar payload's key names
func WriteJSON(w io.Writer, table *event.Table) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(table.Records()); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
