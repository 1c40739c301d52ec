package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/econcal/internal/event"
)

// Sink defines the interface for persisting a finished table
type Sink interface {
	// Save writes every row of the table
	Save(ctx context.Context, table *event.Table) error
}

// Format names a file output format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatICS  Format = "ics"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatJSON, FormatICS:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'csv', 'json' or 'ics')", s)
	}
}

// NewFileSink returns the file sink for format writing to path
func NewFileSink(format Format, path string) (Sink, error) {
	switch format {
	case FormatCSV:
		return &CSVFile{Path: path}, nil
	case FormatJSON:
		return &JSONFile{Path: path}, nil
	case FormatICS:
		return &ICSFile{Path: path}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// writeFileAtomic writes through a temporary file in the same directory and
// renames it into place, so a failed write never leaves a partial file.
func writeFileAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	if err := write(tmp); err != nil {
		tmp.Close() // nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving output into place: %w", err)
	}
	return nil
}
