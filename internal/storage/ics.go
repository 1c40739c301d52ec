package storage

import (
	"context"
	"os"
	"time"

	"github.com/pfrederiksen/econcal/internal/calendar"
	"github.com/pfrederiksen/econcal/internal/event"
)

// ICSFile writes the table as an iCalendar file to Path
type ICSFile struct {
	Path string
	// Now stamps DTSTAMP; defaults to time.Now
	Now func() time.Time
}

// Save writes the table to the .ics file
func (i *ICSFile) Save(ctx context.Context, table *event.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	content := calendar.GenerateICS(table.Records(), now())
	return writeFileAtomic(i.Path, func(f *os.File) error {
		_, err := f.WriteString(content)
		return err
	})
}
