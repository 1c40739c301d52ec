// Package collector drives a scrape run: it decides which weeks to request,
// fetches and extracts each one, and accumulates the records into a single
// event.Table in week order.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/econcal/internal/event"
	"github.com/pfrederiksen/econcal/internal/logger"
	"github.com/pfrederiksen/econcal/internal/metrics"
	"github.com/pfrederiksen/econcal/internal/scraper"
	"github.com/pfrederiksen/econcal/internal/week"
	"golang.org/x/sync/errgroup"
)

// Mode selects which weeks a run covers
type Mode string

const (
	ModeCurrent    Mode = "current"
	ModeHistorical Mode = "historical"
)

// ErrorPolicy decides what a failed week does to the run
type ErrorPolicy string

const (
	// PolicyAbort stops the run on the first failed week and discards everything
	PolicyAbort ErrorPolicy = "abort"
	// PolicySkip logs the failed week and continues with the next
	PolicySkip ErrorPolicy = "skip"
)

// ParseErrorPolicy validates a policy name
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(s) {
	case PolicyAbort, PolicySkip:
		return ErrorPolicy(s), nil
	default:
		return "", fmt.Errorf("invalid error policy: %s (must be 'abort' or 'skip')", s)
	}
}

// Fetcher fetches and extracts one week
type Fetcher interface {
	FetchEvents(ctx context.Context, id week.ID) ([]event.Record, error)
}

// Options configures a Collector
type Options struct {
	Mode     Mode
	YearFrom int
	YearTo   int
	OnError  ErrorPolicy
	// Workers above 1 fetches weeks concurrently; output order is unchanged
	Workers int
	RunID   string
	// Now defaults to time.Now
	Now func() time.Time
}

// WeekFailure records a week skipped under PolicySkip
type WeekFailure struct {
	Week week.ID
	Err  error
}

// Result is the outcome of a run
type Result struct {
	RunID    string
	Table    *event.Table
	Weeks    []week.ID
	Failed   []WeekFailure
	Started  time.Time
	Duration time.Duration
}

// Collector runs the fetch/extract loop over a list of weeks
type Collector struct {
	fetcher Fetcher
	opts    Options
	metrics *metrics.Metrics
	log     *logger.Logger
}

// New creates a Collector. m and log may be nil.
func New(fetcher Fetcher, opts Options, m *metrics.Metrics, log *logger.Logger) *Collector {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OnError == "" {
		opts.OnError = PolicyAbort
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Mode == "" {
		opts.Mode = ModeCurrent
	}
	if log == nil {
		log = logger.Default()
	}
	if opts.RunID != "" {
		log = log.With(logger.Fields{"run_id": opts.RunID})
	}
	return &Collector{fetcher: fetcher, opts: opts, metrics: m, log: log}
}

// Weeks returns the weeks the run will request, in request order
func (c *Collector) Weeks() []week.ID {
	now := c.opts.Now().UTC()
	if c.opts.Mode == ModeHistorical {
		return week.Range(c.opts.YearFrom, c.opts.YearTo, now)
	}
	return []week.ID{week.Current(now)}
}

// Run fetches every week and returns the accumulated table.
// Under PolicyAbort the first failure returns an error and no table.
func (c *Collector) Run(ctx context.Context) (*Result, error) {
	start := c.opts.Now()
	weeks := c.Weeks()

	c.log.Info("starting run", logger.Fields{
		"mode":     string(c.opts.Mode),
		"weeks":    len(weeks),
		"on_error": string(c.opts.OnError),
		"workers":  c.opts.Workers,
	})

	result := &Result{
		RunID:   c.opts.RunID,
		Table:   event.NewTable(),
		Weeks:   weeks,
		Started: start,
	}

	var err error
	if c.opts.Workers > 1 && len(weeks) > 1 {
		err = c.runConcurrent(ctx, weeks, result)
	} else {
		err = c.runSequential(ctx, weeks, result)
	}
	if err != nil {
		return nil, err
	}

	result.Duration = c.opts.Now().Sub(start)
	c.metrics.MarkRunComplete(c.opts.Now())
	return result, nil
}

func (c *Collector) runSequential(ctx context.Context, weeks []week.ID, result *Result) error {
	for _, id := range weeks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled before %s: %w", id, err)
		}

		records, err := c.fetchWeek(ctx, id)
		if err != nil {
			if c.opts.OnError == PolicyAbort {
				return fmt.Errorf("week %s: %w", id, err)
			}
			result.Failed = append(result.Failed, WeekFailure{Week: id, Err: err})
			continue
		}
		result.Table.Append(records...)
	}
	return nil
}

func (c *Collector) runConcurrent(ctx context.Context, weeks []week.ID, result *Result) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	perWeek := make([][]event.Record, len(weeks))
	errs := make([]error, len(weeks))

	for i, id := range weeks {
		if gctx.Err() != nil {
			break
		}
		i, id := i, id
		g.Go(func() error {
			records, err := c.fetchWeek(gctx, id)
			if err != nil {
				if c.opts.OnError == PolicyAbort {
					return fmt.Errorf("week %s: %w", id, err)
				}
				errs[i] = err
				return nil
			}
			perWeek[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run cancelled: %w", err)
	}

	for i, id := range weeks {
		if errs[i] != nil {
			result.Failed = append(result.Failed, WeekFailure{Week: id, Err: errs[i]})
			continue
		}
		result.Table.Append(perWeek[i]...)
	}
	return nil
}

// fetchWeek fetches one week and records its metrics and log line
func (c *Collector) fetchWeek(ctx context.Context, id week.ID) ([]event.Record, error) {
	start := time.Now()
	records, err := c.fetcher.FetchEvents(ctx, id)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.ObserveWeek(classify(err), 0, elapsed)
		if c.opts.OnError == PolicySkip {
			c.log.Warn("skipping week", logger.Fields{"week": id.String(), "error": err.Error()})
		} else {
			c.log.Error("week failed", logger.Fields{"week": id.String()}, err)
		}
		return nil, err
	}

	c.metrics.ObserveWeek(metrics.OutcomeOK, len(records), elapsed)
	c.log.Info("fetched week", logger.Fields{
		"week":        id.String(),
		"records":     len(records),
		"duration_ms": elapsed.Milliseconds(),
	})
	return records, nil
}

// classify maps an error to a metrics outcome label
func classify(err error) string {
	var fetchErr *scraper.FetchError
	var extractErr *scraper.ExtractionError
	switch {
	case errors.As(err, &fetchErr):
		return metrics.OutcomeFetchError
	case errors.As(err, &extractErr):
		return metrics.OutcomeExtractError
	default:
		return metrics.OutcomeTransport
	}
}
