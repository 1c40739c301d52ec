package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/econcal/internal/event"
	"github.com/pfrederiksen/econcal/internal/logger"
	"github.com/pfrederiksen/econcal/internal/week"
)

const (
	DefaultURLTemplate = "https://www.babypips.com/economic-calendar?week={week}"
	WeekPlaceholder    = "{week}"
	UserAgent          = "econcal/1.0 (github.com/pfrederiksen/econcal)"
	Timeout            = 30 * time.Second
)

// Response is the raw answer for one week's page
type Response struct {
	Week       week.ID
	URL        string
	StatusCode int
	Body       string
}

// Scraper handles fetching and parsing economic-calendar weeks
type Scraper struct {
	client      *http.Client
	urlTemplate string
	log         *logger.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithURLTemplate overrides the page URL; WeekPlaceholder is replaced by the week identifier
func WithURLTemplate(tmpl string) Option {
	return func(s *Scraper) {
		if tmpl != "" {
			s.urlTemplate = tmpl
		}
	}
}

// WithTimeout overrides the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		if c != nil {
			s.client = c
		}
	}
}

// WithLogger sets the logger used for per-request debug output
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		urlTemplate: DefaultURLTemplate,
		log:         logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the page URL for a week
func (s *Scraper) URL(id week.ID) string {
	return strings.ReplaceAll(s.urlTemplate, WeekPlaceholder, id.String())
}

// Fetch issues one GET for the week's page and returns the status and body
// without interpreting them
func (s *Scraper) Fetch(ctx context.Context, id week.ID) (*Response, error) {
	url := s.URL(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	s.log.Debug("fetched calendar page", logger.Fields{
		"week":        id.String(),
		"url":         url,
		"status":      resp.StatusCode,
		"bytes":       len(body),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &Response{
		Week:       id,
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}

// FetchEvents fetches one week and extracts its events
func (s *Scraper) FetchEvents(ctx context.Context, id week.ID) ([]event.Record, error) {
	resp, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return Extract(resp)
}
