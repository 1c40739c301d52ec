package scraper

import (
	"fmt"
)

// FetchError is returned when the calendar page answers with a status other than 200
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("request was denied: %s returned status %d: %s", e.URL, e.StatusCode, truncate(e.Body, 200))
}

// ExtractionError is returned when the page does not have the expected
// structure or the embedded payload cannot be decoded
type ExtractionError struct {
	// Step is the markup step that failed, empty for payload errors
	Step   string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := "extracting events"
	if e.Step != "" {
		msg += fmt.Sprintf(" at %s", e.Step)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
