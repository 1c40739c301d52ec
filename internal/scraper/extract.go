package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/econcal/internal/event"
)

// Extract turns a calendar page response into event records.
// A non-200 response yields a *FetchError; a page without the calendar
// widget or with an undecodable payload yields an *ExtractionError.
func Extract(resp *Response) ([]event.Record, error) {
	if resp == nil {
		return nil, &ExtractionError{Reason: "nil response"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: resp.URL, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return parseEvents(strings.NewReader(resp.Body))
}

// parseEvents extracts events from HTML
func parseEvents(r io.Reader) ([]event.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ExtractionError{Reason: "parsing HTML", Err: err}
	}

	widget, err := CalendarPath.Resolve(doc.Selection)
	if err != nil {
		return nil, err
	}

	props, ok := widget.Attr(PropsAttr)
	if !ok {
		return nil, &ExtractionError{Step: CalendarPath[len(CalendarPath)-1].String(), Reason: fmt.Sprintf("missing %s attribute", PropsAttr)}
	}

	return decodeEvents([]byte(props))
}

// decodeEvents decodes the widget props and projects each entry of "events"
func decodeEvents(props []byte) ([]event.Record, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(props, &payload); err != nil {
		return nil, &ExtractionError{Reason: "invalid calendar JSON", Err: err}
	}

	rawEvents, ok := payload["events"]
	if !ok {
		return nil, &ExtractionError{Reason: `calendar JSON has no "events" field`}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(rawEvents, &entries); err != nil || entries == nil {
		return nil, &ExtractionError{Reason: `calendar "events" is not a list`, Err: err}
	}

	records := make([]event.Record, 0, len(entries))
	for i, entry := range entries {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(entry, &obj); err != nil || obj == nil {
			if err == nil {
				err = event.ErrNotObject
			}
			return nil, &ExtractionError{Reason: fmt.Sprintf("decoding event %d", i), Err: err}
		}
		rec, err := event.DecodeRecord(obj)
		if err != nil {
			return nil, &ExtractionError{Reason: fmt.Sprintf("decoding event %d", i), Err: err}
		}
		records = append(records, rec)
	}

	return records, nil
}
