// Package scraper provides HTTP fetching and HTML extraction for economic-calendar weeks.
//
// The scraper package fetches the calendar page for one ISO week and extracts the
// events embedded in the calendar widget. The widget serializes its initial state
// as JSON into a data attribute; the extractor walks a fixed path of markup
// elements (CalendarPath) down to the widget, decodes that attribute and returns
// one event.Record per entry of its "events" list, in page order.
package scraper
