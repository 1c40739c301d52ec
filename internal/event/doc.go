// Package event provides types for economic-calendar event records.
//
// A Record holds the seven columns extracted from one entry of the calendar
// widget's "events" list. Column values are kept exactly as the page encoded
// them using the Value union (null, string, number, or boolean), so nothing is
// coerced between kinds. Records are accumulated into a Table, which fixes the
// output column order used by every writer.
package event
