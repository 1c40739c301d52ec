// Package storage persists event tables.
//
// The primary output is a CSV file with the fixed header
// Date,Currency_Code,Impact,Actual,Forecast,Previous,All_Day and one row per
// record in accumulation order. JSON and iCalendar files and an SQLite
// database are available as additional sinks. Every sink implements Sink.
package storage
