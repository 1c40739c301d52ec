package event

// Table is an ordered, append-only sequence of records.
// Duplicates are kept; rows appear in the order they were appended.
type Table struct {
	records []Record
}

// NewTable creates a table holding the given records
func NewTable(records ...Record) *Table {
	t := &Table{}
	t.Append(records...)
	return t
}

// Append adds records to the end of the table
func (t *Table) Append(records ...Record) {
	t.records = append(t.records, records...)
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of all rows in order
func (t *Table) Records() []Record {
	if t == nil {
		return []Record{}
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Head returns up to the first n rows
func (t *Table) Head(n int) []Record {
	all := t.Records()
	if n < 0 {
		n = 0
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// Tail returns up to the last n rows
func (t *Table) Tail(n int) []Record {
	all := t.Records()
	if n < 0 {
		n = 0
	}
	if n > len(all) {
		n = len(all)
	}
	return all[len(all)-n:]
}

// Filter returns a new table holding the rows for which keep returns true
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := &Table{}
	for _, r := range t.Records() {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}
