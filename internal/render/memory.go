package render

import (
	"fmt"
	"io"
	"strings"
)

// MemoryRow is a row of a MemoryTable
type MemoryRow struct {
	Day     string
	Open    string
	Close   string
	Classes []string
	Title   string
	Writes  int // number of cell rewrites, for inspection
}

// MemoryTable is an in-memory Target. It backs previews and tests.
type MemoryTable struct {
	Table   []*MemoryRow
	Note    string
	HasNote bool
}

// NewMemoryTable creates a table with one row per day name
func NewMemoryTable(days []string, open, close string) *MemoryTable {
	mt := &MemoryTable{HasNote: true}
	for _, d := range days {
		mt.Table = append(mt.Table, &MemoryRow{Day: d, Open: open, Close: close})
	}
	return mt
}

func (mt *MemoryTable) Rows() []Row {
	rows := make([]Row, len(mt.Table))
	for i, r := range mt.Table {
		rows[i] = Row{
			Day:      strings.TrimSpace(r.Day),
			Open:     r.Open,
			Close:    r.Close,
			HasTimes: true,
		}
	}
	return rows
}

func (mt *MemoryTable) SetClosed(index int, mark ClosedMark) {
	if index < 0 || index >= len(mt.Table) {
		return
	}
	r := mt.Table[index]
	if !r.HasClass(ClosedClass) {
		r.Classes = append(r.Classes, ClosedClass)
	}
	if mark.RewriteOpen {
		r.Open = ClosedText
		r.Writes++
	}
	if mark.RewriteClose {
		r.Close = ClosedText
		r.Writes++
	}
	r.Title = mark.Title
}

func (mt *MemoryTable) SetNote(text string) {
	if !mt.HasNote {
		return
	}
	mt.Note = text
}

// HasClass reports whether the row carries class
func (r *MemoryRow) HasClass(class string) bool {
	for _, c := range r.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// WriteTo prints the table as aligned text
func (mt *MemoryTable) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	for _, r := range mt.Table {
		fmt.Fprintf(&sb, "  %-10s | %-7s | %-7s", r.Day, r.Open, r.Close)
		if r.Title != "" {
			fmt.Fprintf(&sb, " | %s", r.Title)
		}
		sb.WriteString("\n")
	}
	if mt.Note != "" {
		fmt.Fprintf(&sb, "\n  %s\n", mt.Note)
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
