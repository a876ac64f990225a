// Package render applies resolved closures to an opening-times table.
package render

import (
	"fmt"
	"strings"

	"github.com/username/opening-times/internal/closures"
	"github.com/username/opening-times/pkg/dateutil"
)

const (
	// ClosedText replaces the open and close times of a closed day
	ClosedText = "Closed"
	// ClosedClass marks a closed row
	ClosedClass = "closed"
)

// Row is one data row of the table (the header row is never exposed)
type Row struct {
	Day      string // trimmed text of the first cell
	Open     string
	Close    string
	HasTimes bool // false when the open or close cell is missing
}

// ClosedMark describes how a row should be marked closed
type ClosedMark struct {
	Title        string
	RewriteOpen  bool
	RewriteClose bool
}

// Target is a table-like render target. Implementations must tolerate a
// missing table (no rows) and a missing note element (SetNote no-op).
type Target interface {
	Rows() []Row
	SetClosed(index int, mark ClosedMark)
	SetNote(text string)
}

// ApplyClosuresToTable marks every row whose day has a closure. Rows
// without a closure are left as they are. Safe to call repeatedly.
func ApplyClosuresToTable(t Target, m closures.WeekdayClosureMap) int {
	if t == nil || len(m) == 0 {
		return 0
	}

	marked := 0
	for i, row := range t.Rows() {
		wc, ok := m[row.Day]
		if !ok || !row.HasTimes {
			continue
		}
		t.SetClosed(i, ClosedMark{
			Title:        Tooltip(wc),
			RewriteOpen:  !IsClosedText(row.Open),
			RewriteClose: !IsClosedText(row.Close),
		})
		marked++
	}
	return marked
}

// RenderExceptionsNote writes the summary sentence, clearing the note when
// nothing applies.
func RenderExceptionsNote(t Target, m closures.WeekdayClosureMap, window closures.Window) {
	if t == nil {
		return
	}
	t.SetNote(closures.NoteText(m, window))
}

// Tooltip builds the row title, e.g. "Closed on Wed 25 Dec (Christmas Day)"
func Tooltip(wc *closures.WeekdayClosure) string {
	if wc == nil {
		return ""
	}
	dates := make([]string, len(wc.Dates))
	for i, d := range wc.Dates {
		dates[i] = dateutil.FormatShort(d)
	}
	return fmt.Sprintf("Closed on %s (%s)",
		strings.Join(dates, ", "),
		strings.Join(closures.DisplayReasons(wc), ", "))
}

// IsClosedText reports whether a cell already reads "closed"
func IsClosedText(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), ClosedText)
}
