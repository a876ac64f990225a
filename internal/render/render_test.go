package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/username/opening-times/internal/closures"
	"github.com/username/opening-times/pkg/dateutil"
)

func christmasWeek() closures.WeekdayClosureMap {
	cfg := closures.Config{
		Holidays: map[closures.HolidayID]bool{closures.ChristmasDay: true},
		Window:   closures.WindowWeek,
	}
	return closures.ResolveClosuresForCurrentWeek(cfg, time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC))
}

func TestApplyClosuresToTable_EmptyMapLeavesRowsUntouched(t *testing.T) {
	table := NewMemoryTable(dateutil.WeekdayNames, "09:00", "17:00")

	if n := ApplyClosuresToTable(table, closures.WeekdayClosureMap{}); n != 0 {
		t.Errorf("marked = %d, want 0", n)
	}
	for _, r := range table.Table {
		if r.Open != "09:00" || r.Close != "17:00" || len(r.Classes) != 0 || r.Title != "" {
			t.Errorf("row %s mutated: %+v", r.Day, r)
		}
	}
}

func TestApplyClosuresToTable_MarksMatchingRow(t *testing.T) {
	table := NewMemoryTable(dateutil.WeekdayNames, "09:00", "17:00")

	if n := ApplyClosuresToTable(table, christmasWeek()); n != 1 {
		t.Fatalf("marked = %d, want 1", n)
	}

	for _, r := range table.Table {
		if r.Day != "Wednesday" {
			if r.HasClass(ClosedClass) || r.Open != "09:00" {
				t.Errorf("row %s should be untouched: %+v", r.Day, r)
			}
			continue
		}
		if r.Open != ClosedText || r.Close != ClosedText {
			t.Errorf("Wednesday cells = %q/%q, want Closed", r.Open, r.Close)
		}
		if !r.HasClass(ClosedClass) {
			t.Error("Wednesday missing closed class")
		}
		if r.Title != "Closed on Wed 25 Dec (Christmas Day)" {
			t.Errorf("Wednesday title = %q", r.Title)
		}
	}
}

func TestApplyClosuresToTable_AlreadyClosedNotRewritten(t *testing.T) {
	table := NewMemoryTable(dateutil.WeekdayNames, "09:00", "17:00")
	wed := table.Table[2]
	wed.Open = "Closed"
	wed.Close = " closed "

	ApplyClosuresToTable(table, christmasWeek())

	if wed.Writes != 0 {
		t.Errorf("Wednesday cells rewritten %d times, want 0", wed.Writes)
	}
	if wed.Open != "Closed" || wed.Close != " closed " {
		t.Errorf("Wednesday cells changed: %q/%q", wed.Open, wed.Close)
	}
	if !wed.HasClass(ClosedClass) || wed.Title == "" {
		t.Errorf("Wednesday should still get class and title: %+v", wed)
	}
}

func TestApplyClosuresToTable_Idempotent(t *testing.T) {
	table := NewMemoryTable(dateutil.WeekdayNames, "09:00", "17:00")
	m := christmasWeek()

	ApplyClosuresToTable(table, m)
	first := *table.Table[2]
	ApplyClosuresToTable(table, m)
	second := table.Table[2]

	if len(second.Classes) != 1 {
		t.Errorf("classes = %v, want exactly one closed class", second.Classes)
	}
	if second.Title != first.Title {
		t.Errorf("title changed: %q -> %q", first.Title, second.Title)
	}
	if second.Open != ClosedText || second.Close != ClosedText {
		t.Errorf("cells = %q/%q", second.Open, second.Close)
	}
	if second.Writes != 2 {
		t.Errorf("writes = %d, want 2 (second pass must not rewrite)", second.Writes)
	}
}

func TestApplyClosuresToTable_NilTarget(t *testing.T) {
	if n := ApplyClosuresToTable(nil, christmasWeek()); n != 0 {
		t.Errorf("marked = %d, want 0", n)
	}
	RenderExceptionsNote(nil, christmasWeek(), closures.WindowWeek)
}

func TestTooltip_MultipleDatesAndReasons(t *testing.T) {
	wc := closures.GroupByWeekday([]closures.ClosureEntry{
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Label: closures.LabelBankHoliday},
		{Date: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), Label: "christmas day"},
	})["Wednesday"]

	want := "Closed on Wed 3 Jan, Wed 25 Dec (Bank Holiday, Christmas Day)"
	if got := Tooltip(wc); got != want {
		t.Errorf("Tooltip() = %q, want %q", got, want)
	}
}

func TestRenderExceptionsNote(t *testing.T) {
	table := NewMemoryTable(dateutil.WeekdayNames, "09:00", "17:00")
	table.Note = "stale"

	RenderExceptionsNote(table, christmasWeek(), closures.WindowWeek)
	if table.Note != "Exceptions this week: Christmas Day (Wed 25 Dec)." {
		t.Errorf("note = %q", table.Note)
	}

	RenderExceptionsNote(table, closures.WeekdayClosureMap{}, closures.WindowWeek)
	if table.Note != "" {
		t.Errorf("note = %q, want cleared", table.Note)
	}

	table.HasNote = false
	RenderExceptionsNote(table, christmasWeek(), closures.WindowWeek)
	if table.Note != "" {
		t.Errorf("note written without a note element: %q", table.Note)
	}
}

func TestMemoryTable_WriteTo(t *testing.T) {
	table := NewMemoryTable([]string{"Monday"}, "09:00", "17:00")
	var buf bytes.Buffer
	if _, err := table.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Monday") || !strings.Contains(buf.String(), "09:00") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
