package closures

import (
	"fmt"
	"strings"

	"github.com/username/opening-times/pkg/dateutil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayLabel title-cases a reason label for display ("new year's eve" ->
// "New Year's Eve").
func DisplayLabel(label string) string {
	return cases.Title(language.BritishEnglish).String(label)
}

// DisplayReasons returns the reasons of a weekday closure in display form
func DisplayReasons(wc *WeekdayClosure) []string {
	if wc == nil {
		return nil
	}
	out := make([]string, len(wc.Reasons))
	for i, r := range wc.Reasons {
		out[i] = DisplayLabel(r)
	}
	return out
}

// NoteText summarizes the closures as a single sentence, e.g.
// "Exceptions this week: Christmas Day (Wed 25 Dec), Boxing Day (Thu 26 Dec)."
// An empty map yields an empty string.
func NoteText(m WeekdayClosureMap, window Window) string {
	entries := m.Entries()
	if len(entries) == 0 {
		return ""
	}

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s (%s)", DisplayLabel(e.Label), dateutil.FormatShort(e.Date))
	}

	period := "this week"
	if window == WindowYear {
		period = "this year"
	}
	return fmt.Sprintf("Exceptions %s: %s.", period, strings.Join(parts, ", "))
}
