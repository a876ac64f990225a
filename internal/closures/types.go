package closures

import "time"

// HolidayID identifies a fixed calendar holiday
type HolidayID string

const (
	ChristmasEve HolidayID = "christmas_eve"
	ChristmasDay HolidayID = "christmas_day"
	BoxingDay    HolidayID = "boxing_day"
	NewYearsEve  HolidayID = "new_years_eve"
	NewYearsDay  HolidayID = "new_years_day"
)

// FixedHolidays lists the supported holiday ids in display order
var FixedHolidays = []HolidayID{
	ChristmasEve,
	ChristmasDay,
	BoxingDay,
	NewYearsEve,
	NewYearsDay,
}

// LabelBankHoliday is the reason attached to every extra closure date
const LabelBankHoliday = "bank holiday"

// Window selects which closures are considered for a run
type Window string

const (
	// WindowWeek keeps closures inside the Monday-start week containing "now"
	WindowWeek Window = "week"
	// WindowYear keeps every closure in the current year and treats the
	// weekday as a recurring closure pattern
	WindowYear Window = "year"
)

// HolidayRule enables or disables one fixed holiday
type HolidayRule struct {
	ID      HolidayID
	Enabled bool
}

// Config is the closure configuration attached to an opening-times section
type Config struct {
	Holidays         map[HolidayID]bool
	BankHolidays     bool
	BankHolidayDates string // comma or newline separated YYYY-MM-DD values
	Window           Window
}

// Rules returns the fixed holiday rules in display order
func (c Config) Rules() []HolidayRule {
	rules := make([]HolidayRule, 0, len(FixedHolidays))
	for _, id := range FixedHolidays {
		rules = append(rules, HolidayRule{ID: id, Enabled: c.Holidays[id]})
	}
	return rules
}

// ClosureEntry is a single closed calendar date with its reason
type ClosureEntry struct {
	Date  time.Time
	Label string
}

// WeekdayClosure aggregates every closure that falls on one weekday
type WeekdayClosure struct {
	Reasons []string       // distinct labels, first-seen order
	Dates   []time.Time    // distinct contributing dates, ascending
	Entries []ClosureEntry // ascending by date
}

// WeekdayClosureMap groups closures by weekday name ("Monday".."Sunday")
type WeekdayClosureMap map[string]*WeekdayClosure

// Entries returns all grouped entries ordered by date
func (m WeekdayClosureMap) Entries() []ClosureEntry {
	var entries []ClosureEntry
	for _, wc := range m {
		entries = append(entries, wc.Entries...)
	}
	sortEntries(entries)
	return entries
}
