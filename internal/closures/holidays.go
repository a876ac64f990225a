package closures

import (
	"strings"
	"time"

	"github.com/username/opening-times/pkg/dateutil"
)

type fixedDate struct {
	month time.Month
	day   int
	label string
}

var fixedDates = map[HolidayID]fixedDate{
	ChristmasEve: {time.December, 24, "christmas eve"},
	ChristmasDay: {time.December, 25, "christmas day"},
	BoxingDay:    {time.December, 26, "boxing day"},
	NewYearsEve:  {time.December, 31, "new year's eve"},
	NewYearsDay:  {time.January, 1, "new year's day"},
}

// HolidayDate returns the date of a fixed holiday in the given year at
// midnight in loc. Unknown ids return false.
func HolidayDate(id HolidayID, year int, loc *time.Location) (time.Time, bool) {
	fd, ok := fixedDates[id]
	if !ok {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, fd.month, fd.day, 0, 0, 0, 0, loc), true
}

// HolidayLabel returns the reason label for a fixed holiday
func HolidayLabel(id HolidayID) string {
	return fixedDates[id].label
}

// ParseDateList splits raw on commas and newlines and parses each token as
// YYYY-MM-DD at midnight in loc. Empty and malformed tokens are dropped.
func ParseDateList(raw string, loc *time.Location) []time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	dates := make([]time.Time, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		date, err := dateutil.ParseISODate(token, loc)
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}
	return dates
}

// Dataset keys read from an opening-times section (data-* attributes
// without the prefix).
const (
	KeyChristmasEve     = "christmas-eve"
	KeyChristmasDay     = "christmas-day"
	KeyBoxingDay        = "boxing-day"
	KeyNewYearsEve      = "new-years-eve"
	KeyNewYearsDay      = "new-years-day"
	KeyBankHolidays     = "bank-holidays"
	KeyBankHolidayDates = "bank-holiday-dates"
	KeyWindow           = "window"
)

var datasetKeys = map[HolidayID]string{
	ChristmasEve: KeyChristmasEve,
	ChristmasDay: KeyChristmasDay,
	BoxingDay:    KeyBoxingDay,
	NewYearsEve:  KeyNewYearsEve,
	NewYearsDay:  KeyNewYearsDay,
}

// ConfigFromDataset builds a Config from section attributes. Missing keys
// leave the matching flag off; the window is "week" unless data-window
// says "year".
func ConfigFromDataset(ds map[string]string) Config {
	cfg := Config{
		Holidays: make(map[HolidayID]bool, len(FixedHolidays)),
		Window:   WindowWeek,
	}
	for _, id := range FixedHolidays {
		cfg.Holidays[id] = parseBool(ds[datasetKeys[id]])
	}
	cfg.BankHolidays = parseBool(ds[KeyBankHolidays])
	cfg.BankHolidayDates = ds[KeyBankHolidayDates]
	if strings.EqualFold(strings.TrimSpace(ds[KeyWindow]), string(WindowYear)) {
		cfg.Window = WindowYear
	}
	return cfg
}

func parseBool(val string) bool {
	val = strings.TrimSpace(val)
	return val == "true" || val == "1"
}
