package closures

import (
	"context"
	"sort"
	"time"

	"github.com/username/opening-times/pkg/dateutil"
	"go.uber.org/zap"
)

// HolidaySource supplies additional bank holidays for a year
type HolidaySource interface {
	Holidays(ctx context.Context, year int) ([]ClosureEntry, error)
}

// BuildClosures materializes the enabled fixed holidays for each year and,
// when bank holidays are enabled, the parsed extra dates. Dates are midnight
// in loc.
func BuildClosures(cfg Config, loc *time.Location, years ...int) []ClosureEntry {
	var entries []ClosureEntry

	for _, year := range years {
		for _, rule := range cfg.Rules() {
			if !rule.Enabled {
				continue
			}
			date, ok := HolidayDate(rule.ID, year, loc)
			if !ok {
				continue
			}
			entries = append(entries, ClosureEntry{Date: date, Label: HolidayLabel(rule.ID)})
		}
	}

	if cfg.BankHolidays {
		for _, date := range ParseDateList(cfg.BankHolidayDates, loc) {
			entries = append(entries, ClosureEntry{Date: date, Label: LabelBankHoliday})
		}
	}

	return entries
}

// GroupByWeekday groups entries by weekday name. An entry repeating the
// calendar date and label of an earlier one is dropped, so a feed that also
// lists Christmas Day does not double it. Reasons and dates are distinct.
func GroupByWeekday(entries []ClosureEntry) WeekdayClosureMap {
	sorted := make([]ClosureEntry, len(entries))
	copy(sorted, entries)
	sortEntries(sorted)

	grouped := make(WeekdayClosureMap)
	seen := make(map[string]bool, len(sorted))
	for _, entry := range sorted {
		key := entry.Date.Format(dateutil.ISODate) + "|" + entry.Label
		if seen[key] {
			continue
		}
		seen[key] = true

		day := dateutil.WeekdayName(entry.Date)
		wc, ok := grouped[day]
		if !ok {
			wc = &WeekdayClosure{}
			grouped[day] = wc
		}
		if !containsString(wc.Reasons, entry.Label) {
			wc.Reasons = append(wc.Reasons, entry.Label)
		}
		if !containsDay(wc.Dates, entry.Date) {
			wc.Dates = append(wc.Dates, entry.Date)
		}
		wc.Entries = append(wc.Entries, entry)
	}
	return grouped
}

// ResolveClosuresForCurrentWeek computes the closures visible for now using
// the configured window. It performs no I/O.
func ResolveClosuresForCurrentWeek(cfg Config, now time.Time) WeekdayClosureMap {
	entries := BuildClosures(cfg, now.Location(), windowYears(cfg.Window, now)...)
	return GroupByWeekday(FilterWindow(entries, cfg.Window, now))
}

// FilterWindow keeps the entries that fall inside the window around now
func FilterWindow(entries []ClosureEntry, window Window, now time.Time) []ClosureEntry {
	var kept []ClosureEntry
	switch window {
	case WindowYear:
		for _, e := range entries {
			if e.Date.Year() == now.Year() {
				kept = append(kept, e)
			}
		}
	default:
		start, end := dateutil.StartOfWeek(now), dateutil.EndOfWeek(now)
		for _, e := range entries {
			if dateutil.InRange(e.Date, start, end) {
				kept = append(kept, e)
			}
		}
	}
	return kept
}

// windowYears returns the calendar years the window touches. A Monday-start
// week can straddle New Year.
func windowYears(window Window, now time.Time) []int {
	if window == WindowYear {
		return []int{now.Year()}
	}
	startYear := dateutil.StartOfWeek(now).Year()
	endYear := dateutil.EndOfWeek(now).Year()
	if startYear == endYear {
		return []int{startYear}
	}
	return []int{startYear, endYear}
}

// Resolver resolves closures and merges in bank holidays from external
// sources.
type Resolver struct {
	sources []HolidaySource
	logger  *zap.Logger
}

// NewResolver creates a Resolver. Sources are consulted only when bank
// holidays are enabled.
func NewResolver(logger *zap.Logger, sources ...HolidaySource) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		sources: sources,
		logger:  logger,
	}
}

// Resolve computes the weekday closures for now. Source failures are logged
// and skipped; they never fail the render.
func (r *Resolver) Resolve(ctx context.Context, cfg Config, now time.Time) WeekdayClosureMap {
	years := windowYears(cfg.Window, now)
	entries := BuildClosures(cfg, now.Location(), years...)

	if cfg.BankHolidays {
		for _, src := range r.sources {
			for _, year := range years {
				extra, err := src.Holidays(ctx, year)
				if err != nil {
					r.logger.Warn("Bank holiday source failed, skipping",
						zap.Int("year", year),
						zap.Error(err))
					continue
				}
				for _, e := range extra {
					// Re-anchor to local midnight so weekday grouping and
					// the window check use the page's calendar.
					e.Date = time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, now.Location())
					entries = append(entries, e)
				}
			}
		}
	}

	visible := FilterWindow(entries, cfg.Window, now)
	result := GroupByWeekday(visible)

	r.logger.Debug("Closures resolved",
		zap.String("window", string(cfg.Window)),
		zap.Time("now", now),
		zap.Int("candidates", len(entries)),
		zap.Int("visible", len(visible)),
		zap.Int("weekdays", len(result)))

	return result
}

func sortEntries(entries []ClosureEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsDay(dates []time.Time, date time.Time) bool {
	for _, d := range dates {
		if dateutil.IsSameDay(d, date) {
			return true
		}
	}
	return false
}
