package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/username/opening-times/internal/closures"
	"github.com/username/opening-times/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	DefaultGovUKURL      = "https://www.gov.uk/bank-holidays.json"
	DefaultGovUKDivision = "england-and-wales"
	defaultHTTPTimeout   = 10 * time.Second
	defaultCacheTTL      = 24 * time.Hour
)

// GovUKCalendar fetches bank holidays from the GOV.UK JSON feed
type GovUKCalendar struct {
	httpClient *http.Client
	logger     *zap.Logger
	url        string
	division   string
	cacheTTL   time.Duration

	cacheMu   sync.RWMutex
	cached    []closures.ClosureEntry
	fetchedAt time.Time
	now       func() time.Time
}

// govUKFeed represents the bank-holidays.json structure:
// {"england-and-wales": {"division": "...", "events": [...]}, ...}
type govUKFeed map[string]govUKDivision

type govUKDivision struct {
	Division string       `json:"division"`
	Events   []govUKEvent `json:"events"`
}

type govUKEvent struct {
	Title   string `json:"title"`
	Date    string `json:"date"` // YYYY-MM-DD
	Notes   string `json:"notes"`
	Bunting bool   `json:"bunting"`
}

// NewGovUKCalendar creates a new GovUKCalendar instance
func NewGovUKCalendar(url, division string, cacheTTL time.Duration, logger *zap.Logger) *GovUKCalendar {
	if url == "" {
		url = DefaultGovUKURL
	}
	if division == "" {
		division = DefaultGovUKDivision
	}
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	return &GovUKCalendar{
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:   logger,
		url:      url,
		division: division,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Holidays returns the division's bank holidays for year
func (c *GovUKCalendar) Holidays(ctx context.Context, year int) ([]closures.ClosureEntry, error) {
	c.cacheMu.RLock()
	if c.cached != nil && c.now().Sub(c.fetchedAt) < c.cacheTTL {
		entries := filterYear(c.cached, year)
		c.cacheMu.RUnlock()
		c.logger.Debug("Using cached bank holidays", zap.Int("year", year))
		return entries, nil
	}
	c.cacheMu.RUnlock()

	entries, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.cacheMu.Lock()
	c.cached = entries
	c.fetchedAt = c.now()
	c.cacheMu.Unlock()

	return filterYear(entries, year), nil
}

func (c *GovUKCalendar) fetch(ctx context.Context) ([]closures.ClosureEntry, error) {
	c.logger.Debug("Fetching bank holidays",
		zap.String("url", c.url),
		zap.String("division", c.division))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bank holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bank holiday feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	entries, err := c.parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bank holiday feed: %w", err)
	}

	c.logger.Info("Bank holidays fetched",
		zap.String("division", c.division),
		zap.Int("events", len(entries)))

	return entries, nil
}

func (c *GovUKCalendar) parseFeed(body []byte) ([]closures.ClosureEntry, error) {
	var feed govUKFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, err
	}

	division, ok := feed[c.division]
	if !ok {
		return nil, fmt.Errorf("division %q not found in feed", c.division)
	}

	entries := make([]closures.ClosureEntry, 0, len(division.Events))
	for _, ev := range division.Events {
		date, err := dateutil.ParseISODate(strings.TrimSpace(ev.Date), time.UTC)
		if err != nil {
			c.logger.Warn("Skipping bank holiday with invalid date",
				zap.String("title", ev.Title),
				zap.String("date", ev.Date))
			continue
		}
		label := strings.ToLower(strings.TrimSpace(ev.Title))
		if label == "" {
			label = closures.LabelBankHoliday
		}
		entries = append(entries, closures.ClosureEntry{Date: dateOnly(date), Label: label})
	}

	return entries, nil
}
