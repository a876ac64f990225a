package calendar

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/username/opening-times/internal/closures"
	"github.com/username/opening-times/pkg/dateutil"
	"go.uber.org/zap"
)

// FileCalendar reads bank holidays from a local text file
type FileCalendar struct {
	filePath string
	logger   *zap.Logger

	mu      sync.Mutex
	loaded  bool
	entries []closures.ClosureEntry
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
	}
}

// Load loads calendar data from file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	var entries []closures.ClosureEntry
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: YYYY-MM-DD [label]
		// Example: 2025-08-25 summer bank holiday
		parts := strings.SplitN(line, " ", 2)

		date, err := dateutil.ParseISODate(parts[0], nil)
		if err != nil {
			fc.logger.Warn("Failed to parse date", zap.String("line", line), zap.Error(err))
			continue
		}

		label := closures.LabelBankHoliday
		if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
			label = strings.ToLower(strings.TrimSpace(parts[1]))
		}

		entries = append(entries, closures.ClosureEntry{Date: date, Label: label})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	fc.mu.Lock()
	fc.entries = entries
	fc.loaded = true
	fc.mu.Unlock()

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("holidays", len(entries)))

	return nil
}

// Holidays returns the file's holidays for year, loading the file on first use
func (fc *FileCalendar) Holidays(_ context.Context, year int) ([]closures.ClosureEntry, error) {
	fc.mu.Lock()
	loaded := fc.loaded
	fc.mu.Unlock()

	if !loaded {
		if err := fc.Load(); err != nil {
			return nil, err
		}
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	return filterYear(fc.entries, year), nil
}
