package calendar

import (
	"context"
	"fmt"

	"github.com/username/opening-times/internal/closures"
	"go.uber.org/zap"
)

// CompositeCalendar implements Source with fallback strategy
// Primary: GovUKCalendar (feed)
// Fallback: FileCalendar (local file)
type CompositeCalendar struct {
	primary  Source
	fallback Source
	logger   *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, fallback Source, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Holidays returns the primary source's holidays, or the fallback's when the
// primary fails
func (cc *CompositeCalendar) Holidays(ctx context.Context, year int) ([]closures.ClosureEntry, error) {
	entries, err := cc.primary.Holidays(ctx, year)
	if err == nil {
		return entries, nil
	}

	cc.logger.Warn("Primary calendar failed, falling back",
		zap.Int("year", year),
		zap.Error(err))

	entries, fallbackErr := cc.fallback.Holidays(ctx, year)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}
	return entries, nil
}

// LoadFallback loads the fallback calendar (if FileCalendar)
func (cc *CompositeCalendar) LoadFallback() error {
	if fc, ok := cc.fallback.(*FileCalendar); ok {
		if err := fc.Load(); err != nil {
			return fmt.Errorf("failed to load fallback calendar: %w", err)
		}
		cc.logger.Info("Fallback calendar loaded successfully")
	}
	return nil
}
