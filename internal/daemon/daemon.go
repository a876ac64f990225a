package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/username/opening-times/internal/annotator"
	"github.com/username/opening-times/pkg/dateutil"
	"go.uber.org/zap"
)

// Runner performs one annotation pass
type Runner interface {
	Run(ctx context.Context, now time.Time, dryRun bool) (*annotator.Result, error)
}

// Daemon re-renders the opening-times page once a day so the closures
// always match the current week
type Daemon struct {
	runner      Runner
	dailyHour   int // Hour to run daily render (0-23)
	dailyMinute int // Minute to run daily render (0-59)
	location    *time.Location
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	now         func() time.Time
	tick        time.Duration
	lastRun     time.Time  // Last successful render, zero before the first
	mu          sync.Mutex // Protect against concurrent runs
}

// NewScheduledDaemon creates a new daemon instance with daily schedule
func NewScheduledDaemon(runner Runner, dailyHour, dailyMinute int, location *time.Location, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	if location == nil {
		location = time.Local
	}

	return &Daemon{
		runner:      runner,
		dailyHour:   dailyHour,
		dailyMinute: dailyMinute,
		location:    location,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		now:         time.Now,
		tick:        time.Minute,
	}
}

// Start runs the scheduling loop until Stop is called or a signal arrives
func (d *Daemon) Start() error {
	d.logger.Info("Daemon started",
		zap.Int("daily_hour", d.dailyHour),
		zap.Int("daily_minute", d.dailyMinute),
		zap.String("timezone", d.location.String()))

	// Render immediately if today's slot already passed
	now := d.now().In(d.location)
	scheduledToday := time.Date(now.Year(), now.Month(), now.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, d.location)

	if !now.Before(scheduledToday) {
		d.logger.Info("Scheduled time already passed today, rendering now",
			zap.Time("scheduled_time", scheduledToday),
			zap.Time("current_time", now))
		if err := d.runRender(); err != nil {
			d.logger.Error("Initial render failed", zap.Error(err))
		}
	}

	nextRun := d.calculateNextRun()
	d.logger.Info("Next render scheduled",
		zap.Time("next_run", nextRun),
		zap.Duration("wait_duration", nextRun.Sub(d.now())))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			return nil

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.Stop()
			return nil

		case <-ticker.C:
			now := d.now()
			if !d.shouldRunAt(now) {
				continue
			}

			d.logger.Info("Starting scheduled render", zap.Time("time", now))
			if err := d.runRender(); err != nil {
				d.logger.Error("Render failed", zap.Error(err))
				continue
			}

			nextRun = d.calculateNextRun()
			d.logger.Info("Next render scheduled",
				zap.Time("next_run", nextRun),
				zap.Duration("wait_duration", nextRun.Sub(d.now())))
		}
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// RunNow triggers an immediate render, even if one already ran today
func (d *Daemon) RunNow() error {
	d.mu.Lock()
	d.lastRun = time.Time{}
	d.mu.Unlock()
	return d.runRender()
}

// calculateNextRun calculates the next scheduled run time
func (d *Daemon) calculateNextRun() time.Time {
	now := d.now().In(d.location)

	today := time.Date(now.Year(), now.Month(), now.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, d.location)

	// If target time already passed today, schedule for tomorrow
	if !now.Before(today) {
		return today.AddDate(0, 0, 1)
	}

	return today
}

// shouldRunAt checks if the render should run at the given time
func (d *Daemon) shouldRunAt(now time.Time) bool {
	local := now.In(d.location)
	return local.Hour() == d.dailyHour && local.Minute() == d.dailyMinute
}

// runRender executes one render for today. Protected with a mutex so a
// manual trigger and the schedule never overlap.
func (d *Daemon) runRender() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now().In(d.location)
	if !d.lastRun.IsZero() && dateutil.IsSameDay(d.lastRun, now) {
		d.logger.Debug("Already rendered today, skipping",
			zap.Time("last_run", d.lastRun))
		return nil
	}

	result, err := d.runner.Run(d.ctx, now, false)
	if err != nil {
		return fmt.Errorf("failed to render opening times: %w", err)
	}

	d.lastRun = now

	d.logger.Info("Render completed",
		zap.Bool("section_found", result.SectionFound),
		zap.Int("rows_marked", result.RowsMarked),
		zap.String("note", result.Note))

	return nil
}
