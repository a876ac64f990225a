package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/username/opening-times/internal/annotator"
	"go.uber.org/zap"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeRunner) Run(_ context.Context, now time.Time, _ bool) (*annotator.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	if f.err != nil {
		return nil, f.err
	}
	return &annotator.Result{SectionFound: true}, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestDaemon(runner Runner, now time.Time) *Daemon {
	d := NewScheduledDaemon(runner, 0, 5, time.UTC, zap.NewNop())
	d.now = func() time.Time { return now }
	return d
}

func TestCalculateNextRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before slot runs today",
			now:  time.Date(2024, 12, 23, 0, 1, 0, 0, time.UTC),
			want: time.Date(2024, 12, 23, 0, 5, 0, 0, time.UTC),
		},
		{
			name: "exactly at slot runs tomorrow",
			now:  time.Date(2024, 12, 23, 0, 5, 0, 0, time.UTC),
			want: time.Date(2024, 12, 24, 0, 5, 0, 0, time.UTC),
		},
		{
			name: "after slot runs tomorrow",
			now:  time.Date(2024, 12, 31, 18, 0, 0, 0, time.UTC),
			want: time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDaemon(&fakeRunner{}, tt.now)
			if got := d.calculateNextRun(); !got.Equal(tt.want) {
				t.Errorf("calculateNextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRunAt(t *testing.T) {
	d := newTestDaemon(&fakeRunner{}, time.Now())

	if !d.shouldRunAt(time.Date(2024, 12, 23, 0, 5, 30, 0, time.UTC)) {
		t.Error("shouldRunAt(00:05:30) = false, want true")
	}
	if d.shouldRunAt(time.Date(2024, 12, 23, 0, 6, 0, 0, time.UTC)) {
		t.Error("shouldRunAt(00:06) = true, want false")
	}

	// 00:05 in London during summer time is 23:05 UTC the day before.
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	d.location = london
	if !d.shouldRunAt(time.Date(2024, 6, 11, 23, 5, 0, 0, time.UTC)) {
		t.Error("shouldRunAt should honour the configured timezone")
	}
}

func TestRunRender_OncePerDay(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDaemon(runner, time.Date(2024, 12, 23, 0, 5, 0, 0, time.UTC))

	if err := d.runRender(); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}
	if err := d.runRender(); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}
	if runner.count() != 1 {
		t.Errorf("runner called %d times, want 1", runner.count())
	}

	if err := d.RunNow(); err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if runner.count() != 2 {
		t.Errorf("runner called %d times after RunNow, want 2", runner.count())
	}
}

func TestRunRender_NextDayInConfiguredZone(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	runner := &fakeRunner{}
	d := NewScheduledDaemon(runner, 0, 5, london, zap.NewNop())

	// 23:30 UTC on 10 June is already 11 June in London (BST).
	d.now = func() time.Time { return time.Date(2024, 6, 10, 22, 30, 0, 0, time.UTC) }
	if err := d.runRender(); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}
	d.now = func() time.Time { return time.Date(2024, 6, 10, 23, 30, 0, 0, time.UTC) }
	if err := d.runRender(); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}

	if runner.count() != 2 {
		t.Errorf("runner called %d times, want 2 (one per London day)", runner.count())
	}
}

func TestRunRender_FailureAllowsRetry(t *testing.T) {
	runner := &fakeRunner{err: errors.New("disk full")}
	d := newTestDaemon(runner, time.Date(2024, 12, 23, 0, 5, 0, 0, time.UTC))

	if err := d.runRender(); err == nil {
		t.Fatal("runRender() expected error")
	}
	if !d.lastRun.IsZero() {
		t.Errorf("lastRun = %v, want zero after failure", d.lastRun)
	}

	runner.mu.Lock()
	runner.err = nil
	runner.mu.Unlock()

	if err := d.runRender(); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}
	if runner.count() != 2 {
		t.Errorf("runner called %d times, want 2", runner.count())
	}
}

func TestStart_RendersWhenSlotPassedAndStops(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDaemon(runner, time.Date(2024, 12, 23, 9, 0, 0, 0, time.UTC))
	d.tick = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- d.Start() }()

	deadline := time.After(2 * time.Second)
	for runner.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial render did not happen")
		case <-time.After(5 * time.Millisecond):
		}
	}

	d.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}

	if runner.count() != 1 {
		t.Errorf("runner called %d times, want 1", runner.count())
	}
}

func TestStart_WaitsBeforeSlot(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDaemon(runner, time.Date(2024, 12, 23, 0, 1, 0, 0, time.UTC))
	d.tick = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- d.Start() }()

	time.Sleep(50 * time.Millisecond)
	d.Stop()
	<-done

	if runner.count() != 0 {
		t.Errorf("runner called %d times before the slot, want 0", runner.count())
	}
}
