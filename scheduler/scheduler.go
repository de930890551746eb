// Package scheduler triggers offer runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

var timeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Scheduler manages a single cron job with timezone support. A run that is
// still going when the next tick fires causes that tick to be skipped, also
// across a reschedule.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	timeout  time.Duration
	running  atomic.Bool
	log      *slog.Logger
	mu       sync.Mutex
	entryID  cron.EntryID
	spec     string
	started  bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithJobTimeout bounds each scheduled run.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// NewScheduler creates a new scheduler for the given timezone.
func NewScheduler(timezone string, opts ...Option) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	logger := slogAdapter{log: slog.Default().With("component", "scheduler")}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		location: loc,
		timeout:  5 * time.Minute,
		log:      logger.log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Schedule replaces the current job. spec is a standard 5-field cron
// expression or a daily HH:MM time.
func (s *Scheduler) Schedule(spec string, fn func(ctx context.Context)) error {
	cronSpec, err := NormalizeSpec(spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Remove existing job if any
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}

	entryID, err := s.cron.AddFunc(cronSpec, s.guard(fn, s.timeout))
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	s.entryID = entryID
	s.spec = cronSpec

	return nil
}

// guard runs fn under a deadline unless another job of this scheduler is
// still running.
func (s *Scheduler) guard(fn func(ctx context.Context), timeout time.Duration) func() {
	return func() {
		if !s.running.CompareAndSwap(false, true) {
			s.log.Info("previous run still in progress, skipping tick")
			return
		}
		defer s.running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fn(ctx)
	}
}

// Spec returns the active cron expression, or "" when nothing is scheduled.
func (s *Scheduler) Spec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Next returns the next activation time, or the zero time when the scheduler
// is stopped or empty.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	ctx := s.cron.Stop()
	s.mu.Unlock()

	<-ctx.Done()
}

// NormalizeSpec validates spec and converts a daily HH:MM time into its cron
// form.
func NormalizeSpec(spec string) (string, error) {
	if hour, minute, err := parseTime(spec); err == nil {
		return buildCronSpec(hour, minute), nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return spec, nil
}

func parseTime(timeStr string) (int, int, error) {
	matches := timeRegex.FindStringSubmatch(timeStr)
	if len(matches) != 3 {
		return 0, 0, fmt.Errorf("invalid time format: %q (expected HH:MM)", timeStr)
	}

	hour, _ := strconv.Atoi(matches[1])
	minute, _ := strconv.Atoi(matches[2])

	return hour, minute, nil
}

func buildCronSpec(hour, minute int) string {
	// Cron format: minute hour day month weekday
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// slogAdapter routes cron's logging through slog.
type slogAdapter struct {
	log *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...any) {
	a.log.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.log.Error(msg, append(keysAndValues, "error", err)...)
}
