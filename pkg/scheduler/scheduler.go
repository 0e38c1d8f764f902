package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"
)

// AllRefresher refreshes every feed
type AllRefresher interface {
	RefreshAll(ctx context.Context)
	Wait()
}

// Config holds scheduler configuration
type Config struct {
	Schedule   string // cron expression or @every descriptor
	RunOnStart bool
	Logger     lgr.L
}

// Scheduler triggers a refresh of all feeds on a cron schedule. A tick is skipped if the
// refresh started by the previous one is still running.
type Scheduler struct {
	refresher  AllRefresher
	schedule   string
	runOnStart bool
	logger     lgr.L

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(refresher AllRefresher, cfg Config) *Scheduler {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 30m"
	}
	if cfg.Logger == nil {
		cfg.Logger = lgr.NoOp
	}
	return &Scheduler{
		refresher:  refresher,
		schedule:   cfg.Schedule,
		runOnStart: cfg.RunOnStart,
		logger:     cfg.Logger,
	}
}

// Start begins the scheduler, refreshes use ctx until Stop is called
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	clog := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)))

	id, err := c.AddFunc(s.schedule, func() {
		s.refresher.RefreshAll(ctx)
		s.refresher.Wait()
	})
	if err != nil {
		cancel()
		return fmt.Errorf("invalid refresh schedule %q: %w", s.schedule, err)
	}

	s.cron, s.cancel = c, cancel
	c.Start()
	s.logger.Logf("[INFO] scheduler started, refresh schedule %q", s.schedule)

	if s.runOnStart {
		// the wrapped job shares the skip-if-running guard with scheduled ticks
		go c.Entry(id).WrappedJob.Run()
	}
	return nil
}

// Stop stops scheduling, cancels refreshes in progress and waits for them to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}

	s.logger.Logf("[INFO] stopping scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	s.refresher.Wait()
	s.cron, s.cancel = nil, nil
	s.logger.Logf("[INFO] scheduler stopped")
}

// cronLogger adapts lgr.L to cron.Logger
type cronLogger struct {
	l lgr.L
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Logf("[DEBUG] cron: %s %v", msg, keysAndValues)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Logf("[WARN] cron: %s %v, %v", msg, keysAndValues, err)
}
