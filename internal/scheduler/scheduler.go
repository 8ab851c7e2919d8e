package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds a single run of any scheduled job
const jobTimeout = 5 * time.Minute

// PollFunc is triggered for a user on every tick of their polling rate
type PollFunc func(ctx context.Context, userID int64)

// Cron keeps one recurring polling entry per user plus global jobs
type Cron struct {
	cron      *cron.Cron
	schedules repository.ScheduleRepository
	logger    *zap.Logger

	mu      sync.Mutex
	entries map[int64]cron.EntryID
	poll    PollFunc
	baseCtx context.Context
}

// New creates a scheduler evaluating cron specs in loc
func New(schedules repository.ScheduleRepository, loc *time.Location, logger *zap.Logger) *Cron {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	return &Cron{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		schedules: schedules,
		logger:    logger,
		entries:   make(map[int64]cron.EntryID),
		baseCtx:   context.Background(),
	}
}

// SetPollFunc sets the function run for users on their polling rate
func (c *Cron) SetPollFunc(poll PollFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.poll = poll
}

// Put stores the rate and replaces the user's polling entry
func (c *Cron) Put(ctx context.Context, userID int64, rate domain.Rate) error {
	if err := c.schedules.Save(ctx, domain.Schedule{UserID: userID, Rate: rate}); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	c.schedule(userID, rate)

	c.logger.Info("Polling scheduled",
		zap.Int64("user_id", userID),
		zap.String("rate", rate.String()),
	)
	return nil
}

// Exists reports whether the user has a polling entry
func (c *Cron) Exists(_ context.Context, userID int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[userID]
	return ok, nil
}

// Delete removes the user's polling entry and stored rate
func (c *Cron) Delete(ctx context.Context, userID int64) error {
	c.mu.Lock()
	if id, ok := c.entries[userID]; ok {
		c.cron.Remove(id)
		delete(c.entries, userID)
	}
	c.mu.Unlock()

	if err := c.schedules.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

// Restore recreates the polling entries of all stored schedules
func (c *Cron) Restore(ctx context.Context) error {
	schedules, err := c.schedules.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}

	for _, s := range schedules {
		c.schedule(s.UserID, s.Rate)
	}

	c.logger.Info("Polling schedules restored", zap.Int("count", len(schedules)))
	return nil
}

// AddJob runs job on a cron spec with seconds, e.g. "0 0 10 * * 1"
func (c *Cron) AddJob(spec, name string, job func(ctx context.Context) error) error {
	_, err := c.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(c.context(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			c.logger.Error("Scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		c.logger.Info("Scheduled job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("invalid spec %q for job %s: %w", spec, name, err)
	}
	return nil
}

// Start begins running entries; jobs get contexts derived from ctx
func (c *Cron) Start(ctx context.Context) {
	c.mu.Lock()
	c.baseCtx = ctx
	c.mu.Unlock()
	c.cron.Start()
}

// Stop waits for running jobs to finish
func (c *Cron) Stop() {
	<-c.cron.Stop().Done()
}

func (c *Cron) schedule(userID int64, rate domain.Rate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.entries[userID]; ok {
		c.cron.Remove(id)
	}
	c.entries[userID] = c.cron.Schedule(cron.Every(rate.Interval()), cron.FuncJob(func() {
		c.run(userID)
	}))
}

func (c *Cron) run(userID int64) {
	c.mu.Lock()
	poll := c.poll
	c.mu.Unlock()

	if poll == nil {
		c.logger.Warn("No poll function set", zap.Int64("user_id", userID))
		return
	}

	ctx, cancel := context.WithTimeout(c.context(), jobTimeout)
	defer cancel()
	poll(ctx, userID)
}

func (c *Cron) context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseCtx
}
