package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mkulikov/SST-bot/internal/domain"
)

// Scheduler maintains at most one daily trigger per chat. Two implementations
// exist: Cron keeps in-process entries and fires them itself; Sweep leaves the
// schedule in the store and fires from an external once-a-minute trigger.
type Scheduler interface {
	// Register installs or replaces the chat's daily trigger. Replacing never
	// double-fires and never leaves a stale-time trigger behind.
	Register(chatID int64, at domain.TimeOfDay) error
	// Unregister removes the chat's trigger; absent is a no-op.
	Unregister(chatID int64)
	// RebuildAll drops every trigger and re-registers all enabled users.
	RebuildAll(ctx context.Context) error
	// Run blocks until ctx is done.
	Run(ctx context.Context) error
}

// Firer performs one user's delivery. Dispatcher implements it.
type Firer interface {
	Deliver(ctx context.Context, chatID int64) error
}

// UserSource is the store subset the cron scheduler rebuilds from.
type UserSource interface {
	ListEnabled(ctx context.Context) ([]domain.User, error)
}

// Cron schedules one cron entry per enabled chat in the configured zone.
type Cron struct {
	cron  *cron.Cron
	users UserSource
	fire  Firer
	log   *zap.Logger

	mu      sync.Mutex
	entries map[int64]cron.EntryID
}

// NewCron creates an in-process scheduler; entries fire in loc's wall clock.
func NewCron(loc *time.Location, users UserSource, fire Firer, log *zap.Logger) *Cron {
	return &Cron{
		cron:    cron.New(cron.WithLocation(loc)),
		users:   users,
		fire:    fire,
		log:     log,
		entries: make(map[int64]cron.EntryID),
	}
}

// Register installs or replaces the daily entry for a chat. An in-flight
// delivery started from the old entry is left to finish; the next fire uses
// the new time.
func (c *Cron) Register(chatID int64, at domain.TimeOfDay) error {
	if !at.Valid() {
		return domain.ErrInvalidTime
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[chatID]; ok {
		c.cron.Remove(old)
	}
	id, err := c.cron.AddFunc(fmt.Sprintf("%d %d * * *", at.Minute, at.Hour), func() {
		if err := c.fire.Deliver(context.Background(), chatID); err != nil {
			c.log.Error("scheduled delivery failed",
				zap.Int64("chat_id", chatID), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add cron entry: %w", err)
	}
	c.entries[chatID] = id
	return nil
}

// Unregister removes the chat's entry if one exists.
func (c *Cron) Unregister(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.entries[chatID]
	if !ok {
		return
	}
	c.cron.Remove(id)
	delete(c.entries, chatID)
}

// RebuildAll clears every entry and re-registers all enabled users from the
// store. Called at startup; tolerates an empty user set.
func (c *Cron) RebuildAll(ctx context.Context) error {
	users, err := c.users.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list enabled users: %w", err)
	}

	c.mu.Lock()
	for chatID, id := range c.entries {
		c.cron.Remove(id)
		delete(c.entries, chatID)
	}
	c.mu.Unlock()

	for _, u := range users {
		if err := c.Register(u.ChatID, u.Time); err != nil {
			return fmt.Errorf("register chat %d: %w", u.ChatID, err)
		}
	}
	c.log.Info("schedule rebuilt", zap.Int("users", len(users)))
	return nil
}

// Run starts the cron loop and blocks until ctx is done, then waits for
// in-flight deliveries.
func (c *Cron) Run(ctx context.Context) error {
	c.cron.Start()
	<-ctx.Done()
	<-c.cron.Stop().Done()
	c.log.Info("scheduler stopped")
	return nil
}
