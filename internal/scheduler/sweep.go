package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkulikov/SST-bot/internal/domain"
)

// SweepSource is the store subset the sweep scheduler queries.
type SweepSource interface {
	ListEnabledAt(ctx context.Context, t domain.TimeOfDay) ([]domain.User, error)
}

// Sweep treats the store as the schedule: an external once-a-minute trigger
// calls Tick, which fires every enabled user whose delivery time matches the
// current minute. There is no in-process entry set, so Register, Unregister
// and RebuildAll have nothing to maintain.
type Sweep struct {
	store SweepSource
	fire  Firer
	loc   *time.Location
	log   *zap.Logger
}

// NewSweep creates the stateless scheduler for the webhook deployment.
func NewSweep(loc *time.Location, store SweepSource, fire Firer, log *zap.Logger) *Sweep {
	return &Sweep{store: store, fire: fire, loc: loc, log: log}
}

// Register only validates; the store row is the schedule entry.
func (s *Sweep) Register(chatID int64, at domain.TimeOfDay) error {
	if !at.Valid() {
		return domain.ErrInvalidTime
	}
	return nil
}

// Unregister is a no-op; the disabled flag in the store does the work.
func (s *Sweep) Unregister(int64) {}

// RebuildAll is a no-op; there is no derived state to reconstruct.
func (s *Sweep) RebuildAll(context.Context) error { return nil }

// Run blocks until ctx is done. Fires arrive through Tick.
func (s *Sweep) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Tick fires every user scheduled for the minute containing now. Deliveries
// run concurrently; one user's failure does not affect the others.
func (s *Sweep) Tick(ctx context.Context, now time.Time) {
	local := now.In(s.loc)
	at := domain.TimeOfDay{Hour: local.Hour(), Minute: local.Minute()}

	users, err := s.store.ListEnabledAt(ctx, at)
	if err != nil {
		s.log.Error("list due users failed", zap.Error(err))
		return
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			if err := s.fire.Deliver(ctx, chatID); err != nil {
				s.log.Error("scheduled delivery failed",
					zap.Int64("chat_id", chatID), zap.Error(err))
			}
		}(u.ChatID)
	}
	wg.Wait()
}
