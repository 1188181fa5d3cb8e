package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mkulikov/SST-bot/internal/domain"
)

type fakeFirer struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (f *fakeFirer) Deliver(_ context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, chatID)
	return f.err
}

func (f *fakeFirer) fired() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.calls...)
}

type fakeUsers struct{ users []domain.User }

func (f *fakeUsers) ListEnabled(context.Context) ([]domain.User, error) {
	var enabled []domain.User
	for _, u := range f.users {
		if u.Enabled {
			enabled = append(enabled, u)
		}
	}
	return enabled, nil
}

func at(h, m int) domain.TimeOfDay { return domain.TimeOfDay{Hour: h, Minute: m} }

// nextFire computes when the chat's entry would fire after base.
func nextFire(t *testing.T, c *Cron, chatID int64, base time.Time) time.Time {
	t.Helper()
	c.mu.Lock()
	id, ok := c.entries[chatID]
	c.mu.Unlock()
	if !ok {
		t.Fatalf("no entry for chat %d", chatID)
	}
	return c.cron.Entry(id).Schedule.Next(base)
}

func TestRegisterReplacesEntry(t *testing.T) {
	c := NewCron(time.UTC, &fakeUsers{}, &fakeFirer{}, zap.NewNop())

	if err := c.Register(1, at(9, 0)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Register(1, at(10, 30)); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	if got := len(c.cron.Entries()); got != 1 {
		t.Fatalf("want exactly 1 cron entry, got %d", got)
	}
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	next := nextFire(t, c, 1, base)
	if next.Hour() != 10 || next.Minute() != 30 {
		t.Fatalf("entry should fire at 10:30, got %v", next)
	}
}

func TestRegisterRejectsInvalidTime(t *testing.T) {
	c := NewCron(time.UTC, &fakeUsers{}, &fakeFirer{}, zap.NewNop())

	if err := c.Register(1, at(25, 0)); !errors.Is(err, domain.ErrInvalidTime) {
		t.Fatalf("want ErrInvalidTime, got %v", err)
	}
	if len(c.cron.Entries()) != 0 {
		t.Fatal("invalid register must not create an entry")
	}
}

func TestUnregisterUnknownChat(t *testing.T) {
	c := NewCron(time.UTC, &fakeUsers{}, &fakeFirer{}, zap.NewNop())
	if err := c.Register(1, at(9, 0)); err != nil {
		t.Fatalf("register: %v", err)
	}

	c.Unregister(999) // must not panic or touch other entries

	if got := len(c.cron.Entries()); got != 1 {
		t.Fatalf("entry for chat 1 should survive, have %d entries", got)
	}

	c.Unregister(1)
	c.Unregister(1) // second removal is a no-op
	if got := len(c.cron.Entries()); got != 0 {
		t.Fatalf("want 0 entries, got %d", got)
	}
}

func TestRebuildAll(t *testing.T) {
	users := &fakeUsers{users: []domain.User{
		{ChatID: 1, Enabled: true, Time: at(9, 0)},
		{ChatID: 2, Enabled: false, Time: at(8, 0)},
	}}
	c := NewCron(time.UTC, users, &fakeFirer{}, zap.NewNop())

	// A stale entry from before the rebuild must disappear.
	if err := c.Register(7, at(23, 0)); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := c.RebuildAll(context.Background()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if got := len(c.cron.Entries()); got != 1 {
		t.Fatalf("want exactly 1 entry after rebuild, got %d", got)
	}
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	next := nextFire(t, c, 1, base)
	if next.Hour() != 9 || next.Minute() != 0 {
		t.Fatalf("chat 1 should fire at 09:00, got %v", next)
	}
}

func TestRebuildAllEmptyStore(t *testing.T) {
	c := NewCron(time.UTC, &fakeUsers{}, &fakeFirer{}, zap.NewNop())
	if err := c.RebuildAll(context.Background()); err != nil {
		t.Fatalf("rebuild over empty store: %v", err)
	}
	if len(c.cron.Entries()) != 0 {
		t.Fatal("no entries expected")
	}
}
