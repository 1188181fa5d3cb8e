package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mkulikov/SST-bot/internal/config"
	"github.com/mkulikov/SST-bot/internal/domain"
	"github.com/mkulikov/SST-bot/internal/scheduler"
)

// The HTTP client cuts any call at clientTimeout, long polls included. A hold
// at or past the client timeout makes every quiet poll die client-side and
// the update loop degrade to log-sleep-retry.
func TestPollHoldFitsClientTimeout(t *testing.T) {
	u := updateConfig()
	if hold := time.Duration(u.Timeout) * time.Second; hold >= clientTimeout {
		t.Fatalf("poll hold %v must finish inside the %v client timeout", hold, clientTimeout)
	}
	if u.Timeout <= 0 {
		t.Fatal("poll hold must keep long polling, not busy-poll")
	}
}

type tickSource struct{ calls int }

func (s *tickSource) ListEnabledAt(context.Context, domain.TimeOfDay) ([]domain.User, error) {
	s.calls++
	return nil, nil
}

type noopFirer struct{}

func (noopFirer) Deliver(context.Context, int64) error { return nil }

func tickApp(src *tickSource, token string) *App {
	cfg := config.Config{RunMode: config.ModeWebhook, TickToken: token}
	log := zap.NewNop()
	return &App{
		cfg:   cfg,
		log:   log,
		sweep: scheduler.NewSweep(time.UTC, src, noopFirer{}, log),
	}
}

func TestTickRequiresToken(t *testing.T) {
	src := &tickSource{}
	a := tickApp(src, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/tick", nil)
	rec := httptest.NewRecorder()
	a.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: want 401, got %d", rec.Code)
	}
	if src.calls != 0 {
		t.Fatal("unauthorized tick must not sweep")
	}

	req = httptest.NewRequest(http.MethodPost, "/tick", nil)
	req.Header.Set("X-Tick-Token", "wrong")
	rec = httptest.NewRecorder()
	a.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: want 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/tick", nil)
	req.Header.Set("X-Tick-Token", "s3cret")
	rec = httptest.NewRecorder()
	a.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("good token: want 200, got %d", rec.Code)
	}
	if src.calls != 1 {
		t.Fatalf("authorized tick should sweep once, got %d", src.calls)
	}
}

func TestTickWithoutConfiguredToken(t *testing.T) {
	src := &tickSource{}
	a := tickApp(src, "")

	req := httptest.NewRequest(http.MethodPost, "/tick", nil)
	rec := httptest.NewRecorder()
	a.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if src.calls != 1 {
		t.Fatalf("tick should sweep once, got %d", src.calls)
	}
}
