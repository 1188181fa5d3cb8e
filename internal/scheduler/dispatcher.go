// Package scheduler owns the per-user daily delivery schedule: at most one
// trigger per chat, firing within the configured minute, rebuilt from the
// store on startup.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkulikov/SST-bot/internal/domain"
	"github.com/mkulikov/SST-bot/internal/i18n"
	"github.com/mkulikov/SST-bot/internal/mgm"
	"github.com/mkulikov/SST-bot/internal/report"
)

// Sender delivers a text message to a chat. telegram.BotSender implements it.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Provider returns current station readings.
type Provider interface {
	Fetch(ctx context.Context) ([]mgm.Station, error)
}

// DeliveryStore is the subset of the store a delivery reads. store.Repo
// satisfies it.
type DeliveryStore interface {
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	ListStations(ctx context.Context, chatID int64) ([]int, error)
}

// Dispatcher generates and delivers one user's report. Failures are contained
// to the single call; other users' schedules are unaffected.
type Dispatcher struct {
	store    DeliveryStore
	provider Provider
	sender   Sender
	region   string
	timeout  time.Duration
	log      *zap.Logger
}

// NewDispatcher wires the fire pipeline: stations, fresh readings, report,
// send. Outbound work is bounded by a fixed timeout.
func NewDispatcher(store DeliveryStore, provider Provider, sender Sender, region string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		provider: provider,
		sender:   sender,
		region:   region,
		timeout:  10 * time.Second,
		log:      log,
	}
}

// Deliver builds and sends the report for one chat. A chat with no
// subscriptions is silently skipped; that is not a misconfiguration.
func (d *Dispatcher) Deliver(ctx context.Context, chatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	stations, err := d.store.ListStations(ctx, chatID)
	if err != nil {
		return fmt.Errorf("list stations: %w", err)
	}
	if len(stations) == 0 {
		return nil
	}

	lang := i18n.Fallback
	if u, err := d.store.GetUser(ctx, chatID); err == nil {
		lang = u.Lang
	} else {
		d.log.Warn("user lookup failed, using fallback language",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}

	data, err := d.provider.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch readings: %w", err)
	}

	text := report.Build(data, stations, d.region, lang)
	if err := d.sender.SendMessage(chatID, text); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
