package store

import (
	"context"
	"errors"

	"github.com/mkulikov/SST-bot/internal/domain"
)

// ErrNotFound is returned when a user record does not exist.
var ErrNotFound = errors.New("user not found")

// Defaults applied when a user record is first created.
const (
	DefaultTime = "12:00"
	DefaultLang = "en"
)

// Repo defines storage operations for users and their station subscriptions.
//
// ListStations returns stations in insertion order; the 1-based positions
// accepted by /del index into exactly this order.
type Repo interface {
	// EnsureUser creates the user with defaults if absent; if present, only
	// the language is refreshed.
	EnsureUser(ctx context.Context, chatID int64, lang string) error
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	SetTime(ctx context.Context, chatID int64, t domain.TimeOfDay) error
	SetEnabled(ctx context.Context, chatID int64, enabled bool) error

	// AddStation is idempotent: re-adding an existing subscription is a no-op.
	AddStation(ctx context.Context, chatID int64, station int) error
	RemoveStation(ctx context.Context, chatID int64, station int) error
	ClearStations(ctx context.Context, chatID int64) error
	ListStations(ctx context.Context, chatID int64) ([]int, error)

	ListEnabled(ctx context.Context) ([]domain.User, error)
	ListEnabledAt(ctx context.Context, t domain.TimeOfDay) ([]domain.User, error)

	Close() error
}
