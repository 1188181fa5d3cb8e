package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/mkulikov/SST-bot/internal/domain"
)

// SQLiteRepo implements Repo over an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the database at the given path, applies
// PRAGMAs, runs migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// EnsureUser creates the user row with defaults, or refreshes the language of
// an existing one.
func (r *SQLiteRepo) EnsureUser(ctx context.Context, chatID int64, lang string) error {
	if lang == "" {
		lang = DefaultLang
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (chat_id, lang, created_at) VALUES (?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET lang = excluded.lang`,
		chatID, lang, time.Now().UTC().Unix(),
	)
	return err
}

// GetUser returns the user or ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, time, enabled, lang, created_at
		FROM users
		WHERE chat_id = ?`,
		chatID,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// SetTime updates the delivery time.
func (r *SQLiteRepo) SetTime(ctx context.Context, chatID int64, t domain.TimeOfDay) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET time = ? WHERE chat_id = ?`, t.String(), chatID)
	return err
}

// SetEnabled toggles the delivery flag.
func (r *SQLiteRepo) SetEnabled(ctx context.Context, chatID int64, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET enabled = ? WHERE chat_id = ?`, boolToInt(enabled), chatID)
	return err
}

// AddStation subscribes the chat to a station; duplicates are ignored.
func (r *SQLiteRepo) AddStation(ctx context.Context, chatID int64, station int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO stations (chat_id, station) VALUES (?, ?)`, chatID, station)
	return err
}

// RemoveStation drops one subscription; absent rows are a no-op.
func (r *SQLiteRepo) RemoveStation(ctx context.Context, chatID int64, station int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM stations WHERE chat_id = ? AND station = ?`, chatID, station)
	return err
}

// ClearStations drops every subscription of the chat.
func (r *SQLiteRepo) ClearStations(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM stations WHERE chat_id = ?`, chatID)
	return err
}

// ListStations returns the chat's stations in insertion order.
func (r *SQLiteRepo) ListStations(ctx context.Context, chatID int64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT station FROM stations WHERE chat_id = ? ORDER BY rowid`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// ListEnabled returns every user with delivery enabled.
func (r *SQLiteRepo) ListEnabled(ctx context.Context) ([]domain.User, error) {
	return r.listUsers(ctx, `
		SELECT chat_id, time, enabled, lang, created_at
		FROM users
		WHERE enabled = 1`)
}

// ListEnabledAt returns enabled users whose delivery time equals t.
func (r *SQLiteRepo) ListEnabledAt(ctx context.Context, t domain.TimeOfDay) ([]domain.User, error) {
	return r.listUsers(ctx, `
		SELECT chat_id, time, enabled, lang, created_at
		FROM users
		WHERE enabled = 1 AND time = ?`, t.String())
}

func (r *SQLiteRepo) listUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		chatID     int64
		timeStr    string
		enabledInt int
		lang       string
		createdAt  int64
	)
	if err := row.Scan(&chatID, &timeStr, &enabledInt, &lang, &createdAt); err != nil {
		return nil, err
	}
	at, err := domain.ParseTimeOfDay(timeStr)
	if err != nil {
		return nil, fmt.Errorf("chat %d: stored time %q: %w", chatID, timeStr, err)
	}
	return &domain.User{
		ChatID:    chatID,
		Time:      at,
		Enabled:   enabledInt != 0,
		Lang:      lang,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
