package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mkulikov/SST-bot/internal/domain"
)

// RedisRepo implements Repo as one JSON document per chat, mirroring the
// document-store deployment shape. A set of chat IDs serves as the index for
// full scans.
type RedisRepo struct{ rdb *redis.Client }

const redisIndexKey = "users"

// userDoc is the stored document.
type userDoc struct {
	Time      string `json:"time"`
	Enabled   bool   `json:"enabled"`
	Stations  []int  `json:"stations"`
	Lang      string `json:"lang"`
	CreatedAt int64  `json:"created_at"`
}

// OpenRedis connects to Redis at addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string) (*RedisRepo, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisRepo{rdb: rdb}, nil
}

// Close releases the client's connections.
func (r *RedisRepo) Close() error {
	return r.rdb.Close()
}

func userKey(chatID int64) string {
	return "user:" + strconv.FormatInt(chatID, 10)
}

func (r *RedisRepo) getDoc(ctx context.Context, chatID int64) (*userDoc, error) {
	raw, err := r.rdb.Get(ctx, userKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc userDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("chat %d: decode document: %w", chatID, err)
	}
	return &doc, nil
}

func (r *RedisRepo) putDoc(ctx context.Context, chatID int64, doc *userDoc) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, userKey(chatID), raw, 0)
	pipe.SAdd(ctx, redisIndexKey, chatID)
	_, err = pipe.Exec(ctx)
	return err
}

// mutate applies fn to the existing document and writes it back. Commands for
// the same chat are handled one at a time, so read-modify-write is safe here.
func (r *RedisRepo) mutate(ctx context.Context, chatID int64, fn func(*userDoc)) error {
	doc, err := r.getDoc(ctx, chatID)
	if err != nil {
		return err
	}
	fn(doc)
	return r.putDoc(ctx, chatID, doc)
}

// EnsureUser creates the document with defaults, or refreshes the language of
// an existing one.
func (r *RedisRepo) EnsureUser(ctx context.Context, chatID int64, lang string) error {
	if lang == "" {
		lang = DefaultLang
	}
	doc, err := r.getDoc(ctx, chatID)
	if errors.Is(err, ErrNotFound) {
		doc = &userDoc{
			Time:      DefaultTime,
			Enabled:   true,
			Stations:  []int{},
			Lang:      lang,
			CreatedAt: time.Now().UTC().Unix(),
		}
		return r.putDoc(ctx, chatID, doc)
	}
	if err != nil {
		return err
	}
	doc.Lang = lang
	return r.putDoc(ctx, chatID, doc)
}

// GetUser returns the user or ErrNotFound.
func (r *RedisRepo) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	doc, err := r.getDoc(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return docToUser(chatID, doc)
}

// SetTime updates the delivery time.
func (r *RedisRepo) SetTime(ctx context.Context, chatID int64, t domain.TimeOfDay) error {
	return r.mutate(ctx, chatID, func(d *userDoc) { d.Time = t.String() })
}

// SetEnabled toggles the delivery flag.
func (r *RedisRepo) SetEnabled(ctx context.Context, chatID int64, enabled bool) error {
	return r.mutate(ctx, chatID, func(d *userDoc) { d.Enabled = enabled })
}

// AddStation appends the station to the document's array unless present.
func (r *RedisRepo) AddStation(ctx context.Context, chatID int64, station int) error {
	return r.mutate(ctx, chatID, func(d *userDoc) {
		for _, s := range d.Stations {
			if s == station {
				return
			}
		}
		d.Stations = append(d.Stations, station)
	})
}

// RemoveStation removes the station from the array; absent is a no-op.
func (r *RedisRepo) RemoveStation(ctx context.Context, chatID int64, station int) error {
	return r.mutate(ctx, chatID, func(d *userDoc) {
		kept := d.Stations[:0]
		for _, s := range d.Stations {
			if s != station {
				kept = append(kept, s)
			}
		}
		d.Stations = kept
	})
}

// ClearStations empties the array.
func (r *RedisRepo) ClearStations(ctx context.Context, chatID int64) error {
	return r.mutate(ctx, chatID, func(d *userDoc) { d.Stations = []int{} })
}

// ListStations returns the chat's stations in array (insertion) order.
func (r *RedisRepo) ListStations(ctx context.Context, chatID int64) ([]int, error) {
	doc, err := r.getDoc(ctx, chatID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Stations, nil
}

// ListEnabled returns every user with delivery enabled.
func (r *RedisRepo) ListEnabled(ctx context.Context) ([]domain.User, error) {
	return r.scanUsers(ctx, func(u *domain.User) bool { return u.Enabled })
}

// ListEnabledAt returns enabled users whose delivery time equals t.
func (r *RedisRepo) ListEnabledAt(ctx context.Context, t domain.TimeOfDay) ([]domain.User, error) {
	return r.scanUsers(ctx, func(u *domain.User) bool { return u.Enabled && u.Time == t })
}

func (r *RedisRepo) scanUsers(ctx context.Context, keep func(*domain.User) bool) ([]domain.User, error) {
	ids, err := r.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}

	var users []domain.User
	for _, id := range ids {
		chatID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		doc, err := r.getDoc(ctx, chatID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		u, err := docToUser(chatID, doc)
		if err != nil {
			return nil, err
		}
		if keep(u) {
			users = append(users, *u)
		}
	}
	return users, nil
}

func docToUser(chatID int64, doc *userDoc) (*domain.User, error) {
	at, err := domain.ParseTimeOfDay(doc.Time)
	if err != nil {
		return nil, fmt.Errorf("chat %d: stored time %q: %w", chatID, doc.Time, err)
	}
	return &domain.User{
		ChatID:    chatID,
		Time:      at,
		Enabled:   doc.Enabled,
		Lang:      doc.Lang,
		CreatedAt: time.Unix(doc.CreatedAt, 0).UTC(),
	}, nil
}
