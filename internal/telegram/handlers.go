package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mkulikov/SST-bot/internal/domain"
	"github.com/mkulikov/SST-bot/internal/i18n"
	"github.com/mkulikov/SST-bot/internal/report"
	"github.com/mkulikov/SST-bot/internal/store"
)

// reply sends a text reply, logging a failed send instead of propagating it.
func (r *Router) reply(chatID int64, text string) {
	if err := r.sender.SendMessage(chatID, text); err != nil {
		r.log.Error("send reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) replyMarkdown(chatID int64, text string) {
	if err := r.sender.SendMarkdown(chatID, text); err != nil {
		r.log.Error("send reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// storeFailed logs a persistence error and still answers the user.
func (r *Router) storeFailed(chatID int64, lang, op string, err error) {
	r.log.Error(op+" failed", zap.Int64("chat_id", chatID), zap.Error(err))
	r.reply(chatID, i18n.T(lang, "internal_error"))
}

func (r *Router) handleStart(ctx context.Context, chatID int64, lang string) {
	if err := r.repo.EnsureUser(ctx, chatID, lang); err != nil {
		r.storeFailed(chatID, lang, "ensure user", err)
		return
	}
	// Re-arm the schedule for a returning enabled user.
	if u, err := r.repo.GetUser(ctx, chatID); err == nil && u.Enabled {
		if err := r.sched.Register(chatID, u.Time); err != nil {
			r.log.Error("register schedule failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
	r.reply(chatID, i18n.T(lang, "start", r.zone))
}

func (r *Router) handleTime(ctx context.Context, chatID int64, lang, arg string) {
	at, err := domain.ParseTimeOfDay(arg)
	if err != nil {
		r.reply(chatID, i18n.T(lang, "time_example"))
		return
	}
	if err := r.repo.EnsureUser(ctx, chatID, lang); err != nil {
		r.storeFailed(chatID, lang, "ensure user", err)
		return
	}
	if err := r.repo.SetTime(ctx, chatID, at); err != nil {
		r.storeFailed(chatID, lang, "set time", err)
		return
	}
	// The enabled flag gates schedule existence: a disabled user's new time
	// takes effect at the next /on.
	if u, err := r.repo.GetUser(ctx, chatID); err == nil && u.Enabled {
		if err := r.sched.Register(chatID, at); err != nil {
			r.log.Error("register schedule failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
	r.reply(chatID, i18n.T(lang, "time_set", at.String(), r.zone))
}

func (r *Router) handleAdd(ctx context.Context, chatID int64, lang, arg string) {
	station, err := strconv.Atoi(arg)
	if err != nil {
		r.reply(chatID, i18n.T(lang, "station_add_example"))
		return
	}
	if err := r.repo.EnsureUser(ctx, chatID, lang); err != nil {
		r.storeFailed(chatID, lang, "ensure user", err)
		return
	}
	if err := r.repo.AddStation(ctx, chatID, station); err != nil {
		r.storeFailed(chatID, lang, "add station", err)
		return
	}
	r.reply(chatID, i18n.T(lang, "station_added", station))
}

func (r *Router) handleDel(ctx context.Context, chatID int64, lang, arg string) {
	k, err := strconv.Atoi(arg)
	if err != nil {
		r.reply(chatID, i18n.T(lang, "station_del_example"))
		return
	}
	stations, err := r.repo.ListStations(ctx, chatID)
	if err != nil {
		r.storeFailed(chatID, lang, "list stations", err)
		return
	}
	// An out-of-range position shares the parse-failure reply.
	if k < 1 || k > len(stations) {
		r.reply(chatID, i18n.T(lang, "station_del_example"))
		return
	}
	station := stations[k-1]
	if err := r.repo.RemoveStation(ctx, chatID, station); err != nil {
		r.storeFailed(chatID, lang, "remove station", err)
		return
	}
	r.reply(chatID, i18n.T(lang, "station_removed", station))
}

func (r *Router) handleClear(ctx context.Context, chatID int64, lang string) {
	if err := r.repo.ClearStations(ctx, chatID); err != nil {
		r.storeFailed(chatID, lang, "clear stations", err)
		return
	}
	r.reply(chatID, i18n.T(lang, "stations_cleared"))
}

func (r *Router) handleList(ctx context.Context, chatID int64, lang string) {
	stations, err := r.repo.ListStations(ctx, chatID)
	if err != nil {
		r.storeFailed(chatID, lang, "list stations", err)
		return
	}
	if len(stations) == 0 {
		r.reply(chatID, i18n.T(lang, "stations_empty"))
		return
	}
	var b strings.Builder
	for i, s := range stations {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %d", i+1, s)
	}
	r.reply(chatID, b.String())
}

func (r *Router) handleSend(ctx context.Context, chatID int64, lang string) {
	stations, err := r.repo.ListStations(ctx, chatID)
	if err != nil {
		r.storeFailed(chatID, lang, "list stations", err)
		return
	}
	if len(stations) == 0 {
		r.reply(chatID, i18n.T(lang, "stations_empty"))
		return
	}
	data, err := r.provider.Fetch(ctx)
	if err != nil {
		r.reply(chatID, i18n.T(lang, "fetch_error", err))
		return
	}
	r.reply(chatID, report.Build(data, stations, r.region, lang))
}

func (r *Router) handleStations(ctx context.Context, chatID int64, lang string) {
	data, err := r.provider.Fetch(ctx)
	if err != nil {
		r.reply(chatID, i18n.T(lang, "stations_fetch_error", err))
		return
	}
	r.reply(chatID, report.Directory(data, r.region, lang))
}

func (r *Router) handleOn(ctx context.Context, chatID int64, lang string) {
	if err := r.repo.EnsureUser(ctx, chatID, lang); err != nil {
		r.storeFailed(chatID, lang, "ensure user", err)
		return
	}
	if err := r.repo.SetEnabled(ctx, chatID, true); err != nil {
		r.storeFailed(chatID, lang, "enable delivery", err)
		return
	}
	if u, err := r.repo.GetUser(ctx, chatID); err == nil {
		if err := r.sched.Register(chatID, u.Time); err != nil {
			r.log.Error("register schedule failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
	r.reply(chatID, i18n.T(lang, "delivery_on"))
}

func (r *Router) handleOff(ctx context.Context, chatID int64, lang string) {
	if err := r.repo.EnsureUser(ctx, chatID, lang); err != nil {
		r.storeFailed(chatID, lang, "ensure user", err)
		return
	}
	if err := r.repo.SetEnabled(ctx, chatID, false); err != nil {
		r.storeFailed(chatID, lang, "disable delivery", err)
		return
	}
	r.sched.Unregister(chatID)
	r.reply(chatID, i18n.T(lang, "delivery_off"))
}

func (r *Router) handleStatus(ctx context.Context, chatID int64, lang string) {
	u, err := r.repo.GetUser(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		r.reply(chatID, i18n.T(lang, "user_not_found"))
		return
	}
	if err != nil {
		r.storeFailed(chatID, lang, "get user", err)
		return
	}
	stations, err := r.repo.ListStations(ctx, chatID)
	if err != nil {
		r.storeFailed(chatID, lang, "list stations", err)
		return
	}

	enabledText := i18n.T(lang, "status_disabled")
	if u.Enabled {
		enabledText = i18n.T(lang, "status_enabled")
	}

	var b strings.Builder
	b.WriteString(i18n.T(lang, "status_header"))
	b.WriteString(i18n.T(lang, "status_delivery", enabledText))
	b.WriteString(i18n.T(lang, "status_time", u.Time.String(), r.zone))
	b.WriteString(i18n.T(lang, "status_count", len(stations)))
	if len(stations) > 0 {
		b.WriteString(i18n.T(lang, "status_list_header"))
		for i, s := range stations {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "- %d", s)
		}
	}
	r.replyMarkdown(chatID, b.String())
}
