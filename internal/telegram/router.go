package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mkulikov/SST-bot/internal/domain"
	"github.com/mkulikov/SST-bot/internal/i18n"
	"github.com/mkulikov/SST-bot/internal/mgm"
	"github.com/mkulikov/SST-bot/internal/store"
)

// Schedule is the part of the scheduler the command handlers drive.
type Schedule interface {
	Register(chatID int64, at domain.TimeOfDay) error
	Unregister(chatID int64)
}

// Provider returns current station readings.
type Provider interface {
	Fetch(ctx context.Context) ([]mgm.Station, error)
}

// Router dispatches inbound bot commands to handlers.
type Router struct {
	sender   Sender
	repo     store.Repo
	sched    Schedule
	provider Provider
	region   string
	zone     string // IANA name shown in replies
	log      *zap.Logger
}

// NewRouter wires the command handlers.
func NewRouter(sender Sender, repo store.Repo, sched Schedule, provider Provider, region, zone string, log *zap.Logger) *Router {
	return &Router{
		sender:   sender,
		repo:     repo,
		sched:    sched,
		provider: provider,
		region:   region,
		zone:     zone,
		log:      log,
	}
}

// HandleUpdate routes a single update. Non-command text and unknown commands
// are ignored silently.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		msg = upd.EditedMessage
	}
	if msg == nil || msg.Text == "" {
		return
	}

	fields := strings.Fields(msg.Text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return
	}
	cmd := strings.ToLower(fields[0])
	// Strip the "@botname" suffix used in group chats.
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	var arg string
	if len(fields) > 1 {
		arg = fields[1]
	}

	chatID := msg.Chat.ID
	lang := i18n.Fallback
	if msg.From != nil {
		lang = i18n.Resolve(msg.From.LanguageCode)
	}

	switch cmd {
	case "/start":
		r.handleStart(ctx, chatID, lang)
	case "/time":
		r.handleTime(ctx, chatID, lang, arg)
	case "/add":
		r.handleAdd(ctx, chatID, lang, arg)
	case "/del":
		r.handleDel(ctx, chatID, lang, arg)
	case "/clear":
		r.handleClear(ctx, chatID, lang)
	case "/list":
		r.handleList(ctx, chatID, lang)
	case "/send":
		r.handleSend(ctx, chatID, lang)
	case "/stations":
		r.handleStations(ctx, chatID, lang)
	case "/on":
		r.handleOn(ctx, chatID, lang)
	case "/off":
		r.handleOff(ctx, chatID, lang)
	case "/status":
		r.handleStatus(ctx, chatID, lang)
	default:
		// Unknown command, ignore.
	}
}
