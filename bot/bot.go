package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/nvrzn/grabbot/config"
	"github.com/nvrzn/grabbot/download"
	"github.com/nvrzn/grabbot/session"
)

// API is the subset of the Telegram client the bot uses. *tgbotapi.BotAPI
// satisfies it; tests substitute a recorder.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot correlates inbound messages, format choices, downloads, and delivery
// for every chat.
type Bot struct {
	api      API
	cfg      *config.Config
	sessions *session.Store
	fetcher  download.Fetcher
	limiters sync.Map // chat ID -> *rate.Limiter
}

func New(api API, cfg *config.Config, sessions *session.Store, fetcher download.Fetcher) *Bot {
	return &Bot{
		api:      api,
		cfg:      cfg,
		sessions: sessions,
		fetcher:  fetcher,
	}
}

// Run consumes updates until the channel closes or ctx is cancelled. Each
// update is handled on its own goroutine so one chat's long download does not
// stall the others; within a chat the single pending-URL slot serializes the
// flow.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate routes one inbound update to its handler.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(update.Message)
	}
}

func (b *Bot) allowDownload(chatID int64) bool {
	limiter, _ := b.limiters.LoadOrStore(
		chatID,
		rate.NewLimiter(rate.Every(b.cfg.RateLimitInterval), b.cfg.RateLimit),
	)
	return limiter.(*rate.Limiter).Allow()
}
