package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/pkg/logging"
)

const queueSize = 32

// Sender is the part of tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot forwards automation events to a Telegram chat. Job count updates are
// throttled; lifecycle events always go out.
type Bot struct {
	api    Sender
	chatID int64
	log    *logging.Logger
	counts *rate.Limiter
	queue  chan string
}

var _ messaging.Notifier = (*Bot)(nil)

func NewBot(token string, chatID int64, countEvery time.Duration, log *logging.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init telegram bot")
	}
	log.Info("🤖 telegram bot authorized", "account", api.Self.UserName)
	return newBot(api, chatID, countEvery, log), nil
}

func newBot(api Sender, chatID int64, countEvery time.Duration, log *logging.Logger) *Bot {
	limit := rate.Inf
	if countEvery > 0 {
		limit = rate.Every(countEvery)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
		log:    log,
		counts: rate.NewLimiter(limit, 1),
		queue:  make(chan string, queueSize),
	}
}

// Run delivers queued messages until ctx is done.
func (b *Bot) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-b.queue:
			if err := b.send(text); err != nil {
				b.log.Warn("⚠️ telegram send failed", "err", err)
			}
		}
	}
}

// Notify queues ev for delivery. It never blocks: when the queue is full the
// message is dropped.
func (b *Bot) Notify(ev messaging.Event) {
	text, ok := b.format(ev)
	if !ok {
		return
	}
	select {
	case b.queue <- text:
	default:
		b.log.Warn("⚠️ telegram queue full, dropping message", "action", ev.Action)
	}
}

func (b *Bot) format(ev messaging.Event) (string, bool) {
	switch ev.Action {
	case messaging.ActionAutomationStarted:
		return "🚀 *Automation started*", true
	case messaging.ActionAutomationStopped:
		text := "🛑 *Automation stopped*"
		if ev.Reason != "" {
			text += "\n" + escapeMarkdown("reason: "+string(ev.Reason))
		}
		return text, true
	case messaging.ActionUpdateJobCount:
		if ev.Count == nil || !b.counts.Allow() {
			return "", false
		}
		return fmt.Sprintf("📦 Jobs stored: *%d*", *ev.Count), true
	default:
		return "", false
	}
}

func (b *Bot) SendStatus(message string) error {
	return b.send("ℹ️ " + escapeMarkdown(message))
}

func (b *Bot) SendError(err error) error {
	return b.send("❌ " + escapeMarkdown(fmt.Sprintf("Error: %v", err)))
}

func (b *Bot) send(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

var markdownReplacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}
