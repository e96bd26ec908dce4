package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/pkg/logging"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `reason: navigation\_missing\.`, escapeMarkdown("reason: navigation_missing."))
	assert.Equal(t, `a\*b\[c\]`, escapeMarkdown("a*b[c]"))
}

func TestBot_NotifyDeliversLifecycleEvents(t *testing.T) {
	sender := &fakeSender{}
	bot := newBot(sender, 42, time.Hour, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bot.Run(ctx)

	bot.Notify(messaging.StartedEvent())
	bot.Notify(messaging.JobCountEvent(25))
	bot.Notify(messaging.JobCountEvent(50))
	bot.Notify(messaging.StoppedEvent(messaging.StopNavigationMissing))

	require.Eventually(t, func() bool { return len(sender.texts()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{
		"🚀 *Automation started*",
		"📦 Jobs stored: *25*",
		"🛑 *Automation stopped*\nreason: navigation\\_missing",
	}, sender.texts(), "the second count update is throttled")

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, sender.sent[0].ParseMode)
}

func TestBot_IgnoresRequestActions(t *testing.T) {
	bot := newBot(&fakeSender{}, 1, 0, logging.Nop())

	_, ok := bot.format(messaging.Event{Action: messaging.ActionGetStatus})
	assert.False(t, ok)
}

func TestBot_NotifyNeverBlocks(t *testing.T) {
	bot := newBot(&fakeSender{}, 1, 0, logging.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*2; i++ {
			bot.Notify(messaging.StartedEvent())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked with no consumer")
	}
}

func TestBot_SendError(t *testing.T) {
	sender := &fakeSender{}
	bot := newBot(sender, 42, time.Hour, logging.Nop())

	require.NoError(t, bot.SendError(errors.New("automation stopped early (failed)")))
	assert.Equal(t, []string{`❌ Error: automation stopped early \(failed\)`}, sender.texts())
}
