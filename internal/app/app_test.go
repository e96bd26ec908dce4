package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-linkedin-extractor/internal/config"
	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/storage"
	"go-linkedin-extractor/pkg/logging"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{config.DriverBadger, config.DriverFile} {
		t.Run(driver, func(t *testing.T) {
			kv, err := OpenStore(ctx, config.StorageConfig{Driver: driver, Path: t.TempDir() + "/store"}, logging.Nop())
			require.NoError(t, err)
			defer kv.Close()

			_, err = kv.Get(ctx, storage.KeyJobs)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}

	_, err := OpenStore(ctx, config.StorageConfig{Driver: "sqlite"}, logging.Nop())
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	cfg := config.Default().Automation
	cfg.MaxPages = 12
	cfg.PageDelayMax = 9 * time.Second

	s := Settings(cfg)
	assert.Equal(t, 12, s.MaxPages)
	assert.Equal(t, 9*time.Second, s.PageDelayMax)
	assert.Equal(t, cfg.ScrollMaxAttempts, s.ScrollMaxAttempts)
}

func TestNotifiers_WithoutTelegram(t *testing.T) {
	var got []messaging.Action
	extra := messaging.NotifierFunc(func(ev messaging.Event) { got = append(got, ev.Action) })

	n, bot, err := Notifiers(config.TelegramConfig{}, logging.Nop(), extra)
	require.NoError(t, err)
	assert.Nil(t, bot)

	n.Notify(messaging.StartedEvent())
	assert.Equal(t, []messaging.Action{messaging.ActionAutomationStarted}, got)
}
