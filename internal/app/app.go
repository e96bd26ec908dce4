package app

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"

	"go-linkedin-extractor/internal/automation"
	"go-linkedin-extractor/internal/browser"
	"go-linkedin-extractor/internal/config"
	"go-linkedin-extractor/internal/database"
	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/reporter"
	"go-linkedin-extractor/internal/scraper/linkedin"
	"go-linkedin-extractor/internal/storage"
	"go-linkedin-extractor/internal/telegram"
	"go-linkedin-extractor/pkg/logging"
)

// OpenStore opens the KV backend named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StorageConfig, log *logging.Logger) (storage.KV, error) {
	var (
		kv  storage.KV
		err error
	)
	switch cfg.Driver {
	case config.DriverBadger:
		kv, err = storage.OpenBadger(cfg.Path, log)
	case config.DriverFile:
		kv, err = storage.OpenFile(cfg.Path, log)
	case config.DriverPostgres:
		kv, err = database.ConnectDB(ctx, cfg.DatabaseURL)
	default:
		return nil, errors.Newf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.Info("💾 record store opened", "driver", cfg.Driver)
	return kv, nil
}

func Settings(cfg config.AutomationConfig) automation.Settings {
	return automation.Settings{
		MaxPages:          cfg.MaxPages,
		PageDelayMin:      cfg.PageDelayMin,
		PageDelayMax:      cfg.PageDelayMax,
		SettleDelay:       cfg.SettleDelay,
		ScrollInterval:    cfg.ScrollInterval,
		ScrollMaxAttempts: cfg.ScrollMaxAttempts,
	}
}

// Notifiers builds the event fan-out: the log, extra (the websocket hub in
// the server) and Telegram when configured. bot is nil without Telegram.
func Notifiers(cfg config.TelegramConfig, log *logging.Logger, extra ...messaging.Notifier) (messaging.Notifier, *telegram.Bot, error) {
	multi := reporter.Multi{reporter.NewLogReporter(log)}
	multi = append(multi, extra...)

	if !cfg.Enabled() {
		return multi, nil, nil
	}
	bot, err := telegram.NewBot(cfg.Token, cfg.ChatID, cfg.CountEvery, log)
	if err != nil {
		return nil, nil, err
	}
	return append(multi, bot), bot, nil
}

// Browser is the live chromium page the extractor is attached to.
type Browser struct {
	Page *browser.LivePage

	manager *browser.PlaywrightManager
	context playwright.BrowserContext
}

// OpenBrowser launches chromium with the saved session cookies and opens
// cfg.StartURL.
func OpenBrowser(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Browser, error) {
	cookies, err := browser.LoadCookies(cfg.CookiesPath)
	if err != nil {
		log.Warn("⚠️ could not load cookies, continuing without a session", "err", err)
	}

	pm, err := browser.NewPlaywright(ctx, cfg.Headless, log)
	if err != nil {
		return nil, err
	}

	bctx, err := pm.NewContext(cookies)
	if err != nil {
		_ = pm.Close()
		return nil, err
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = pm.Close()
		return nil, errors.Wrap(err, "failed to create new page")
	}

	live := browser.NewLivePage(page, browser.NewScreenshotDebugger(cfg.ScreenshotDir, log), log)
	if err := live.Goto(cfg.StartURL); err != nil {
		_ = bctx.Close()
		_ = pm.Close()
		return nil, err
	}
	log.Info("✅ browser initialized", "url", live.URL())

	return &Browser{Page: live, manager: pm, context: bctx}, nil
}

func (b *Browser) Close() error {
	return errors.CombineErrors(b.context.Close(), b.manager.Close())
}

// Controller wires the LinkedIn extractor and the automation controller over
// one gateway.
func Controller(page automation.Page, gateway *storage.Gateway, notifier messaging.Notifier, cfg config.AutomationConfig, log *logging.Logger) *automation.Controller {
	ex := linkedin.NewExtractor(gateway, log)
	return automation.New(page, ex, gateway, notifier, Settings(cfg), log)
}
