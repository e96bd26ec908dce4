package browser

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"

	"go-linkedin-extractor/pkg/logging"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// PlaywrightManager owns the playwright driver and one chromium instance.
type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	log     *logging.Logger
}

func NewPlaywright(ctx context.Context, headless bool, log *logging.Logger) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "could not start playwright")
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, errors.Wrap(err, "could not launch chromium browser")
	}

	log.Info("🌐 browser launched", "headless", headless, "version", browser.Version())
	return &PlaywrightManager{pw: pw, browser: browser, log: log}, nil
}

// NewContext opens an isolated browser context carrying the session cookies.
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	bctx, err := pm.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1366, Height: 900},
		Locale:    playwright.String("en-US"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create browser context")
	}

	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			_ = bctx.Close()
			return nil, errors.Wrap(err, "could not add cookies")
		}
		pm.log.Info("🍪 cookies loaded into context", "count", len(cookies))
	}
	return bctx, nil
}

func (pm *PlaywrightManager) Close() error {
	var errs error
	if pm.browser != nil {
		errs = errors.CombineErrors(errs, pm.browser.Close())
	}
	if pm.pw != nil {
		errs = errors.CombineErrors(errs, pm.pw.Stop())
	}
	return errs
}
