package browser

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"

	"go-linkedin-extractor/internal/automation"
	"go-linkedin-extractor/internal/scraper/linkedin"
	"go-linkedin-extractor/pkg/logging"
)

const scrollResultsJS = `(selectors) => {
	for (const s of selectors) {
		const el = document.querySelector(s);
		if (el) {
			el.scrollTop = el.scrollHeight;
			return el.scrollHeight;
		}
	}
	window.scrollTo(0, document.body.scrollHeight);
	return document.body.scrollHeight;
}`

// LivePage adapts a playwright page to automation.Page.
type LivePage struct {
	page  playwright.Page
	shots *ScreenshotDebugger
	log   *logging.Logger
}

var (
	_ automation.Page     = (*LivePage)(nil)
	_ automation.Debugger = (*LivePage)(nil)
)

func NewLivePage(page playwright.Page, shots *ScreenshotDebugger, log *logging.Logger) *LivePage {
	return &LivePage{page: page, shots: shots, log: log}
}

// Goto opens url and waits for the DOM to be ready.
func (p *LivePage) Goto(url string) error {
	p.log.Info("🔍 navigating", "url", url)
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(60000),
	}); err != nil {
		return errors.Wrapf(err, "goto %s", url)
	}
	if err := MouseJiggle(p.page); err != nil {
		p.log.Debug("mouse jiggle failed", "err", err)
	}
	return nil
}

func (p *LivePage) URL() string { return p.page.URL() }

func (p *LivePage) Snapshot(ctx context.Context) (automation.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	html, err := p.page.Content()
	if err != nil {
		return nil, errors.Wrap(err, "read page content")
	}
	snap, err := linkedin.NewSnapshot(html, p.page.URL())
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (p *LivePage) ScrollResults(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	res, err := p.page.Evaluate(scrollResultsJS, linkedin.ResultsListSelectors)
	if err != nil {
		return 0, errors.Wrap(err, "scroll results list")
	}
	return toInt(res)
}

func (p *LivePage) GoToPage(ctx context.Context, n int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	num := strconv.Itoa(n)
	for _, tmpl := range linkedin.NextPageSelectors {
		sel := strings.ReplaceAll(tmpl, "{page}", num)
		loc := p.page.Locator(sel).First()
		count, err := loc.Count()
		if err != nil {
			return false, errors.Wrapf(err, "look up %q", sel)
		}
		if count == 0 {
			continue
		}
		if err := loc.ScrollIntoViewIfNeeded(); err != nil {
			p.log.Debug("scroll into view failed", "selector", sel, "err", err)
		}
		RandomDelay(200, 600)
		if err := loc.Click(); err != nil {
			return false, errors.Wrapf(err, "click %q", sel)
		}
		p.log.Info("➡️ opened next page", "page", n, "selector", sel)
		return true, nil
	}

	p.DebugCapture("pagination_missing")
	return false, nil
}

// DebugCapture saves a full-page screenshot named after name.
func (p *LivePage) DebugCapture(name string) {
	if p.shots == nil {
		return
	}
	_, _ = p.shots.Capture(p.page, name)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(math.Round(n)), nil
	default:
		return 0, errors.Newf("unexpected scroll height %T", v)
	}
}
