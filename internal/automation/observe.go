package automation

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"go-linkedin-extractor/internal/messaging"
)

// ExtractAfter runs one extraction once the page has had delay to render.
func (c *Controller) ExtractAfter(ctx context.Context, delay time.Duration) {
	if err := c.clock.Sleep(ctx, delay); err != nil {
		return
	}
	res, err := c.extractRecovered(ctx)
	if err != nil {
		c.log.Warn("⚠️ initial extraction failed", "err", err)
		return
	}
	if !res.Success {
		c.log.Info("no jobs found on initial page load")
	}
}

// Observe re-extracts the page every interval while automation is idle,
// picking up cards the user loads by browsing. It returns when ctx is done.
func (c *Controller) Observe(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.log.Info("👀 observing page for new jobs", "interval", interval.String())
	for {
		if err := c.clock.Sleep(ctx, interval); err != nil {
			return
		}
		if c.Status().IsRunning {
			continue
		}
		if _, err := c.extractRecovered(ctx); err != nil {
			c.log.Warn("⚠️ background extraction failed", "err", err)
		}
	}
}

// extractRecovered runs Extract for the background goroutines, turning a
// panic in the page read into an error.
func (c *Controller) extractRecovered(ctx context.Context) (res messaging.ExtractResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic during extraction: %v", r)
		}
	}()
	return c.Extract(ctx)
}
