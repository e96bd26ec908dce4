package automation

import (
	"context"

	"github.com/cockroachdb/errors"

	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/pkg/logging"
)

// run drives cycles until one of them decides to stop. ctx is cancelled by
// Stop; prev is the previous run's done channel, drained first so two
// cycles never touch the page at once.
func (c *Controller) run(ctx context.Context, prev <-chan struct{}, done chan<- struct{}, log *logging.Logger) {
	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return
		}
	}

	defer func() {
		if r := recover(); r != nil {
			c.finish(ctx, messaging.StopFailed, errors.Newf("panic in automation cycle: %v", r), log)
		}
	}()

	for {
		reason, err := c.cycle(ctx, log)
		if reason != "" {
			c.finish(ctx, reason, err, log)
			return
		}
	}
}

// cycle scrapes the current page and decides what comes next. An empty
// reason means the next page is loaded and the loop continues.
func (c *Controller) cycle(ctx context.Context, log *logging.Logger) (messaging.StopReason, error) {
	if err := c.scrapeCurrentPage(ctx, log); err != nil {
		return messaging.StopFailed, err
	}

	if ctx.Err() != nil {
		return messaging.StopRequested, nil
	}

	state := c.Status()
	if state.CurrentPage >= state.MaxPages {
		log.Info("🏁 reached the last page", "page", state.CurrentPage, "max_pages", state.MaxPages)
		return messaging.StopCompleted, nil
	}

	delay := c.jitter(c.settings.PageDelayMin, c.settings.PageDelayMax)
	log.Info("⏳ waiting before next page", "delay", delay.String(), "next", state.CurrentPage+1)
	if err := c.clock.Sleep(ctx, delay); err != nil {
		return messaging.StopRequested, nil
	}

	next := state.CurrentPage + 1
	ok, err := c.goToPage(ctx, next)
	if err != nil {
		return messaging.StopFailed, errors.Wrapf(err, "navigate to page %d", next)
	}
	if !ok {
		log.Warn("⚠️ next page control not found", "page", next)
		return messaging.StopNavigationMissing, nil
	}
	c.setCurrentPage(next)

	if err := c.clock.Sleep(ctx, c.settings.SettleDelay); err != nil {
		return messaging.StopRequested, nil
	}
	return "", nil
}

func (c *Controller) goToPage(ctx context.Context, n int) (bool, error) {
	c.pageMu.Lock()
	defer c.pageMu.Unlock()
	return c.page.GoToPage(ctx, n)
}

// scrapeCurrentPage refreshes pagination, scrolls, extracts and merges.
// It ignores cancellation: once started it runs to the end.
func (c *Controller) scrapeCurrentPage(ctx context.Context, log *logging.Logger) error {
	work := context.WithoutCancel(ctx)

	c.pageMu.Lock()
	defer c.pageMu.Unlock()

	snap, err := c.page.Snapshot(work)
	if err != nil {
		return errors.Wrap(err, "snapshot page")
	}
	if current, max, ok := ParsePagination(snap.PaginationText()); ok {
		c.setPagination(current, max)
	}
	page := c.Status().CurrentPage
	log.Info("📄 processing page", "page", page, "max_pages", c.Status().MaxPages)

	if err := c.forceScroll(work, log); err != nil {
		return err
	}

	snap, err = c.page.Snapshot(work)
	if err != nil {
		return errors.Wrap(err, "snapshot page after scrolling")
	}
	jobs, err := c.extractor.ExtractListings(work, snap, page)
	if err != nil {
		return err
	}
	inserted, err := c.store.MergeJobs(work, jobs)
	if err != nil {
		return err
	}
	log.Info("📦 page extracted", "page", page, "found", len(jobs), "new", inserted)

	c.reportCount(work, log)
	return nil
}

// forceScroll scrolls the results list until its height stops growing or
// the attempt ceiling is hit, so lazily rendered cards exist before reading.
func (c *Controller) forceScroll(ctx context.Context, log *logging.Logger) error {
	last := -1
	for attempt := 1; attempt <= c.settings.ScrollMaxAttempts; attempt++ {
		height, err := c.page.ScrollResults(ctx)
		if err != nil {
			return errors.Wrap(err, "scroll results")
		}
		if height <= last {
			log.Debug("scroll height settled", "height", height, "attempts", attempt)
			return nil
		}
		last = height
		if err := c.clock.Sleep(ctx, c.settings.ScrollInterval); err != nil {
			return err
		}
	}
	log.Debug("scroll attempt ceiling reached", "height", last)
	return nil
}

// finish moves a run that ended on its own to Stopped. When Stop already
// did that, finish only logs, so exactly one stopped event goes out.
func (c *Controller) finish(ctx context.Context, reason messaging.StopReason, cause error, log *logging.Logger) {
	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		log.Debug("automation loop exited after stop")
		return
	}
	c.state.IsRunning = false
	c.cancel()
	c.mu.Unlock()

	switch reason {
	case messaging.StopCompleted:
		log.Info("✅ automation completed")
	case messaging.StopNavigationMissing:
		log.Warn("🛑 automation stopped: navigation control missing")
	default:
		log.Error("❌ automation failed", "reason", reason, "err", cause)
		c.debugCapture("automation_failed", log)
	}
	c.notifier.Notify(messaging.StoppedEvent(reason))
}

func (c *Controller) debugCapture(name string, log *logging.Logger) {
	d, ok := c.page.(Debugger)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn("⚠️ debug capture failed", "err", r)
		}
	}()
	c.pageMu.Lock()
	defer c.pageMu.Unlock()
	d.DebugCapture(name)
}
