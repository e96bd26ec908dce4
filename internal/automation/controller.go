package automation

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/scraper"
	"go-linkedin-extractor/internal/scraper/linkedin"
	"go-linkedin-extractor/pkg/logging"
)

// Snapshot is a point-in-time read of the page.
type Snapshot interface {
	scraper.PageReader
	// PaginationText returns the "Page n of m" indicator, or "".
	PaginationText() string
}

// Page is the live page automation drives.
type Page interface {
	URL() string
	Snapshot(ctx context.Context) (Snapshot, error)
	// ScrollResults scrolls the results list to the bottom once and returns
	// its scrollable height.
	ScrollResults(ctx context.Context) (int, error)
	// GoToPage activates the control for page n. It returns false when no
	// such control exists.
	GoToPage(ctx context.Context, n int) (bool, error)
}

// Debugger is implemented by pages that can save a debug capture of
// themselves when a run fails.
type Debugger interface {
	DebugCapture(name string)
}

type Extractor interface {
	ExtractListings(ctx context.Context, r scraper.PageReader, page int) ([]scraper.JobRecord, error)
	ExtractDetail(ctx context.Context, r scraper.PageReader) (*scraper.JobDetailRecord, error)
}

type JobStore interface {
	MergeJobs(ctx context.Context, records []scraper.JobRecord) (int, error)
	Count(ctx context.Context) (int, error)
}

type Settings struct {
	MaxPages          int
	PageDelayMin      time.Duration
	PageDelayMax      time.Duration
	SettleDelay       time.Duration
	ScrollInterval    time.Duration
	ScrollMaxAttempts int
}

func DefaultSettings() Settings {
	return Settings{
		MaxPages:          40,
		PageDelayMin:      3 * time.Second,
		PageDelayMax:      7 * time.Second,
		SettleDelay:       3 * time.Second,
		ScrollInterval:    time.Second,
		ScrollMaxAttempts: 10,
	}
}

// Controller owns the automation state for one page. State changes only go
// through Start, Stop and the run loop; readers get copies from Status.
type Controller struct {
	page      Page
	extractor Extractor
	store     JobStore
	notifier  messaging.Notifier
	settings  Settings
	log       *logging.Logger
	clock     Clock
	jitter    func(min, max time.Duration) time.Duration

	lifetime context.Context
	closeAll context.CancelFunc

	mu     sync.Mutex
	state  messaging.Status
	cancel context.CancelFunc
	done   chan struct{}

	// pageMu serialises every use of the page: cycles, manual and
	// background extraction.
	pageMu sync.Mutex
}

var _ messaging.Automation = (*Controller)(nil)

func New(page Page, ex Extractor, store JobStore, notifier messaging.Notifier, settings Settings, log *logging.Logger) *Controller {
	if notifier == nil {
		notifier = messaging.NotifierFunc(func(messaging.Event) {})
	}
	if settings.MaxPages < 1 {
		settings.MaxPages = DefaultSettings().MaxPages
	}
	if settings.ScrollMaxAttempts < 1 {
		settings.ScrollMaxAttempts = DefaultSettings().ScrollMaxAttempts
	}

	lifetime, closeAll := context.WithCancel(context.Background())
	return &Controller{
		page:      page,
		extractor: ex,
		store:     store,
		notifier:  notifier,
		settings:  settings,
		log:       log,
		clock:     realClock{},
		jitter:    randomBetween,
		lifetime:  lifetime,
		closeAll:  closeAll,
		state: messaging.Status{
			IsRunning:   false,
			CurrentPage: 1,
			MaxPages:    settings.MaxPages,
		},
	}
}

// Start begins automation. It returns false, and changes nothing, when
// automation is already running.
func (c *Controller) Start() bool {
	c.mu.Lock()
	if c.state.IsRunning || c.lifetime.Err() != nil {
		c.mu.Unlock()
		return false
	}

	runID := uuid.NewString()
	ctx, cancel := context.WithCancel(c.lifetime)
	prev := c.done
	done := make(chan struct{})

	c.state.IsRunning = true
	c.cancel = cancel
	c.done = done
	state := c.state
	c.mu.Unlock()

	log := c.log.With("run", runID)
	log.Info("🚀 automation started", "page", state.CurrentPage, "max_pages", state.MaxPages)
	c.notifier.Notify(messaging.StartedEvent())

	go c.run(ctx, prev, done, log)
	return true
}

// Stop ends automation. A cycle already in flight finishes its scroll and
// extraction and exits at its next decision point. It returns false when
// automation was not running; no event is emitted in that case.
func (c *Controller) Stop() bool {
	return c.stop(messaging.StopRequested)
}

func (c *Controller) stop(reason messaging.StopReason) bool {
	c.mu.Lock()
	if !c.state.IsRunning {
		c.mu.Unlock()
		return false
	}
	c.state.IsRunning = false
	c.cancel()
	c.mu.Unlock()

	c.log.Info("🛑 automation stopped", "reason", reason)
	c.notifier.Notify(messaging.StoppedEvent(reason))
	return true
}

// Status returns a snapshot of the automation state.
func (c *Controller) Status() messaging.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until the current run loop, if any, has exited.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close stops automation for good and waits for the loop to drain or ctx
// to expire.
func (c *Controller) Close(ctx context.Context) error {
	c.stop(messaging.StopShutdown)
	c.closeAll()

	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "automation loop did not drain")
	}
}

// Extract runs one manual extraction: a detail view is captured and stored,
// a results page has its listings merged.
func (c *Controller) Extract(ctx context.Context) (messaging.ExtractResult, error) {
	c.pageMu.Lock()
	defer c.pageMu.Unlock()

	if !linkedin.IsJobsPage(c.page.URL()) {
		c.log.Warn("⚠️ not a LinkedIn jobs page, nothing to extract", "url", c.page.URL())
		return messaging.ExtractResult{Success: false}, nil
	}

	snap, err := c.page.Snapshot(ctx)
	if err != nil {
		return messaging.ExtractResult{}, errors.Wrap(err, "snapshot page")
	}

	view, err := snap.DetailView(ctx)
	if err != nil {
		return messaging.ExtractResult{}, errors.Wrap(err, "read detail view")
	}
	if view != nil {
		rec, err := c.extractor.ExtractDetail(ctx, snap)
		if err != nil {
			return messaging.ExtractResult{}, err
		}
		if rec == nil {
			return messaging.ExtractResult{Success: false}, nil
		}
		c.log.Info("✅ extracted job details", "id", rec.ID)
		return messaging.ExtractResult{Success: true, Type: messaging.ExtractDetails}, nil
	}

	jobs, err := c.extractor.ExtractListings(ctx, snap, c.Status().CurrentPage)
	if err != nil {
		return messaging.ExtractResult{}, err
	}
	if len(jobs) == 0 {
		c.log.Info("no jobs found during manual extraction")
		return messaging.ExtractResult{Success: false}, nil
	}
	if _, err := c.store.MergeJobs(ctx, jobs); err != nil {
		return messaging.ExtractResult{}, err
	}
	c.reportCount(ctx, c.log)

	count := len(jobs)
	c.log.Info("✅ manually extracted jobs", "count", count)
	return messaging.ExtractResult{Success: true, Type: messaging.ExtractListings, Count: &count}, nil
}

func (c *Controller) setPagination(current, max int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CurrentPage = current
	c.state.MaxPages = max
}

func (c *Controller) setCurrentPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CurrentPage = n
}

func (c *Controller) reportCount(ctx context.Context, log *logging.Logger) {
	total, err := c.store.Count(ctx)
	if err != nil {
		log.Warn("⚠️ could not count stored jobs", "err", err)
		return
	}
	c.notifier.Notify(messaging.JobCountEvent(total))
}
