package popup

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-linkedin-extractor/internal/export"
	"go-linkedin-extractor/internal/filter"
	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/scraper"
	"go-linkedin-extractor/internal/server"
	"go-linkedin-extractor/internal/storage"
	"go-linkedin-extractor/pkg/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
	pterm.DisableStyling()
}

// pageAutomation extracts a fixed batch into the store, like a page would.
type pageAutomation struct {
	mu      sync.Mutex
	store   *storage.Gateway
	batch   []scraper.JobRecord
	running bool
}

func (a *pageAutomation) Start() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return false
	}
	a.running = true
	return true
}

func (a *pageAutomation) Stop() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	was := a.running
	a.running = false
	return was
}

func (a *pageAutomation) Status() messaging.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return messaging.Status{IsRunning: a.running, CurrentPage: 1, MaxPages: 40}
}

func (a *pageAutomation) Extract(ctx context.Context) (messaging.ExtractResult, error) {
	if len(a.batch) == 0 {
		return messaging.ExtractResult{Success: false}, nil
	}
	if _, err := a.store.MergeJobs(ctx, a.batch); err != nil {
		return messaging.ExtractResult{}, err
	}
	n := len(a.batch)
	return messaging.ExtractResult{Success: true, Type: messaging.ExtractListings, Count: &n}, nil
}

type env struct {
	ctrl  *Controller
	out   *bytes.Buffer
	auto  *pageAutomation
	store *storage.Gateway
	hub   *server.Hub
	dir   string
}

func newEnv(t *testing.T, pageURL string) *env {
	t.Helper()
	kv, err := storage.OpenBadger("", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	store := storage.NewGateway(kv, logging.Nop())

	auto := &pageAutomation{store: store, batch: []scraper.JobRecord{
		{ID: "1", Title: "Golang Developer", Company: "Acme", Location: "Hà Nội", Link: "https://www.linkedin.com/jobs/view/1/", AdditionalInfo: "Promoted", Page: 1},
		{ID: "2", Title: "Java Developer", Company: "Globex", Location: "Remote", Link: "https://www.linkedin.com/jobs/view/2/", AdditionalInfo: "N/A", Page: 1},
	}}
	hub := server.NewHub(logging.Nop())
	srv := server.New(messaging.NewRouter(auto, logging.Nop()), store, func() string { return pageURL }, hub, logging.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	out := &bytes.Buffer{}
	dir := t.TempDir()
	ctrl := NewController(NewClient(ts.URL), out, dir)
	ctrl.LoadWait = 0
	return &env{ctrl: ctrl, out: out, auto: auto, store: store, hub: hub, dir: dir}
}

const jobsPage = "https://www.linkedin.com/jobs/search/?keywords=golang"

func TestLoad_RendersStoredJobs(t *testing.T) {
	e := newEnv(t, jobsPage)

	require.NoError(t, e.ctrl.Load(context.Background()))
	out := e.out.String()
	assert.Contains(t, out, "Golang Developer")
	assert.Contains(t, out, "Globex")
	assert.Contains(t, out, "Jobs extracted: 2")
}

func TestLoad_RefusesOutsideJobsPages(t *testing.T) {
	e := newEnv(t, "https://www.linkedin.com/feed/")

	err := e.ctrl.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotJobsPage)
	n, err := e.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing was extracted")
}

func TestList_Filters(t *testing.T) {
	e := newEnv(t, jobsPage)
	_, err := e.auto.Extract(context.Background())
	require.NoError(t, err)

	require.NoError(t, e.ctrl.List(context.Background(), filter.Criteria{Location: "ha noi"}))
	out := e.out.String()
	assert.Contains(t, out, "Golang Developer")
	assert.NotContains(t, out, "Java Developer")
	assert.Contains(t, out, "Jobs extracted: 2 (showing 1)")
}

func TestStartStopStatus(t *testing.T) {
	e := newEnv(t, jobsPage)
	ctx := context.Background()

	require.NoError(t, e.ctrl.Start(ctx))
	assert.Contains(t, e.out.String(), "Automation running: page 1 of 40")

	e.out.Reset()
	require.NoError(t, e.ctrl.Stop(ctx))
	assert.Contains(t, e.out.String(), "Automation idle (page 1 of 40)")
}

func TestExport(t *testing.T) {
	e := newEnv(t, jobsPage)
	ctx := context.Background()

	require.NoError(t, e.ctrl.Export(ctx))
	assert.NoFileExists(t, filepath.Join(e.dir, export.JobsFile), "no jobs, no file")

	_, err := e.auto.Extract(ctx)
	require.NoError(t, err)
	require.NoError(t, e.ctrl.Export(ctx))
	assert.FileExists(t, filepath.Join(e.dir, export.JobsFile))
	assert.NoFileExists(t, filepath.Join(e.dir, export.DetailsFile))

	require.NoError(t, e.store.MergeDetail(ctx, scraper.JobDetailRecord{ID: "1", Title: "Golang Developer", ExtractedAt: time.Now()}))
	require.NoError(t, e.ctrl.Export(ctx))
	data, err := os.ReadFile(filepath.Join(e.dir, export.DetailsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "1"`)
}

func TestMissingAndDetails(t *testing.T) {
	e := newEnv(t, jobsPage)
	ctx := context.Background()
	_, err := e.auto.Extract(ctx)
	require.NoError(t, err)
	require.NoError(t, e.store.MergeDetail(ctx, scraper.JobDetailRecord{
		ID:          "1",
		Title:       "Golang Developer",
		Company:     "Acme",
		Location:    "Hà Nội",
		DetailsHTML: `<div><h2>About the job</h2><p>Build <strong>distributed</strong> systems.</p></div>`,
		ExtractedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}))

	require.NoError(t, e.ctrl.Missing(ctx, true))
	assert.Contains(t, e.out.String(), "Jobs without details: 1 of 2")
	assert.Contains(t, e.out.String(), "Java Developer")

	e.out.Reset()
	require.NoError(t, e.ctrl.Details(ctx, "1"))
	out := e.out.String()
	assert.Contains(t, out, "## About the job")
	assert.Contains(t, out, "**distributed**")

	assert.Error(t, e.ctrl.Details(ctx, "2"))
}

func TestWatch_PrintsEvents(t *testing.T) {
	e := newEnv(t, jobsPage)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var lines []string
	done := make(chan error, 1)
	go func() {
		done <- e.ctrl.backend.Watch(ctx, func(ev messaging.Event) {
			mu.Lock()
			lines = append(lines, EventLine(ev))
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool { return e.hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)
	e.hub.Notify(messaging.StartedEvent())
	e.hub.Notify(messaging.JobCountEvent(7))
	e.hub.Notify(messaging.StoppedEvent(messaging.StopCompleted))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(lines) == 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)

	assert.Equal(t, []string{
		"🚀 Automation started",
		"Jobs extracted: 7",
		"🛑 Automation stopped (completed)",
	}, lines)
}

func TestClient_UnknownServer(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.Status(context.Background())
	assert.Error(t, err)
}
