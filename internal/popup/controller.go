package popup

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"

	"go-linkedin-extractor/internal/export"
	"go-linkedin-extractor/internal/filter"
	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/scraper"
)

// ErrNotJobsPage is returned by Load when the page is not a LinkedIn jobs
// page.
var ErrNotJobsPage = errors.New("please navigate to a LinkedIn jobs page")

// Backend is what the popup needs from the page context.
type Backend interface {
	Extract(ctx context.Context) (messaging.ExtractResult, error)
	Start(ctx context.Context) (messaging.Ack, error)
	Stop(ctx context.Context) (messaging.Ack, error)
	Status(ctx context.Context) (messaging.Status, error)
	Page(ctx context.Context) (messaging.PageInfo, error)
	Jobs(ctx context.Context) ([]scraper.JobRecord, error)
	Details(ctx context.Context) (map[string]scraper.JobDetailRecord, error)
	Watch(ctx context.Context, fn func(messaging.Event)) error
}

// Controller renders the popup views. Every view re-reads the store; nothing
// is cached between commands.
type Controller struct {
	backend   Backend
	out       io.Writer
	exportDir string
	// LoadWait is how long Load gives the page to finish extracting.
	LoadWait time.Duration
}

func NewController(backend Backend, out io.Writer, exportDir string) *Controller {
	return &Controller{
		backend:   backend,
		out:       out,
		exportDir: exportDir,
		LoadWait:  500 * time.Millisecond,
	}
}

// Load asks the page to extract, then shows the stored jobs.
func (c *Controller) Load(ctx context.Context) error {
	page, err := c.backend.Page(ctx)
	if err != nil {
		return err
	}
	if !page.IsJobsPage {
		c.println(pterm.Warning.Sprint(ErrNotJobsPage.Error()))
		return ErrNotJobsPage
	}

	res, err := c.backend.Extract(ctx)
	if err != nil {
		return err
	}
	if !res.Success {
		c.println(pterm.Info.Sprint("No jobs found on this page"))
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.LoadWait):
	}
	return c.List(ctx, filter.Criteria{})
}

// List shows the stored jobs matching criteria.
func (c *Controller) List(ctx context.Context, criteria filter.Criteria) error {
	jobs, err := c.backend.Jobs(ctx)
	if err != nil {
		return err
	}
	shown := filter.Jobs(jobs, criteria)

	if len(shown) > 0 {
		data := pterm.TableData{{"ID", "Title", "Company", "Location"}}
		for _, j := range shown {
			data = append(data, []string{j.ID, j.Title, j.Company, j.Location})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return errors.Wrap(err, "render jobs table")
		}
		c.println(table)
	}

	if criteria.IsZero() {
		c.println(fmt.Sprintf("Jobs extracted: %d", len(jobs)))
	} else {
		c.println(fmt.Sprintf("Jobs extracted: %d (showing %d)", len(jobs), len(shown)))
	}
	return nil
}

func (c *Controller) Start(ctx context.Context) error {
	if _, err := c.backend.Start(ctx); err != nil {
		return err
	}
	c.println(pterm.Success.Sprint("Automation started"))
	return c.Status(ctx)
}

func (c *Controller) Stop(ctx context.Context) error {
	if _, err := c.backend.Stop(ctx); err != nil {
		return err
	}
	c.println(pterm.Success.Sprint("Automation stopped"))
	return c.Status(ctx)
}

func (c *Controller) Status(ctx context.Context) error {
	st, err := c.backend.Status(ctx)
	if err != nil {
		return err
	}
	c.println(StatusLine(st))
	return nil
}

// StatusLine is the one-line automation status.
func StatusLine(st messaging.Status) string {
	if st.IsRunning {
		return fmt.Sprintf("Automation running: page %d of %d", st.CurrentPage, st.MaxPages)
	}
	return fmt.Sprintf("Automation idle (page %d of %d)", st.CurrentPage, st.MaxPages)
}

// Missing shows how many stored jobs have no detail record.
func (c *Controller) Missing(ctx context.Context, list bool) error {
	jobs, err := c.backend.Jobs(ctx)
	if err != nil {
		return err
	}
	details, err := c.backend.Details(ctx)
	if err != nil {
		return err
	}
	missing := filter.WithoutDetails(jobs, details)
	c.println(fmt.Sprintf("Jobs without details: %d of %d", len(missing), len(jobs)))
	if list {
		for _, j := range missing {
			c.println(fmt.Sprintf("  %s  %s  %s", j.ID, j.Title, j.Link))
		}
	}
	return nil
}

// Details prints one stored detail record as markdown.
func (c *Controller) Details(ctx context.Context, id string) error {
	details, err := c.backend.Details(ctx)
	if err != nil {
		return err
	}
	d, ok := details[id]
	if !ok {
		return errors.Newf("no details stored for job %s", id)
	}

	body, err := md.NewConverter("", true, nil).ConvertString(d.DetailsHTML)
	if err != nil {
		return errors.Wrap(err, "convert details to markdown")
	}

	c.println(pterm.DefaultHeader.Sprint(d.Title))
	c.println(fmt.Sprintf("%s · %s · extracted %s", d.Company, d.Location, d.ExtractedAt.Format(time.RFC3339)))
	c.println("")
	c.println(strings.TrimSpace(body))
	return nil
}

// Export writes the jobs file and, when any exist, the details file. With no
// jobs nothing is written.
func (c *Controller) Export(ctx context.Context) error {
	jobs, err := c.backend.Jobs(ctx)
	if err != nil {
		return err
	}
	path, err := export.WriteJobs(c.exportDir, jobs)
	if errors.Is(err, export.ErrNothingToExport) {
		c.println(pterm.Warning.Sprint("No jobs to export"))
		return nil
	}
	if err != nil {
		return err
	}
	c.println(pterm.Success.Sprintf("Exported %d jobs to %s", len(jobs), path))

	details, err := c.backend.Details(ctx)
	if err != nil {
		return err
	}
	path, err = export.WriteDetails(c.exportDir, details)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
	case err != nil:
		return err
	default:
		c.println(pterm.Success.Sprintf("Exported %d job details to %s", len(details), path))
	}
	return nil
}

// Watch prints pushed events until ctx is done.
func (c *Controller) Watch(ctx context.Context) error {
	c.println(pterm.Info.Sprint("Watching automation events, Ctrl+C to quit"))
	return c.backend.Watch(ctx, func(ev messaging.Event) {
		c.println(EventLine(ev))
	})
}

func EventLine(ev messaging.Event) string {
	switch ev.Action {
	case messaging.ActionAutomationStarted:
		return "🚀 Automation started"
	case messaging.ActionAutomationStopped:
		if ev.Reason != "" {
			return "🛑 Automation stopped (" + string(ev.Reason) + ")"
		}
		return "🛑 Automation stopped"
	case messaging.ActionUpdateJobCount:
		if ev.Count == nil {
			return "Jobs extracted: ?"
		}
		return "Jobs extracted: " + strconv.Itoa(*ev.Count)
	default:
		return string(ev.Action)
	}
}

func (c *Controller) println(s string) {
	fmt.Fprintln(c.out, s)
}
