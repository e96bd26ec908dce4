package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"

	"go-linkedin-extractor/internal/scraper"
	"go-linkedin-extractor/pkg/logging"
)

const (
	KeyJobs       = "jobs"
	KeyJobDetails = "jobDetails"
)

// Gateway merges extracted records into the KV store. Job records are
// first-write-wins by id; detail records are last-write-wins.
//
// Every operation re-reads the stored collection instead of caching it,
// because other processes may read the same store between merges.
type Gateway struct {
	kv  KV
	log *logging.Logger
	mu  sync.Mutex
}

func NewGateway(kv KV, log *logging.Logger) *Gateway {
	return &Gateway{kv: kv, log: log}
}

// MergeJobs appends the records whose id is not stored yet, keeping arrival
// order, and returns how many were inserted.
func (g *Gateway) MergeJobs(ctx context.Context, records []scraper.JobRecord) (int, error) {
	if len(records) == 0 {
		g.log.Debug("no jobs to save")
		return 0, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	existing, err := g.readJobs(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(existing)+len(records))
	for _, job := range existing {
		seen[job.ID] = struct{}{}
	}

	inserted := 0
	for _, job := range records {
		if _, dup := seen[job.ID]; dup {
			continue
		}
		seen[job.ID] = struct{}{}
		existing = append(existing, job)
		inserted++
	}

	if inserted == 0 {
		g.log.Debug("no new jobs to save", "total", len(existing))
		return 0, nil
	}

	if err := g.write(ctx, KeyJobs, existing); err != nil {
		return 0, err
	}
	g.log.Info("💾 added new jobs to storage", "added", inserted, "total", len(existing))
	return inserted, nil
}

// MergeDetail stores rec under its id, replacing any previous record.
func (g *Gateway) MergeDetail(ctx context.Context, rec scraper.JobDetailRecord) error {
	if rec.ID == "" {
		return errors.New("detail record has no id")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	details, err := g.readDetails(ctx)
	if err != nil {
		return err
	}
	details[rec.ID] = rec

	if err := g.write(ctx, KeyJobDetails, details); err != nil {
		return err
	}
	g.log.Info("💾 saved job details", "id", rec.ID)
	return nil
}

func (g *Gateway) GetJobs(ctx context.Context) ([]scraper.JobRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readJobs(ctx)
}

func (g *Gateway) GetDetails(ctx context.Context) (map[string]scraper.JobDetailRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readDetails(ctx)
}

// Count returns the number of stored job records.
func (g *Gateway) Count(ctx context.Context) (int, error) {
	jobs, err := g.GetJobs(ctx)
	if err != nil {
		return 0, err
	}
	return len(jobs), nil
}

// MissingDetails counts stored jobs that have no detail record.
func (g *Gateway) MissingDetails(ctx context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	jobs, err := g.readJobs(ctx)
	if err != nil {
		return 0, err
	}
	details, err := g.readDetails(ctx)
	if err != nil {
		return 0, err
	}
	return countMissingDetails(jobs, details), nil
}

// countMissingDetails counts jobs whose id has no entry in details. Detail
// records for ids that are not in jobs do not reduce the count.
func countMissingDetails(jobs []scraper.JobRecord, details map[string]scraper.JobDetailRecord) int {
	missing := 0
	for _, job := range jobs {
		if _, ok := details[job.ID]; !ok {
			missing++
		}
	}
	return missing
}

func (g *Gateway) readJobs(ctx context.Context) ([]scraper.JobRecord, error) {
	jobs := []scraper.JobRecord{}
	if err := g.read(ctx, KeyJobs, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []scraper.JobRecord{}
	}
	return jobs, nil
}

func (g *Gateway) readDetails(ctx context.Context) (map[string]scraper.JobDetailRecord, error) {
	details := map[string]scraper.JobDetailRecord{}
	if err := g.read(ctx, KeyJobDetails, &details); err != nil {
		return nil, err
	}
	if details == nil {
		details = map[string]scraper.JobDetailRecord{}
	}
	return details, nil
}

// read decodes key into out, leaving out untouched when the key is absent.
func (g *Gateway) read(ctx context.Context, key string, out any) error {
	raw, err := g.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decode %s", key)
	}
	return nil
}

func (g *Gateway) write(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	if err := g.kv.Set(ctx, key, raw); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	return nil
}
