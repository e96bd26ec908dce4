package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"

	"go-linkedin-extractor/internal/scraper"
)

const (
	JobsFile    = "linkedin_jobs.json"
	DetailsFile = "linkedin_job_details.json"
)

// ErrNothingToExport is returned when there are no records; no file is
// written in that case.
var ErrNothingToExport = errors.New("nothing to export")

// WriteJobs writes jobs as a 2-space indented JSON array to dir/JobsFile.
func WriteJobs(dir string, jobs []scraper.JobRecord) (string, error) {
	if len(jobs) == 0 {
		return "", ErrNothingToExport
	}
	return write(filepath.Join(dir, JobsFile), jobs)
}

// WriteDetails writes the detail records, oldest extraction first, to
// dir/DetailsFile.
func WriteDetails(dir string, details map[string]scraper.JobDetailRecord) (string, error) {
	if len(details) == 0 {
		return "", ErrNothingToExport
	}
	return write(filepath.Join(dir, DetailsFile), SortedDetails(details))
}

// SortedDetails orders details by extraction time, then id.
func SortedDetails(details map[string]scraper.JobDetailRecord) []scraper.JobDetailRecord {
	out := make([]scraper.JobDetailRecord, 0, len(details))
	for _, d := range details {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExtractedAt.Equal(out[j].ExtractedAt) {
			return out[i].ExtractedAt.Before(out[j].ExtractedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func write(path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode export")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrap(err, "create export dir")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
