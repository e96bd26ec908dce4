package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-linkedin-extractor/internal/scraper"
)

// Criteria narrows a job list. Empty fields match everything.
type Criteria struct {
	// Query must appear, word by word, somewhere in the title, company,
	// location or additional info.
	Query    string
	Company  string
	Location string
	// Promoted keeps only cards whose footer says "Promoted".
	Promoted bool
}

func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Query) == "" &&
		strings.TrimSpace(c.Company) == "" &&
		strings.TrimSpace(c.Location) == "" &&
		!c.Promoted
}

// Jobs returns the jobs matching c, keeping their order.
func Jobs(jobs []scraper.JobRecord, c Criteria) []scraper.JobRecord {
	if c.IsZero() {
		return jobs
	}
	out := make([]scraper.JobRecord, 0, len(jobs))
	for _, j := range jobs {
		if Matches(j, c) {
			out = append(out, j)
		}
	}
	return out
}

// Matches compares case- and accent-insensitively, so "ha noi" finds
// "Hà Nội".
func Matches(job scraper.JobRecord, c Criteria) bool {
	if c.Company != "" && !contains(job.Company, c.Company) {
		return false
	}
	if c.Location != "" && !contains(job.Location, c.Location) {
		return false
	}
	if c.Promoted && !contains(job.AdditionalInfo, "promoted") {
		return false
	}

	haystack := normalizeText(strings.Join([]string{job.Title, job.Company, job.Location, job.AdditionalInfo}, " "))
	for _, word := range strings.Fields(normalizeText(c.Query)) {
		if !strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}

// WithoutDetails returns the jobs that have no detail record yet.
func WithoutDetails(jobs []scraper.JobRecord, details map[string]scraper.JobDetailRecord) []scraper.JobRecord {
	var out []scraper.JobRecord
	for _, j := range jobs {
		if _, ok := details[j.ID]; !ok {
			out = append(out, j)
		}
	}
	return out
}

func contains(field, needle string) bool {
	return strings.Contains(normalizeText(field), normalizeText(strings.TrimSpace(needle)))
}

// đ has no combining-mark decomposition.
var strokeReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, strokeReplacer.Replace(str))
	if err != nil {
		result = str
	}
	return strings.ToLower(result)
}
