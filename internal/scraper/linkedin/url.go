package linkedin

import (
	"net/url"
	"strings"
	"unicode"

	"go-linkedin-extractor/internal/scraper"
)

var jobsPageMarkers = []string{
	"linkedin.com/jobs",
	"linkedin.com/feed/jobs",
	"linkedin.com/my-items/saved-jobs",
}

// IsJobsPage reports whether pageURL is a page the extractor knows how to read.
func IsJobsPage(pageURL string) bool {
	for _, m := range jobsPageMarkers {
		if strings.Contains(pageURL, m) {
			return true
		}
	}
	return false
}

// JobIDFromURL resolves the job id of a detail view: the currentJobId query
// parameter if present, otherwise the digits of the last path segment.
func JobIDFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("currentJobId"); id != "" {
		return id
	}

	path := strings.TrimSuffix(u.Path, "/")
	last := path[strings.LastIndex(path, "/")+1:]
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, last)
}

// resolveLink makes href absolute against the page URL.
func resolveLink(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Scheme == "" {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func orNA(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return scraper.NotAvailable
	}
	return s
}
