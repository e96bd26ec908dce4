// Records produced by extraction and the page capability extraction reads from.

package scraper

import (
	"context"
	"time"
)

// NotAvailable is the sentinel stored for any field a page did not provide.
const NotAvailable = "N/A"

// JobRecord is one job card from a search results page.
// Records are never updated once stored: the first record seen for an id wins.
type JobRecord struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	Link           string `json:"link"`
	AdditionalInfo string `json:"additionalInfo"`
	Page           int    `json:"page"`
}

// JobDetailRecord is the captured detail pane of a single job.
// Re-extracting the same id replaces the stored record.
type JobDetailRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	DetailsHTML string    `json:"detailsHTML"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// RawCard holds the raw field values read from one job card.
// Empty strings mean the field's element was not found.
type RawCard struct {
	ID           string
	HasContainer bool
	BoldTitle    string
	LinkTitle    string
	Company      string
	Location     string
	Link         string
	Footer       string
	// Err is set when reading this card failed; other cards are unaffected.
	Err error
}

// RawDetail is the raw content of a job detail view.
type RawDetail struct {
	URL      string
	Title    string
	Company  string
	Location string
	HTML     string
}

// PageReader reads the current state of a page.
type PageReader interface {
	// ListingCards returns the job cards in page order.
	ListingCards(ctx context.Context) ([]RawCard, error)

	// DetailView returns nil when the page has no detail container.
	DetailView(ctx context.Context) (*RawDetail, error)

	// URL of the page currently loaded.
	URL() string
}
