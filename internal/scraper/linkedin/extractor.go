package linkedin

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"go-linkedin-extractor/internal/scraper"
	"go-linkedin-extractor/pkg/logging"
)

// DetailStore receives every detail record the extractor captures.
type DetailStore interface {
	MergeDetail(ctx context.Context, rec scraper.JobDetailRecord) error
}

// Extractor turns raw page content into job records.
type Extractor struct {
	details DetailStore
	log     *logging.Logger
	now     func() time.Time
}

func NewExtractor(details DetailStore, log *logging.Logger) *Extractor {
	return &Extractor{
		details: details,
		log:     log,
		now:     time.Now,
	}
}

// ExtractListings reads every job card on the page. Cards without an id or
// without a card container are skipped, as are cards that failed to read.
// It does not persist anything.
func (e *Extractor) ExtractListings(ctx context.Context, r scraper.PageReader, page int) ([]scraper.JobRecord, error) {
	cards, err := r.ListingCards(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read job cards")
	}
	e.log.Debug("🔎 found job cards", "count", len(cards), "page", page)

	jobs := make([]scraper.JobRecord, 0, len(cards))
	for i, card := range cards {
		if card.Err != nil {
			e.log.Warn("⚠️ error extracting job card", "index", i, "err", card.Err)
			continue
		}
		if card.ID == "" || !card.HasContainer {
			continue
		}

		title := card.BoldTitle
		if title == "" {
			title = card.LinkTitle
		}

		job := scraper.JobRecord{
			ID:             card.ID,
			Title:          orNA(title),
			Company:        orNA(card.Company),
			Location:       orNA(card.Location),
			Link:           orNA(card.Link),
			AdditionalInfo: orNA(card.Footer),
			Page:           page,
		}
		jobs = append(jobs, job)
		e.log.Debug("extracted job", "title", job.Title, "company", job.Company)
	}
	return jobs, nil
}

// ExtractDetail captures the detail view of the current page and stores it.
// It returns nil when the page is not a detail view or no job id resolves.
func (e *Extractor) ExtractDetail(ctx context.Context, r scraper.PageReader) (*scraper.JobDetailRecord, error) {
	view, err := r.DetailView(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read detail view")
	}
	if view == nil {
		e.log.Debug("no job details container found on this page")
		return nil, nil
	}

	id := JobIDFromURL(view.URL)
	if id == "" {
		e.log.Warn("⚠️ could not extract job id from url", "url", view.URL)
		return nil, nil
	}

	rec := scraper.JobDetailRecord{
		ID:          id,
		Title:       orNA(view.Title),
		Company:     orNA(view.Company),
		Location:    orNA(view.Location),
		DetailsHTML: view.HTML,
		ExtractedAt: e.now().UTC(),
	}
	e.log.Info("📄 extracted job details", "id", id, "title", rec.Title, "company", rec.Company)

	if e.details != nil {
		if err := e.details.MergeDetail(ctx, rec); err != nil {
			return &rec, errors.Wrapf(err, "save details for job %s", id)
		}
	}
	return &rec, nil
}
