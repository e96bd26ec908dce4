package linkedin

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"go-linkedin-extractor/internal/scraper"
)

// Snapshot is a parsed copy of a page's markup. It implements
// scraper.PageReader, so the same extraction runs against a live page
// (by snapshotting its content) and against saved HTML in tests.
type Snapshot struct {
	doc *goquery.Document
	url string
}

var _ scraper.PageReader = (*Snapshot)(nil)

func NewSnapshot(html, pageURL string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "parse page html")
	}
	return &Snapshot{doc: doc, url: pageURL}, nil
}

func (s *Snapshot) URL() string { return s.url }

func (s *Snapshot) ListingCards(ctx context.Context) ([]scraper.RawCard, error) {
	var cards []scraper.RawCard
	s.doc.Find(selJobCard).Each(func(_ int, sel *goquery.Selection) {
		cards = append(cards, s.readCard(sel))
	})
	return cards, nil
}

func (s *Snapshot) readCard(sel *goquery.Selection) (card scraper.RawCard) {
	defer func() {
		if r := recover(); r != nil {
			card = scraper.RawCard{Err: errors.Newf("read card: %v", r)}
		}
	}()

	id, _ := sel.Attr(attrJobID)
	card.ID = strings.TrimSpace(id)
	card.HasContainer = sel.Find(selCardContainer).Length() > 0

	link := sel.Find(selCardTitleLink).First()
	card.BoldTitle = cleanText(link.Find("strong").First().Text())
	card.LinkTitle = cleanText(link.Text())
	if href, ok := link.Attr("href"); ok {
		card.Link = resolveLink(s.url, href)
	}

	card.Company = cleanText(sel.Find(selCardCompany).First().Text())
	card.Location = cleanText(sel.Find(selCardLocation).First().Text())
	card.Footer = cleanText(sel.Find(selCardFooterItem).First().Text())
	return card
}

func (s *Snapshot) DetailView(ctx context.Context) (*scraper.RawDetail, error) {
	container := s.doc.Find(selDetailContainer).First()
	if container.Length() == 0 {
		return nil, nil
	}

	html, err := goquery.OuterHtml(container)
	if err != nil {
		return nil, errors.Wrap(err, "render detail container")
	}

	return &scraper.RawDetail{
		URL:      s.url,
		Title:    cleanText(s.doc.Find(selDetailTitle).First().Text()),
		Company:  cleanText(s.doc.Find(selDetailCompany).First().Text()),
		Location: cleanText(s.doc.Find(selDetailLocation).First().Text()),
		HTML:     html,
	}, nil
}

// PaginationText returns the "Page n of m" indicator, or "" when absent.
func (s *Snapshot) PaginationText() string {
	return cleanText(s.doc.Find(selPaginationState).First().Text())
}

// cleanText collapses the whitespace LinkedIn scatters through its markup.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
