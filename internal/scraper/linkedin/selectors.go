package linkedin

// Selectors for the LinkedIn jobs UI. These change whenever LinkedIn ships a
// new front end; keep them in one place.
const (
	selJobCard        = "li[data-occludable-job-id]"
	attrJobID         = "data-occludable-job-id"
	selCardContainer  = ".job-card-container"
	selCardTitleLink  = ".job-card-list__title--link"
	selCardCompany    = ".artdeco-entity-lockup__subtitle"
	selCardLocation   = ".job-card-container__metadata-wrapper li"
	selCardFooterItem = ".job-card-container__footer-item"

	selDetailContainer = ".jobs-details__main-content"
	selDetailTitle     = ".job-details-jobs-unified-top-card__job-title"
	selDetailCompany   = ".job-details-jobs-unified-top-card__company-name"
	selDetailLocation  = ".job-details-jobs-unified-top-card__bullet"

	selPaginationState = ".jobs-search-pagination__page-state, .artdeco-pagination__page-state"
)

// ResultsListSelectors are tried in order to find the scrollable results list.
var ResultsListSelectors = []string{
	".jobs-search-results-list",
	".scaffold-layout__list",
	".jobs-search-results__list",
}

// NextPageSelectors locate the control that opens the next page, most
// specific first. {page} is replaced with the number of the page to open.
var NextPageSelectors = []string{
	`li[data-test-pagination-page-btn="{page}"] button`,
	`button[aria-label="Page {page}"]`,
	"button.jobs-search-pagination__button--next",
	`button[aria-label="View next page"]`,
}

// PaginationSelector is the element holding "Page n of m".
const PaginationSelector = selPaginationState
