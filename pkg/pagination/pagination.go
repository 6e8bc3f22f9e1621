package pagination

const (
	// DefaultPage is used when a page is not provided.
	DefaultPage = 1
	// MaxPage caps page numbers at what the catalog API will serve.
	MaxPage = 500
)

// Meta describes a page of upstream results for the response envelope.
type Meta struct {
	Page         int  `json:"page"`
	TotalPages   int  `json:"total_pages"`
	TotalResults int  `json:"total_results"`
	HasNext      bool `json:"has_next"`
}

// NormalizePage enforces the default and maximum page numbers.
func NormalizePage(page int) int {
	if page < DefaultPage {
		return DefaultPage
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// NewMeta builds page metadata, clamping total pages to MaxPage.
func NewMeta(page, totalPages, totalResults int) Meta {
	if totalPages > MaxPage {
		totalPages = MaxPage
	}
	if totalPages < 0 {
		totalPages = 0
	}
	return Meta{
		Page:         page,
		TotalPages:   totalPages,
		TotalResults: totalResults,
		HasNext:      page < totalPages,
	}
}
