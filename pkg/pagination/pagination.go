package pagination

// DefaultLimit is the standard page size when a limit is not provided.
const DefaultLimit = 12

// MaxLimit caps how many rows any paged query can request.
const MaxLimit = 100

// Params holds page/limit pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page describes the pagination block returned alongside list payloads.
type Page struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// Normalize clamps the params to sane bounds.
func Normalize(p Params) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	norm := Normalize(p)
	return (norm.Page - 1) * norm.Limit
}

// Build computes the page descriptor for a total row count.
func Build(p Params, totalItems int64) Page {
	norm := Normalize(p)
	totalPages := int((totalItems + int64(norm.Limit) - 1) / int64(norm.Limit))
	if totalPages < 1 && totalItems == 0 {
		totalPages = 0
	}
	return Page{
		CurrentPage: norm.Page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		HasNext:     norm.Page < totalPages,
		HasPrev:     norm.Page > 1 && totalItems > 0,
	}
}
