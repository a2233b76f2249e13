package product

import (
	"fmt"

	"github.com/avelarde/shopflow-backend/pkg/pagination"
)

// SortKey names the supported catalog orderings.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortName      SortKey = "name"
	SortRating    SortKey = "rating"
)

// ParseSortKey validates the raw sort value, defaulting to newest.
func ParseSortKey(value string) (SortKey, error) {
	switch SortKey(value) {
	case "":
		return SortNewest, nil
	case SortNewest, SortPriceAsc, SortPriceDesc, SortName, SortRating:
		return SortKey(value), nil
	}
	return "", fmt.Errorf("invalid sort %q", value)
}

func (s SortKey) orderClause() string {
	switch s {
	case SortPriceAsc:
		return "price_cents ASC"
	case SortPriceDesc:
		return "price_cents DESC"
	case SortName:
		return "name ASC"
	case SortRating:
		return "rating DESC"
	default:
		return "created_at DESC"
	}
}

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Category      *string
	PriceMinCents *int64
	PriceMaxCents *int64
	Featured      *bool
	Query         string
}

// ListInput captures the inputs needed to paginate/filter the catalog.
type ListInput struct {
	Filters         ListFilters
	Sort            SortKey
	Pagination      pagination.Params
	IncludeInactive bool
}

// ListResult is a page of products plus the pagination block.
type ListResult struct {
	Products []ProductDTO    `json:"products"`
	Page     pagination.Page `json:"pagination"`
}
