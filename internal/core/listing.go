package core

import (
	"time"

	"pollsapi/internal/config"
)

type Sort string

const (
	SortCreatedDesc Sort = "created_desc"
	SortCreatedAsc  Sort = "created_asc"
	SortTitleAsc    Sort = "title_asc"
	SortTitleDesc   Sort = "title_desc"
	SortVotesDesc   Sort = "votes_desc"
	SortVotesAsc    Sort = "votes_asc"
)

// ParseSort validates a sort key against the closed set. Empty selects the
// default ordering.
func ParseSort(raw string) (Sort, *Error) {
	switch Sort(raw) {
	case "":
		return SortCreatedDesc, nil
	case SortCreatedDesc, SortCreatedAsc, SortTitleAsc, SortTitleDesc, SortVotesDesc, SortVotesAsc:
		return Sort(raw), nil
	}
	return "", Invalid("sort", "unknown sort key")
}

type ListParams struct {
	Page     int
	Size     int
	Search   string
	IsActive *bool
	OwnerID  *int
	Sort     Sort
}

// NewListParams applies defaults for absent values and rejects out-of-range
// ones. page/size of 0 mean "not supplied".
func NewListParams(page, size int, limits config.Limits) (ListParams, *Error) {
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = limits.DefaultPageSize
	}
	if page < 1 {
		return ListParams{}, Invalid("page", "must be at least 1")
	}
	if size < 1 || size > limits.MaxPageSize {
		return ListParams{}, Invalid("size", "must be between 1 and the maximum page size")
	}
	return ListParams{Page: page, Size: size, Sort: SortCreatedDesc}, nil
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Size
}

type PageMeta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Size    int   `json:"size"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPageMeta derives pagination metadata: pages is ceil(total/size) with a
// floor of one page when there are no items.
func NewPageMeta(total int64, page, size int) PageMeta {
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	return PageMeta{
		Total:   total,
		Page:    page,
		Size:    size,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// PollSummary is one row of the poll listing with the ledger aggregate
// folded in.
type PollSummary struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsPublic    bool      `json:"is_public"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	TotalVotes  int64     `json:"total_votes"`
}

type PollPage struct {
	Items []PollSummary `json:"items"`
	PageMeta
}
