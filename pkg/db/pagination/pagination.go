package pagination

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 250
)

// Pagination is the offset-based page request shared by list endpoints.
type Pagination struct {
	Page  int `form:"page,default=1" json:"page"`
	Limit int `form:"limit,default=50" json:"limit" validate:"gte=1,lte=250"`
}

// PageInfo describes the page that was returned.
type PageInfo struct {
	Total     int64 `json:"total"`
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	PageCount int   `json:"page_count"`
}

// Normalize clamps the request to sane bounds. Absent page defaults to 1.
func (p Pagination) Normalize() Pagination {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized request.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// BuildPageInfo computes page metadata for a total row count,
// with PageCount = ceil(total/limit).
func BuildPageInfo(p Pagination, total int64) PageInfo {
	pageCount := 0
	if total > 0 {
		pageCount = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return PageInfo{
		Total:     total,
		Page:      p.Page,
		Limit:     p.Limit,
		PageCount: pageCount,
	}
}
