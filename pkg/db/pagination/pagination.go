package pagination

import "gorm.io/gorm"

const (
	DefaultPerPage = 20
	MaxPerPage     = 200
)

// Pagination is the page-number form every list endpoint binds from its query.
type Pagination struct {
	Page    int `form:"page,default=1"`
	PerPage int `form:"per_page,default=20" validate:"gte=1,lte=200"`
}

// PageInfo reports where a page sits inside the full result set. When the
// backend could not produce a count, TotalCount equals the page length and
// TotalPages is 1 (single-page degraded mode).
type PageInfo struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// Normalize clamps the request to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Apply adds LIMIT/OFFSET to a gorm statement.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	n := p.Normalize()
	return stmt.Limit(n.PerPage).Offset(n.Offset())
}

// BuildPageInfo computes totals for a counted result set.
func BuildPageInfo(p Pagination, totalCount int64) PageInfo {
	n := p.Normalize()
	totalPages := int((totalCount + int64(n.PerPage) - 1) / int64(n.PerPage))
	if totalPages < 1 {
		totalPages = 1
	}
	return PageInfo{
		Page:       n.Page,
		PerPage:    n.PerPage,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// SinglePage is the degraded mode used when no backend count exists: the
// returned set is assumed to be the whole collection.
func SinglePage(length int) PageInfo {
	return PageInfo{
		Page:       1,
		PerPage:    length,
		TotalCount: int64(length),
		TotalPages: 1,
	}
}
