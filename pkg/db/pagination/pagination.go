package pagination

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination is a 1-based offset page request.
type Pagination struct {
	Page  int `form:"page,default=1" json:"page"`
	Limit int `form:"limit,default=10" json:"limit"`
}

// PageInfo is the pagination block returned alongside list results.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func (p Pagination) Valid() bool {
	return p.Page >= 1 && p.Limit >= 1 && p.Limit <= MaxLimit && !p.OffsetOverflows()
}

// OffsetOverflows reports whether (Page-1)*Limit does not fit in an int.
func (p Pagination) OffsetOverflows() bool {
	if p.Page < 1 || p.Limit < 1 {
		return false
	}
	return p.Page-1 > math.MaxInt/p.Limit
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit); zero rows yield zero pages.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func BuildPageInfo(p Pagination, total int64) PageInfo {
	return PageInfo{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: TotalPages(total, p.Limit),
	}
}
