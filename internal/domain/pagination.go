package domain

const (
	DefaultPageSize = 20
	// MaxPageSize caps every list endpoint, paged or not.
	MaxPageSize = 100
)

// ClampLimit bounds a requested page or list size to [1, max]. Zero or
// negative requests get def.
func ClampLimit(limit, def, max int) int {
	if def > max {
		def = max
	}
	switch {
	case limit < 1:
		return def
	case limit > max:
		return max
	default:
		return limit
	}
}

type PaginationParams struct {
	Page     int `json:"page" query:"page"`
	PageSize int `json:"page_size" query:"page_size"`
}

func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	p.PageSize = ClampLimit(p.PageSize, DefaultPageSize, MaxPageSize)
}

func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPaginatedResponse expects params already passed through Validate.
func NewPaginatedResponse[T any](data []T, params PaginationParams, totalItems int64) PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	size := int64(params.PageSize)
	totalPages := int((totalItems + size - 1) / size)

	return PaginatedResponse[T]{
		Data:       data,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
