package dto

// Paginated wraps a list response with its total count and page window.
type Paginated[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

func NewPaginated[T any](results []T, count int64, page, pageSize int) *Paginated[T] {
	if results == nil {
		results = []T{}
	}
	return &Paginated[T]{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  results,
	}
}
