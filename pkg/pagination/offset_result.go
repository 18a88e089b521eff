package pagination

type OffsetResult[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasMore bool `json:"has_more"`
}

// Paginate cuts the requested page out of all. Pages past the end are empty.
func Paginate[T any](all []T, req OffsetRequest) *OffsetResult[T] {
	req.Normalize()

	start := min(req.Offset(), len(all))
	end := min(start+req.Size, len(all))

	items := all[start:end]
	if items == nil {
		items = []T{}
	}

	return &OffsetResult[T]{
		Items:   items,
		Total:   len(all),
		Page:    req.Page,
		Size:    req.Size,
		HasMore: end < len(all),
	}
}
