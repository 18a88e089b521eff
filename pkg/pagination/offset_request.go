package pagination

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// OffsetRequest is a 1-based page request, bound from ?page=&size=. Zero
// values select the defaults.
type OffsetRequest struct {
	Page int `json:"page" query:"page" validate:"gte=0"`
	Size int `json:"size" query:"size" validate:"gte=0,lte=500"`
}

// Validate rejects negative pages and sizes above PageMaxSize.
func (r OffsetRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid page request: %w", err)
	}
	return nil
}

// Normalize fills in defaults and clamps size to PageMaxSize.
func (r *OffsetRequest) Normalize() {
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.Size <= 0 {
		r.Size = PageDefaultSize
	}
	if r.Size > PageMaxSize {
		r.Size = PageMaxSize
	}
}

func (r OffsetRequest) Offset() int {
	return (r.Page - 1) * r.Size
}
