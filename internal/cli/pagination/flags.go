package pagination

import (
	"errors"
)

// Validation limits.
const (
	MaxLimit    = 10000
	MaxPageSize = 1000
)

// Validation errors.
var (
	ErrNegative             = errors.New("pagination values cannot be negative")
	ErrLimitTooLarge        = errors.New("limit must be <= 10000")
	ErrPageSizeTooLarge     = errors.New("page-size must be <= 1000")
	ErrMixedPaginationModes = errors.New("cannot use both offset-based (--offset) and page-based (--page) pagination")
	ErrPageSizeWithoutPage  = errors.New("--page-size requires --page to be set")
	ErrPageWithoutPageSize  = errors.New("--page requires --page-size to be set")
)

// Params holds the pagination flags of a command.
type Params struct {
	// Limit is the maximum number of results (offset-based mode). Zero means all.
	Limit int
	// Offset is the number of results to skip (offset-based mode).
	Offset int
	// Page is the 1-based page number (page-based mode). Zero disables page mode.
	Page     int
	PageSize int
}

// Validate checks the parameters are in range and consistent.
func (p Params) Validate() error {
	if p.Limit < 0 || p.Offset < 0 || p.Page < 0 || p.PageSize < 0 {
		return ErrNegative
	}
	if p.Limit > MaxLimit {
		return ErrLimitTooLarge
	}
	if p.PageSize > MaxPageSize {
		return ErrPageSizeTooLarge
	}
	if p.Page > 0 && p.Offset > 0 {
		return ErrMixedPaginationModes
	}
	if p.Page == 0 && p.PageSize > 0 {
		return ErrPageSizeWithoutPage
	}
	if p.Page > 0 && p.PageSize == 0 {
		return ErrPageWithoutPageSize
	}
	return nil
}

// IsPageBased reports whether page-based pagination is active.
func (p Params) IsPageBased() bool {
	return p.Page > 0
}

// IsEnabled reports whether any pagination parameter is set.
func (p Params) IsEnabled() bool {
	return p.Limit > 0 || p.Offset > 0 || p.Page > 0 || p.PageSize > 0
}

// OffsetLimit returns the effective offset and limit. A zero limit means no limit.
//
//nolint:nonamedreturns // Named returns document the pair.
func (p Params) OffsetLimit() (offset, limit int) {
	if p.IsPageBased() {
		offset = (p.Page - 1) * p.PageSize
		limit = p.PageSize
		if p.Limit > 0 {
			limit = p.Limit
		}
		return offset, limit
	}
	return p.Offset, p.Limit
}

// Apply returns the window of items selected by p. A page past the end is
// capped to the last page; an offset past the end selects nothing.
func Apply[T any](p Params, items []T) []T {
	if len(items) == 0 {
		return items
	}

	offset, limit := p.OffsetLimit()
	if p.IsPageBased() && offset >= len(items) {
		offset = ((len(items) - 1) / p.PageSize) * p.PageSize
	}
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if limit > 0 {
		end = min(offset+limit, len(items))
	}
	return items[offset:end]
}
