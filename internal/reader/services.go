package reader

import (
	"context"
)

// PaginatedService renders page-addressed documents such as PDF.
type PaginatedService interface {
	// Load opens fileRef and reports its page count.
	Load(ctx context.Context, fileRef string) (totalPages int, err error)
	RenderPage(ctx context.Context, page int) error
}

// RelocatedFunc receives the position marker and the 0-1 progress fraction
// whenever a location-addressed document moves.
type RelocatedFunc func(position string, fraction float64)

// LocationService renders reflowable documents such as EPUB, where positions
// are opaque markers rather than page numbers.
type LocationService interface {
	// Load opens fileRef at resume, or at the start when resume is empty.
	// onRelocated may be invoked during Load and after every Next or Previous.
	Load(ctx context.Context, fileRef, resume string, onRelocated RelocatedFunc) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
}
