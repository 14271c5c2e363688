package http

import "github.com/go-autoresign/internal/domain"

// TickSource is what the status endpoint reads from the poll loop.
type TickSource interface {
	LastReport() (domain.TickReport, bool)
	Busy() bool
}

// Deps holds the dependencies of the status router.
type Deps struct {
	Ticks     TickSource
	Interval  string
	Languages []string
}
