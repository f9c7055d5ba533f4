package repository

import (
	"errors"
	"math"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on unique constraint violations.
	ErrConflict = errors.New("conflict")
	// ErrConditionFailed is returned when a guarded update matched no row
	// because the row's state changed underneath the caller.
	ErrConditionFailed = errors.New("condition failed")
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPageNumber keeps Offset within an int4 for any page size.
	MaxPageNumber = math.MaxInt32 / MaxPerPage
)

// Page describes offset pagination with 1-based page numbers.
type Page struct {
	Number  int
	PerPage int
}

// NewPage clamps user-supplied paging values.
func NewPage(number, perPage, def int) Page {
	if def <= 0 {
		def = DefaultPerPage
	}
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if perPage < 1 {
		perPage = def
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Page{Number: number, PerPage: perPage}
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }
func (p Page) Limit() int  { return p.PerPage }

// Pages returns the number of pages needed for total rows.
func (p Page) Pages(total int) int {
	if p.PerPage <= 0 || total <= 0 {
		return 0
	}
	return (total + p.PerPage - 1) / p.PerPage
}
