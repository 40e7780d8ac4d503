package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")

	// ErrWorkdayActive is returned when a start is attempted while the
	// store already holds an open workday for the user.
	ErrWorkdayActive = errors.New("workday already active")

	// ErrNoActiveWorkday is returned when a pause or end is attempted
	// with no open workday.
	ErrNoActiveWorkday = errors.New("no active workday")

	// ErrSchemaMissing marks an expected table as absent, which is a
	// deployment configuration problem rather than a runtime bug.
	ErrSchemaMissing = errors.New("schema missing")
)

func NewError(model string, err error) error {
	return fmt.Errorf("%s: %w", strings.ToLower(model), err)
}
