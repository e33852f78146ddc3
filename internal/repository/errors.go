// Package repository defines the row-oriented storage interface consumed by
// the seating engine, its SQL and in-memory implementations, and typed
// repositories for guests, tables and seat assignments.
//
// Errors defined here are shared across repositories so that higher layers
// can distinguish failure scenarios with errors.Is.
package repository

import "errors"

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as an update whose target row changed underneath
// it.
var ErrConflict = errors.New("conflict")

// ErrUniqueViolation is returned (wrapped) by every Store implementation when
// an insert or update breaks a uniqueness constraint.  The allocator relies
// on it to detect concurrent seat allocations.
var ErrUniqueViolation = errors.New("unique constraint violation")

// ErrRawUnavailable is returned when a caller asks for raw query execution
// and the store does not support it.
var ErrRawUnavailable = errors.New("raw query execution not available")

// ErrCapacityBelowOccupancy is returned when a table's capacity would drop
// below the number of guests currently seated at it.
var ErrCapacityBelowOccupancy = errors.New("capacity below current occupancy")
