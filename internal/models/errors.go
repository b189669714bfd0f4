package models

import (
	"fmt"
	"strings"
)

// ValidationError carries the complete list of structural and date problems
// found on a proposed booking. All problems are collected before rejecting.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid booking: " + strings.Join(e.Problems, "; ")
}

// ConflictError reports every room/date collision against committed stays.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	lines := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		lines = append(lines, fmt.Sprintf("%s: conflicts with %s %s", c.RoomType, c.ExistingID, c.ExistingInterval))
	}
	return "rooms not available: " + strings.Join(lines, "; ")
}

// DuplicateIDError means a fresh create targeted an id that already exists.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("reservation %q already exists", e.ID)
}

// NotFoundError means a lookup by id found nothing.
type NotFoundError struct {
	Kind string // "reservation" or "request"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// StoreError wraps an underlying persistence failure. The transaction that
// produced it has been rolled back; no partial rows remain.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
