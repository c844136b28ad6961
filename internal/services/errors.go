// Package services defines the business logic for subscriptions, the
// assistant and the compliance calendar. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Assistant errors.
var (
	// ErrEmptyPrompt is returned when a question is blank after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrTooLong is returned when a question exceeds the configured rune limit.
	ErrTooLong = errors.New("prompt too long")

	// ErrSessionNotFound indicates an unknown or evicted assistant session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionBusy is returned when a session already has a turn in flight.
	ErrSessionBusy = errors.New("session is busy")
)

// Calendar errors.
var (
	// ErrTaskNotFound indicates that the task does not exist or belongs to
	// another owner.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidTask is returned for a task without title, with a malformed
	// due date or an unknown priority.
	ErrInvalidTask = errors.New("invalid task")

	// ErrInvalidRange is returned for malformed, reversed or oversized date
	// ranges.
	ErrInvalidRange = errors.New("invalid date range")
)
