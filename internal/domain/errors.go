package domain

import "errors"

var (
	// ErrInvalidData rejects malformed caller input before the entity is touched.
	ErrInvalidData = errors.New("invalid ticket data")

	// ErrUnknownStatus rejects a status value outside the known set.
	ErrUnknownStatus = errors.New("unknown ticket status")

	// ErrAlreadyClosed rejects any mutation of a closed ticket.
	ErrAlreadyClosed = errors.New("ticket already closed")

	// ErrInvalidTransition rejects a status edge outside the allowed set.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidPriorityTransition rejects reverting a priority to Unassigned.
	ErrInvalidPriorityTransition = errors.New("invalid priority transition")

	// ErrPermissionDenied rejects an operation the caller's role cannot perform.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTicketNotFound is returned by repositories when the aggregate is absent.
	ErrTicketNotFound = errors.New("ticket not found")
)
