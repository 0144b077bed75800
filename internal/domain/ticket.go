package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Status enumerates ticket lifecycle states.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// Priority enumerates ticket urgency. Tickets start Unassigned; once a
// concrete priority is set it can move freely among Low/Medium/High but
// never back to Unassigned.
type Priority string

const (
	PriorityUnassigned Priority = "Unassigned"
	PriorityLow        Priority = "Low"
	PriorityMedium     Priority = "Medium"
	PriorityHigh       Priority = "High"
)

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityUnassigned, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// MaxResponseLength bounds the text of a single admin response.
const MaxResponseLength = 2000

// Ticket is the aggregate for support requests. ID is zero until the
// repository assigns one on first save.
type Ticket struct {
	ID                    int64
	Title                 string
	Description           string
	Status                Status
	Priority              Priority
	PriorityJustification string
	UserID                string
	Responses             []AdminResponse
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Status moves only forward; the self-loop is handled as a no-op before
// this table is consulted.
var allowedTransitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusClosed},
	StatusClosed:     {},
}

func isValidTransition(current, next Status) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// NewTicket validates input and returns a fresh ticket in the initial state.
func NewTicket(title, description, userID string) (*Ticket, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidData
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrInvalidData
	}
	return &Ticket{
		Title:       title,
		Description: description,
		Status:      StatusOpen,
		Priority:    PriorityUnassigned,
		UserID:      userID,
	}, nil
}

// ChangeStatus applies a status transition. It returns true when the ticket
// actually changed; a request for the current status is a successful no-op
// and must not emit an event. The ticket is left untouched on error.
func (t *Ticket) ChangeStatus(next Status) (bool, error) {
	if !next.IsValid() {
		return false, ErrUnknownStatus
	}
	if next == t.Status {
		return false, nil
	}
	if t.Status == StatusClosed {
		return false, ErrAlreadyClosed
	}
	if !isValidTransition(t.Status, next) {
		return false, ErrInvalidTransition
	}
	t.Status = next
	return true, nil
}

// ChangePriority applies a priority change with its justification. Only
// roles with the priority capability may call it. Same-value changes are
// successful no-ops; reverting to Unassigned is forbidden.
func (t *Ticket) ChangePriority(next Priority, justification string, role Role) (bool, error) {
	if !role.CanChangePriority() {
		return false, ErrPermissionDenied
	}
	if t.Status == StatusClosed {
		return false, ErrAlreadyClosed
	}
	if !next.IsValid() {
		return false, ErrInvalidData
	}
	if next == t.Priority {
		return false, nil
	}
	if next == PriorityUnassigned {
		return false, ErrInvalidPriorityTransition
	}
	t.Priority = next
	t.PriorityJustification = justification
	return true, nil
}

// AddResponse appends an admin response while the ticket is open. The
// returned pointer aliases the slice entry so the repository can assign its
// ID in place.
func (t *Ticket) AddResponse(text, adminID string) (*AdminResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidData
	}
	if utf8.RuneCountInString(text) > MaxResponseLength {
		return nil, ErrInvalidData
	}
	if t.Status == StatusClosed {
		return nil, ErrAlreadyClosed
	}
	t.Responses = append(t.Responses, AdminResponse{
		Text:    text,
		AdminID: adminID,
	})
	return &t.Responses[len(t.Responses)-1], nil
}
