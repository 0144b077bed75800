package events

import (
	"time"

	"github.com/spec-kit/support-tickets/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket.created"
	EventTicketStatusChanged   EventType = "ticket.status_changed"
	EventTicketPriorityChanged EventType = "ticket.priority_changed"
	EventTicketResponseAdded   EventType = "ticket.response_added"
	EventTicketDeleted         EventType = "ticket.deleted"
)

// Event is the envelope emitted for every ticket domain event.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"event_type"`
	TicketID  int64     `json:"ticket_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      domain.Status `json:"status"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority   domain.Priority `json:"old_priority"`
	NewPriority   domain.Priority `json:"new_priority"`
	Justification string          `json:"justification"`
}

// TicketResponseAddedPayload payload.
type TicketResponseAddedPayload struct {
	ResponseID int64  `json:"response_id"`
	Text       string `json:"text"`
	AdminID    string `json:"admin_id"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct{}
