package messaging

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/support-tickets/internal/service"
)

// eventAssignmentDeleted is the only inbound event type acted upon. The
// exchange is fan-out, so everything else arrives here too and is ignored.
const eventAssignmentDeleted = "assignment.deleted"

// InboundEvent is the decoded broker payload. ticket_id may arrive as a
// JSON string or number; extra fields are ignored.
type InboundEvent struct {
	EventType string `json:"event_type"`
	TicketID  any    `json:"ticket_id"`
}

// OutcomeKind classifies how the adapter disposed of an event.
type OutcomeKind int

const (
	// OutcomeProcessed means a use case ran successfully.
	OutcomeProcessed OutcomeKind = iota
	// OutcomeIgnored means the event type is not ours; delivery succeeded.
	OutcomeIgnored
	// OutcomeDropped means the event was discarded and must not be requeued.
	OutcomeDropped
)

// Outcome is the adapter's disposition for one event. The consumer loop's
// ack decision is a pure function of this value.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

func processed() Outcome { return Outcome{Kind: OutcomeProcessed} }

func ignored() Outcome { return Outcome{Kind: OutcomeIgnored} }

func dropped(reason string) Outcome { return Outcome{Kind: OutcomeDropped, Reason: reason} }

// EventAdapter translates externally received events into ticket use cases.
type EventAdapter struct {
	tickets *service.TicketService
	logger  *zap.Logger
}

// NewEventAdapter constructs the adapter.
func NewEventAdapter(tickets *service.TicketService, logger *zap.Logger) *EventAdapter {
	return &EventAdapter{tickets: tickets, logger: logger}
}

// Handle maps the event type to a use case. Failures are terminal for the
// message: a ticket that is already gone cannot be deleted by redelivery,
// and malformed payloads never become well-formed. Infrastructure failures
// during delete share the same fate; inbound processing accepts at-most-once
// semantics rather than building a retry mechanism.
func (a *EventAdapter) Handle(ctx context.Context, event InboundEvent) Outcome {
	if event.EventType != eventAssignmentDeleted {
		return ignored()
	}

	if event.TicketID == nil {
		a.logger.Warn("assignment.deleted without ticket_id, dropping")
		return dropped("missing ticket_id")
	}
	ticketID, ok := parseTicketID(event.TicketID)
	if !ok {
		a.logger.Warn("assignment.deleted with non-integer ticket_id, dropping",
			zap.Any("ticket_id", event.TicketID))
		return dropped("non-integer ticket_id")
	}

	if _, err := a.tickets.DeleteTicket(ctx, ticketID); err != nil {
		a.logger.Error("delete ticket from assignment.deleted failed",
			zap.Int64("ticket_id", ticketID),
			zap.Error(err))
		return dropped(fmt.Sprintf("delete ticket %d: %v", ticketID, err))
	}

	a.logger.Info("ticket deleted by assignment.deleted event", zap.Int64("ticket_id", ticketID))
	return processed()
}

// parseTicketID accepts the JSON encodings the broker actually produces:
// a decimal string or a number. Numbers must be integral.
func parseTicketID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	case float64:
		id := int64(v)
		if float64(id) != v {
			return 0, false
		}
		return id, true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}
