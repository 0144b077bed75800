package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-tickets/internal/domain"
	"github.com/spec-kit/support-tickets/internal/events"
	"github.com/spec-kit/support-tickets/internal/repository"
)

// TicketService orchestrates ticket use cases. Every mutating operation
// persists first and publishes second; a publish failure is returned to the
// caller but the persisted state is not rolled back.
type TicketService struct {
	tickets   repository.TicketRepository
	publisher events.Publisher
	logger    *zap.Logger
}

// Dependencies bundles collaborators for the ticket service.
type Dependencies struct {
	TicketRepo repository.TicketRepository
	Publisher  events.Publisher
	Logger     *zap.Logger
}

// SideEffects reports which half of the persist-then-publish pair ran.
// Persisted true with Published false alongside an error means the write
// landed but the notification may be lost.
type SideEffects struct {
	Persisted bool
	Published bool
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Title       string
	Description string
	UserID      string
}

// NewTicketService constructs the service.
func NewTicketService(deps Dependencies) *TicketService {
	return &TicketService{
		tickets:   deps.TicketRepo,
		publisher: deps.Publisher,
		logger:    deps.Logger,
	}
}

// CreateTicket validates input, persists a new ticket and publishes
// TicketCreated.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, SideEffects, error) {
	ticket, err := domain.NewTicket(input.Title, input.Description, input.UserID)
	if err != nil {
		return nil, SideEffects{}, err
	}

	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, SideEffects{}, fmt.Errorf("save ticket: %w", err)
	}

	effects := SideEffects{Persisted: true}
	if err := s.publish(ctx, events.EventTicketCreated, ticket.ID, events.TicketCreatedPayload{
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
	}); err != nil {
		return ticket, effects, err
	}
	effects.Published = true
	return ticket, effects, nil
}

// ChangeStatus moves a ticket along the status state machine. A request for
// the current status succeeds without persisting or publishing anything.
func (s *TicketService) ChangeStatus(ctx context.Context, ticketID int64, next domain.Status) (*domain.Ticket, SideEffects, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, SideEffects{}, err
	}

	oldStatus := ticket.Status
	changed, err := ticket.ChangeStatus(next)
	if err != nil {
		return nil, SideEffects{}, err
	}
	if !changed {
		return ticket, SideEffects{}, nil
	}

	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, SideEffects{}, fmt.Errorf("save ticket: %w", err)
	}

	effects := SideEffects{Persisted: true}
	if err := s.publish(ctx, events.EventTicketStatusChanged, ticket.ID, events.TicketStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: ticket.Status,
	}); err != nil {
		return ticket, effects, err
	}
	effects.Published = true
	return ticket, effects, nil
}

// ChangePriority escalates or changes a ticket's priority. Requires a role
// with the priority capability; same-value changes are no-ops.
func (s *TicketService) ChangePriority(ctx context.Context, ticketID int64, next domain.Priority, justification string, role domain.Role) (*domain.Ticket, SideEffects, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, SideEffects{}, err
	}

	oldPriority := ticket.Priority
	changed, err := ticket.ChangePriority(next, justification, role)
	if err != nil {
		return nil, SideEffects{}, err
	}
	if !changed {
		return ticket, SideEffects{}, nil
	}

	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, SideEffects{}, fmt.Errorf("save ticket: %w", err)
	}

	effects := SideEffects{Persisted: true}
	if err := s.publish(ctx, events.EventTicketPriorityChanged, ticket.ID, events.TicketPriorityChangedPayload{
		OldPriority:   oldPriority,
		NewPriority:   ticket.Priority,
		Justification: ticket.PriorityJustification,
	}); err != nil {
		return ticket, effects, err
	}
	effects.Published = true
	return ticket, effects, nil
}

// AddResponse appends an admin response, persists the aggregate and
// publishes TicketResponseAdded.
func (s *TicketService) AddResponse(ctx context.Context, ticketID int64, text, adminID string) (*domain.AdminResponse, SideEffects, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, SideEffects{}, err
	}

	response, err := ticket.AddResponse(text, adminID)
	if err != nil {
		return nil, SideEffects{}, err
	}

	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, SideEffects{}, fmt.Errorf("save ticket: %w", err)
	}

	effects := SideEffects{Persisted: true}
	if err := s.publish(ctx, events.EventTicketResponseAdded, ticket.ID, events.TicketResponseAddedPayload{
		ResponseID: response.ID,
		Text:       response.Text,
		AdminID:    response.AdminID,
	}); err != nil {
		return response, effects, err
	}
	effects.Published = true
	return response, effects, nil
}

// DeleteTicket removes the ticket and publishes TicketDeleted.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID int64) (SideEffects, error) {
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		return SideEffects{}, err
	}

	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return SideEffects{}, err
	}

	effects := SideEffects{Persisted: true}
	if err := s.publish(ctx, events.EventTicketDeleted, ticketID, events.TicketDeletedPayload{}); err != nil {
		return effects, err
	}
	effects.Published = true
	return effects, nil
}

// GetTicket loads a ticket with its responses.
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	return s.tickets.FindByID(ctx, ticketID)
}

// ListUserTickets returns paginated tickets for an owner.
func (s *TicketService) ListUserTickets(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	return s.tickets.ListByUser(ctx, userID, limit, offset)
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID int64, payload any) error {
	if s.publisher == nil {
		return nil
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed; persisted state kept",
			zap.String("event_type", string(eventType)),
			zap.Int64("ticket_id", ticketID),
			zap.Error(err))
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}
