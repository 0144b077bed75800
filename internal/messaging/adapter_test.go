package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-tickets/internal/domain"
	"github.com/spec-kit/support-tickets/internal/service"
)

type stubTicketRepo struct {
	tickets map[int64]*domain.Ticket
}

func (r *stubTicketRepo) Save(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == 0 {
		ticket.ID = int64(len(r.tickets) + 1)
	}
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *stubTicketRepo) FindByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return ticket, nil
}

func (r *stubTicketRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *stubTicketRepo) ListByUser(_ context.Context, _ string, _, _ int) ([]domain.Ticket, error) {
	return nil, nil
}

func newAdapterWithTicket(t *testing.T, id int64) (*EventAdapter, *stubTicketRepo) {
	t.Helper()
	repo := &stubTicketRepo{tickets: map[int64]*domain.Ticket{}}
	if id != 0 {
		repo.tickets[id] = &domain.Ticket{ID: id, Title: "t", Description: "d", Status: domain.StatusOpen, Priority: domain.PriorityUnassigned}
	}
	svc := service.NewTicketService(service.Dependencies{
		TicketRepo: repo,
		Logger:     zap.NewNop(),
	})
	return NewEventAdapter(svc, zap.NewNop()), repo
}

func TestHandleAssignmentDeletedRemovesTicket(t *testing.T) {
	adapter, repo := newAdapterWithTicket(t, 42)

	outcome := adapter.Handle(context.Background(), InboundEvent{
		EventType: "assignment.deleted",
		TicketID:  "42",
	})

	assert.Equal(t, OutcomeProcessed, outcome.Kind)
	assert.Empty(t, repo.tickets)
}

func TestHandleAcceptsNumericTicketID(t *testing.T) {
	adapter, repo := newAdapterWithTicket(t, 7)

	// json.Unmarshal into any decodes JSON numbers as float64.
	outcome := adapter.Handle(context.Background(), InboundEvent{
		EventType: "assignment.deleted",
		TicketID:  float64(7),
	})

	assert.Equal(t, OutcomeProcessed, outcome.Kind)
	assert.Empty(t, repo.tickets)
}

func TestHandleIgnoresForeignEventTypes(t *testing.T) {
	adapter, repo := newAdapterWithTicket(t, 42)

	outcome := adapter.Handle(context.Background(), InboundEvent{
		EventType: "assignment.created",
		TicketID:  "42",
	})

	assert.Equal(t, OutcomeIgnored, outcome.Kind)
	assert.Len(t, repo.tickets, 1, "foreign events must not touch tickets")
}

func TestHandleDropsMissingTicketID(t *testing.T) {
	adapter, _ := newAdapterWithTicket(t, 42)

	outcome := adapter.Handle(context.Background(), InboundEvent{
		EventType: "assignment.deleted",
	})

	assert.Equal(t, OutcomeDropped, outcome.Kind)
	assert.Equal(t, "missing ticket_id", outcome.Reason)
}

func TestHandleDropsNonIntegerTicketID(t *testing.T) {
	adapter, _ := newAdapterWithTicket(t, 42)

	for _, raw := range []any{"forty-two", 4.5, true} {
		outcome := adapter.Handle(context.Background(), InboundEvent{
			EventType: "assignment.deleted",
			TicketID:  raw,
		})
		assert.Equal(t, OutcomeDropped, outcome.Kind, "ticket_id %v", raw)
		assert.Equal(t, "non-integer ticket_id", outcome.Reason)
	}
}

func TestHandleDropsMissingTicket(t *testing.T) {
	adapter, _ := newAdapterWithTicket(t, 0)

	outcome := adapter.Handle(context.Background(), InboundEvent{
		EventType: "assignment.deleted",
		TicketID:  "99",
	})

	assert.Equal(t, OutcomeDropped, outcome.Kind, "a ticket that is already gone is terminal, not retryable")
	assert.NotEmpty(t, outcome.Reason)
}

func TestParseTicketID(t *testing.T) {
	cases := []struct {
		raw  any
		want int64
		ok   bool
	}{
		{raw: "123", want: 123, ok: true},
		{raw: float64(123), want: 123, ok: true},
		{raw: int64(5), want: 5, ok: true},
		{raw: int(5), want: 5, ok: true},
		{raw: "12.5", ok: false},
		{raw: 12.5, ok: false},
		{raw: "abc", ok: false},
		{raw: nil, ok: false},
		{raw: []any{1}, ok: false},
	}

	for _, tc := range cases {
		id, ok := parseTicketID(tc.raw)
		require.Equal(t, tc.ok, ok, "raw %v", tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, id)
		}
	}
}
