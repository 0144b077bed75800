package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-tickets/internal/domain"
	"github.com/spec-kit/support-tickets/internal/events"
)

// memoryTicketRepo is an in-memory TicketRepository that records call order
// so tests can check that persist happens before publish.
type memoryTicketRepo struct {
	tickets map[int64]*domain.Ticket
	nextID  int64
	saveErr error
	calls   *[]string
}

func newMemoryTicketRepo(calls *[]string) *memoryTicketRepo {
	return &memoryTicketRepo{tickets: make(map[int64]*domain.Ticket), nextID: 1, calls: calls}
}

func (r *memoryTicketRepo) Save(_ context.Context, ticket *domain.Ticket) error {
	if r.calls != nil {
		*r.calls = append(*r.calls, "save")
	}
	if r.saveErr != nil {
		return r.saveErr
	}
	if ticket.ID == 0 {
		ticket.ID = r.nextID
		r.nextID++
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *memoryTicketRepo) FindByID(_ context.Context, id int64) (*domain.Ticket, error) {
	stored, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *memoryTicketRepo) Delete(_ context.Context, id int64) error {
	if r.calls != nil {
		*r.calls = append(*r.calls, "delete")
	}
	if _, ok := r.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *memoryTicketRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.UserID == userID {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

// recordingPublisher captures events; err makes every publish fail.
type recordingPublisher struct {
	events []events.Event
	err    error
	calls  *[]string
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	if p.calls != nil {
		*p.calls = append(*p.calls, "publish")
	}
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newTestService(t *testing.T) (*TicketService, *memoryTicketRepo, *recordingPublisher, *[]string) {
	t.Helper()
	calls := &[]string{}
	repo := newMemoryTicketRepo(calls)
	publisher := &recordingPublisher{calls: calls}
	svc := NewTicketService(Dependencies{
		TicketRepo: repo,
		Publisher:  publisher,
		Logger:     zap.NewNop(),
	})
	return svc, repo, publisher, calls
}

func createTicket(t *testing.T, svc *TicketService) *domain.Ticket {
	t.Helper()
	ticket, effects, err := svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:       "VPN down",
		Description: "cannot reach internal network",
		UserID:      "user-1",
	})
	require.NoError(t, err)
	require.True(t, effects.Persisted)
	require.True(t, effects.Published)
	return ticket
}

func TestCreateTicketPersistsBeforePublishing(t *testing.T) {
	svc, _, publisher, calls := newTestService(t)

	ticket := createTicket(t, svc)

	assert.NotZero(t, ticket.ID)
	assert.Equal(t, []string{"save", "publish"}, *calls)
	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, events.EventTicketCreated, event.Type)
	assert.Equal(t, ticket.ID, event.TicketID)
	assert.NotEmpty(t, event.ID)
}

func TestCreateTicketInvalidInputTouchesNothing(t *testing.T) {
	svc, repo, publisher, _ := newTestService(t)

	_, effects, err := svc.CreateTicket(context.Background(), CreateTicketInput{Title: " ", Description: "d", UserID: "u"})

	assert.ErrorIs(t, err, domain.ErrInvalidData)
	assert.False(t, effects.Persisted)
	assert.False(t, effects.Published)
	assert.Empty(t, repo.tickets)
	assert.Empty(t, publisher.events)
}

func TestChangeStatusPublishesTransition(t *testing.T) {
	svc, repo, publisher, _ := newTestService(t)
	ticket := createTicket(t, svc)

	updated, effects, err := svc.ChangeStatus(context.Background(), ticket.ID, domain.StatusInProgress)

	require.NoError(t, err)
	assert.True(t, effects.Persisted)
	assert.True(t, effects.Published)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, domain.StatusInProgress, repo.tickets[ticket.ID].Status)

	require.Len(t, publisher.events, 2)
	event := publisher.events[1]
	assert.Equal(t, events.EventTicketStatusChanged, event.Type)
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.StatusOpen, payload.OldStatus)
	assert.Equal(t, domain.StatusInProgress, payload.NewStatus)
}

func TestChangeStatusNoOpSkipsPersistAndPublish(t *testing.T) {
	svc, _, publisher, calls := newTestService(t)
	ticket := createTicket(t, svc)
	*calls = nil

	updated, effects, err := svc.ChangeStatus(context.Background(), ticket.ID, domain.StatusOpen)

	require.NoError(t, err)
	assert.False(t, effects.Persisted)
	assert.False(t, effects.Published)
	assert.Equal(t, domain.StatusOpen, updated.Status)
	assert.Empty(t, *calls)
	assert.Len(t, publisher.events, 1, "only the creation event")
}

func TestChangeStatusInvalidTransitionNotPersisted(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ticket := createTicket(t, svc)

	_, effects, err := svc.ChangeStatus(context.Background(), ticket.ID, domain.StatusClosed)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.False(t, effects.Persisted)
	assert.Equal(t, domain.StatusOpen, repo.tickets[ticket.ID].Status)
}

func TestChangeStatusMissingTicket(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, _, err := svc.ChangeStatus(context.Background(), 404, domain.StatusInProgress)

	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestChangePriority(t *testing.T) {
	svc, repo, publisher, _ := newTestService(t)
	ticket := createTicket(t, svc)

	updated, effects, err := svc.ChangePriority(context.Background(), ticket.ID, domain.PriorityHigh, "outage", domain.RoleAdmin)

	require.NoError(t, err)
	assert.True(t, effects.Persisted)
	assert.True(t, effects.Published)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Equal(t, domain.PriorityHigh, repo.tickets[ticket.ID].Priority)

	event := publisher.events[len(publisher.events)-1]
	assert.Equal(t, events.EventTicketPriorityChanged, event.Type)
	payload, ok := event.Payload.(events.TicketPriorityChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.PriorityUnassigned, payload.OldPriority)
	assert.Equal(t, domain.PriorityHigh, payload.NewPriority)
	assert.Equal(t, "outage", payload.Justification)
}

func TestChangePriorityDeniedForUserRole(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ticket := createTicket(t, svc)

	_, effects, err := svc.ChangePriority(context.Background(), ticket.ID, domain.PriorityHigh, "", domain.RoleUser)

	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.False(t, effects.Persisted)
	assert.Equal(t, domain.PriorityUnassigned, repo.tickets[ticket.ID].Priority)
}

func TestChangePrioritySameValueIsIdempotent(t *testing.T) {
	svc, _, publisher, calls := newTestService(t)
	ticket := createTicket(t, svc)

	_, effects, err := svc.ChangePriority(context.Background(), ticket.ID, domain.PriorityMedium, "first", domain.RoleAdmin)
	require.NoError(t, err)
	require.True(t, effects.Persisted)
	*calls = nil
	eventsBefore := len(publisher.events)

	_, effects, err = svc.ChangePriority(context.Background(), ticket.ID, domain.PriorityMedium, "again", domain.RoleAdmin)

	require.NoError(t, err)
	assert.False(t, effects.Persisted)
	assert.False(t, effects.Published)
	assert.Empty(t, *calls)
	assert.Len(t, publisher.events, eventsBefore, "duplicate change publishes exactly one event overall")
}

func TestAddResponsePublishesEvent(t *testing.T) {
	svc, repo, publisher, _ := newTestService(t)
	ticket := createTicket(t, svc)

	response, effects, err := svc.AddResponse(context.Background(), ticket.ID, "restart the router", "admin-1")

	require.NoError(t, err)
	assert.True(t, effects.Persisted)
	assert.True(t, effects.Published)
	assert.Equal(t, "restart the router", response.Text)
	require.Len(t, repo.tickets[ticket.ID].Responses, 1)

	event := publisher.events[len(publisher.events)-1]
	assert.Equal(t, events.EventTicketResponseAdded, event.Type)
	payload, ok := event.Payload.(events.TicketResponseAddedPayload)
	require.True(t, ok)
	assert.Equal(t, "admin-1", payload.AdminID)
}

func TestDeleteTicket(t *testing.T) {
	svc, repo, publisher, _ := newTestService(t)
	ticket := createTicket(t, svc)

	effects, err := svc.DeleteTicket(context.Background(), ticket.ID)

	require.NoError(t, err)
	assert.True(t, effects.Persisted)
	assert.True(t, effects.Published)
	assert.Empty(t, repo.tickets)
	assert.Equal(t, events.EventTicketDeleted, publisher.events[len(publisher.events)-1].Type)
}

func TestDeleteTicketMissing(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.DeleteTicket(context.Background(), 404)

	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestPublishFailureKeepsPersistedState(t *testing.T) {
	svc, repo, publisher, _ := newTestService(t)
	ticket := createTicket(t, svc)
	publisher.err = errors.New("broker unavailable")

	updated, effects, err := svc.ChangeStatus(context.Background(), ticket.ID, domain.StatusInProgress)

	require.Error(t, err)
	assert.True(t, effects.Persisted)
	assert.False(t, effects.Published)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, domain.StatusInProgress, repo.tickets[ticket.ID].Status, "persisted state is not rolled back")
}

func TestSaveFailureSkipsPublish(t *testing.T) {
	svc, repo, publisher, calls := newTestService(t)
	ticket := createTicket(t, svc)
	repo.saveErr = errors.New("connection reset")
	*calls = nil
	eventsBefore := len(publisher.events)

	_, effects, err := svc.ChangeStatus(context.Background(), ticket.ID, domain.StatusInProgress)

	require.Error(t, err)
	assert.False(t, effects.Persisted)
	assert.False(t, effects.Published)
	assert.Equal(t, []string{"save"}, *calls, "publish must not run when persist failed")
	assert.Len(t, publisher.events, eventsBefore)
}
