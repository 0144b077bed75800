package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	name  string
	err   error
	calls *[]string
}

func (f *fakePublisher) Publish(_ context.Context, _ Event) error {
	*f.calls = append(*f.calls, f.name)
	return f.err
}

func TestTeePublishesInOrder(t *testing.T) {
	var calls []string
	tee := NewTee(
		&fakePublisher{name: "local", calls: &calls},
		&fakePublisher{name: "broker", calls: &calls},
	)

	err := tee.Publish(context.Background(), Event{Type: EventTicketCreated})

	require.NoError(t, err)
	assert.Equal(t, []string{"local", "broker"}, calls)
}

func TestTeeStopsOnFirstError(t *testing.T) {
	var calls []string
	brokerErr := errors.New("broker down")
	tee := NewTee(
		&fakePublisher{name: "local", calls: &calls},
		&fakePublisher{name: "broker", err: brokerErr, calls: &calls},
		&fakePublisher{name: "never", calls: &calls},
	)

	err := tee.Publish(context.Background(), Event{Type: EventTicketCreated})

	assert.ErrorIs(t, err, brokerErr)
	assert.Equal(t, []string{"local", "broker"}, calls)
}

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []EventType
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		got = append(got, event.Type)
		return nil
	})
	dispatcher.Subscribe(EventTicketDeleted, func(_ context.Context, event Event) error {
		got = append(got, event.Type)
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}))

	assert.Equal(t, []EventType{EventTicketCreated}, got, "only the matching subscription fires")
}

func TestDispatcherHandlerErrorsDoNotStopDelivery(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var reached bool
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		reached = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.True(t, reached)
}
