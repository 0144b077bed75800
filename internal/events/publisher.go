package events

import "context"

// Publisher is the outbound messaging boundary. Use cases publish after a
// successful persist; any error propagates to the caller uncaught — the
// persisted state stays authoritative and is never rolled back.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Tee fans a publish out to several publishers in order. The first error
// stops the chain and is returned, so a broker failure still reaches the
// use case even when a local dispatcher succeeded first.
type Tee struct {
	targets []Publisher
}

// NewTee composes publishers into one.
func NewTee(targets ...Publisher) *Tee {
	return &Tee{targets: targets}
}

// Publish forwards the event to every target.
func (t *Tee) Publish(ctx context.Context, event Event) error {
	for _, target := range t.targets {
		if err := target.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
