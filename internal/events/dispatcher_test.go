package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []string
	d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		got = append(got, "a")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		got = append(got, "b")
		return nil
	})
	d.Subscribe(EventTicketAssigned, func(ctx context.Context, e Event) error {
		got = append(got, "other")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("delivered = %v, want [a b]", got)
	}
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()

	delivered := false
	d.Subscribe(EventTicketShared, func(ctx context.Context, e Event) error {
		return errors.New("handler failure")
	})
	d.Subscribe(EventTicketShared, func(ctx context.Context, e Event) error {
		delivered = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketShared}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !delivered {
		t.Fatal("second handler not reached after first errored")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventTicketEscalated}); err != nil {
		t.Fatalf("publish with no subscribers: %v", err)
	}
}
