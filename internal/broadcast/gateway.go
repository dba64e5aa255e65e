// Package broadcast delivers room events to subscribers. The room
// controller publishes through the Gateway interface; the transport
// (in-process hub or redis pub/sub) is an implementation detail.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/quizroom/quizroom-go/internal/model"
)

// Envelope is the wire form of a room event
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Gateway fans a room's events out to all of its current subscribers.
// All subscribers of a room observe the same events in publish order;
// events published while a room has no subscribers are dropped.
type Gateway interface {
	// Publish delivers the event to every current subscriber of the room
	Publish(ctx context.Context, code model.RoomCode, event string, payload any) error

	// Subscribe associates the caller with the room's event stream.
	// Subscribing may happen before the room exists.
	Subscribe(ctx context.Context, code model.RoomCode) (*Subscription, error)
}

// Subscription is one subscriber's view of a room's event stream
type Subscription struct {
	ch      <-chan Envelope
	closeFn func()
	once    sync.Once
}

// NewSubscription wraps a delivery channel and a teardown function.
// The channel is closed by the gateway once the subscription is torn down.
func NewSubscription(ch <-chan Envelope, closeFn func()) *Subscription {
	return &Subscription{ch: ch, closeFn: closeFn}
}

// Events returns the stream of envelopes for this subscription
func (s *Subscription) Events() <-chan Envelope {
	return s.ch
}

// Close detaches the subscription from the gateway. Safe to call more
// than once.
func (s *Subscription) Close() {
	s.once.Do(s.closeFn)
}

// marshalEnvelope encodes an event payload into its wire form
func marshalEnvelope(event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: data}, nil
}
