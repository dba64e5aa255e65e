package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quizroom/quizroom-go/internal/model"
)

const (
	// Buffer size for a hub's inbound event queue
	broadcastBufferSize = 256

	// Buffer size for each subscriber's delivery channel
	sendBufferSize = 64
)

// HubGateway is the in-process Gateway implementation: one hub per room,
// each with a single dispatch goroutine, so every subscriber of a room
// sees events in publish order.
type HubGateway struct {
	mu     sync.RWMutex
	hubs   map[model.RoomCode]*hub
	logger *slog.Logger
}

// Ensure HubGateway implements Gateway
var _ Gateway = (*HubGateway)(nil)

// NewHubGateway creates a new HubGateway
func NewHubGateway(logger *slog.Logger) *HubGateway {
	return &HubGateway{
		hubs:   make(map[model.RoomCode]*hub),
		logger: logger.With(slog.String("component", "broadcast")),
	}
}

// Publish delivers the event to the room's hub. A room nobody has
// subscribed to yet has no hub; its events are dropped.
func (g *HubGateway) Publish(_ context.Context, code model.RoomCode, event string, payload any) error {
	env, err := marshalEnvelope(event, payload)
	if err != nil {
		return err
	}

	g.mu.RLock()
	h := g.hubs[code]
	g.mu.RUnlock()
	if h == nil {
		return nil
	}

	h.publish(env)
	return nil
}

// Subscribe attaches a new subscriber to the room's hub, creating the hub
// if needed. Subscribing before the room exists is allowed.
func (g *HubGateway) Subscribe(_ context.Context, code model.RoomCode) (*Subscription, error) {
	h := g.getOrCreateHub(code)

	sub := &subscriber{send: make(chan Envelope, sendBufferSize)}
	select {
	case h.register <- sub:
	case <-h.done:
	}

	return NewSubscription(sub.send, func() {
		// The hub may already be shut down
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
	}), nil
}

// SubscriberCount returns the number of subscribers attached to a room
func (g *HubGateway) SubscriberCount(code model.RoomCode) int {
	g.mu.RLock()
	h := g.hubs[code]
	g.mu.RUnlock()
	if h == nil {
		return 0
	}
	return h.subscriberCount()
}

// RemoveRoom closes the room's hub and disconnects its subscribers
func (g *HubGateway) RemoveRoom(code model.RoomCode) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if h, ok := g.hubs[code]; ok {
		h.close()
		delete(g.hubs, code)
		g.logger.Info("hub removed", slog.String("room", string(code)))
	}
}

// Close shuts down every hub
func (g *HubGateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for code, h := range g.hubs {
		h.close()
		delete(g.hubs, code)
	}
}

func (g *HubGateway) getOrCreateHub(code model.RoomCode) *hub {
	g.mu.Lock()
	defer g.mu.Unlock()

	if h, ok := g.hubs[code]; ok {
		return h
	}

	h := newHub(code, g.logger)
	g.hubs[code] = h
	go h.run()
	return h
}

// subscriber is one attached client of a hub
type subscriber struct {
	send chan Envelope
}

// hub dispatches a single room's events to its subscribers
type hub struct {
	code        model.RoomCode
	mu          sync.RWMutex
	subscribers map[*subscriber]bool
	logger      *slog.Logger

	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan Envelope
	done       chan struct{}
}

func newHub(code model.RoomCode, logger *slog.Logger) *hub {
	return &hub{
		code:        code,
		subscribers: make(map[*subscriber]bool),
		logger:      logger.With(slog.String("room", string(code))),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		broadcast:   make(chan Envelope, broadcastBufferSize),
		done:        make(chan struct{}),
	}
}

// run is the hub's dispatch loop
func (h *hub) run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = true
			count := len(h.subscribers)
			h.mu.Unlock()
			h.logger.Info("subscriber registered", slog.Int("total", count))

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
			}
			count := len(h.subscribers)
			h.mu.Unlock()
			h.logger.Info("subscriber unregistered", slog.Int("total", count))

		case env := <-h.broadcast:
			h.mu.RLock()
			for sub := range h.subscribers {
				select {
				case sub.send <- env:
				default:
					h.logger.Warn("event dropped, subscriber buffer full",
						slog.String("event", env.Event))
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for sub := range h.subscribers {
				close(sub.send)
				delete(h.subscribers, sub)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *hub) publish(env Envelope) {
	select {
	case h.broadcast <- env:
	default:
		h.logger.Warn("event dropped, hub buffer full",
			slog.String("event", env.Event))
	}
}

func (h *hub) subscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *hub) close() {
	close(h.done)
}
