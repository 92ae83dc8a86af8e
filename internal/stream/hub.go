package stream

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tradejournal/internal/models"
)

const (
	// sendBuffer is the number of pending events a subscriber may fall
	// behind before it is dropped
	sendBuffer = 32

	writeTimeout = 10 * time.Second
)

// TradeEvent is pushed to a user's connected dashboards whenever one of
// their trades is ingested or entered
type TradeEvent struct {
	Type  string        `json:"type"`
	Mode  string        `json:"mode,omitempty"`
	Trade *models.Trade `json:"trade,omitempty"`
}

// Subscriber is one dashboard connection attached to the hub. Events are
// written by a dedicated goroutine fed from a buffered channel, so a
// stalled connection never blocks the publisher.
type Subscriber struct {
	userID uint
	conn   *websocket.Conn
	send   chan TradeEvent
}

// Hub fans trade events out to websocket subscribers, grouped per user.
// Publish only performs non-blocking channel sends under the hub lock; a
// subscriber whose buffer is full is dropped on the spot, so ingestion
// requests are never held up by a slow or dead dashboard.
type Hub struct {
	mu   sync.Mutex
	subs map[uint]map[*Subscriber]struct{}
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint]map[*Subscriber]struct{}),
	}
}

// Register attaches a connection as a subscriber for a user and starts
// its writer goroutine. The hub owns the connection from here on: it is
// closed when the subscriber is unregistered or its write fails.
func (h *Hub) Register(userID uint, conn *websocket.Conn) *Subscriber {
	sub := &Subscriber{
		userID: userID,
		conn:   conn,
		send:   make(chan TradeEvent, sendBuffer),
	}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(sub)
	return sub
}

// Unregister detaches a subscriber. Safe to call more than once.
func (h *Hub) Unregister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub)
}

// remove detaches a subscriber and closes its send channel, which stops
// the writer goroutine. Caller must hold h.mu.
func (h *Hub) remove(sub *Subscriber) {
	set, ok := h.subs[sub.userID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.userID)
	}
	close(sub.send)
}

// writeLoop drains a subscriber's send channel onto its connection. Each
// write carries a deadline; a failed or expired write drops the
// subscriber.
func (h *Hub) writeLoop(sub *Subscriber) {
	defer sub.conn.Close()

	for event := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := sub.conn.WriteJSON(event); err != nil {
			log.Printf("[Stream] dropping subscriber for user %d: %v", sub.userID, err)
			h.Unregister(sub)
			return
		}
	}
}

// Publish queues an event for every subscriber of the given user. Never
// blocks: a subscriber that cannot keep up is dropped and its connection
// closed by the writer.
func (h *Hub) Publish(userID uint, event TradeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[userID] {
		select {
		case sub.send <- event:
		default:
			log.Printf("[Stream] dropping slow subscriber for user %d", userID)
			h.remove(sub)
		}
	}
}

// SubscriberCount reports the number of attached subscribers for a user
func (h *Hub) SubscriberCount(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// Close detaches every subscriber. Called during shutdown; the writer
// goroutines close the connections as they finish draining.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.subs {
		for sub := range set {
			h.remove(sub)
		}
	}
}
