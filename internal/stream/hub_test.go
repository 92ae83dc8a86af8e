package stream

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradejournal/internal/models"
)

// newStreamServer upgrades every request to a websocket and registers it
// with the hub under the user id from the query string, mirroring how
// the stream endpoint attaches dashboards.
func newStreamServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.Atoi(r.URL.Query().Get("user"))
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		sub := hub.Register(uint(userID), conn)
		defer hub.Unregister(sub)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialStream(t *testing.T, srv *httptest.Server, hub *Hub, userID uint) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + strconv.Itoa(int(userID))
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	// the server goroutine registers after the handshake completes
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(userID) > 0
	}, 2*time.Second, 10*time.Millisecond)

	return conn
}

func TestPublishReachesOnlyOwnSubscribers(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub)

	conn1 := dialStream(t, srv, hub, 1)
	conn2 := dialStream(t, srv, hub, 2)

	pair := "EURUSD"
	hub.Publish(1, TradeEvent{
		Type:  "trade",
		Mode:  "inserted",
		Trade: &models.Trade{UserID: 1, Pair: &pair},
	})

	var event TradeEvent
	conn1.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn1.ReadJSON(&event))
	assert.Equal(t, "trade", event.Type)
	assert.Equal(t, "inserted", event.Mode)
	require.NotNil(t, event.Trade)
	require.NotNil(t, event.Trade.Pair)
	assert.Equal(t, "EURUSD", *event.Trade.Pair)

	// the other user's dashboard hears nothing
	conn2.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn2.ReadMessage()
	assert.Error(t, err)
}

func TestPublishFansOutToAllConnections(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub)

	conn1 := dialStream(t, srv, hub, 1)
	conn2 := dialStream(t, srv, hub, 1)
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(1) == 2
	}, 2*time.Second, 10*time.Millisecond)

	hub.Publish(1, TradeEvent{Type: "trade", Mode: "updated"})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		var event TradeEvent
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, "updated", event.Mode)
	}
}

func TestStalledSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub)

	// connect and then never read, so the connection's buffers fill up
	dialStream(t, srv, hub, 1)

	notes := strings.Repeat("x", 1<<20)
	big := TradeEvent{Type: "trade", Trade: &models.Trade{UserID: 1, Notes: &notes}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			hub.Publish(1, big)
		}
		// a user with no subscribers at all must not wait either
		hub.Publish(2, TradeEvent{Type: "trade"})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked behind a stalled subscriber")
	}

	// the stalled subscriber was dropped once it fell too far behind
	assert.Zero(t, hub.SubscriberCount(1))
}

func TestBrokenConnectionIsDropped(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub)

	conn := dialStream(t, srv, hub, 1)
	conn.Close()

	require.Eventually(t, func() bool {
		hub.Publish(1, TradeEvent{Type: "trade"})
		return hub.SubscriberCount(1) == 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub)

	conn := dialStream(t, srv, hub, 1)

	hub.Close()
	assert.Zero(t, hub.SubscriberCount(1))

	// the server handler unregisters again as the read loop exits
	conn.Close()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, hub.SubscriberCount(1))

	// publishing into an empty hub is a no-op
	hub.Publish(1, TradeEvent{Type: "trade"})
}
