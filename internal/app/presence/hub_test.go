package presence

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mocrs/internal/pkg/metrics"
)

const testRoom = "8d9a3c5e-2f4b-4e0a-9c1d-0f7f4e2b6a11"

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = hub.Serve(strings.TrimPrefix(r.URL.Path, "/"), conn)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server, roomID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/" + roomID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHub_PublishReachesSubscribers(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()

	srv := newTestServer(t, hub)
	a := dial(t, srv, testRoom)
	b := dial(t, srv, testRoom)

	waitFor(t, "two subscribers", func() bool { return hub.Subscribers(testRoom) == 2 })

	hub.Publish(testRoom, 3)

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

		_, frame, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		var ev Event
		if err := json.Unmarshal(frame, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev != (Event{Type: EventParticipants, RoomID: testRoom, Participants: 3}) {
			t.Fatalf("event=%+v", ev)
		}
	}
}

func TestHub_PublishWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()

	hub.Publish("nobody-here", 1)

	if hub.Channels() != 0 {
		t.Fatalf("publish must not create a channel")
	}
}

func TestHub_ChannelRemovedAfterLastSubscriberLeaves(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	hub := NewHub(m)
	defer hub.Shutdown()

	srv := newTestServer(t, hub)
	conn := dial(t, srv, testRoom)

	waitFor(t, "subscriber", func() bool { return hub.Subscribers(testRoom) == 1 })
	if got := testutil.ToFloat64(m.PresenceChannels); got != 1 {
		t.Fatalf("gauge=%v, want 1", got)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	waitFor(t, "channel removal", func() bool { return hub.Channels() == 0 })
	waitFor(t, "gauge reset", func() bool { return testutil.ToFloat64(m.PresenceChannels) == 0 })

	again := dial(t, srv, testRoom)
	waitFor(t, "resubscribe", func() bool { return hub.Subscribers(testRoom) == 1 })
	_ = again
}

func TestHub_ShutdownDisconnectsSubscribers(t *testing.T) {
	hub := NewHub(nil)

	srv := newTestServer(t, hub)
	conn := dial(t, srv, testRoom)

	waitFor(t, "subscriber", func() bool { return hub.Subscribers(testRoom) == 1 })

	hub.Shutdown()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection to be closed after shutdown")
	}

	if hub.Channels() != 0 {
		t.Fatalf("channels=%d after shutdown", hub.Channels())
	}

	// Shutdown is idempotent.
	hub.Shutdown()
}
