package presence

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/metrics"
)

// ErrHubClosed is returned when subscribing after Shutdown.
var ErrHubClosed = errors.New("presence hub is shut down")

// Hub creates, tracks and removes the per-room channels.
type Hub struct {
	channels map[string]*Channel

	// mu protects channels and closed.
	mu     sync.Mutex
	closed bool

	// cleanup receives channels whose run loop has exited.
	cleanup chan *Channel

	// running counts live channel run loops; wg tracks the cleanup loop.
	running sync.WaitGroup
	wg      sync.WaitGroup

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHub constructs a Hub and starts its cleanup loop.
func NewHub(m *metrics.Metrics) *Hub {
	h := &Hub{
		channels: make(map[string]*Channel),
		cleanup:  make(chan *Channel, 16),
		metrics:  m,
		logger:   logx.Component("presence"),
	}

	h.wg.Add(1)
	go h.runCleanupLoop()

	return h
}

func (h *Hub) runCleanupLoop() {
	defer h.wg.Done()

	for ch := range h.cleanup {
		h.forget(ch)
	}

	h.logger.Debug().Msg("Cleanup loop stopped.")
}

// forget removes ch from the map unless it has already been replaced.
func (h *Hub) forget(ch *Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.channels[ch.roomID]; ok && cur == ch {
		delete(h.channels, ch.roomID)
		h.logger.Debug().Str("room_id", ch.roomID).Msg("Presence channel removed.")
	}
}

// channelFor returns the live channel of roomID, starting one if needed.
func (h *Hub) channelFor(roomID string) (*Channel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	if ch, ok := h.channels[roomID]; ok {
		return ch, nil
	}

	ch := newChannel(roomID, h.cleanup, h.metrics)
	h.channels[roomID] = ch

	h.running.Add(1)
	go func() {
		defer h.running.Done()
		ch.run()
	}()

	h.metrics.PresenceChannelOpened()
	h.logger.Debug().Str("room_id", roomID).Msg("Presence channel started.")

	return ch, nil
}

// attach registers s with the channel of roomID. A channel that exits while the
// registration is pending is discarded and a fresh one is started.
func (h *Hub) attach(roomID string, s *Subscriber) error {
	for {
		ch, err := h.channelFor(roomID)
		if err != nil {
			return err
		}

		s.channel = ch

		select {
		case ch.register <- s:
			return nil
		case <-ch.done:
			h.forget(ch)
		}
	}
}

// Serve subscribes conn to roomID and blocks until the connection ends.
// The connection is always closed when Serve returns.
func (h *Hub) Serve(roomID string, conn *websocket.Conn) error {
	s := newSubscriber(conn, roomID)

	if err := h.attach(roomID, s); err != nil {
		_ = conn.Close()
		return err
	}

	go s.writePump()
	s.readPump()

	return nil
}

// Publish sends the participant count of roomID to its subscribers.
// A room without subscribers is ignored.
func (h *Hub) Publish(roomID string, participants int) {
	h.mu.Lock()
	ch := h.channels[roomID]
	h.mu.Unlock()

	if ch == nil {
		return
	}

	ev := Event{Type: EventParticipants, RoomID: roomID, Participants: participants}

	select {
	case ch.broadcast <- ev:
	case <-ch.done:
	default:
		h.logger.Warn().Str("room_id", roomID).Msg("Broadcast queue full, dropping presence event.")
	}
}

// Subscribers returns the number of live subscribers of roomID.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.Lock()
	ch := h.channels[roomID]
	h.mu.Unlock()

	if ch == nil {
		return 0
	}
	return int(ch.count.Load())
}

// Channels returns the number of rooms with a live channel.
func (h *Hub) Channels() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.channels)
}

// Shutdown stops every channel, waits for their loops and then for the cleanup loop.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true

	for _, ch := range h.channels {
		ch.Stop()
	}
	h.mu.Unlock()

	h.running.Wait()

	close(h.cleanup)
	h.wg.Wait()

	h.logger.Info().Msg("Presence hub shutdown complete.")
}
