package presence

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mocrs/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// subscribers never send payloads; anything larger than a control frame is refused.
	maxMessageSize = 512

	sendQueueSize = 16
)

// Subscriber is one websocket connection following a room.
type Subscriber struct {
	channel *Channel
	conn    *websocket.Conn

	// send is closed by the channel run loop when the subscriber is dropped.
	send chan []byte

	logger zerolog.Logger
}

func newSubscriber(conn *websocket.Conn, roomID string) *Subscriber {
	return &Subscriber{
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Component("presence").With().Str("room_id", roomID).Str("remote_addr", conn.RemoteAddr().String()).Logger(),
	}
}

// readPump only detects the close of the connection and keeps the read deadline alive.
func (s *Subscriber) readPump() {
	defer func() {
		select {
		case s.channel.unregister <- s:
		case <-s.channel.done:
		}

		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Subscriber connection close error")
		}
	}()

	s.conn.SetReadLimit(maxMessageSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Subscriber read error")
			}
			return
		}
	}
}

// writePump writes queued events and periodic pings until the send queue is closed.
func (s *Subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.logger.Warn().Err(err).Msg("Error writing presence event")
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
