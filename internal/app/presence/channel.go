package presence

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/metrics"
)

const broadcastChannelBuffer = 64

// Channel fans presence events of one room out to its subscribers.
// Only the run loop touches subs and closes subscriber send queues.
type Channel struct {
	roomID string

	subs  map[*Subscriber]struct{}
	count atomic.Int64

	broadcast  chan Event
	register   chan *Subscriber
	unregister chan *Subscriber

	// cleanup notifies the hub once the run loop has exited.
	cleanup chan<- *Channel

	stop     chan struct{}
	stopOnce sync.Once

	// done is closed when the run loop exits.
	done chan struct{}

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func newChannel(roomID string, cleanup chan<- *Channel, m *metrics.Metrics) *Channel {
	return &Channel{
		roomID:     roomID,
		subs:       make(map[*Subscriber]struct{}),
		broadcast:  make(chan Event, broadcastChannelBuffer),
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		cleanup:    cleanup,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     logx.Component("presence").With().Str("room_id", roomID).Logger(),
	}
}

// Stop terminates the run loop. Remaining subscribers are disconnected.
func (c *Channel) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Channel) drop(s *Subscriber) {
	if _, ok := c.subs[s]; !ok {
		return
	}
	delete(c.subs, s)
	close(s.send)
	c.count.Store(int64(len(c.subs)))
}

// run handles registration and broadcasting until the last subscriber leaves or Stop is called.
func (c *Channel) run() {
	defer func() {
		for s := range c.subs {
			c.drop(s)
		}
		close(c.done)

		c.metrics.PresenceChannelClosed()
		c.cleanup <- c

		c.logger.Debug().Msg("Presence channel run loop finished.")
	}()

	for {
		select {
		case s := <-c.register:
			c.subs[s] = struct{}{}
			c.count.Store(int64(len(c.subs)))

			c.logger.Debug().Int("subscribers", len(c.subs)).Msg("Subscriber joined.")

		case s := <-c.unregister:
			c.drop(s)

			if len(c.subs) == 0 {
				c.logger.Debug().Msg("Last subscriber left.")
				return
			}

		case ev := <-c.broadcast:
			frame, err := json.Marshal(ev)
			if err != nil {
				c.logger.Error().Err(err).Msg("Error marshaling presence event.")
				continue
			}

			for s := range c.subs {
				select {
				case s.send <- frame:
				default:
					c.logger.Warn().Msg("Subscriber send queue full, dropping subscriber.")
					c.drop(s)
				}
			}

			if len(c.subs) == 0 {
				return
			}

		case <-c.stop:
			return
		}
	}
}
