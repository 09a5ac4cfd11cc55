package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one inbound message notification from the gateway's
// websocket stream. The field shapes match the gateway's webhook form
// fields so both inbound paths feed the session runner identically.
type Event struct {
	From     string `json:"from"`
	Body     string `json:"body"`
	MediaURL string `json:"media_url,omitempty"`
}

// Stream maintains a websocket connection to the gateway's event
// stream and pushes inbound messages to a channel. It is the
// alternative to webhook delivery for deployments where the daemon is
// not reachable from the gateway.
type Stream struct {
	streamURL string
	token     string
	logger    *slog.Logger

	conn   *websocket.Conn
	events chan Event
}

// NewStream creates a stream client. Call Connect to establish the
// connection.
func NewStream(streamURL, token string, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		streamURL: streamURL,
		token:     token,
		logger:    logger,
		events:    make(chan Event, 64),
	}
}

// Connect dials the gateway event stream, authenticates, and starts
// the read loop. The events channel is closed when the connection
// drops.
func (s *Stream) Connect(ctx context.Context) error {
	u, err := url.Parse(s.streamURL)
	if err != nil {
		return fmt.Errorf("parse stream URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}

	s.logger.Info("connecting to gateway event stream", "url", u.String())

	dialer := websocket.Dialer{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 16 * 1024,
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial event stream: %w", err)
	}

	if s.token != "" {
		auth := map[string]string{"type": "auth", "token": s.token}
		if err := conn.WriteJSON(auth); err != nil {
			conn.Close()
			return fmt.Errorf("send stream auth: %w", err)
		}
	}

	s.conn = conn
	go s.readLoop()

	s.logger.Info("gateway event stream connected")
	return nil
}

// Events returns the channel of inbound message events.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Close closes the websocket connection.
func (s *Stream) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Stream) readLoop() {
	defer close(s.events)

	for {
		var ev Event
		if err := s.conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info("gateway event stream closed")
				return
			}
			s.logger.Error("gateway event stream read error", "error", err)
			return
		}

		if ev.From == "" {
			s.logger.Debug("gateway stream ignoring event with empty sender")
			continue
		}

		select {
		case s.events <- ev:
		default:
			s.logger.Warn("gateway event channel full, dropping message", "from", ev.From)
		}
	}
}

// TurnRunner abstracts the session runner for testability.
type TurnRunner interface {
	HandleMessage(ctx context.Context, from, body, mediaURL string) error
}

// handleTimeout bounds how long one inbound message may be processed.
const handleTimeout = 5 * time.Minute

// Pump consumes events from the stream and runs each through the
// session runner until ctx is cancelled or the stream closes.
func Pump(ctx context.Context, stream *Stream, runner TurnRunner, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("gateway bridge started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("gateway bridge shutting down")
			return
		case ev, ok := <-stream.Events():
			if !ok {
				logger.Info("gateway event channel closed, bridge stopping")
				return
			}

			turnCtx, cancel := context.WithTimeout(ctx, handleTimeout)
			if err := runner.HandleMessage(turnCtx, ev.From, ev.Body, ev.MediaURL); err != nil {
				logger.Error("turn failed",
					"from", ev.From,
					"error", err,
				)
			}
			cancel()
		}
	}
}
