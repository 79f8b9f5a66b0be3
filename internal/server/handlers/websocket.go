// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"trendpulse/internal/adapter/eventbus"
)

// Stream message types
const (
	MessageSnapshot = "snapshot"
	MessageSummary  = "summary"
)

// StreamMessage is the envelope written to WebSocket clients
type StreamMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	subscription *nats.Subscription
	config       WebSocketConfig
	logger       *slog.Logger
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TrendWebSocketHandler streams summaries published on subject. A client
// first receives the latest summary, if any, as a snapshot.
func TrendWebSocketHandler(bus eventbus.Conn, subject string, summaries SummaryReader, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := &WebSocketClient{
			conn:   conn,
			send:   make(chan []byte, 16),
			done:   make(chan struct{}),
			config: DefaultWebSocketConfig(),
			logger: logger,
		}

		if summary, ok := summaries.Latest(); ok {
			if data, err := json.Marshal(summary); err == nil {
				client.enqueue(MessageSnapshot, data)
			}
		}

		sub, err := bus.Subscribe(subject, func(msg *nats.Msg) {
			client.enqueue(MessageSummary, msg.Data)
		})
		if err != nil {
			logger.Error("subscribe to summaries failed", "subject", subject, "error", err)
			client.closeConnection()
			return
		}
		client.subscription = sub

		logger.Info("websocket client connected", "remote", r.RemoteAddr)

		go client.writePump()
		go client.readPump()
	}
}

// enqueue hands a message to the write pump. Slow clients drop messages
// rather than stall the event bus.
func (c *WebSocketClient) enqueue(msgType string, data []byte) {
	payload, err := json.Marshal(StreamMessage{Type: msgType, Data: data})
	if err != nil {
		c.logger.Warn("encode stream message failed", "error", err)
		return
	}

	select {
	case <-c.done:
	case c.send <- payload:
	default:
		c.logger.Warn("websocket client too slow, dropping message", "type", msgType)
	}
}

// readPump only services control frames; clients have nothing to say
func (c *WebSocketClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}
	}
}

// writePump pumps queued messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection releases the subscription and the socket. Safe to call
// from both pumps.
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		if c.subscription != nil {
			c.subscription.Unsubscribe()
		}
		close(c.done)
		c.conn.Close()
		c.logger.Info("websocket client disconnected")
	})
}
