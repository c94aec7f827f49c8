package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/shared/config"
)

// Client is one websocket connection. Each connection runs a read pump and a
// write pump; all cross-connection traffic goes through the hub, never
// client to client.
type Client struct {
	hub    Broker
	conn   *websocket.Conn
	userID uuid.UUID

	// send is never closed: an in-flight hub publish may still enqueue after
	// the connection dies. done stops the write pump instead.
	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	topics map[string]struct{}

	cfg    *config.RealtimeConfig
	logger *zap.Logger
}

func newClient(hub Broker, conn *websocket.Conn, userID uuid.UUID, cfg *config.RealtimeConfig, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, cfg.SendBufferSize),
		done:   make(chan struct{}),
		topics: map[string]struct{}{},
		cfg:    cfg,
		logger: logger,
	}
}

// enqueue hands a marshalled frame to the write pump without blocking.
// Returns false when the buffer is full and the frame was dropped.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// sendFrame marshals and enqueues a frame addressed to this client only.
func (c *Client) sendFrame(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshal frame failed", zap.Error(err))
		return
	}
	if !c.enqueue(data) {
		c.logger.Warn("frame dropped, client buffer full", zap.String("user_id", c.userID.String()))
	}
}

func (c *Client) track(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic] = struct{}{}
}

func (c *Client) untrack(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.topics, topic)
}

// drainTopics empties and returns the client's topic set.
func (c *Client) drainTopics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	topics := make([]string, 0, len(c.topics))
	for topic := range c.topics {
		topics = append(topics, topic)
	}
	c.topics = map[string]struct{}{}
	return topics
}

// readPump reads client frames and routes them until the connection dies.
// Runs on the connection's goroutine; route is the handler's dispatch.
func (c *Client) readPump(route func(*Client, []byte)) {
	defer func() {
		c.hub.Detach(c)
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", zap.String("user_id", c.userID.String()), zap.Error(err))
			}
			return
		}
		route(c, raw)
	}
}

// writePump flushes the send buffer and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
