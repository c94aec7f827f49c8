package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/campushub/server/internal/utils/metrics"
)

// Topic names. A user hears personal events on user:{id}; project channels
// carry project-scoped chat.
const (
	TopicUserPrefix    = "user:"
	TopicProjectPrefix = "project:"
)

// Hub is the in-process pub/sub registry: topic string to the set of attached
// clients. It is transport-agnostic; anything with a send buffer can attach.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[*Client]struct{}
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		topics:  map[string]map[*Client]struct{}{},
		metrics: m,
		logger:  logger,
	}
}

// Subscribe attaches the client to a topic.
func (h *Hub) Subscribe(topic string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.topics[topic]
	if !ok {
		set = map[*Client]struct{}{}
		h.topics[topic] = set
		if h.metrics != nil {
			h.metrics.ActiveTopics.Inc()
		}
	}
	set[c] = struct{}{}
	c.track(topic)
}

// Unsubscribe detaches the client from a topic. Empty topics are removed.
func (h *Hub) Unsubscribe(topic string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(topic, c)
	c.untrack(topic)
}

func (h *Hub) unsubscribeLocked(topic string, c *Client) {
	set, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.topics, topic)
		if h.metrics != nil {
			h.metrics.ActiveTopics.Dec()
		}
	}
}

// Detach removes the client from every topic it joined. Called exactly once
// when a connection ends; missed broadcasts are not redelivered.
func (h *Hub) Detach(c *Client) {
	topics := c.drainTopics()
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		h.unsubscribeLocked(topic, c)
	}
}

// Publish fans the payload out to every subscriber of the topic. Slow clients
// whose buffers are full miss the frame; Publish never blocks.
func (h *Hub) Publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal frame failed", zap.String("topic", topic), zap.Error(err))
		return
	}

	h.mu.RLock()
	subscribers := make([]*Client, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		subscribers = append(subscribers, c)
	}
	h.mu.RUnlock()

	for _, c := range subscribers {
		if !c.enqueue(data) {
			if h.metrics != nil {
				h.metrics.FramesDropped.Inc()
			}
			h.logger.Warn("frame dropped, client buffer full",
				zap.String("topic", topic),
				zap.String("user_id", c.userID.String()),
			)
		}
	}

	if h.metrics != nil {
		h.metrics.FramesPublished.WithLabelValues(eventOf(payload)).Inc()
	}
}

// SubscriberCount reports how many clients a topic currently has.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// eventOf extracts the event label for metrics.
func eventOf(payload any) string {
	switch p := payload.(type) {
	case interface{ EventName() string }:
		return p.EventName()
	case map[string]any:
		if e, ok := p["event"].(string); ok {
			return e
		}
	}
	return "unknown"
}
