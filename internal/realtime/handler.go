package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/module/chat"
	"github.com/campushub/server/internal/shared/config"
	"github.com/campushub/server/internal/shared/response"
	"github.com/campushub/server/internal/utils/metrics"
	"github.com/campushub/server/internal/utils/middleware"
)

// Broker is the hub surface clients and the handler depend on. *Hub
// implements it; tests wrap it to observe publish order.
type Broker interface {
	Subscribe(topic string, c *Client)
	Detach(c *Client)
	Publish(topic string, payload any)
}

// Handler upgrades websocket connections and routes client frames.
type Handler struct {
	hub      Broker
	verifier middleware.TokenVerifier
	chat     *chat.Service
	cfg      *config.RealtimeConfig
	metrics  *metrics.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a realtime handler.
func NewHandler(hub Broker, verifier middleware.TokenVerifier, chatService *chat.Service, cfg *config.RealtimeConfig, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		verifier: verifier,
		chat:     chatService,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browsers cannot set custom headers on websocket connects, so
			// origin enforcement happens at the CORS layer for REST and is
			// deliberately open here; the bearer token is the gate.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts the upgrade endpoint. Auth happens inside ServeWS,
// before the upgrade.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.ServeWS)
}

// ServeWS authenticates the caller and upgrades the connection. Every client
// is auto-subscribed to its own user topic.
func (h *Handler) ServeWS(c *gin.Context) {
	userID, err := h.authenticate(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", "invalid or missing token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, userID, h.cfg, h.logger)
	h.hub.Subscribe(TopicUserPrefix+userID.String(), client)
	if h.metrics != nil {
		h.metrics.ConnectedClients.Inc()
	}
	h.logger.Info("websocket connected", zap.String("user_id", userID.String()))

	go client.writePump()
	client.readPump(h.route)

	if h.metrics != nil {
		h.metrics.ConnectedClients.Dec()
	}
	h.logger.Info("websocket disconnected", zap.String("user_id", userID.String()))
}

// authenticate resolves the user from a bearer token in the Authorization
// header or the token query parameter.
func (h *Handler) authenticate(c *gin.Context) (uuid.UUID, error) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
		if token == header {
			token = ""
		}
	}
	if token == "" {
		return uuid.Nil, errors.New("missing token")
	}
	return h.verifier.Verify(token)
}

// route dispatches one inbound frame. Failures become in-band error frames;
// the connection stays open.
func (h *Handler) route(client *Client, raw []byte) {
	frame, err := parseInbound(raw)
	if err != nil {
		client.sendFrame(errorFrame("malformed frame"))
		return
	}

	ctx := context.Background()
	switch frame.Event {
	case eventSubscribe:
		h.handleSubscribe(client, frame)
	case eventSendMessage:
		h.handleSendMessage(ctx, client, frame)
	case eventTyping:
		h.handleTyping(client, frame)
	case eventMarkAsRead:
		h.handleMarkAsRead(ctx, client, frame)
	default:
		client.sendFrame(errorFrame("unknown event: " + frame.Event))
	}
}

func (h *Handler) handleSubscribe(client *Client, frame *inboundFrame) {
	if frame.ProjectID == "" {
		// Already on the personal topic since connect; nothing to join.
		return
	}
	projectID, err := uuid.Parse(frame.ProjectID)
	if err != nil {
		client.sendFrame(errorFrame("invalid project_id"))
		return
	}
	h.hub.Subscribe(TopicProjectPrefix+projectID.String(), client)
}

func (h *Handler) handleSendMessage(ctx context.Context, client *Client, frame *inboundFrame) {
	if frame.ReceiverID == "" {
		client.sendFrame(errorFrame("receiver_id is required"))
		return
	}
	if frame.Content == "" {
		client.sendFrame(errorFrame("content is required"))
		return
	}
	receiverID, err := uuid.Parse(frame.ReceiverID)
	if err != nil {
		client.sendFrame(errorFrame("invalid receiver_id"))
		return
	}

	var projectID *uuid.UUID
	if frame.ProjectID != "" {
		id, err := uuid.Parse(frame.ProjectID)
		if err != nil {
			client.sendFrame(errorFrame("invalid project_id"))
			return
		}
		projectID = &id
	}

	m, err := h.chat.SendMessage(ctx, client.userID, receiverID, projectID, frame.Content)
	if err != nil {
		client.sendFrame(errorFrame(sendErrorMessage(err)))
		return
	}

	receive := messageFrame("message:receive", m)
	// Personal topic first, then the project channel.
	h.hub.Publish(TopicUserPrefix+m.ReceiverID.String(), receive)
	if m.ProjectID != nil {
		h.hub.Publish(TopicProjectPrefix+m.ProjectID.String(), receive)
	}

	sent := messageFrame("message:sent", m)
	sent.Status = "sent"
	client.sendFrame(sent)
}

func (h *Handler) handleTyping(client *Client, frame *inboundFrame) {
	// Ephemeral: nothing persists, a missing receiver is a silent no-op.
	if frame.ReceiverID == "" {
		return
	}
	receiverID, err := uuid.Parse(frame.ReceiverID)
	if err != nil {
		return
	}

	typing := TypingFrame{
		Event:     "message:typing",
		SenderID:  client.userID.String(),
		ProjectID: frame.ProjectID,
	}
	h.hub.Publish(TopicUserPrefix+receiverID.String(), typing)
	if frame.ProjectID != "" {
		if projectID, err := uuid.Parse(frame.ProjectID); err == nil {
			h.hub.Publish(TopicProjectPrefix+projectID.String(), typing)
		}
	}
}

func (h *Handler) handleMarkAsRead(ctx context.Context, client *Client, frame *inboundFrame) {
	if frame.MessageID == "" {
		client.sendFrame(errorFrame("message_id is required"))
		return
	}
	messageID, err := uuid.Parse(frame.MessageID)
	if err != nil {
		client.sendFrame(errorFrame("invalid message_id"))
		return
	}

	m, err := h.chat.MarkAsRead(ctx, client.userID, messageID)
	if err != nil {
		client.sendFrame(errorFrame(sendErrorMessage(err)))
		return
	}

	h.hub.Publish(TopicUserPrefix+m.SenderID.String(), ReadFrame{
		Event:     "message:read",
		MessageID: m.ID.String(),
		SenderID:  m.SenderID.String(),
		IsRead:    true,
	})
	client.sendFrame(ReadFrame{
		Event:     "message:read_confirmed",
		MessageID: m.ID.String(),
		SenderID:  m.SenderID.String(),
		IsRead:    true,
	})
}

// messageFrame builds the wire shape for a persisted message.
func messageFrame(event string, m *chat.Message) MessageFrame {
	frame := MessageFrame{
		Event:      event,
		MessageID:  m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Content:    m.Content,
		Timestamp:  m.SentAt.Unix(),
		IsRead:     m.IsRead,
	}
	if m.ProjectID != nil {
		frame.ProjectID = m.ProjectID.String()
	}
	if frame.Timestamp < 0 || m.SentAt.IsZero() {
		frame.Timestamp = time.Now().Unix()
	}
	return frame
}

// sendErrorMessage maps domain errors onto client-safe error text.
func sendErrorMessage(err error) string {
	switch {
	case errors.Is(err, chat.ErrMissingReceiver):
		return "receiver_id is required"
	case errors.Is(err, chat.ErrEmptyContent):
		return "content is required"
	case errors.Is(err, chat.ErrContentRejected):
		return "message rejected by moderation"
	case errors.Is(err, chat.ErrMessageNotFound):
		return "message not found"
	case errors.Is(err, chat.ErrNotReceiver):
		return "message belongs to another receiver"
	default:
		return "internal error"
	}
}

func parseInbound(raw []byte) (*inboundFrame, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, err
	}
	if frame.Event == "" {
		return nil, errors.New("missing event")
	}
	return &frame, nil
}
