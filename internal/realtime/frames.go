package realtime

// Inbound and outbound frame shapes. The JSON field names are part of the
// client contract and must not change.

// inboundFrame is the envelope every client frame is parsed into.
type inboundFrame struct {
	Event      string `json:"event"`
	ProjectID  string `json:"project_id,omitempty"`
	ReceiverID string `json:"receiver_id,omitempty"`
	Content    string `json:"content,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
}

// Client event names.
const (
	eventSubscribe   = "subscribe"
	eventSendMessage = "send_message"
	eventTyping      = "typing"
	eventMarkAsRead  = "mark_as_read"
)

// MessageFrame carries a chat message over the wire.
type MessageFrame struct {
	Event      string `json:"event"`
	MessageID  string `json:"message_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	ProjectID  string `json:"project_id,omitempty"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
	IsRead     bool   `json:"is_read"`
	Status     string `json:"status,omitempty"`
}

// EventName implements the hub's event labelling.
func (f MessageFrame) EventName() string { return f.Event }

// TypingFrame is the ephemeral typing indicator.
type TypingFrame struct {
	Event     string `json:"event"`
	SenderID  string `json:"sender_id"`
	ProjectID string `json:"project_id,omitempty"`
}

// EventName implements the hub's event labelling.
func (f TypingFrame) EventName() string { return f.Event }

// ReadFrame reports a read receipt to the original sender.
type ReadFrame struct {
	Event     string `json:"event"`
	MessageID string `json:"message_id"`
	SenderID  string `json:"sender_id"`
	IsRead    bool   `json:"is_read"`
}

// EventName implements the hub's event labelling.
func (f ReadFrame) EventName() string { return f.Event }

// ErrorFrame is an in-band failure report; the connection stays open.
type ErrorFrame struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// EventName implements the hub's event labelling.
func (f ErrorFrame) EventName() string { return f.Event }

func errorFrame(msg string) ErrorFrame {
	return ErrorFrame{Event: "error", Error: msg}
}
