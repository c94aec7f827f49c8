package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message, optionally scoped to a project channel. It is
// created on send and mutated exactly once, when the receiver reads it.
type Message struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SenderID   uuid.UUID  `json:"sender_id" gorm:"type:uuid;not null;index"`
	ReceiverID uuid.UUID  `json:"receiver_id" gorm:"type:uuid;not null;index"`
	ProjectID  *uuid.UUID `json:"project_id,omitempty" gorm:"type:uuid;index"`
	Content    string     `json:"content" gorm:"not null"`
	SentAt     time.Time  `json:"sent_at" gorm:"autoCreateTime"`
	IsRead     bool       `json:"is_read" gorm:"not null;default:false"`
	Hidden     bool       `json:"-" gorm:"not null;default:false"`
}

// TableName returns the database table name.
func (Message) TableName() string {
	return "messages"
}
