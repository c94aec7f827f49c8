package notification

import (
	"time"

	"github.com/campushub/server/internal/shared/entity"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification is a persisted in-app notification. Rows are created only by
// the Dispatcher; afterwards only the read flag ever changes.
type Notification struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty" gorm:"type:uuid"`
	Type       Type           `json:"type" gorm:"not null;index"`
	EntityKind entity.Kind    `json:"entity_kind" gorm:"not null"`
	EntityID   uuid.UUID      `json:"entity_id" gorm:"type:uuid;not null"`
	Message    string         `json:"message" gorm:"not null"`
	Metadata   datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	IsRead     bool           `json:"is_read" gorm:"not null;default:false;index"`
	ReadAt     *time.Time     `json:"read_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName returns the database table name.
func (Notification) TableName() string {
	return "notifications"
}

// Entity returns the tagged reference to the triggering entity.
func (n *Notification) Entity() entity.Ref {
	return entity.Ref{Kind: n.EntityKind, ID: n.EntityID}
}
