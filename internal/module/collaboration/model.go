package collaboration

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a collaboration request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Role is a collaborator's role on a project.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// CollaborationRequest is a user's application to join a project. At most one
// pending request may exist per (project, user); rejection deletes the row so
// the user can apply again.
type CollaborationRequest struct {
	ID        uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID uuid.UUID     `json:"project_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	Status    RequestStatus `json:"status" gorm:"not null;default:'pending'"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// TableName returns the database table name.
func (CollaborationRequest) TableName() string {
	return "collaboration_requests"
}

// Collaboration is a membership row. The unique (project, user) index is the
// hard guard against double inserts under concurrent approves.
type Collaboration struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_collaborations_project_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_collaborations_project_user"`
	Role      Role      `json:"role" gorm:"not null;default:'member'"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Collaboration) TableName() string {
	return "collaborations"
}
