package funding

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a funding request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusVerified RequestStatus = "verified"
	StatusRejected RequestStatus = "rejected"
)

// FundingRequest is an offer of money toward a project. Unlike collaboration
// requests, rejected offers stay on record with the verifier and timestamp.
type FundingRequest struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID  uuid.UUID     `json:"project_id" gorm:"type:uuid;not null;index"`
	FunderID   uuid.UUID     `json:"funder_id" gorm:"type:uuid;not null;index"`
	Amount     int64         `json:"amount" gorm:"not null"`
	Note       string        `json:"note"`
	Status     RequestStatus `json:"status" gorm:"not null;default:'pending'"`
	VerifiedBy *uuid.UUID    `json:"verified_by,omitempty" gorm:"type:uuid"`
	VerifiedAt *time.Time    `json:"verified_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// TableName returns the database table name.
func (FundingRequest) TableName() string {
	return "funding_requests"
}

// Fund is an immutable ledger entry, written only when a request is verified.
type Fund struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	FunderID  uuid.UUID `json:"funder_id" gorm:"type:uuid;not null;index"`
	Amount    int64     `json:"amount" gorm:"not null"`
	FundedAt  time.Time `json:"funded_at" gorm:"autoCreateTime"`
}

// TableName returns the database table name.
func (Fund) TableName() string {
	return "funds"
}
