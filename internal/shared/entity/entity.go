package entity

import "github.com/google/uuid"

// Kind identifies the type of a referenced entity. It is a closed set: code
// that resolves a Ref switches over the kind instead of relying on dynamic
// polymorphic lookups.
type Kind string

const (
	KindProject              Kind = "project"
	KindCollaborationRequest Kind = "collaboration_request"
	KindCollaboration        Kind = "collaboration"
	KindFundingRequest       Kind = "funding_request"
	KindFund                 Kind = "fund"
	KindMessage              Kind = "message"
	KindComment              Kind = "comment"
	KindResource             Kind = "resource"
	KindReport               Kind = "report"
	KindUser                 Kind = "user"
)

// IsValid checks whether the kind belongs to the closed set.
func (k Kind) IsValid() bool {
	switch k {
	case KindProject, KindCollaborationRequest, KindCollaboration,
		KindFundingRequest, KindFund, KindMessage, KindComment,
		KindResource, KindReport, KindUser:
		return true
	default:
		return false
	}
}

// Ref is a tagged reference to an entity of a known kind.
type Ref struct {
	Kind Kind      `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// NewRef builds a Ref.
func NewRef(kind Kind, id uuid.UUID) Ref {
	return Ref{Kind: kind, ID: id}
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool {
	return r.Kind == "" && r.ID == uuid.Nil
}
