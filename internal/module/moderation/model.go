package moderation

import (
	"time"

	"github.com/google/uuid"

	"github.com/campushub/server/internal/shared/entity"
)

// ReportStatus is the review state of a report.
type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportResolved ReportStatus = "resolved"
)

// Report is a moderation case against a piece of content. ReporterID is nil
// for reports filed automatically by the filter.
type Report struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReporterID *uuid.UUID   `json:"reporter_id,omitempty" gorm:"type:uuid"`
	EntityKind entity.Kind  `json:"entity_kind" gorm:"not null;index"`
	EntityID   uuid.UUID    `json:"entity_id" gorm:"type:uuid;not null;index"`
	Reason     string       `json:"reason" gorm:"not null"`
	Score      int          `json:"score" gorm:"not null;default:0"`
	Status     ReportStatus `json:"status" gorm:"not null;default:'open'"`
	CreatedAt  time.Time    `json:"created_at"`
}

// TableName returns the database table name.
func (Report) TableName() string {
	return "reports"
}

// Entity returns the tagged reference to the reported content.
func (r *Report) Entity() entity.Ref {
	return entity.Ref{Kind: r.EntityKind, ID: r.EntityID}
}
