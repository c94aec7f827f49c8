package project

import (
	"time"

	"github.com/google/uuid"
)

// Project is the unit everything else hangs off: collaborations, funding,
// chat topics. CurrentFunding is only ever moved in place by verified funding.
type Project struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID        uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title          string    `json:"title" gorm:"not null"`
	Description    string    `json:"description"`
	FundingGoal    int64     `json:"funding_goal" gorm:"not null;default:0"`
	CurrentFunding int64     `json:"current_funding" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Project) TableName() string {
	return "projects"
}

// Stats is the denormalized counter row, created with the project and moved
// only by explicit steps in the operations that own each counter.
type Stats struct {
	ProjectID     uuid.UUID `json:"project_id" gorm:"type:uuid;primaryKey"`
	Collaborators int       `json:"collaborators" gorm:"not null;default:0"`
	Funds         int       `json:"funds" gorm:"not null;default:0"`
	Comments      int       `json:"comments" gorm:"not null;default:0"`
}

// TableName returns the database table name.
func (Stats) TableName() string {
	return "project_stats"
}
