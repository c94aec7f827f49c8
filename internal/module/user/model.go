package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal account record this service reads. Account lifecycle
// (registration, passwords, profiles) is owned by the identity service.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}
