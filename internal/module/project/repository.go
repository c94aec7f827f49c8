package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campushub/server/internal/module/collaboration"
)

// Repository owns project and stats rows, plus the owner membership insert
// that belongs to project creation.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	Create(ctx context.Context, p *Project) error
	CreateStats(ctx context.Context, s *Stats) error
	// CreateOwnerMembership writes the owner's collaboration row. Lives here so
	// project creation stays one transaction.
	CreateOwnerMembership(ctx context.Context, projectID, ownerID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	GetStats(ctx context.Context, projectID uuid.UUID) (*Stats, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Project, int64, error)
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new project repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *repository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

// Create persists a new project.
func (r *repository) Create(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// CreateStats persists the project's counter row.
func (r *repository) CreateStats(ctx context.Context, s *Stats) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// CreateOwnerMembership writes the owner's collaboration row.
func (r *repository) CreateOwnerMembership(ctx context.Context, projectID, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&collaboration.Collaboration{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    ownerID,
		Role:      collaboration.RoleOwner,
	}).Error
}

// GetByID retrieves a project by ID.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetStats retrieves the counter row for a project.
func (r *repository) GetStats(ctx context.Context, projectID uuid.UUID) (*Stats, error) {
	var s Stats
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByOwner lists projects owned by a user, newest first.
func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&Project{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ps []*Project
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&ps).Error
	if err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}
