package collaboration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository owns collaboration requests and collaboration rows.
type Repository interface {
	// Transaction runs fn against a Repository bound to one database
	// transaction. fn returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateRequest(ctx context.Context, r *CollaborationRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*CollaborationRequest, error)
	// GetRequestForUpdate re-reads the row with a row-level lock. Only
	// meaningful inside Transaction.
	GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*CollaborationRequest, error)
	UpdateRequestStatus(ctx context.Context, id uuid.UUID, status RequestStatus) error
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	DeleteRequestsForPair(ctx context.Context, projectID, userID uuid.UUID) error
	HasPendingRequest(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	ListRequestsByProject(ctx context.Context, projectID uuid.UUID, status RequestStatus, limit, offset int) ([]*CollaborationRequest, int64, error)

	CreateCollaboration(ctx context.Context, c *Collaboration) error
	// AdjustCollaboratorCount moves the project_stats counter by delta. Stats
	// rows live in the project module; only the counter column is touched here.
	AdjustCollaboratorCount(ctx context.Context, projectID uuid.UUID, delta int) error
	DeleteCollaboration(ctx context.Context, projectID, userID uuid.UUID) error
	GetCollaboration(ctx context.Context, projectID, userID uuid.UUID) (*Collaboration, error)
	IsCollaborator(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]*Collaboration, error)
	CollaboratorIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new collaboration repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *repository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

// CreateRequest persists a new collaboration request.
func (r *repository) CreateRequest(ctx context.Context, req *CollaborationRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetRequestByID retrieves a request by ID.
func (r *repository) GetRequestByID(ctx context.Context, id uuid.UUID) (*CollaborationRequest, error) {
	var req CollaborationRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// GetRequestForUpdate retrieves a request with FOR UPDATE so a concurrent
// approve/reject blocks until this transaction settles.
func (r *repository) GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*CollaborationRequest, error) {
	var req CollaborationRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateRequestStatus sets the status of a request.
func (r *repository) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status RequestStatus) error {
	return r.db.WithContext(ctx).
		Model(&CollaborationRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// DeleteRequest removes a request row.
func (r *repository) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&CollaborationRequest{}, "id = ?", id).Error
}

// DeleteRequestsForPair removes every request a user has on a project. Called
// when their collaboration ends so they can apply again.
func (r *repository) DeleteRequestsForPair(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&CollaborationRequest{}, "project_id = ? AND user_id = ?", projectID, userID).Error
}

// HasPendingRequest reports whether a pending request exists for the pair.
func (r *repository) HasPendingRequest(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&CollaborationRequest{}).
		Where("project_id = ? AND user_id = ? AND status = ?", projectID, userID, StatusPending).
		Count(&count).Error
	return count > 0, err
}

// ListRequestsByProject lists requests for a project, newest first. status is
// optional; empty matches all.
func (r *repository) ListRequestsByProject(ctx context.Context, projectID uuid.UUID, status RequestStatus, limit, offset int) ([]*CollaborationRequest, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&CollaborationRequest{}).
		Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []*CollaborationRequest
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reqs).Error
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// CreateCollaboration persists a membership row.
func (r *repository) CreateCollaboration(ctx context.Context, c *Collaboration) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// AdjustCollaboratorCount moves the collaborator counter in place.
func (r *repository) AdjustCollaboratorCount(ctx context.Context, projectID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Table("project_stats").
		Where("project_id = ?", projectID).
		UpdateColumn("collaborators", gorm.Expr("collaborators + ?", delta)).Error
}

// DeleteCollaboration removes a membership row.
func (r *repository) DeleteCollaboration(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&Collaboration{}, "project_id = ? AND user_id = ?", projectID, userID).Error
}

// GetCollaboration retrieves the membership row for the pair.
func (r *repository) GetCollaboration(ctx context.Context, projectID, userID uuid.UUID) (*Collaboration, error) {
	var c Collaboration
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCollaborator
		}
		return nil, err
	}
	return &c, nil
}

// IsCollaborator reports whether the user holds a membership row.
func (r *repository) IsCollaborator(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Collaboration{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListCollaborators lists every membership row for a project.
func (r *repository) ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]*Collaboration, error) {
	var cs []*Collaboration
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&cs).Error
	return cs, err
}

// CollaboratorIDs lists the user IDs of every collaborator on a project.
func (r *repository) CollaboratorIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Collaboration{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error
	return ids, err
}
