package funding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository owns funding requests and the fund ledger.
type Repository interface {
	// Transaction runs fn against a Repository bound to one database
	// transaction. fn returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateRequest(ctx context.Context, r *FundingRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*FundingRequest, error)
	// GetRequestForUpdate re-reads the row with a row-level lock. Only
	// meaningful inside Transaction.
	GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*FundingRequest, error)
	ResolveRequest(ctx context.Context, id uuid.UUID, status RequestStatus, verifierID uuid.UUID, at time.Time) error
	HasPendingRequest(ctx context.Context, projectID, funderID uuid.UUID) (bool, error)
	ListRequestsByProject(ctx context.Context, projectID uuid.UUID, status RequestStatus, limit, offset int) ([]*FundingRequest, int64, error)

	CreateFund(ctx context.Context, f *Fund) error
	ListFundsByProject(ctx context.Context, projectID uuid.UUID) ([]*Fund, error)
	// AddProjectFunding moves the project's running total and funds counter in
	// place, without a read-modify-write cycle.
	AddProjectFunding(ctx context.Context, projectID uuid.UUID, amount int64) error
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new funding repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *repository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

// CreateRequest persists a new funding request.
func (r *repository) CreateRequest(ctx context.Context, req *FundingRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetRequestByID retrieves a funding request by ID.
func (r *repository) GetRequestByID(ctx context.Context, id uuid.UUID) (*FundingRequest, error) {
	var req FundingRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// GetRequestForUpdate retrieves a funding request with FOR UPDATE.
func (r *repository) GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*FundingRequest, error) {
	var req FundingRequest
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

// ResolveRequest records the verifier's decision on the request row.
func (r *repository) ResolveRequest(ctx context.Context, id uuid.UUID, status RequestStatus, verifierID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&FundingRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"verified_by": verifierID,
			"verified_at": at,
		}).Error
}

// HasPendingRequest reports whether a pending request exists for the pair.
func (r *repository) HasPendingRequest(ctx context.Context, projectID, funderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&FundingRequest{}).
		Where("project_id = ? AND funder_id = ? AND status = ?", projectID, funderID, StatusPending).
		Count(&count).Error
	return count > 0, err
}

// ListRequestsByProject lists funding requests for a project, newest first.
// status is optional; empty matches all.
func (r *repository) ListRequestsByProject(ctx context.Context, projectID uuid.UUID, status RequestStatus, limit, offset int) ([]*FundingRequest, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&FundingRequest{}).
		Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []*FundingRequest
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reqs).Error
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// CreateFund writes a ledger entry.
func (r *repository) CreateFund(ctx context.Context, f *Fund) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// ListFundsByProject lists the ledger for a project, newest first.
func (r *repository) ListFundsByProject(ctx context.Context, projectID uuid.UUID) ([]*Fund, error) {
	var fs []*Fund
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("funded_at DESC").
		Find(&fs).Error
	return fs, err
}

// AddProjectFunding bumps current_funding and the stats counter atomically in
// SQL so concurrent verifies never lose an update.
func (r *repository) AddProjectFunding(ctx context.Context, projectID uuid.UUID, amount int64) error {
	err := r.db.WithContext(ctx).
		Table("projects").
		Where("id = ?", projectID).
		UpdateColumn("current_funding", gorm.Expr("current_funding + ?", amount)).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Table("project_stats").
		Where("project_id = ?", projectID).
		UpdateColumn("funds", gorm.Expr("funds + 1")).Error
}
