package moderation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campushub/server/internal/shared/entity"
)

// Repository owns report rows.
type Repository interface {
	CreateReport(ctx context.Context, r *Report) error
	ListOpenReports(ctx context.Context, limit, offset int) ([]*Report, int64, error)
	ListReportsForEntity(ctx context.Context, ref entity.Ref) ([]*Report, error)
	ResolveReport(ctx context.Context, id uuid.UUID) error
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new moderation repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateReport persists a report.
func (r *repository) CreateReport(ctx context.Context, report *Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// ListOpenReports lists unresolved reports, oldest first.
func (r *repository) ListOpenReports(ctx context.Context, limit, offset int) ([]*Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&Report{}).Where("status = ?", ReportOpen)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []*Report
	err := query.Order("created_at ASC").Limit(limit).Offset(offset).Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ListReportsForEntity lists every report against one entity.
func (r *repository) ListReportsForEntity(ctx context.Context, ref entity.Ref) ([]*Report, error) {
	var reports []*Report
	err := r.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", ref.Kind, ref.ID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// ResolveReport closes a report.
func (r *repository) ResolveReport(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Report{}).
		Where("id = ?", id).
		Update("status", ReportResolved).Error
}
