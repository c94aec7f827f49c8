package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListCriteria filters notification listings.
type ListCriteria struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// Store owns notification rows. Nothing else writes to the table.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, ns []*Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, criteria ListCriteria) ([]*Notification, int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// store implements Store using GORM.
type store struct {
	db *gorm.DB
}

// NewStore creates a new notification store.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

// Create persists a single notification.
func (s *store) Create(ctx context.Context, n *Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

// CreateBatch persists a fan-out set in one insert.
func (s *store) CreateBatch(ctx context.Context, ns []*Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&ns).Error
}

// GetByID retrieves a notification by ID.
func (s *store) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var n Notification
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// ListForUser lists a user's notifications, newest first.
func (s *store) ListForUser(ctx context.Context, userID uuid.UUID, criteria ListCriteria) ([]*Notification, int64, error) {
	if criteria.Limit <= 0 {
		criteria.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID)
	if criteria.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ns []*Notification
	err := query.
		Order("created_at DESC").
		Limit(criteria.Limit).
		Offset(criteria.Offset).
		Find(&ns).Error
	if err != nil {
		return nil, 0, err
	}
	return ns, total, nil
}

// MarkRead flips the read flag on one notification.
func (s *store) MarkRead(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	// Zero rows means the notification is missing or already read; both are
	// fine for an idempotent read receipt.
	return nil
}

// MarkAllRead flips the read flag on every unread notification of a user.
func (s *store) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()}).Error
}

// CountUnread counts a user's unread notifications.
func (s *store) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
