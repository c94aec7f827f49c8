package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository owns message rows.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Hide(ctx context.Context, id uuid.UUID) error
	ListConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*Message, int64, error)
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new chat repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create persists a message.
func (r *repository) Create(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// GetByID retrieves a message by ID.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	var m Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

// MarkRead flips the read flag. Already-read messages are left alone.
func (r *repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true).Error
}

// Hide marks a message as hidden. Used by the moderation hide path.
func (r *repository) Hide(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Message{}).
		Where("id = ?", id).
		Update("hidden", true).Error
}

// ListConversation lists the two-way history between two users, newest first,
// skipping hidden messages.
func (r *repository) ListConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*Message, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("hidden = ?", false).
		Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID,
		)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []*Message
	err := query.Order("sent_at DESC").Limit(limit).Offset(offset).Find(&ms).Error
	if err != nil {
		return nil, 0, err
	}
	return ms, total, nil
}
