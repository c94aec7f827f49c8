package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/module/moderation"
	"github.com/campushub/server/internal/module/notification"
	"github.com/campushub/server/internal/shared/entity"
)

// Moderator classifies outbound content before persistence.
type Moderator interface {
	AutoModerate(ctx context.Context, ref entity.Ref, authorID, projectID uuid.UUID, content string) (moderation.Outcome, error)
}

// Notifier delivers notifications after messages persist.
type Notifier interface {
	Dispatch(ctx context.Context, evt notification.Event)
}

// Service persists and reads back messages. Broadcasting is the realtime
// layer's job; this service is invoked both from websocket events and REST.
type Service struct {
	repo      Repository
	moderator Moderator
	notifier  Notifier
	logger    *zap.Logger
}

// NewService creates a chat service.
func NewService(repo Repository, moderator Moderator, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		moderator: moderator,
		notifier:  notifier,
		logger:    logger,
	}
}

// SendMessage validates, moderates and persists one message, then notifies
// the receiver. Content the filter classifies as hidden is never persisted.
func (s *Service) SendMessage(ctx context.Context, senderID, receiverID uuid.UUID, projectID *uuid.UUID, content string) (*Message, error) {
	if receiverID == uuid.Nil {
		return nil, ErrMissingReceiver
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	m := &Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		ProjectID:  projectID,
		Content:    content,
	}

	if s.moderator != nil {
		scope := uuid.Nil
		if projectID != nil {
			scope = *projectID
		}
		outcome, err := s.moderator.AutoModerate(ctx, entity.NewRef(entity.KindMessage, m.ID), senderID, scope, content)
		if err != nil {
			s.logger.Warn("moderation failed, message allowed through", zap.Error(err))
		} else if outcome == moderation.OutcomeHidden {
			return nil, ErrContentRejected
		}
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	evt := notification.Event{
		Type:        notification.TypeMessageReceived,
		ActorID:     senderID,
		RecipientID: receiverID,
		Entity:      entity.NewRef(entity.KindMessage, m.ID),
	}
	if projectID != nil {
		evt.ProjectID = *projectID
	}
	s.notifier.Dispatch(ctx, evt)
	return m, nil
}

// MarkAsRead flips the read flag. Only the receiver may acknowledge a
// message; the returned message carries the sender for the read broadcast.
func (s *Service) MarkAsRead(ctx context.Context, userID, messageID uuid.UUID) (*Message, error) {
	m, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m.ReceiverID != userID {
		return nil, ErrNotReceiver
	}
	if !m.IsRead {
		if err := s.repo.MarkRead(ctx, messageID); err != nil {
			return nil, err
		}
		m.IsRead = true
	}
	return m, nil
}

// ListConversation returns the history between the caller and another user.
func (s *Service) ListConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*Message, int64, error) {
	return s.repo.ListConversation(ctx, userID, otherID, limit, offset)
}
