package notification

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/utils/metrics"
)

const unreadCountTTL = 5 * time.Minute

// Service exposes the read side of notifications. Writes go through the
// Dispatcher only.
type Service struct {
	store   Store
	cache   redis.UniversalClient
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates a notification service. cache may be nil; every read then
// hits the database.
func NewService(store Store, cache redis.UniversalClient, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// List returns the user's notifications, newest first, with the total count.
func (s *Service) List(ctx context.Context, userID uuid.UUID, criteria ListCriteria) ([]*Notification, int64, error) {
	return s.store.ListForUser(ctx, userID, criteria)
}

// MarkRead marks a single notification as read. Only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.store.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrNotRecipient
	}
	if n.IsRead {
		return nil
	}
	if err := s.store.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, userID)
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, userID)
	return nil
}

// UnreadCount returns the user's unread badge count, cached briefly because
// clients poll it on every page load.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := unreadCountKey(userID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				if s.metrics != nil {
					s.metrics.CacheHitsTotal.WithLabelValues("unread_count").Inc()
				}
				return count, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("unread count cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.WithLabelValues("unread_count").Inc()
		}
	}

	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.FormatInt(count, 10), unreadCountTTL).Err(); err != nil {
			s.logger.Warn("unread count cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

// invalidateUnreadCount drops the cached badge count. Dispatch paths call this
// through InvalidateUnread so new notifications surface within one request.
func (s *Service) invalidateUnreadCount(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		s.logger.Warn("unread count cache invalidation failed", zap.Error(err))
	}
}

// InvalidateUnread exposes cache invalidation to the dispatcher wiring.
func (s *Service) InvalidateUnread(ctx context.Context, userID uuid.UUID) {
	s.invalidateUnreadCount(ctx, userID)
}

func unreadCountKey(userID uuid.UUID) string {
	return "notif:unread:" + userID.String()
}
