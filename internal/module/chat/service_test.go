package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/module/moderation"
	"github.com/campushub/server/internal/module/notification"
	"github.com/campushub/server/internal/shared/entity"
)

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: map[uuid.UUID]*Message{}}
}

func (f *fakeMessageRepo) Create(_ context.Context, m *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *m
	f.messages[m.ID] = &copied
	return nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[id]; ok {
		m.IsRead = true
	}
	return nil
}

func (f *fakeMessageRepo) Hide(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[id]; ok {
		m.Hidden = true
	}
	return nil
}

func (f *fakeMessageRepo) ListConversation(_ context.Context, userID, otherID uuid.UUID, _, _ int) ([]*Message, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ms []*Message
	for _, m := range f.messages {
		if m.Hidden {
			continue
		}
		if (m.SenderID == userID && m.ReceiverID == otherID) ||
			(m.SenderID == otherID && m.ReceiverID == userID) {
			copied := *m
			ms = append(ms, &copied)
		}
	}
	return ms, int64(len(ms)), nil
}

// stubModerator returns a fixed outcome.
type stubModerator struct {
	outcome moderation.Outcome
	calls   []entity.Ref
}

func (s *stubModerator) AutoModerate(_ context.Context, ref entity.Ref, _, _ uuid.UUID, _ string) (moderation.Outcome, error) {
	s.calls = append(s.calls, ref)
	return s.outcome, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recordingNotifier) Dispatch(_ context.Context, evt notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func TestService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and notifies receiver", func(t *testing.T) {
		repo := newFakeMessageRepo()
		notifier := &recordingNotifier{}
		moderator := &stubModerator{outcome: moderation.OutcomeApproved}
		svc := NewService(repo, moderator, notifier, zap.NewNop())

		senderID, receiverID := uuid.New(), uuid.New()
		m, err := svc.SendMessage(ctx, senderID, receiverID, nil, "  hi there  ")
		require.NoError(t, err)
		assert.Equal(t, "hi there", m.Content)
		assert.False(t, m.IsRead)

		stored, err := repo.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, receiverID, stored.ReceiverID)

		require.Len(t, moderator.calls, 1)
		assert.Equal(t, entity.KindMessage, moderator.calls[0].Kind)

		require.Len(t, notifier.events, 1)
		assert.Equal(t, notification.TypeMessageReceived, notifier.events[0].Type)
		assert.Equal(t, receiverID, notifier.events[0].RecipientID)
	})

	t.Run("hidden content is rejected and not persisted", func(t *testing.T) {
		repo := newFakeMessageRepo()
		notifier := &recordingNotifier{}
		svc := NewService(repo, &stubModerator{outcome: moderation.OutcomeHidden}, notifier, zap.NewNop())

		_, err := svc.SendMessage(ctx, uuid.New(), uuid.New(), nil, "free money click here")
		assert.ErrorIs(t, err, ErrContentRejected)
		assert.Empty(t, repo.messages)
		assert.Empty(t, notifier.events)
	})

	t.Run("reported content still goes through", func(t *testing.T) {
		repo := newFakeMessageRepo()
		svc := NewService(repo, &stubModerator{outcome: moderation.OutcomeReported}, &recordingNotifier{}, zap.NewNop())

		_, err := svc.SendMessage(ctx, uuid.New(), uuid.New(), nil, "borderline")
		assert.NoError(t, err)
		assert.Len(t, repo.messages, 1)
	})

	t.Run("missing receiver", func(t *testing.T) {
		svc := NewService(newFakeMessageRepo(), nil, &recordingNotifier{}, zap.NewNop())
		_, err := svc.SendMessage(ctx, uuid.New(), uuid.Nil, nil, "hello")
		assert.ErrorIs(t, err, ErrMissingReceiver)
	})

	t.Run("empty content", func(t *testing.T) {
		svc := NewService(newFakeMessageRepo(), nil, &recordingNotifier{}, zap.NewNop())
		_, err := svc.SendMessage(ctx, uuid.New(), uuid.New(), nil, "   ")
		assert.ErrorIs(t, err, ErrEmptyContent)
	})
}

func TestService_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	svc := NewService(repo, nil, &recordingNotifier{}, zap.NewNop())

	senderID, receiverID := uuid.New(), uuid.New()
	m, err := svc.SendMessage(ctx, senderID, receiverID, nil, "ping")
	require.NoError(t, err)

	t.Run("non-receiver cannot acknowledge", func(t *testing.T) {
		_, err := svc.MarkAsRead(ctx, senderID, m.ID)
		assert.ErrorIs(t, err, ErrNotReceiver)

		stored, err := repo.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsRead)
	})

	t.Run("receiver acknowledges once", func(t *testing.T) {
		read, err := svc.MarkAsRead(ctx, receiverID, m.ID)
		require.NoError(t, err)
		assert.True(t, read.IsRead)
		assert.Equal(t, senderID, read.SenderID)

		// Idempotent.
		_, err = svc.MarkAsRead(ctx, receiverID, m.ID)
		assert.NoError(t, err)
	})

	t.Run("missing message", func(t *testing.T) {
		_, err := svc.MarkAsRead(ctx, receiverID, uuid.New())
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})
}
