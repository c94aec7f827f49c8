package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/campushub/server/internal/shared/entity"
	"github.com/campushub/server/internal/utils/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// UserDirectory resolves display names for message rendering.
type UserDirectory interface {
	NameOf(ctx context.Context, id uuid.UUID) string
}

// ProjectDirectory resolves fan-out recipients for project-scoped events.
type ProjectDirectory interface {
	OwnerID(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
	CollaboratorIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// Publisher pushes frames to realtime topics. May be nil when the channel
// layer is not running (tests, batch tools).
type Publisher interface {
	Publish(topic string, payload any)
}

// Event is one domain occurrence to notify about. RecipientID targets a single
// user; for fan-out types it is left nil and ProjectID scopes the recipients.
type Event struct {
	Type        Type
	ActorID     uuid.UUID
	RecipientID uuid.UUID
	ProjectID   uuid.UUID
	Entity      entity.Ref
	Title       string
	Amount      int64
	Extra       map[string]string
}

// Dispatcher maps domain events to notification rows. It is deliberately not
// idempotent: one Dispatch call per logical event, or the user sees duplicates.
type Dispatcher struct {
	store      Store
	users      UserDirectory
	projects   ProjectDirectory
	pub        Publisher
	metrics    *metrics.Metrics
	logger     *zap.Logger
	invalidate func(ctx context.Context, userID uuid.UUID)
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(store Store, users UserDirectory, projects ProjectDirectory, pub Publisher, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		users:    users,
		projects: projects,
		pub:      pub,
		metrics:  m,
		logger:   logger,
	}
}

// OnDispatch registers a per-recipient callback invoked after notifications
// are persisted. The service hooks cache invalidation here.
func (d *Dispatcher) OnDispatch(fn func(ctx context.Context, userID uuid.UUID)) {
	d.invalidate = fn
}

// Dispatch creates and delivers notifications for the event. It never returns
// an error: a lost notification must not roll back the operation that
// triggered it, so every failure is logged and swallowed here.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) {
	if err := d.dispatch(ctx, evt); err != nil {
		d.logger.Warn("notification dispatch failed",
			zap.String("type", string(evt.Type)),
			zap.String("actor_id", evt.ActorID.String()),
			zap.Error(err),
		)
		if d.metrics != nil {
			d.metrics.DispatchFailures.Inc()
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, evt Event) error {
	if !evt.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, evt.Type)
	}

	// Actors never notify themselves; the exclusion is intentional, not a
	// delivery failure.
	if evt.RecipientID != uuid.Nil && evt.RecipientID == evt.ActorID {
		return nil
	}

	recipients, err := d.resolveRecipients(ctx, evt)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		// Fan-out where the actor is the only member resolves to nobody.
		return nil
	}

	actorName := ""
	if evt.ActorID != uuid.Nil {
		actorName = d.users.NameOf(ctx, evt.ActorID)
	}

	message := renderMessage(evt, actorName)
	metadata, err := buildMetadata(evt, actorName)
	if err != nil {
		return fmt.Errorf("build metadata: %w", err)
	}

	ns := make([]*Notification, 0, len(recipients))
	for _, recipient := range recipients {
		n := &Notification{
			ID:         uuid.New(),
			UserID:     recipient,
			Type:       evt.Type,
			EntityKind: evt.Entity.Kind,
			EntityID:   evt.Entity.ID,
			Message:    message,
			Metadata:   metadata,
		}
		if evt.ActorID != uuid.Nil {
			actorID := evt.ActorID
			n.ActorID = &actorID
		}
		ns = append(ns, n)
	}

	if err := d.store.CreateBatch(ctx, ns); err != nil {
		return fmt.Errorf("persist notifications: %w", err)
	}

	if d.metrics != nil {
		d.metrics.NotificationsDispatched.WithLabelValues(string(evt.Type)).Add(float64(len(ns)))
	}

	if d.invalidate != nil {
		for _, n := range ns {
			d.invalidate(ctx, n.UserID)
		}
	}

	// Best-effort badge push; recipients not connected simply miss it.
	if d.pub != nil {
		for _, n := range ns {
			d.pub.Publish("user:"+n.UserID.String(), map[string]any{
				"event":           "notification:new",
				"notification_id": n.ID.String(),
				"type":            string(n.Type),
				"message":         n.Message,
				"timestamp":       n.CreatedAt.Unix(),
			})
		}
	}

	return nil
}

// resolveRecipients returns the deduplicated recipient set for the event.
func (d *Dispatcher) resolveRecipients(ctx context.Context, evt Event) ([]uuid.UUID, error) {
	if evt.RecipientID != uuid.Nil {
		return []uuid.UUID{evt.RecipientID}, nil
	}

	// A targeted type without a recipient is a caller bug, not a skip.
	if !evt.Type.fanOut() || evt.ProjectID == uuid.Nil {
		return nil, ErrNoRecipient
	}

	ownerID, err := d.projects.OwnerID(ctx, evt.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	collaborators, err := d.projects.CollaboratorIDs(ctx, evt.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve collaborators: %w", err)
	}

	// Owner may also hold a collaborator row; each user gets one notification.
	seen := map[uuid.UUID]struct{}{evt.ActorID: {}}
	recipients := make([]uuid.UUID, 0, len(collaborators)+1)
	for _, id := range append([]uuid.UUID{ownerID}, collaborators...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	return recipients, nil
}

// renderMessage produces the human-readable notification text.
func renderMessage(evt Event, actorName string) string {
	switch evt.Type {
	case TypeCollaborationRequest:
		return fmt.Sprintf("%s requested to collaborate on %q", actorName, evt.Title)
	case TypeCollaborationApproved:
		return fmt.Sprintf("%s approved your collaboration request for %q", actorName, evt.Title)
	case TypeCollaborationRejected:
		return fmt.Sprintf("%s declined your collaboration request for %q", actorName, evt.Title)
	case TypeCollaborationRemoved:
		return fmt.Sprintf("You were removed from %q", evt.Title)
	case TypeFundingRequest:
		return fmt.Sprintf("%s offered $%d to %q", actorName, evt.Amount, evt.Title)
	case TypeFundingVerified:
		return fmt.Sprintf("Your $%d funding for %q was verified", evt.Amount, evt.Title)
	case TypeFundingRejected:
		return fmt.Sprintf("Your $%d funding offer for %q was declined", evt.Amount, evt.Title)
	case TypeCommentPosted:
		return fmt.Sprintf("%s commented on %q", actorName, evt.Title)
	case TypeCommentReply:
		return fmt.Sprintf("%s replied to your comment on %q", actorName, evt.Title)
	case TypeCommentLiked:
		return fmt.Sprintf("%s liked your comment on %q", actorName, evt.Title)
	case TypeVoteReceived:
		return fmt.Sprintf("%s voted for %q", actorName, evt.Title)
	case TypeMessageReceived:
		return fmt.Sprintf("New message from %s", actorName)
	case TypeResourceAdded:
		return fmt.Sprintf("%s added a resource to %q", actorName, evt.Title)
	case TypeReportFiled:
		return fmt.Sprintf("A report was filed on %q", evt.Title)
	case TypeContentHidden:
		return fmt.Sprintf("Your content on %q was hidden by moderation", evt.Title)
	case TypeContentFlagged:
		return fmt.Sprintf("Your content on %q was flagged for review", evt.Title)
	case TypeContentRestored:
		return fmt.Sprintf("Your content on %q was restored", evt.Title)
	case TypeProjectFunded:
		return fmt.Sprintf("%q received $%d in funding", evt.Title, evt.Amount)
	case TypeMemberLeft:
		return fmt.Sprintf("%s left %q", actorName, evt.Title)
	case TypeRoleChanged:
		return fmt.Sprintf("Your role on %q changed", evt.Title)
	default:
		return fmt.Sprintf("%s did something on %q", actorName, evt.Title)
	}
}

// buildMetadata assembles the deep-linking payload stored with each row.
func buildMetadata(evt Event, actorName string) (datatypes.JSON, error) {
	meta := map[string]string{
		"entity_kind": string(evt.Entity.Kind),
		"entity_id":   evt.Entity.ID.String(),
	}
	if evt.ActorID != uuid.Nil {
		meta["actor_id"] = evt.ActorID.String()
		meta["actor_name"] = actorName
	}
	if evt.ProjectID != uuid.Nil {
		meta["project_id"] = evt.ProjectID.String()
	}
	if evt.Title != "" {
		meta["title"] = evt.Title
	}
	if evt.Amount > 0 {
		meta["amount"] = fmt.Sprintf("%d", evt.Amount)
	}
	for k, v := range evt.Extra {
		meta[k] = v
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
