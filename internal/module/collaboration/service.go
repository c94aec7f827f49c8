package collaboration

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/module/notification"
	"github.com/campushub/server/internal/shared/entity"
)

// ProjectLookup resolves project ownership and titles. Implemented by the
// project module; declared here so this package stays independent of it.
type ProjectLookup interface {
	ProjectSummary(ctx context.Context, projectID uuid.UUID) (ownerID uuid.UUID, title string, err error)
}

// Notifier delivers notifications after state changes commit.
type Notifier interface {
	Dispatch(ctx context.Context, evt notification.Event)
}

// Service implements the collaboration request state machine.
type Service struct {
	repo     Repository
	projects ProjectLookup
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a collaboration service.
func NewService(repo Repository, projects ProjectLookup, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		notifier: notifier,
		logger:   logger,
	}
}

// RequestCollaboration files a pending request from userID on projectID. A user
// holds at most one pending request per project and cannot request while
// already a collaborator.
func (s *Service) RequestCollaboration(ctx context.Context, projectID, userID uuid.UUID, message string) (*CollaborationRequest, error) {
	ownerID, title, err := s.projects.ProjectSummary(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if ownerID == userID {
		return nil, ErrOwnProject
	}

	isCollaborator, err := s.repo.IsCollaborator(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if isCollaborator {
		return nil, ErrAlreadyCollaborator
	}

	hasPending, err := s.repo.HasPendingRequest(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, ErrDuplicateRequest
	}

	req := &CollaborationRequest{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Status:    StatusPending,
		Message:   strings.TrimSpace(message),
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeCollaborationRequest,
		ActorID:     userID,
		RecipientID: ownerID,
		ProjectID:   projectID,
		Entity:      entity.NewRef(entity.KindCollaborationRequest, req.ID),
		Title:       title,
	})
	return req, nil
}

// ApproveRequest flips a pending request to approved and creates the
// membership row, atomically. Only the project owner may approve; a request
// that is no longer pending yields ErrAlreadyProcessed.
func (s *Service) ApproveRequest(ctx context.Context, requestID, actorID uuid.UUID) (*CollaborationRequest, error) {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	ownerID, title, err := s.projects.ProjectSummary(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if ownerID != actorID {
		return nil, ErrNotProjectOwner
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		locked, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if locked.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		if err := tx.UpdateRequestStatus(ctx, requestID, StatusApproved); err != nil {
			return err
		}
		if err := tx.CreateCollaboration(ctx, &Collaboration{
			ID:        uuid.New(),
			ProjectID: locked.ProjectID,
			UserID:    locked.UserID,
			Role:      RoleMember,
		}); err != nil {
			return err
		}
		return tx.AdjustCollaboratorCount(ctx, locked.ProjectID, 1)
	})
	if err != nil {
		return nil, err
	}
	req.Status = StatusApproved

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeCollaborationApproved,
		ActorID:     actorID,
		RecipientID: req.UserID,
		ProjectID:   req.ProjectID,
		Entity:      entity.NewRef(entity.KindCollaborationRequest, req.ID),
		Title:       title,
	})
	return req, nil
}

// RejectRequest removes a pending request entirely so the requester can apply
// again later. Only the project owner may reject.
func (s *Service) RejectRequest(ctx context.Context, requestID, actorID uuid.UUID) error {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}

	ownerID, title, err := s.projects.ProjectSummary(ctx, req.ProjectID)
	if err != nil {
		return err
	}
	if ownerID != actorID {
		return ErrNotProjectOwner
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		locked, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if locked.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		return tx.DeleteRequest(ctx, requestID)
	})
	if err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeCollaborationRejected,
		ActorID:     actorID,
		RecipientID: req.UserID,
		ProjectID:   req.ProjectID,
		Entity:      entity.NewRef(entity.KindCollaborationRequest, req.ID),
		Title:       title,
	})
	return nil
}

// RemoveCollaborator ends a user's membership and clears their request history
// for the project in the same transaction, re-opening the request path.
func (s *Service) RemoveCollaborator(ctx context.Context, projectID, userID, actorID uuid.UUID) error {
	ownerID, title, err := s.projects.ProjectSummary(ctx, projectID)
	if err != nil {
		return err
	}
	if ownerID != actorID {
		return ErrNotProjectOwner
	}
	if userID == ownerID {
		return ErrCannotRemoveOwner
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetCollaboration(ctx, projectID, userID); err != nil {
			return err
		}
		if err := tx.DeleteCollaboration(ctx, projectID, userID); err != nil {
			return err
		}
		if err := tx.DeleteRequestsForPair(ctx, projectID, userID); err != nil {
			return err
		}
		return tx.AdjustCollaboratorCount(ctx, projectID, -1)
	})
	if err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeCollaborationRemoved,
		ActorID:     actorID,
		RecipientID: userID,
		ProjectID:   projectID,
		Entity:      entity.NewRef(entity.KindProject, projectID),
		Title:       title,
	})
	return nil
}

// ListProjectRequests lists requests on a project. Owner-only: pending
// requests are private between applicant and owner.
func (s *Service) ListProjectRequests(ctx context.Context, projectID, actorID uuid.UUID, status RequestStatus, limit, offset int) ([]*CollaborationRequest, int64, error) {
	ownerID, _, err := s.projects.ProjectSummary(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	if ownerID != actorID {
		return nil, 0, ErrNotProjectOwner
	}
	return s.repo.ListRequestsByProject(ctx, projectID, status, limit, offset)
}

// ListCollaborators lists a project's membership rows.
func (s *Service) ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]*Collaboration, error) {
	return s.repo.ListCollaborators(ctx, projectID)
}

// CollaboratorIDs exposes recipient resolution to the notification wiring.
func (s *Service) CollaboratorIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.CollaboratorIDs(ctx, projectID)
}

// IsCollaborator reports whether the user is a collaborator on the project.
func (s *Service) IsCollaborator(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	return s.repo.IsCollaborator(ctx, projectID, userID)
}
