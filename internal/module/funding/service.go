package funding

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/module/notification"
	"github.com/campushub/server/internal/shared/entity"
)

// ProjectLookup resolves project ownership and titles.
type ProjectLookup interface {
	ProjectSummary(ctx context.Context, projectID uuid.UUID) (ownerID uuid.UUID, title string, err error)
}

// Notifier delivers notifications after state changes commit.
type Notifier interface {
	Dispatch(ctx context.Context, evt notification.Event)
}

// Service implements the funding request state machine.
type Service struct {
	repo     Repository
	projects ProjectLookup
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a funding service.
func NewService(repo Repository, projects ProjectLookup, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		notifier: notifier,
		logger:   logger,
	}
}

// OfferFunding files a pending funding request. The amount must be positive
// and a funder holds at most one pending offer per project.
func (s *Service) OfferFunding(ctx context.Context, projectID, funderID uuid.UUID, amount int64, note string) (*FundingRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	ownerID, title, err := s.projects.ProjectSummary(ctx, projectID)
	if err != nil {
		return nil, err
	}

	hasPending, err := s.repo.HasPendingRequest(ctx, projectID, funderID)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, ErrDuplicateRequest
	}

	req := &FundingRequest{
		ID:        uuid.New(),
		ProjectID: projectID,
		FunderID:  funderID,
		Amount:    amount,
		Note:      strings.TrimSpace(note),
		Status:    StatusPending,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeFundingRequest,
		ActorID:     funderID,
		RecipientID: ownerID,
		ProjectID:   projectID,
		Entity:      entity.NewRef(entity.KindFundingRequest, req.ID),
		Title:       title,
		Amount:      amount,
	})
	return req, nil
}

// VerifyRequest accepts a pending offer: status flip, ledger entry and the
// project funding counters move in one transaction. Only the project owner
// may verify.
func (s *Service) VerifyRequest(ctx context.Context, requestID, verifierID uuid.UUID) (*FundingRequest, error) {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	ownerID, title, err := s.projects.ProjectSummary(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if ownerID != verifierID {
		return nil, ErrNotProjectOwner
	}

	now := time.Now()
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		locked, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if locked.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		if err := tx.ResolveRequest(ctx, requestID, StatusVerified, verifierID, now); err != nil {
			return err
		}
		if err := tx.CreateFund(ctx, &Fund{
			ID:        uuid.New(),
			ProjectID: locked.ProjectID,
			FunderID:  locked.FunderID,
			Amount:    locked.Amount,
		}); err != nil {
			return err
		}
		return tx.AddProjectFunding(ctx, locked.ProjectID, locked.Amount)
	})
	if err != nil {
		return nil, err
	}
	req.Status = StatusVerified
	req.VerifiedBy = &verifierID
	req.VerifiedAt = &now

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeFundingVerified,
		ActorID:     verifierID,
		RecipientID: req.FunderID,
		ProjectID:   req.ProjectID,
		Entity:      entity.NewRef(entity.KindFundingRequest, req.ID),
		Title:       title,
		Amount:      req.Amount,
	})
	// Collaborators hear about the project milestone, not the verifier action.
	s.notifier.Dispatch(ctx, notification.Event{
		Type:      notification.TypeProjectFunded,
		ActorID:   req.FunderID,
		ProjectID: req.ProjectID,
		Entity:    entity.NewRef(entity.KindProject, req.ProjectID),
		Title:     title,
		Amount:    req.Amount,
	})
	return req, nil
}

// RejectRequest declines a pending offer. The row stays on record with the
// verifier and timestamp; no money moves.
func (s *Service) RejectRequest(ctx context.Context, requestID, verifierID uuid.UUID) error {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}

	ownerID, title, err := s.projects.ProjectSummary(ctx, req.ProjectID)
	if err != nil {
		return err
	}
	if ownerID != verifierID {
		return ErrNotProjectOwner
	}

	now := time.Now()
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		locked, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if locked.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		return tx.ResolveRequest(ctx, requestID, StatusRejected, verifierID, now)
	})
	if err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeFundingRejected,
		ActorID:     verifierID,
		RecipientID: req.FunderID,
		ProjectID:   req.ProjectID,
		Entity:      entity.NewRef(entity.KindFundingRequest, req.ID),
		Title:       title,
		Amount:      req.Amount,
	})
	return nil
}

// ListProjectRequests lists funding requests on a project. Owner-only.
func (s *Service) ListProjectRequests(ctx context.Context, projectID, actorID uuid.UUID, status RequestStatus, limit, offset int) ([]*FundingRequest, int64, error) {
	ownerID, _, err := s.projects.ProjectSummary(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	if ownerID != actorID {
		return nil, 0, ErrNotProjectOwner
	}
	return s.repo.ListRequestsByProject(ctx, projectID, status, limit, offset)
}

// ListProjectFunds lists the verified fund ledger for a project.
func (s *Service) ListProjectFunds(ctx context.Context, projectID uuid.UUID) ([]*Fund, error) {
	return s.repo.ListFundsByProject(ctx, projectID)
}
