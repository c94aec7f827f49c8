package project

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns project creation and lookup. Deliberately thin: rich project
// CRUD lives elsewhere, the core needs ownership and the funding counter.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a project service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateProject creates the project, its stats row and the owner's membership
// row in one transaction. The stats row is written here explicitly instead of
// relying on persistence hooks.
func (s *Service) CreateProject(ctx context.Context, ownerID uuid.UUID, title, description string, fundingGoal int64) (*Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if fundingGoal < 0 {
		return nil, ErrInvalidGoal
	}

	p := &Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(description),
		FundingGoal: fundingGoal,
	}
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.Create(ctx, p); err != nil {
			return err
		}
		if err := tx.CreateStats(ctx, &Stats{ProjectID: p.ID}); err != nil {
			return err
		}
		return tx.CreateOwnerMembership(ctx, p.ID, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject returns a project with its counters.
func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*Project, *Stats, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.repo.GetStats(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, stats, nil
}

// ListByOwner lists projects owned by a user.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Project, int64, error) {
	return s.repo.ListByOwner(ctx, ownerID, limit, offset)
}

// ProjectSummary resolves ownership and title for other modules.
func (s *Service) ProjectSummary(ctx context.Context, projectID uuid.UUID) (uuid.UUID, string, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return uuid.Nil, "", err
	}
	return p.OwnerID, p.Title, nil
}

// OwnerID resolves just the owner, used by notification fan-out.
func (s *Service) OwnerID(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	ownerID, _, err := s.ProjectSummary(ctx, projectID)
	return ownerID, err
}
