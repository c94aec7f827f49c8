package project

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*Project
	stats    map[uuid.UUID]*Stats
	owners   map[uuid.UUID][]uuid.UUID // projectID -> membership user IDs
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects: map[uuid.UUID]*Project{},
		stats:    map[uuid.UUID]*Stats{},
		owners:   map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeRepo) Transaction(_ context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) Create(_ context.Context, p *Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *p
	f.projects[p.ID] = &copied
	return nil
}

func (f *fakeRepo) CreateStats(_ context.Context, s *Stats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *s
	f.stats[s.ProjectID] = &copied
	return nil
}

func (f *fakeRepo) CreateOwnerMembership(_ context.Context, projectID, ownerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners[projectID] = append(f.owners[projectID], ownerID)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeRepo) GetStats(_ context.Context, projectID uuid.UUID) (*Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stats[projectID]
	if !ok {
		return nil, ErrProjectNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, _, _ int) ([]*Project, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ps []*Project
	for _, p := range f.projects {
		if p.OwnerID == ownerID {
			copied := *p
			ps = append(ps, &copied)
		}
	}
	return ps, int64(len(ps)), nil
}

func TestService_CreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("creates project, stats and owner membership", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, zap.NewNop())
		ownerID := uuid.New()

		p, err := svc.CreateProject(ctx, ownerID, "  Solar Car  ", "a car", 10000)
		require.NoError(t, err)
		assert.Equal(t, "Solar Car", p.Title)
		assert.Equal(t, ownerID, p.OwnerID)
		assert.Zero(t, p.CurrentFunding)

		stats, err := repo.GetStats(ctx, p.ID)
		require.NoError(t, err)
		assert.Zero(t, stats.Collaborators)

		require.Len(t, repo.owners[p.ID], 1)
		assert.Equal(t, ownerID, repo.owners[p.ID][0])
	})

	t.Run("empty title rejected", func(t *testing.T) {
		svc := NewService(newFakeRepo(), zap.NewNop())
		_, err := svc.CreateProject(ctx, uuid.New(), "   ", "", 0)
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("negative goal rejected", func(t *testing.T) {
		svc := NewService(newFakeRepo(), zap.NewNop())
		_, err := svc.CreateProject(ctx, uuid.New(), "X", "", -1)
		assert.ErrorIs(t, err, ErrInvalidGoal)
	})
}

func TestService_ProjectSummary(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, zap.NewNop())
	ownerID := uuid.New()

	p, err := svc.CreateProject(ctx, ownerID, "Rocketry", "", 0)
	require.NoError(t, err)

	gotOwner, title, err := svc.ProjectSummary(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, gotOwner)
	assert.Equal(t, "Rocketry", title)

	_, _, err = svc.ProjectSummary(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
