package funding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/module/notification"
)

// fakeRepo is an in-memory Repository with snapshot rollback, so the verify
// atomicity contract can be asserted with injected failures.
type fakeRepo struct {
	mu          sync.Mutex
	requests    map[uuid.UUID]*FundingRequest
	funds       map[uuid.UUID]*Fund
	funding     map[uuid.UUID]int64
	fundCounts  map[uuid.UUID]int
	failFunding error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		requests:   map[uuid.UUID]*FundingRequest{},
		funds:      map[uuid.UUID]*Fund{},
		funding:    map[uuid.UUID]int64{},
		fundCounts: map[uuid.UUID]int{},
	}
}

func (f *fakeRepo) snapshot() (map[uuid.UUID]*FundingRequest, map[uuid.UUID]*Fund, map[uuid.UUID]int64, map[uuid.UUID]int) {
	reqs := make(map[uuid.UUID]*FundingRequest, len(f.requests))
	for k, v := range f.requests {
		copied := *v
		reqs[k] = &copied
	}
	funds := make(map[uuid.UUID]*Fund, len(f.funds))
	for k, v := range f.funds {
		copied := *v
		funds[k] = &copied
	}
	funding := make(map[uuid.UUID]int64, len(f.funding))
	for k, v := range f.funding {
		funding[k] = v
	}
	counts := make(map[uuid.UUID]int, len(f.fundCounts))
	for k, v := range f.fundCounts {
		counts[k] = v
	}
	return reqs, funds, funding, counts
}

func (f *fakeRepo) Transaction(_ context.Context, fn func(Repository) error) error {
	f.mu.Lock()
	reqs, funds, funding, counts := f.snapshot()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.requests, f.funds, f.funding, f.fundCounts = reqs, funds, funding, counts
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepo) CreateRequest(_ context.Context, r *FundingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *r
	f.requests[r.ID] = &copied
	return nil
}

func (f *fakeRepo) GetRequestByID(_ context.Context, id uuid.UUID) (*FundingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRepo) GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*FundingRequest, error) {
	return f.GetRequestByID(ctx, id)
}

func (f *fakeRepo) ResolveRequest(_ context.Context, id uuid.UUID, status RequestStatus, verifierID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.requests[id]; ok {
		r.Status = status
		r.VerifiedBy = &verifierID
		r.VerifiedAt = &at
	}
	return nil
}

func (f *fakeRepo) HasPendingRequest(_ context.Context, projectID, funderID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.ProjectID == projectID && r.FunderID == funderID && r.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListRequestsByProject(_ context.Context, projectID uuid.UUID, status RequestStatus, _, _ int) ([]*FundingRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var reqs []*FundingRequest
	for _, r := range f.requests {
		if r.ProjectID != projectID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		copied := *r
		reqs = append(reqs, &copied)
	}
	return reqs, int64(len(reqs)), nil
}

func (f *fakeRepo) CreateFund(_ context.Context, fund *Fund) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *fund
	f.funds[fund.ID] = &copied
	return nil
}

func (f *fakeRepo) ListFundsByProject(_ context.Context, projectID uuid.UUID) ([]*Fund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var fs []*Fund
	for _, fund := range f.funds {
		if fund.ProjectID == projectID {
			copied := *fund
			fs = append(fs, &copied)
		}
	}
	return fs, nil
}

func (f *fakeRepo) AddProjectFunding(_ context.Context, projectID uuid.UUID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFunding != nil {
		return f.failFunding
	}
	f.funding[projectID] += amount
	f.fundCounts[projectID]++
	return nil
}

type fakeProjectLookup struct {
	owners map[uuid.UUID]uuid.UUID
}

func (f *fakeProjectLookup) ProjectSummary(_ context.Context, projectID uuid.UUID) (uuid.UUID, string, error) {
	owner, ok := f.owners[projectID]
	if !ok {
		return uuid.Nil, "", ErrProjectNotFound
	}
	return owner, "Test Project", nil
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

func (r *recordingNotifier) byType(typ notification.Type) []notification.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Event
	for _, evt := range r.events {
		if evt.Type == typ {
			out = append(out, evt)
		}
	}
	return out
}

type fundingFixture struct {
	repo      *fakeRepo
	notifier  *recordingNotifier
	service   *Service
	projectID uuid.UUID
	ownerID   uuid.UUID
}

func newFundingFixture(t *testing.T) *fundingFixture {
	t.Helper()
	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	projectID := uuid.New()
	ownerID := uuid.New()
	lookup := &fakeProjectLookup{owners: map[uuid.UUID]uuid.UUID{projectID: ownerID}}
	return &fundingFixture{
		repo:      repo,
		notifier:  notifier,
		service:   NewService(repo, lookup, notifier, zap.NewNop()),
		projectID: projectID,
		ownerID:   ownerID,
	}
}

func TestService_OfferFunding(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending request and notifies owner", func(t *testing.T) {
		fx := newFundingFixture(t)
		funderID := uuid.New()

		req, err := fx.service.OfferFunding(ctx, fx.projectID, funderID, 500, "for materials")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, req.Status)
		assert.Equal(t, int64(500), req.Amount)

		evts := fx.notifier.byType(notification.TypeFundingRequest)
		require.Len(t, evts, 1)
		assert.Equal(t, fx.ownerID, evts[0].RecipientID)
		assert.Equal(t, int64(500), evts[0].Amount)
	})

	t.Run("non-positive amounts rejected", func(t *testing.T) {
		fx := newFundingFixture(t)
		for _, amount := range []int64{0, -1, -500} {
			_, err := fx.service.OfferFunding(ctx, fx.projectID, uuid.New(), amount, "")
			assert.ErrorIs(t, err, ErrInvalidAmount, "amount %d", amount)
		}
	})

	t.Run("second pending offer rejected", func(t *testing.T) {
		fx := newFundingFixture(t)
		funderID := uuid.New()

		_, err := fx.service.OfferFunding(ctx, fx.projectID, funderID, 100, "")
		require.NoError(t, err)
		_, err = fx.service.OfferFunding(ctx, fx.projectID, funderID, 200, "")
		assert.ErrorIs(t, err, ErrDuplicateRequest)
	})

	t.Run("unknown project", func(t *testing.T) {
		fx := newFundingFixture(t)
		_, err := fx.service.OfferFunding(ctx, uuid.New(), uuid.New(), 100, "")
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestService_VerifyRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("flips status, writes ledger, moves counter", func(t *testing.T) {
		fx := newFundingFixture(t)
		funderID := uuid.New()
		req, err := fx.service.OfferFunding(ctx, fx.projectID, funderID, 500, "")
		require.NoError(t, err)

		verified, err := fx.service.VerifyRequest(ctx, req.ID, fx.ownerID)
		require.NoError(t, err)
		assert.Equal(t, StatusVerified, verified.Status)
		require.NotNil(t, verified.VerifiedBy)
		assert.Equal(t, fx.ownerID, *verified.VerifiedBy)
		assert.NotNil(t, verified.VerifiedAt)

		funds, err := fx.repo.ListFundsByProject(ctx, fx.projectID)
		require.NoError(t, err)
		require.Len(t, funds, 1)
		assert.Equal(t, int64(500), funds[0].Amount)
		assert.Equal(t, funderID, funds[0].FunderID)

		assert.Equal(t, int64(500), fx.repo.funding[fx.projectID])

		require.Len(t, fx.notifier.byType(notification.TypeFundingVerified), 1)
		require.Len(t, fx.notifier.byType(notification.TypeProjectFunded), 1)
	})

	t.Run("double verify fails and counter moves once", func(t *testing.T) {
		fx := newFundingFixture(t)
		req, err := fx.service.OfferFunding(ctx, fx.projectID, uuid.New(), 300, "")
		require.NoError(t, err)

		_, err = fx.service.VerifyRequest(ctx, req.ID, fx.ownerID)
		require.NoError(t, err)
		_, err = fx.service.VerifyRequest(ctx, req.ID, fx.ownerID)
		assert.ErrorIs(t, err, ErrAlreadyProcessed)

		assert.Equal(t, int64(300), fx.repo.funding[fx.projectID])
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		fx := newFundingFixture(t)
		req, err := fx.service.OfferFunding(ctx, fx.projectID, uuid.New(), 300, "")
		require.NoError(t, err)

		_, err = fx.service.VerifyRequest(ctx, req.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotProjectOwner)
	})

	t.Run("counter failure rolls back status and ledger", func(t *testing.T) {
		fx := newFundingFixture(t)
		req, err := fx.service.OfferFunding(ctx, fx.projectID, uuid.New(), 400, "")
		require.NoError(t, err)

		fx.repo.failFunding = errors.New("deadlock")
		_, err = fx.service.VerifyRequest(ctx, req.ID, fx.ownerID)
		require.Error(t, err)

		// All-or-nothing: the request is still pending and no fund exists.
		stored, err := fx.repo.GetRequestByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status)

		funds, err := fx.repo.ListFundsByProject(ctx, fx.projectID)
		require.NoError(t, err)
		assert.Empty(t, funds)
		assert.Zero(t, fx.repo.funding[fx.projectID])

		// Retry succeeds once the fault clears.
		fx.repo.failFunding = nil
		_, err = fx.service.VerifyRequest(ctx, req.ID, fx.ownerID)
		require.NoError(t, err)
		assert.Equal(t, int64(400), fx.repo.funding[fx.projectID])
	})

	t.Run("verified amounts accumulate", func(t *testing.T) {
		fx := newFundingFixture(t)
		for _, amount := range []int64{100, 250, 50} {
			req, err := fx.service.OfferFunding(ctx, fx.projectID, uuid.New(), amount, "")
			require.NoError(t, err)
			_, err = fx.service.VerifyRequest(ctx, req.ID, fx.ownerID)
			require.NoError(t, err)
		}
		assert.Equal(t, int64(400), fx.repo.funding[fx.projectID])
		assert.Equal(t, 3, fx.repo.fundCounts[fx.projectID])
	})

	t.Run("concurrent verifies sum to the offered total", func(t *testing.T) {
		fx := newFundingFixture(t)
		amounts := []int64{100, 250, 50, 75, 25}

		reqs := make([]*FundingRequest, len(amounts))
		for i, amount := range amounts {
			req, err := fx.service.OfferFunding(ctx, fx.projectID, uuid.New(), amount, "")
			require.NoError(t, err)
			reqs[i] = req
		}

		var wg sync.WaitGroup
		errs := make([]error, len(reqs))
		for i, req := range reqs {
			wg.Add(1)
			go func(i int, id uuid.UUID) {
				defer wg.Done()
				_, errs[i] = fx.service.VerifyRequest(ctx, id, fx.ownerID)
			}(i, req.ID)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, "verify of request %d", i)
		}
		assert.Equal(t, int64(500), fx.repo.funding[fx.projectID])
		assert.Equal(t, len(amounts), fx.repo.fundCounts[fx.projectID])
	})
}

func TestService_RejectRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the row with verifier fields", func(t *testing.T) {
		fx := newFundingFixture(t)
		funderID := uuid.New()
		req, err := fx.service.OfferFunding(ctx, fx.projectID, funderID, 500, "")
		require.NoError(t, err)

		require.NoError(t, fx.service.RejectRequest(ctx, req.ID, fx.ownerID))

		stored, err := fx.repo.GetRequestByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, stored.Status)
		require.NotNil(t, stored.VerifiedBy)
		assert.Equal(t, fx.ownerID, *stored.VerifiedBy)

		// No money moved.
		assert.Zero(t, fx.repo.funding[fx.projectID])

		evts := fx.notifier.byType(notification.TypeFundingRejected)
		require.Len(t, evts, 1)
		assert.Equal(t, funderID, evts[0].RecipientID)
	})

	t.Run("rejected request cannot be verified later", func(t *testing.T) {
		fx := newFundingFixture(t)
		req, err := fx.service.OfferFunding(ctx, fx.projectID, uuid.New(), 500, "")
		require.NoError(t, err)

		require.NoError(t, fx.service.RejectRequest(ctx, req.ID, fx.ownerID))
		_, err = fx.service.VerifyRequest(ctx, req.ID, fx.ownerID)
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		fx := newFundingFixture(t)
		req, err := fx.service.OfferFunding(ctx, fx.projectID, uuid.New(), 500, "")
		require.NoError(t, err)

		err = fx.service.RejectRequest(ctx, req.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotProjectOwner)
	})
}
