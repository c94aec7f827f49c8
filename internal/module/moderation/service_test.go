package moderation

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/module/notification"
	"github.com/campushub/server/internal/shared/config"
	"github.com/campushub/server/internal/shared/entity"
)

type fakeReportRepo struct {
	mu      sync.Mutex
	reports []*Report
}

func (f *fakeReportRepo) CreateReport(_ context.Context, r *Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *r
	f.reports = append(f.reports, &copied)
	return nil
}

func (f *fakeReportRepo) ListOpenReports(_ context.Context, _, _ int) ([]*Report, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reports, int64(len(f.reports)), nil
}

func (f *fakeReportRepo) ListReportsForEntity(_ context.Context, ref entity.Ref) ([]*Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Report
	for _, r := range f.reports {
		if r.EntityKind == ref.Kind && r.EntityID == ref.ID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReportRepo) ResolveReport(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.ID == id {
			r.Status = ReportResolved
		}
	}
	return nil
}

type fakeHider struct {
	hidden []uuid.UUID
}

func (f *fakeHider) Hide(_ context.Context, id uuid.UUID) error {
	f.hidden = append(f.hidden, id)
	return nil
}

type recordingNotifier struct {
	events []notification.Event
}

func (r *recordingNotifier) Dispatch(_ context.Context, evt notification.Event) {
	r.events = append(r.events, evt)
}

func newModerationService(repo Repository, notifier Notifier) *Service {
	cfg := &config.ModerationConfig{HideThreshold: 80, ReportThreshold: 50}
	return NewService(cfg, repo, notifier, nil, zap.NewNop())
}

func TestService_Classify(t *testing.T) {
	svc := newModerationService(&fakeReportRepo{}, nil)

	tests := []struct {
		score int
		want  Outcome
	}{
		{0, OutcomeApproved},
		{49, OutcomeApproved},
		{50, OutcomeReported},
		{79, OutcomeReported},
		{80, OutcomeHidden},
		{100, OutcomeHidden},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.Classify(tt.score), "score %d", tt.score)
	}
}

func TestService_AutoModerate(t *testing.T) {
	ctx := context.Background()
	// Eight distinct keywords push the score to 80.
	spam := "free money click here buy now limited offer act now earn cash no risk crypto giveaway"
	// Five keywords land in the report band.
	borderline := "free money click here buy now limited offer act now"

	t.Run("hidden outcome hides, reports and notifies author", func(t *testing.T) {
		repo := &fakeReportRepo{}
		notifier := &recordingNotifier{}
		svc := newModerationService(repo, notifier)
		hider := &fakeHider{}
		svc.RegisterHider(entity.KindMessage, hider)

		ref := entity.NewRef(entity.KindMessage, uuid.New())
		authorID := uuid.New()

		outcome, err := svc.AutoModerate(ctx, ref, authorID, uuid.Nil, spam)
		require.NoError(t, err)
		assert.Equal(t, OutcomeHidden, outcome)

		require.Len(t, hider.hidden, 1)
		assert.Equal(t, ref.ID, hider.hidden[0])

		require.Len(t, repo.reports, 1)
		assert.Nil(t, repo.reports[0].ReporterID)
		assert.GreaterOrEqual(t, repo.reports[0].Score, 80)

		require.Len(t, notifier.events, 1)
		assert.Equal(t, notification.TypeContentHidden, notifier.events[0].Type)
		assert.Equal(t, authorID, notifier.events[0].RecipientID)
	})

	t.Run("borderline outcome reports without hiding", func(t *testing.T) {
		repo := &fakeReportRepo{}
		notifier := &recordingNotifier{}
		svc := newModerationService(repo, notifier)
		hider := &fakeHider{}
		svc.RegisterHider(entity.KindMessage, hider)

		outcome, err := svc.AutoModerate(ctx, entity.NewRef(entity.KindMessage, uuid.New()), uuid.New(), uuid.Nil, borderline)
		require.NoError(t, err)
		assert.Equal(t, OutcomeReported, outcome)
		assert.Empty(t, hider.hidden)
		assert.Len(t, repo.reports, 1)
		assert.Empty(t, notifier.events)
	})

	t.Run("clean content approved with no side effects", func(t *testing.T) {
		repo := &fakeReportRepo{}
		svc := newModerationService(repo, nil)

		outcome, err := svc.AutoModerate(ctx, entity.NewRef(entity.KindMessage, uuid.New()), uuid.New(), uuid.Nil, "see you at the lab tomorrow")
		require.NoError(t, err)
		assert.Equal(t, OutcomeApproved, outcome)
		assert.Empty(t, repo.reports)
	})

	t.Run("missing hider still files the report", func(t *testing.T) {
		repo := &fakeReportRepo{}
		svc := newModerationService(repo, nil)

		outcome, err := svc.AutoModerate(ctx, entity.NewRef(entity.KindComment, uuid.New()), uuid.Nil, uuid.Nil, spam)
		require.NoError(t, err)
		assert.Equal(t, OutcomeHidden, outcome)
		assert.Len(t, repo.reports, 1)
	})
}

func TestService_FileReport(t *testing.T) {
	ctx := context.Background()
	repo := &fakeReportRepo{}
	svc := newModerationService(repo, nil)
	reporterID := uuid.New()

	report, err := svc.FileReport(ctx, reporterID, entity.NewRef(entity.KindMessage, uuid.New()), "abusive")
	require.NoError(t, err)
	require.NotNil(t, report.ReporterID)
	assert.Equal(t, reporterID, *report.ReporterID)
	assert.Equal(t, ReportOpen, report.Status)

	_, err = svc.FileReport(ctx, reporterID, entity.Ref{Kind: "gadget", ID: uuid.New()}, "x")
	assert.ErrorIs(t, err, ErrUnknownEntityKind)
}
