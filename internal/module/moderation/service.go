package moderation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/module/notification"
	"github.com/campushub/server/internal/shared/config"
	"github.com/campushub/server/internal/shared/entity"
	"github.com/campushub/server/internal/utils/metrics"
)

// Outcome is the classifier's decision.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeReported Outcome = "reported"
	OutcomeHidden   Outcome = "hidden"
)

// Hider hides one kind of content. Each content-owning module registers its
// own implementation; the service never touches foreign tables directly.
type Hider interface {
	Hide(ctx context.Context, id uuid.UUID) error
}

// Notifier delivers notifications about moderation actions.
type Notifier interface {
	Dispatch(ctx context.Context, evt notification.Event)
}

// Service classifies content and acts on the verdict: hide and report, report
// only, or approve. The kind registry is the explicit lookup table resolving
// which store hides which entity kind.
type Service struct {
	filter          *Filter
	repo            Repository
	notifier        Notifier
	hiders          map[entity.Kind]Hider
	hideThreshold   int
	reportThreshold int
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// NewService creates a moderation service.
func NewService(cfg *config.ModerationConfig, repo Repository, notifier Notifier, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		filter:          NewFilter(cfg.ExtraKeywords),
		repo:            repo,
		notifier:        notifier,
		hiders:          map[entity.Kind]Hider{},
		hideThreshold:   cfg.HideThreshold,
		reportThreshold: cfg.ReportThreshold,
		metrics:         m,
		logger:          logger,
	}
}

// RegisterHider wires the hide path for one entity kind.
func (s *Service) RegisterHider(kind entity.Kind, h Hider) {
	s.hiders[kind] = h
}

// Score exposes the raw classifier.
func (s *Service) Score(content string) int {
	return s.filter.Score(content)
}

// Classify maps a score onto an outcome using the configured thresholds.
func (s *Service) Classify(score int) Outcome {
	switch {
	case score >= s.hideThreshold:
		return OutcomeHidden
	case score >= s.reportThreshold:
		return OutcomeReported
	default:
		return OutcomeApproved
	}
}

// AutoModerate scores the content and applies the verdict: hidden content is
// hidden through the kind's registered Hider and reported; borderline content
// is reported only. authorID receives a notification when content is hidden.
// projectID scopes the notification and may be nil.
func (s *Service) AutoModerate(ctx context.Context, ref entity.Ref, authorID uuid.UUID, projectID uuid.UUID, content string) (Outcome, error) {
	score := s.filter.Score(content)
	outcome := s.Classify(score)

	if s.metrics != nil {
		s.metrics.ModerationOutcomes.WithLabelValues(string(outcome)).Inc()
	}
	if outcome == OutcomeApproved {
		return outcome, nil
	}

	if outcome == OutcomeHidden {
		if hider, ok := s.hiders[ref.Kind]; ok {
			if err := hider.Hide(ctx, ref.ID); err != nil {
				return outcome, fmt.Errorf("hide %s %s: %w", ref.Kind, ref.ID, err)
			}
		} else {
			s.logger.Warn("no hider registered for kind", zap.String("kind", string(ref.Kind)))
		}
	}

	report := &Report{
		ID:         uuid.New(),
		EntityKind: ref.Kind,
		EntityID:   ref.ID,
		Reason:     fmt.Sprintf("automatic: spam score %d", score),
		Score:      score,
		Status:     ReportOpen,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return outcome, fmt.Errorf("file report: %w", err)
	}

	if outcome == OutcomeHidden && authorID != uuid.Nil && s.notifier != nil {
		s.notifier.Dispatch(ctx, notification.Event{
			Type:        notification.TypeContentHidden,
			RecipientID: authorID,
			ProjectID:   projectID,
			Entity:      ref,
		})
	}
	return outcome, nil
}

// FileReport records a user-filed report against content.
func (s *Service) FileReport(ctx context.Context, reporterID uuid.UUID, ref entity.Ref, reason string) (*Report, error) {
	if !ref.Kind.IsValid() {
		return nil, ErrUnknownEntityKind
	}
	report := &Report{
		ID:         uuid.New(),
		ReporterID: &reporterID,
		EntityKind: ref.Kind,
		EntityID:   ref.ID,
		Reason:     reason,
		Status:     ReportOpen,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
