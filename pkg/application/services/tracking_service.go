package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/acompreq/pkg/application/dto"
	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/domain/repositories"
	domain "github.com/vsinha/acompreq/pkg/domain/services"
	"github.com/vsinha/acompreq/pkg/infrastructure/events"
)

// RunRequest parameterizes one tracking pass
type RunRequest struct {
	// Now is the reference instant for the window; zero means the wall clock
	Now time.Time
}

// TrackingService runs the requisition follow-up pipeline:
// normalize, window, aggregate, attribute and compose digests
type TrackingService struct {
	requisitions repositories.RequisitionRepository
	assignments  repositories.AssignmentRepository
	eventStore   events.EventStore
	logger       *slog.Logger

	normalizer *domain.Normalizer
	aggregator *domain.Aggregator
	attributor *domain.Attributor
	composer   *domain.DigestComposer
	clock      func() time.Time
}

// NewTrackingService wires the pipeline. eventStore and logger may be nil.
func NewTrackingService(
	requisitions repositories.RequisitionRepository,
	assignments repositories.AssignmentRepository,
	eventStore events.EventStore,
	logger *slog.Logger,
) *TrackingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackingService{
		requisitions: requisitions,
		assignments:  assignments,
		eventStore:   eventStore,
		logger:       logger,
		normalizer:   domain.NewNormalizer(),
		aggregator:   domain.NewAggregator(),
		attributor:   domain.NewAttributor(assignments),
		composer:     domain.NewDigestComposer(assignments),
		clock:        time.Now,
	}
}

// Run computes aggregates and digests for the window around req.Now.
// Rejected rows and missing addresses are reported in the result, never as errors.
func (s *TrackingService) Run(ctx context.Context, req RunRequest) (*dto.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := req.Now
	if now.IsZero() {
		now = s.clock()
	}

	raw, err := s.requisitions.GetRawLines()
	if err != nil {
		return nil, fmt.Errorf("failed to read requisition lines: %w", err)
	}

	runID := uuid.NewString()
	normalized := s.normalizer.Normalize(raw)
	for _, rejected := range normalized.Rejected {
		s.publish(runID, events.NewRecordRejectedEvent(runID, rejected))
	}

	window := domain.NewWindow(now)
	windowed := window.Select(normalized.Lines)
	aggregates := s.attributor.Attribute(s.aggregator.Aggregate(windowed))
	composed := s.composer.Compose(window, aggregates, windowed)

	result := &dto.RunResult{
		RunID: runID,
		AsOf:  window.AsOf,
		Window: dto.WindowInfo{
			Label:         window.Label(),
			Weeks:         window.Weeks(),
			PreviousStart: window.PreviousStart,
			End:           window.End,
		},
		Aggregates:     aggregates,
		PendingLines:   pendingLines(windowed),
		Digests:        composed.Digests,
		Administrators: composed.Administrators,
		MissingAddress: composed.MissingAddress,
		Rejected:       normalized.Rejected,
		Duplicates:     normalized.Duplicates,
		Summary:        summarize(aggregates),
	}
	result.Summary.WindowedLines = len(windowed)
	result.Summary.RejectedLines = len(normalized.Rejected)

	for _, administrator := range composed.Administrators {
		s.publish(runID, events.NewDigestComposedEvent(runID, composed.Digests[administrator]))
	}
	for _, administrator := range composed.MissingAddress {
		s.publish(runID, events.NewDigestAddressMissingEvent(runID, administrator))
	}

	s.logger.Info("tracking run completed",
		"run_id", runID,
		"window", result.Window.Label,
		"lines", len(raw),
		"windowed", len(windowed),
		"rejected", len(normalized.Rejected),
		"duplicates", normalized.Duplicates,
		"requisitions", len(aggregates),
		"digests", len(composed.Digests),
		"missing_address", len(composed.MissingAddress),
	)

	return result, nil
}

func (s *TrackingService) publish(streamID string, event events.Event) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(streamID, event); err != nil {
		s.logger.Warn("failed to publish event", "event", event.Type(), "error", err)
	}
}

func pendingLines(lines []entities.RequisitionLine) []dto.PendingLine {
	pending := make([]dto.PendingLine, 0)
	for _, line := range lines {
		if line.PurchaseOrderID.IsNull() {
			pending = append(pending, dto.NewPendingLine(line))
		}
	}
	return pending
}

func summarize(aggregates []entities.RequisitionAggregate) dto.Summary {
	summary := dto.Summary{TotalRequisitions: len(aggregates)}
	for _, agg := range aggregates {
		if agg.Status == entities.FullyFulfilled {
			summary.FullyFulfilled++
		} else {
			summary.Pending++
		}
	}
	return summary
}
