package acompreq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vsinha/acompreq/pkg/application/services"
	"github.com/vsinha/acompreq/pkg/infrastructure/repositories/memory"
)

// Tracker runs the follow-up over an in-memory requisition log. It is the entry point for
// programs that embed the engine instead of going through the command line.
type Tracker struct {
	requisitions *memory.RequisitionRepository
	assignments  *memory.AssignmentRepository
	logger       *slog.Logger
}

// NewTracker creates an empty tracker. A nil logger discards log output.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		requisitions: memory.NewRequisitionRepository(0),
		assignments:  memory.NewAssignmentRepository(),
		logger:       logger,
	}
}

// SetLines replaces the requisition log
func (t *Tracker) SetLines(lines []RawLine) {
	t.requisitions.ReplaceRawLines(lines)
}

// AddAssignments loads site assignments; a site assigned to two administrators is an error
func (t *Tracker) AddAssignments(assignments []Assignment) error {
	if err := t.assignments.LoadAssignments(assignments); err != nil {
		return fmt.Errorf("failed to load assignments: %w", err)
	}
	return nil
}

// AddAddresses merges administrator addresses into the tracker
func (t *Tracker) AddAddresses(addresses AddressBook) error {
	if err := t.assignments.LoadAddresses(addresses); err != nil {
		return fmt.Errorf("failed to load addresses: %w", err)
	}
	return nil
}

// Track computes aggregates and digests for the window around now
func (t *Tracker) Track(ctx context.Context, now time.Time) (*Result, error) {
	service := services.NewTrackingService(t.requisitions, t.assignments, nil, t.logger)
	return service.Run(ctx, services.RunRequest{Now: now})
}
