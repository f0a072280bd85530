package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/infrastructure/events"
	"github.com/vsinha/acompreq/pkg/infrastructure/repositories/memory"
	fixtures "github.com/vsinha/acompreq/pkg/infrastructure/testing"
)

func newScenarioService(t *testing.T, store events.EventStore) *TrackingService {
	t.Helper()
	scenario := fixtures.BuildSiteScenario()

	requisitions := memory.NewRequisitionRepository(len(scenario.Lines))
	if err := requisitions.LoadRawLines(scenario.Lines); err != nil {
		t.Fatalf("Failed to load lines: %v", err)
	}
	assignments := memory.NewAssignmentRepository()
	if err := assignments.LoadAssignments(scenario.Assignments); err != nil {
		t.Fatalf("Failed to load assignments: %v", err)
	}
	if err := assignments.LoadAddresses(scenario.Addresses); err != nil {
		t.Fatalf("Failed to load addresses: %v", err)
	}

	return NewTrackingService(requisitions, assignments, store, nil)
}

func TestTrackingService_Run_SiteScenario(t *testing.T) {
	service := newScenarioService(t, nil)

	result, err := service.Run(context.Background(), RunRequest{Now: fixtures.ReferenceNow})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.RunID == "" {
		t.Error("Expected a run id")
	}
	if result.Window.Label != "2026-W42/2026-W43" {
		t.Errorf("Unexpected window %s", result.Window.Label)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Row != 11 {
		t.Errorf("Expected row 11 rejected, got %+v", result.Rejected)
	}
	if result.Duplicates != 1 {
		t.Errorf("Expected 1 duplicate, got %d", result.Duplicates)
	}

	var order []entities.RequisitionID
	for _, agg := range result.Aggregates {
		order = append(order, agg.RequisitionID)
	}
	if !reflect.DeepEqual(order, []entities.RequisitionID{"R7", "R1", "R9", "R2"}) {
		t.Fatalf("Unexpected aggregate order %v", order)
	}

	r1 := result.Aggregates[1]
	if r1.ItemCount != 3 || r1.FulfilledCount != 2 || r1.PendingCount != 1 || r1.Status != entities.Pending {
		t.Errorf("Unexpected R1 aggregate %+v", r1)
	}
	if r1.Administrator != "ANA" {
		t.Errorf("Expected R1 attributed to ANA, got %q", r1.Administrator)
	}
	if result.Aggregates[2].Administrator != "" {
		t.Errorf("Expected R9 without administrator, got %q", result.Aggregates[2].Administrator)
	}
	if result.Aggregates[3].Status != entities.FullyFulfilled {
		t.Errorf("Expected R2 fully fulfilled, got %s", result.Aggregates[3].Status)
	}

	if result.Summary.TotalRequisitions != 4 || result.Summary.FullyFulfilled != 1 || result.Summary.Pending != 3 {
		t.Errorf("Unexpected summary %+v", result.Summary)
	}
	if result.Summary.WindowedLines != 7 {
		t.Errorf("Expected 7 windowed lines, got %d", result.Summary.WindowedLines)
	}
	if len(result.PendingLines) != 3 {
		t.Errorf("Expected 3 pending lines, got %d", len(result.PendingLines))
	}

	if !reflect.DeepEqual(result.Administrators, []entities.AdministratorName{"ANA", "BRUNO"}) {
		t.Errorf("Unexpected administrators %v", result.Administrators)
	}
	if !reflect.DeepEqual(result.MissingAddress, []entities.AdministratorName{"BRUNO"}) {
		t.Errorf("Unexpected missing addresses %v", result.MissingAddress)
	}

	ana, ok := result.Digest("ANA")
	if !ok {
		t.Fatal("Expected a digest for ANA")
	}
	if !ana.Deliverable() || len(ana.Entries) != 2 {
		t.Fatalf("Unexpected ANA digest %+v", ana)
	}
	if !reflect.DeepEqual(ana.Entries[0].PurchaseOrders, []entities.PurchaseOrderID{"101"}) {
		t.Errorf("Expected order 101 listed once, got %v", ana.Entries[0].PurchaseOrders)
	}
	if !reflect.DeepEqual(ana.Entries[0].PendingItems, []string{"Cement"}) {
		t.Errorf("Expected Cement pending, got %v", ana.Entries[0].PendingItems)
	}
	if !reflect.DeepEqual(ana.Entries[1].PurchaseOrders, []entities.PurchaseOrderID{"102", "103"}) {
		t.Errorf("Unexpected R2 orders %v", ana.Entries[1].PurchaseOrders)
	}

	bruno, ok := result.Digest("BRUNO")
	if !ok || bruno.Deliverable() {
		t.Errorf("Expected an undeliverable digest for BRUNO, got %+v", bruno)
	}
}

func TestTrackingService_Run_Deterministic(t *testing.T) {
	service := newScenarioService(t, nil)
	ctx := context.Background()

	first, err := service.Run(ctx, RunRequest{Now: fixtures.ReferenceNow})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := service.Run(ctx, RunRequest{Now: fixtures.ReferenceNow})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if first.RunID == second.RunID {
		t.Error("Expected distinct run ids")
	}
	for _, administrator := range first.Administrators {
		a, b := first.Digests[administrator], second.Digests[administrator]
		if a.Render() != b.Render() {
			t.Errorf("Digest for %s differs between runs", administrator)
		}
		if a.Fingerprint() != b.Fingerprint() {
			t.Errorf("Fingerprint for %s differs between runs", administrator)
		}
	}
}

func TestTrackingService_Run_PublishesEvents(t *testing.T) {
	store := events.NewInMemoryEventStore(nil)
	service := newScenarioService(t, store)

	result, err := service.Run(context.Background(), RunRequest{Now: fixtures.ReferenceNow})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	recorded, err := store.ReadEvents(result.RunID, 1)
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}

	var types []string
	for _, event := range recorded {
		types = append(types, event.Type())
		if event.RunID() != result.RunID {
			t.Errorf("Expected event %s to carry run id %s, got %q", event.Type(), result.RunID, event.RunID())
		}
	}
	expected := []string{
		events.RecordRejectedEvent,
		events.DigestComposedEvent,
		events.DigestComposedEvent,
		events.DigestAddressMissingEvent,
	}
	if !reflect.DeepEqual(types, expected) {
		t.Errorf("Unexpected events %v", types)
	}
}

func TestTrackingService_Run_EmptyWindow(t *testing.T) {
	service := newScenarioService(t, nil)

	// Two months later nothing in the log is recent enough
	later := fixtures.ReferenceNow.AddDate(0, 2, 0)
	result, err := service.Run(context.Background(), RunRequest{Now: later})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Aggregates) != 0 || len(result.Digests) != 0 || len(result.PendingLines) != 0 {
		t.Errorf("Expected an empty result, got %d aggregates and %d digests", len(result.Aggregates), len(result.Digests))
	}
	if result.Summary.TotalRequisitions != 0 {
		t.Errorf("Expected zero requisitions, got %d", result.Summary.TotalRequisitions)
	}
}

type failingRequisitions struct{}

func (failingRequisitions) GetRawLines() ([]entities.RawRequisitionLine, error) {
	return nil, errors.New("source unavailable")
}

func (failingRequisitions) LoadRawLines([]entities.RawRequisitionLine) error {
	return nil
}

func TestTrackingService_Run_RepositoryError(t *testing.T) {
	service := NewTrackingService(failingRequisitions{}, memory.NewAssignmentRepository(), nil, nil)

	if _, err := service.Run(context.Background(), RunRequest{Now: fixtures.ReferenceNow}); err == nil {
		t.Fatal("Expected an error when the repository fails")
	}
}

func TestTrackingService_Run_Cancelled(t *testing.T) {
	service := newScenarioService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := service.Run(ctx, RunRequest{Now: fixtures.ReferenceNow}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
