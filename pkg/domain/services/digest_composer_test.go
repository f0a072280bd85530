package services

import (
	"reflect"
	"testing"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

func composeFixture() (Window, []entities.RequisitionAggregate, []entities.RequisitionLine, *stubAssignments) {
	window := NewWindow(date(2026, 10, 19))
	lines := []entities.RequisitionLine{
		line("S1", "R1", "I1", "Brita", date(2026, 10, 14), "101"),
		line("S1", "R1", "I2", "Areia", date(2026, 10, 14), "101"),
		line("S1", "R1", "I3", "Cement", date(2026, 10, 14), ""),
		line("S1", "R2", "I1", "Brita", date(2026, 10, 15), "102"),
		line("S2", "R7", "I5", "Tijolo", date(2026, 10, 13), ""),
		line("S3", "R9", "I6", "Cal", date(2026, 10, 16), ""),
	}

	assignments := newStubAssignments()
	assignments.sites["S1"] = "ANA"
	assignments.sites["S2"] = "BRUNO"
	assignments.addresses["ANA"] = "ana@example.com"

	aggregates := NewAttributor(assignments).Attribute(NewAggregator().Aggregate(lines))
	return window, aggregates, lines, assignments
}

func TestDigestComposer_Compose(t *testing.T) {
	window, aggregates, lines, assignments := composeFixture()

	result := NewDigestComposer(assignments).Compose(window, aggregates, lines)

	if !reflect.DeepEqual(result.Administrators, []entities.AdministratorName{"ANA", "BRUNO"}) {
		t.Errorf("Unexpected administrators %v", result.Administrators)
	}
	if !reflect.DeepEqual(result.MissingAddress, []entities.AdministratorName{"BRUNO"}) {
		t.Errorf("Expected BRUNO to be reported without address, got %v", result.MissingAddress)
	}

	ana := result.Digests["ANA"]
	if ana.Address != "ana@example.com" || ana.AddressMissing {
		t.Errorf("Expected ANA to have an address, got %q (missing=%v)", ana.Address, ana.AddressMissing)
	}
	if len(ana.Entries) != 2 {
		t.Fatalf("Expected 2 entries for ANA, got %d", len(ana.Entries))
	}

	r1 := ana.Entries[0]
	if r1.RequisitionID != "R1" {
		t.Fatalf("Expected R1 first, got %s", r1.RequisitionID)
	}
	if !reflect.DeepEqual(r1.PurchaseOrders, []entities.PurchaseOrderID{"101"}) {
		t.Errorf("Expected purchase order 101 once, got %v", r1.PurchaseOrders)
	}
	if !reflect.DeepEqual(r1.PendingItems, []string{"Cement"}) {
		t.Errorf("Expected Cement pending, got %v", r1.PendingItems)
	}

	r2 := ana.Entries[1]
	if len(r2.PendingItems) != 0 {
		t.Errorf("Expected no pending items for R2, got %v", r2.PendingItems)
	}

	bruno := result.Digests["BRUNO"]
	if !bruno.AddressMissing || bruno.Deliverable() {
		t.Errorf("Expected BRUNO digest to be flagged and undeliverable")
	}

	if _, ok := result.Digests[""]; ok {
		t.Errorf("Expected no digest for requisitions without administrator")
	}
}

func TestDigestComposer_Deterministic(t *testing.T) {
	window, aggregates, lines, assignments := composeFixture()
	composer := NewDigestComposer(assignments)

	first := composer.Compose(window, aggregates, lines)
	second := composer.Compose(window, aggregates, lines)

	for name, digest := range first.Digests {
		if digest.Render() != second.Digests[name].Render() {
			t.Errorf("Expected byte-identical digest for %s", name)
		}
	}
}

func TestDigestComposer_NoRequisitionsNoDigest(t *testing.T) {
	window, aggregates, lines, assignments := composeFixture()
	assignments.addresses["CARLA"] = "carla@example.com"

	result := NewDigestComposer(assignments).Compose(window, aggregates, lines)
	if _, ok := result.Digests["CARLA"]; ok {
		t.Errorf("Expected no digest for an administrator without requisitions")
	}

	empty := NewDigestComposer(assignments).Compose(window, nil, nil)
	if len(empty.Digests) != 0 || len(empty.Administrators) != 0 {
		t.Errorf("Expected empty result for an empty window, got %d digests", len(empty.Digests))
	}
}

func TestDigestComposer_PendingFallsBackToItemID(t *testing.T) {
	window := NewWindow(date(2026, 10, 19))
	lines := []entities.RequisitionLine{
		line("S1", "R1", "I7", "", date(2026, 10, 14), ""),
		line("S1", "R1", "I8", "Cal", date(2026, 10, 14), ""),
		line("S1", "R1", "I9", "Cal", date(2026, 10, 14), ""),
	}
	assignments := newStubAssignments()
	assignments.sites["S1"] = "ANA"
	aggregates := NewAttributor(assignments).Attribute(NewAggregator().Aggregate(lines))

	entry := NewDigestComposer(assignments).Compose(window, aggregates, lines).Digests["ANA"].Entries[0]
	if !reflect.DeepEqual(entry.PendingItems, []string{"I7", "Cal"}) {
		t.Errorf("Expected [I7 Cal], got %v", entry.PendingItems)
	}
	if len(entry.PurchaseOrders) != 0 {
		t.Errorf("Expected no purchase orders, got %v", entry.PurchaseOrders)
	}
}
