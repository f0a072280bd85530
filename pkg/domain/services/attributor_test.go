package services

import (
	"testing"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

func TestAttributor_LeftJoin(t *testing.T) {
	assignments := newStubAssignments()
	assignments.sites["S1"] = "ANA"

	aggregates := []entities.RequisitionAggregate{
		{SiteID: "S1", RequisitionID: "R1"},
		{SiteID: "S2", RequisitionID: "R2", Administrator: "STALE"},
	}

	attributed := NewAttributor(assignments).Attribute(aggregates)

	if len(attributed) != 2 {
		t.Fatalf("Expected every aggregate to be kept, got %d", len(attributed))
	}
	if attributed[0].Administrator != "ANA" {
		t.Errorf("Expected ANA for S1, got %q", attributed[0].Administrator)
	}
	if !attributed[1].Administrator.IsNull() {
		t.Errorf("Expected null administrator for unmapped site, got %q", attributed[1].Administrator)
	}
	if aggregates[0].Administrator != "" || aggregates[1].Administrator != "STALE" {
		t.Errorf("Expected input aggregates to be left untouched")
	}
}

func TestAttributor_NilRepository(t *testing.T) {
	attributed := NewAttributor(nil).Attribute([]entities.RequisitionAggregate{{SiteID: "S1", RequisitionID: "R1"}})
	if !attributed[0].Administrator.IsNull() {
		t.Errorf("Expected null administrator without an assignment table")
	}
}
