package entities

import (
	"strings"
	"testing"
	"time"
)

func sampleDigest() Digest {
	return Digest{
		Administrator: "ANA",
		Address:       "ana@example.com",
		AsOf:          time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		PreviousWeek:  ISOWeek{Year: 2026, Week: 42},
		CurrentWeek:   ISOWeek{Year: 2026, Week: 43},
		Entries: []DigestEntry{
			{
				RequisitionID:   "R1",
				SiteID:          "S1",
				SiteDesc:        "Obra Centro",
				RequisitionDate: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
				PurchaseOrders:  []PurchaseOrderID{"101"},
				PendingItems:    []string{"Cement"},
			},
			{
				RequisitionID:   "R2",
				SiteID:          "S1",
				RequisitionDate: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestDigest_Render(t *testing.T) {
	want := "Acompanhamento de Requisições - ANA\n" +
		"Semanas 2026-W42 e 2026-W43 (referência 2026-10-19)\n" +
		"\n" +
		"Requisição R1 - Obra S1 (Obra Centro) - 2026-10-14\n" +
		"  OFs geradas: 101\n" +
		"  Insumos pendentes:\n" +
		"    - Cement\n" +
		"\n" +
		"Requisição R2 - Obra S1 - 2026-10-15\n" +
		"  OFs geradas: nenhuma OF gerada ainda\n" +
		"  Insumos pendentes: todos os insumos atendidos\n" +
		"\n" +
		"Total: 2 requisições, 1 com pendências.\n"

	got := sampleDigest().Render()
	if got != want {
		t.Errorf("Unexpected digest body.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestDigest_FingerprintStable(t *testing.T) {
	first := sampleDigest()
	second := sampleDigest()
	if first.Fingerprint() != second.Fingerprint() {
		t.Errorf("Expected identical fingerprints for identical digests")
	}

	second.Entries[0].PendingItems = append(second.Entries[0].PendingItems, "Sand")
	if first.Fingerprint() == second.Fingerprint() {
		t.Errorf("Expected fingerprint to change with the body")
	}
}

func TestDigest_Deliverable(t *testing.T) {
	digest := sampleDigest()
	if !digest.Deliverable() {
		t.Errorf("Expected digest with address and entries to be deliverable")
	}

	digest.AddressMissing = true
	digest.Address = ""
	if digest.Deliverable() {
		t.Errorf("Expected digest without address to be undeliverable")
	}

	if !strings.HasSuffix(sampleDigest().Subject(), "2026-W43") {
		t.Errorf("Expected subject to carry the current week, got %q", sampleDigest().Subject())
	}
}

func TestISOWeekOf_YearBoundary(t *testing.T) {
	// 2027-01-01 is a Friday and belongs to the last week of 2026
	week := ISOWeekOf(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	if week != (ISOWeek{Year: 2026, Week: 53}) {
		t.Errorf("Expected 2026-W53, got %s", week)
	}
}
