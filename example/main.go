package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/acompreq/pkg/acompreq"
)

func main() {
	ctx := context.Background()

	tracker := acompreq.NewTracker(nil)
	tracker.SetLines(sampleLog())

	if err := tracker.AddAssignments([]acompreq.Assignment{
		{SiteID: "210", Administrator: "Marina"},
		{SiteID: "305", Administrator: "Otávio"},
	}); err != nil {
		fmt.Printf("❌ Assignments rejected: %v\n", err)
		return
	}
	if err := tracker.AddAddresses(acompreq.AddressBook{"MARINA": "marina@construtora.example"}); err != nil {
		fmt.Printf("❌ Addresses rejected: %v\n", err)
		return
	}

	asOf := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	fmt.Printf("🏗️  Running follow-up as of %s...\n\n", asOf.Format("2006-01-02"))

	result, err := tracker.Track(ctx, asOf)
	if err != nil {
		fmt.Printf("❌ Follow-up failed: %v\n", err)
		return
	}

	fmt.Printf("📊 Window %s\n", result.Window.Label)
	fmt.Printf("  Requisitions: %d\n", result.Summary.TotalRequisitions)
	fmt.Printf("  Fully purchased: %d\n", result.Summary.FullyFulfilled)
	fmt.Printf("  With pending items: %d\n", result.Summary.Pending)
	fmt.Println()

	fmt.Println("📋 Requisitions:")
	for _, agg := range result.Aggregates {
		fmt.Printf("  %s/%s %s items=%d bought=%d pending=%d %s\n",
			agg.SiteID, agg.RequisitionID, agg.RequisitionDate.Format("2006-01-02"),
			agg.ItemCount, agg.FulfilledCount, agg.PendingCount, agg.Status)
	}
	fmt.Println()

	for _, name := range result.Administrators {
		digest := result.Digests[name]
		if digest.AddressMissing {
			fmt.Printf("⚠️  %s has no address, digest not sent\n\n", name)
			continue
		}
		fmt.Printf("✉️  To %s: %s\n%s\n", digest.Address, digest.Subject(), digest.Render())
	}
}

func sampleLog() []acompreq.RawLine {
	line := func(row int, site, siteDesc, requisition, date, item, itemDesc string, order any) acompreq.RawLine {
		return acompreq.RawLine{
			SourceRow:       row,
			SiteID:          site,
			SiteDesc:        siteDesc,
			SiteRegion:      "SP",
			RequisitionID:   requisition,
			RequisitionDate: date,
			ItemID:          item,
			ItemDesc:        itemDesc,
			ItemCategory:    "MATERIAL",
			PurchaseOrderID: order,
			RequestedQty:    "10",
		}
	}

	return []acompreq.RawLine{
		line(2, "210", "Residencial Aurora", "8841", "2026-10-13", "5501", "Cimento CP II", 77120.0),
		line(3, "210", "Residencial Aurora", "8841", "2026-10-13", "5502", "Areia média", nil),
		line(4, "210", "Residencial Aurora", "8850", "2026-10-16", "6120", "Bloco cerâmico", "77133"),
		line(5, "305", "Galpão Leste", "9012", "2026-10-19", "7003", "Telha metálica", nil),
		line(6, "305", "Galpão Leste", "8790", "2026-09-28", "7003", "Telha metálica", "76001"),
	}
}
