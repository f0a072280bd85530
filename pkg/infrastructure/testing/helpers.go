package testing

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// ReferenceNow is the fixed clock used by the site scenario: Monday 2026-10-19, ISO week 43
var ReferenceNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// SiteScenario bundles a small requisition log with its assignment table
type SiteScenario struct {
	Lines       []entities.RawRequisitionLine
	Assignments []entities.AdministratorAssignment
	Addresses   entities.AddressBook
}

// BuildSiteScenario builds the reference scenario:
//   - R1/S1: two lines on order 101 (one exported as 101.0) and Cement still pending
//   - R2/S1: fully purchased under orders 102 and 103
//   - R7/S2: site assigned to an administrator without an address
//   - R9/S3: site without an administrator
//   - R4/S1: dated outside the window
//   - a duplicate re-export of R1/I1 and a row missing its requisition id
func BuildSiteScenario() SiteScenario {
	lines := []entities.RawRequisitionLine{
		rawLine(2, "S1", "Obra Centro", "SP", "R1", "2026-10-14", "I1", "Brita", 101.0),
		rawLine(3, "S1", "Obra Centro", "SP", "R1", "2026-10-14", "I2", "Areia", "101"),
		rawLine(4, "S1", "Obra Centro", "SP", "R1", "2026-10-14", "I3", "Cement", nil),
		rawLine(5, "S1", "Obra Centro", "SP", "R2", "2026-10-19", "I1", "Brita", "102.0"),
		rawLine(6, "S1", "Obra Centro", "SP", "R2", "2026-10-19", "I4", "Vergalhão", 103),
		rawLine(7, "S2", "Obra Norte", "MG", "R7", "2026-10-12", "I5", "Tijolo", "nan"),
		rawLine(8, "S3", "Obra Sul", "RS", "R9", "2026-10-16", "I6", "Cal", nil),
		rawLine(9, "S1", "Obra Centro", "SP", "R4", "2026-10-02", "I1", "Brita", nil),
		rawLine(10, "S1", "Obra Centro", "SP", "R1", "2026-10-14", "I1", "Brita", nil),
		rawLine(11, "S1", "Obra Centro", "SP", "", "2026-10-14", "I9", "Cimento", nil),
	}

	return SiteScenario{
		Lines: lines,
		Assignments: []entities.AdministratorAssignment{
			{SiteID: "S1", Administrator: " Ána "},
			{SiteID: "S2", Administrator: "Bruno"},
		},
		Addresses: entities.AddressBook{
			"ANA": "ana@example.com",
		},
	}
}

func rawLine(row int, site, siteDesc, region, requisition, date, item, itemDesc string, order any) entities.RawRequisitionLine {
	return entities.RawRequisitionLine{
		SourceRow:       row,
		SiteID:          site,
		SiteDesc:        siteDesc,
		SiteRegion:      region,
		RequisitionID:   requisition,
		RequisitionDate: date,
		ItemID:          item,
		ItemDesc:        itemDesc,
		ItemCategory:    "MATERIAL",
		PurchaseOrderID: order,
		RequestedQty:    "1",
	}
}

// RandomRawLines generates a reproducible log of n lines spread over a few sites and
// requisitions around the reference date, with duplicates and blank orders mixed in
func RandomRawLines(seed int64, n int) []entities.RawRequisitionLine {
	faker := gofakeit.New(seed)
	lines := make([]entities.RawRequisitionLine, 0, n)

	for i := 0; i < n; i++ {
		if i > 0 && faker.Number(1, 10) == 1 {
			duplicate := lines[faker.Number(0, len(lines)-1)]
			duplicate.SourceRow = i + 2
			lines = append(lines, duplicate)
			continue
		}

		date := ReferenceNow.AddDate(0, 0, -faker.Number(0, 20)).Format(entities.DateLayout)
		if faker.Number(1, 25) == 1 {
			date = "sem data"
		}

		var order any
		switch faker.Number(1, 4) {
		case 1:
			order = float64(faker.Number(1000, 1050))
		case 2:
			order = fmt.Sprintf("%d", faker.Number(1000, 1050))
		}

		lines = append(lines, entities.RawRequisitionLine{
			SourceRow:       i + 2,
			SiteID:          fmt.Sprintf("S%d", faker.Number(1, 4)),
			SiteDesc:        faker.City(),
			SiteRegion:      faker.StateAbr(),
			RequisitionID:   fmt.Sprintf("R%d", faker.Number(1, 8)),
			RequisitionDate: date,
			ItemID:          fmt.Sprintf("I%d", faker.Number(1, 30)),
			ItemDesc:        faker.ProductName(),
			ItemCategory:    faker.ProductCategory(),
			PurchaseOrderID: order,
			RequestedQty:    fmt.Sprintf("%d", faker.Number(1, 500)),
		})
	}

	return lines
}
