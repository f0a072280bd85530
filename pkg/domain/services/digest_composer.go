package services

import (
	"sort"

	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/domain/repositories"
)

// DigestComposer builds one notification digest per administrator
type DigestComposer struct {
	assignments repositories.AssignmentRepository
}

// NewDigestComposer creates a composer that looks up addresses in the given repository
func NewDigestComposer(assignments repositories.AssignmentRepository) *DigestComposer {
	return &DigestComposer{assignments: assignments}
}

// ComposeResult holds the digests of one pass
type ComposeResult struct {
	Digests        map[entities.AdministratorName]entities.Digest
	Administrators []entities.AdministratorName
	MissingAddress []entities.AdministratorName
}

// Compose partitions attributed aggregates by administrator. Lines must be the windowed
// lines the aggregates were computed from; they supply purchase orders and pending items.
// Administrators without requisitions get no digest; those without an address get a
// digest flagged AddressMissing.
func (c *DigestComposer) Compose(
	window Window,
	aggregates []entities.RequisitionAggregate,
	lines []entities.RequisitionLine,
) ComposeResult {
	result := ComposeResult{
		Digests:        make(map[entities.AdministratorName]entities.Digest),
		Administrators: make([]entities.AdministratorName, 0),
		MissingAddress: make([]entities.AdministratorName, 0),
	}

	linesByKey := make(map[entities.RequisitionKey][]entities.RequisitionLine)
	for _, line := range lines {
		key := line.RequisitionKey()
		linesByKey[key] = append(linesByKey[key], line)
	}

	for _, agg := range aggregates {
		if agg.Administrator.IsNull() {
			continue
		}

		digest, exists := result.Digests[agg.Administrator]
		if !exists {
			digest = entities.Digest{
				Administrator: agg.Administrator,
				AsOf:          window.AsOf,
				PreviousWeek:  window.PreviousWeek(),
				CurrentWeek:   window.CurrentWeek(),
				Entries:       make([]entities.DigestEntry, 0),
			}
			address, ok := c.lookupAddress(agg.Administrator)
			digest.Address = address
			digest.AddressMissing = !ok
			result.Administrators = append(result.Administrators, agg.Administrator)
			if !ok {
				result.MissingAddress = append(result.MissingAddress, agg.Administrator)
			}
		}

		digest.Entries = append(digest.Entries, buildEntry(agg, linesByKey[agg.Key()]))
		result.Digests[agg.Administrator] = digest
	}

	sortNames(result.Administrators)
	sortNames(result.MissingAddress)
	return result
}

func (c *DigestComposer) lookupAddress(administrator entities.AdministratorName) (string, bool) {
	if c.assignments == nil {
		return "", false
	}
	address, ok := c.assignments.AddressFor(administrator)
	if !ok || address == "" {
		return "", false
	}
	return address, true
}

func buildEntry(agg entities.RequisitionAggregate, lines []entities.RequisitionLine) entities.DigestEntry {
	entry := entities.DigestEntry{
		RequisitionID:   agg.RequisitionID,
		SiteID:          agg.SiteID,
		SiteDesc:        agg.SiteDesc,
		RequisitionDate: agg.RequisitionDate,
		PurchaseOrders:  make([]entities.PurchaseOrderID, 0),
		PendingItems:    make([]string, 0),
	}

	seenOrders := make(map[entities.PurchaseOrderID]bool)
	seenItems := make(map[string]bool)
	for _, line := range lines {
		if !line.PurchaseOrderID.IsNull() {
			if !seenOrders[line.PurchaseOrderID] {
				seenOrders[line.PurchaseOrderID] = true
				entry.PurchaseOrders = append(entry.PurchaseOrders, line.PurchaseOrderID)
			}
			continue
		}

		item := line.ItemDesc
		if item == "" {
			item = string(line.ItemID)
		}
		if item == "" || seenItems[item] {
			continue
		}
		seenItems[item] = true
		entry.PendingItems = append(entry.PendingItems, item)
	}

	return entry
}

func sortNames(names []entities.AdministratorName) {
	sort.Slice(names, func(i, j int) bool {
		return names[i] < names[j]
	})
}
