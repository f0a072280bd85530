package services

import (
	"sort"
	"strings"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// Aggregator groups requisition lines into per-requisition fulfillment counts
type Aggregator struct{}

// NewAggregator creates a new requisition aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate groups lines by (site, requisition). Descriptive fields come from the first
// line that carries them; the result is sorted by date, site and requisition.
func (a *Aggregator) Aggregate(lines []entities.RequisitionLine) []entities.RequisitionAggregate {
	index := make(map[entities.RequisitionKey]int)
	aggregates := make([]entities.RequisitionAggregate, 0)

	for _, line := range lines {
		key := line.RequisitionKey()
		pos, exists := index[key]
		if !exists {
			pos = len(aggregates)
			index[key] = pos
			aggregates = append(aggregates, entities.RequisitionAggregate{
				SiteID:        line.SiteID,
				RequisitionID: line.RequisitionID,
			})
		}

		agg := &aggregates[pos]
		if agg.SiteDesc == "" {
			agg.SiteDesc = line.SiteDesc
		}
		if agg.SiteRegion == "" {
			agg.SiteRegion = line.SiteRegion
		}
		if agg.RequisitionDate.IsZero() {
			agg.RequisitionDate = line.RequisitionDate
		}
		if line.ItemDesc != "" {
			agg.ItemCount++
		}
		if !line.PurchaseOrderID.IsNull() {
			agg.FulfilledCount++
		}
	}

	for i := range aggregates {
		agg := &aggregates[i]
		// Lines with an order but no description are not counted as items
		if agg.FulfilledCount > agg.ItemCount {
			agg.FulfilledCount = agg.ItemCount
		}
		agg.PendingCount = agg.ItemCount - agg.FulfilledCount
		agg.Status = entities.StatusFor(agg.PendingCount)
	}

	SortAggregates(aggregates)
	return aggregates
}

// SortAggregates orders aggregates by date (null dates last), then site, then requisition
func SortAggregates(aggregates []entities.RequisitionAggregate) {
	sort.SliceStable(aggregates, func(i, j int) bool {
		return compareAggregates(aggregates[i], aggregates[j]) < 0
	})
}

func compareAggregates(a, b entities.RequisitionAggregate) int {
	switch {
	case a.RequisitionDate.IsZero() && !b.RequisitionDate.IsZero():
		return 1
	case !a.RequisitionDate.IsZero() && b.RequisitionDate.IsZero():
		return -1
	case a.RequisitionDate.Before(b.RequisitionDate):
		return -1
	case a.RequisitionDate.After(b.RequisitionDate):
		return 1
	}
	if c := CompareIdentifiers(string(a.SiteID), string(b.SiteID)); c != 0 {
		return c
	}
	return CompareIdentifiers(string(a.RequisitionID), string(b.RequisitionID))
}

// CompareIdentifiers orders two identifiers numerically when both are unsigned
// integers and lexicographically otherwise
func CompareIdentifiers(a, b string) int {
	if isDigits(a) && isDigits(b) {
		ta := strings.TrimLeft(a, "0")
		tb := strings.TrimLeft(b, "0")
		if len(ta) != len(tb) {
			if len(ta) < len(tb) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
