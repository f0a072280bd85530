package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// SiteID identifies a construction site (EMPRD code)
type SiteID string

// RequisitionID identifies a requisition within a site. It is not globally unique.
type RequisitionID string

// ItemID identifies a requested supply item (insumo)
type ItemID string

// PurchaseOrderID identifies a purchase order (OF). Empty means no order yet.
type PurchaseOrderID string

// IsNull reports whether the item has not been matched to a purchase order
func (p PurchaseOrderID) IsNull() bool {
	return p == ""
}

// DateLayout is the canonical calendar date format used across the engine
const DateLayout = "2006-01-02"

// RawRequisitionLine is an upstream row as delivered by ingestion, before normalization.
// PurchaseOrderID is untyped because spreadsheet cells may carry it as a number or as text.
type RawRequisitionLine struct {
	SourceRow       int
	SiteID          string
	SiteDesc        string
	SiteRegion      string
	RequisitionID   string
	RequisitionDate string
	ItemID          string
	ItemDesc        string
	ItemCategory    string
	PurchaseOrderID any
	RequestedQty    string
}

// RequisitionLine is one normalized insumo line of a requisition
type RequisitionLine struct {
	SiteID          SiteID          `json:"site_id"`
	SiteDesc        string          `json:"site_desc"`
	SiteRegion      string          `json:"site_region"`
	RequisitionID   RequisitionID   `json:"requisition_id"`
	RequisitionDate time.Time       `json:"requisition_date"`
	ItemID          ItemID          `json:"item_id"`
	ItemDesc        string          `json:"item_desc"`
	ItemCategory    string          `json:"item_category"`
	PurchaseOrderID PurchaseOrderID `json:"purchase_order_id,omitempty"`
	RequestedQty    decimal.Decimal `json:"requested_qty"`
}

// LineKey is the natural key of a requisition line
type LineKey struct {
	RequisitionID RequisitionID
	ItemID        ItemID
	SiteID        SiteID
}

// RequisitionKey groups lines into one requisition
type RequisitionKey struct {
	SiteID        SiteID
	RequisitionID RequisitionID
}

// NewRequisitionLine creates a validated RequisitionLine
func NewRequisitionLine(
	siteID SiteID,
	requisitionID RequisitionID,
	itemID ItemID,
	requisitionDate time.Time,
	purchaseOrderID PurchaseOrderID,
) (*RequisitionLine, error) {
	if siteID == "" {
		return nil, &ValidationError{Field: "site_id", Reason: "site id cannot be empty", Err: ErrMissingIdentifier}
	}
	if requisitionID == "" {
		return nil, &ValidationError{Field: "requisition_id", Reason: "requisition id cannot be empty", Err: ErrMissingIdentifier}
	}

	return &RequisitionLine{
		SiteID:          siteID,
		RequisitionID:   requisitionID,
		ItemID:          itemID,
		RequisitionDate: requisitionDate,
		PurchaseOrderID: purchaseOrderID,
		RequestedQty:    decimal.Zero,
	}, nil
}

// Key returns the natural key of the line
func (l RequisitionLine) Key() LineKey {
	return LineKey{RequisitionID: l.RequisitionID, ItemID: l.ItemID, SiteID: l.SiteID}
}

// RequisitionKey returns the grouping key of the line
func (l RequisitionLine) RequisitionKey() RequisitionKey {
	return RequisitionKey{SiteID: l.SiteID, RequisitionID: l.RequisitionID}
}

// HasDate reports whether the requisition date could be parsed
func (l RequisitionLine) HasDate() bool {
	return !l.RequisitionDate.IsZero()
}

// ToRaw converts a normalized line back to its raw representation.
// Normalizing the result yields the same line.
func (l RequisitionLine) ToRaw() RawRequisitionLine {
	raw := RawRequisitionLine{
		SiteID:        string(l.SiteID),
		SiteDesc:      l.SiteDesc,
		SiteRegion:    l.SiteRegion,
		RequisitionID: string(l.RequisitionID),
		ItemID:        string(l.ItemID),
		ItemDesc:      l.ItemDesc,
		ItemCategory:  l.ItemCategory,
		RequestedQty:  l.RequestedQty.String(),
	}
	if l.HasDate() {
		raw.RequisitionDate = l.RequisitionDate.Format(DateLayout)
	}
	if !l.PurchaseOrderID.IsNull() {
		raw.PurchaseOrderID = string(l.PurchaseOrderID)
	}
	return raw
}

// RequisitionStatus represents the fulfillment status of a requisition
type RequisitionStatus int

const (
	Pending RequisitionStatus = iota
	FullyFulfilled
)

// String method for RequisitionStatus enum
func (s RequisitionStatus) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case FullyFulfilled:
		return "FULLY_FULFILLED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status by name in JSON and CSV output
func (s RequisitionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusFor derives the status from the pending count
func StatusFor(pendingCount int) RequisitionStatus {
	if pendingCount == 0 {
		return FullyFulfilled
	}
	return Pending
}

// RequisitionAggregate summarizes one requisition inside the active window
type RequisitionAggregate struct {
	SiteID          SiteID            `json:"site_id"`
	SiteDesc        string            `json:"site_desc"`
	SiteRegion      string            `json:"site_region"`
	RequisitionID   RequisitionID     `json:"requisition_id"`
	RequisitionDate time.Time         `json:"requisition_date"`
	ItemCount       int               `json:"item_count"`
	FulfilledCount  int               `json:"fulfilled_count"`
	PendingCount    int               `json:"pending_count"`
	Status          RequisitionStatus `json:"status"`
	Administrator   AdministratorName `json:"administrator,omitempty"`
}

// Key returns the grouping key of the aggregate
func (a RequisitionAggregate) Key() RequisitionKey {
	return RequisitionKey{SiteID: a.SiteID, RequisitionID: a.RequisitionID}
}
