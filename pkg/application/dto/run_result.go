package dto

import (
	"time"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// RunResult contains the complete output of one tracking pass
type RunResult struct {
	RunID          string                                         `json:"run_id"`
	AsOf           time.Time                                      `json:"as_of"`
	Window         WindowInfo                                     `json:"window"`
	Aggregates     []entities.RequisitionAggregate                `json:"aggregates"`
	PendingLines   []PendingLine                                  `json:"pending_lines"`
	Digests        map[entities.AdministratorName]entities.Digest `json:"digests"`
	Administrators []entities.AdministratorName                   `json:"administrators"`
	MissingAddress []entities.AdministratorName                   `json:"missing_address"`
	Rejected       []entities.RejectedRecord                      `json:"rejected"`
	Duplicates     int                                            `json:"duplicates"`
	Summary        Summary                                        `json:"summary"`
}

// WindowInfo describes the two ISO weeks covered by a run
type WindowInfo struct {
	Label         string              `json:"label"`
	Weeks         [2]entities.ISOWeek `json:"weeks"`
	PreviousStart time.Time           `json:"previous_start"`
	End           time.Time           `json:"end"`
}

// Summary holds the headline counts of a run
type Summary struct {
	TotalRequisitions int `json:"total_requisitions"`
	FullyFulfilled    int `json:"fully_fulfilled"`
	Pending           int `json:"pending"`
	WindowedLines     int `json:"windowed_lines"`
	RejectedLines     int `json:"rejected_lines"`
}

// PendingLine is one windowed line that still has no purchase order
type PendingLine struct {
	SiteID          entities.SiteID        `json:"site_id"`
	SiteDesc        string                 `json:"site_desc"`
	RequisitionID   entities.RequisitionID `json:"requisition_id"`
	RequisitionDate time.Time              `json:"requisition_date"`
	ItemID          entities.ItemID        `json:"item_id"`
	ItemDesc        string                 `json:"item_desc"`
}

// NewPendingLine projects a normalized line onto the needs-purchasing view
func NewPendingLine(line entities.RequisitionLine) PendingLine {
	return PendingLine{
		SiteID:          line.SiteID,
		SiteDesc:        line.SiteDesc,
		RequisitionID:   line.RequisitionID,
		RequisitionDate: line.RequisitionDate,
		ItemID:          line.ItemID,
		ItemDesc:        line.ItemDesc,
	}
}

// Digest returns the digest composed for an administrator
func (r *RunResult) Digest(administrator entities.AdministratorName) (entities.Digest, bool) {
	digest, ok := r.Digests[administrator]
	return digest, ok
}
