package repositories

import "github.com/vsinha/acompreq/pkg/domain/entities"

// RequisitionRepository provides access to the raw requisition log of one computation pass
type RequisitionRepository interface {
	GetRawLines() ([]entities.RawRequisitionLine, error)
	LoadRawLines(lines []entities.RawRequisitionLine) error
}
