package memory

import (
	"sync"

	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/domain/repositories"
)

// RequisitionRepository provides in-memory storage of the raw requisition log
type RequisitionRepository struct {
	lines []entities.RawRequisitionLine
	mutex sync.RWMutex
}

// NewRequisitionRepository creates a new in-memory requisition repository
func NewRequisitionRepository(expectedLines int) *RequisitionRepository {
	return &RequisitionRepository{
		lines: make([]entities.RawRequisitionLine, 0, expectedLines),
	}
}

// Verify interface compliance
var _ repositories.RequisitionRepository = (*RequisitionRepository)(nil)

// LoadRawLines appends raw lines to the repository, keeping input order
func (r *RequisitionRepository) LoadRawLines(lines []entities.RawRequisitionLine) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.lines = append(r.lines, lines...)
	return nil
}

// ReplaceRawLines swaps the whole log, used when the source spreadsheet is reloaded
func (r *RequisitionRepository) ReplaceRawLines(lines []entities.RawRequisitionLine) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.lines = append(make([]entities.RawRequisitionLine, 0, len(lines)), lines...)
}

// GetRawLines returns a copy of the stored lines
func (r *RequisitionRepository) GetRawLines() ([]entities.RawRequisitionLine, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	lines := make([]entities.RawRequisitionLine, len(r.lines))
	copy(lines, r.lines)
	return lines, nil
}
