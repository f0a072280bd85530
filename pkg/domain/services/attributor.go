package services

import (
	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/domain/repositories"
)

// Attributor joins requisition aggregates to the administrator responsible for their site
type Attributor struct {
	assignments repositories.AssignmentRepository
}

// NewAttributor creates an attributor backed by the given assignment table.
// A nil repository leaves every requisition without an administrator.
func NewAttributor(assignments repositories.AssignmentRepository) *Attributor {
	return &Attributor{assignments: assignments}
}

// Attribute returns a copy of the aggregates with Administrator filled in by site
func (a *Attributor) Attribute(aggregates []entities.RequisitionAggregate) []entities.RequisitionAggregate {
	attributed := make([]entities.RequisitionAggregate, len(aggregates))
	for i, agg := range aggregates {
		agg.Administrator = ""
		if a.assignments != nil {
			if administrator, ok := a.assignments.AdministratorForSite(agg.SiteID); ok {
				agg.Administrator = administrator
			}
		}
		attributed[i] = agg
	}
	return attributed
}
