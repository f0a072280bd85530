package services

import (
	"time"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// stubAssignments is a map-backed assignment table for service tests
type stubAssignments struct {
	sites     map[entities.SiteID]entities.AdministratorName
	addresses entities.AddressBook
}

func (s *stubAssignments) AdministratorForSite(siteID entities.SiteID) (entities.AdministratorName, bool) {
	administrator, ok := s.sites[siteID]
	return administrator, ok
}

func (s *stubAssignments) AddressFor(administrator entities.AdministratorName) (string, bool) {
	address, ok := s.addresses[administrator]
	return address, ok
}

func (s *stubAssignments) LoadAssignments(assignments []entities.AdministratorAssignment) error {
	for _, assignment := range assignments {
		s.sites[assignment.SiteID] = assignment.Administrator
	}
	return nil
}

func (s *stubAssignments) LoadAddresses(addresses entities.AddressBook) error {
	for name, address := range addresses {
		s.addresses[name] = address
	}
	return nil
}

func newStubAssignments() *stubAssignments {
	return &stubAssignments{
		sites:     make(map[entities.SiteID]entities.AdministratorName),
		addresses: make(entities.AddressBook),
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func line(site, requisition, item, desc string, day time.Time, order string) entities.RequisitionLine {
	return entities.RequisitionLine{
		SiteID:          entities.SiteID(site),
		RequisitionID:   entities.RequisitionID(requisition),
		ItemID:          entities.ItemID(item),
		ItemDesc:        desc,
		RequisitionDate: day,
		PurchaseOrderID: entities.PurchaseOrderID(order),
	}
}
