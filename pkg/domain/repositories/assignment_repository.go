package repositories

import "github.com/vsinha/acompreq/pkg/domain/entities"

// AssignmentRepository provides the site-to-administrator table and the address book.
// A site or administrator that is absent is reported through the boolean, never as an error.
type AssignmentRepository interface {
	AdministratorForSite(siteID entities.SiteID) (entities.AdministratorName, bool)
	AddressFor(administrator entities.AdministratorName) (string, bool)
	LoadAssignments(assignments []entities.AdministratorAssignment) error
	LoadAddresses(addresses entities.AddressBook) error
}
