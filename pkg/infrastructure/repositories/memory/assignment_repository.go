package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/domain/repositories"
	"github.com/vsinha/acompreq/pkg/domain/services"
)

// AssignmentRepository provides in-memory site assignments and administrator addresses.
// Keys are normalized on load so lookups match normalized requisition lines.
type AssignmentRepository struct {
	administrators map[entities.SiteID]entities.AdministratorName
	addresses      map[entities.AdministratorName]string
	mutex          sync.RWMutex
}

// NewAssignmentRepository creates a new in-memory assignment repository
func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{
		administrators: make(map[entities.SiteID]entities.AdministratorName),
		addresses:      make(map[entities.AdministratorName]string),
	}
}

// Verify interface compliance
var _ repositories.AssignmentRepository = (*AssignmentRepository)(nil)

// LoadAssignments loads the site table. A site mapped to two different administrators is rejected.
func (r *AssignmentRepository) LoadAssignments(assignments []entities.AdministratorAssignment) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, assignment := range assignments {
		site := entities.SiteID(services.NormalizeIdentifier(string(assignment.SiteID)))
		if site == "" {
			continue
		}
		administrator := services.NormalizeAdministratorName(string(assignment.Administrator))
		if administrator.IsNull() {
			continue
		}
		if existing, ok := r.administrators[site]; ok && existing != administrator {
			return fmt.Errorf("conflicting assignment for site %s: %s and %s", site, existing, administrator)
		}
		r.administrators[site] = administrator
	}
	return nil
}

// LoadAddresses merges notification addresses keyed by administrator name. Names that
// normalize to the same administrator must agree on the address; a later book overrides
// addresses loaded before it.
func (r *AssignmentRepository) LoadAddresses(addresses entities.AddressBook) error {
	names := make([]string, 0, len(addresses))
	for name := range addresses {
		names = append(names, string(name))
	}
	sort.Strings(names)

	normalized := make(map[entities.AdministratorName]string, len(addresses))
	sources := make(map[entities.AdministratorName]string, len(addresses))
	for _, name := range names {
		administrator := services.NormalizeAdministratorName(name)
		address := strings.TrimSpace(addresses[entities.AdministratorName(name)])
		if administrator.IsNull() || address == "" {
			continue
		}
		if existing, ok := normalized[administrator]; ok && existing != address {
			return fmt.Errorf("conflicting addresses for administrator %s: %q has %s and %q has %s",
				administrator, sources[administrator], existing, name, address)
		}
		normalized[administrator] = address
		sources[administrator] = name
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	for administrator, address := range normalized {
		r.addresses[administrator] = address
	}
	return nil
}

// AdministratorForSite returns the administrator responsible for a site
func (r *AssignmentRepository) AdministratorForSite(siteID entities.SiteID) (entities.AdministratorName, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	administrator, ok := r.administrators[siteID]
	return administrator, ok
}

// AddressFor returns the notification address of an administrator
func (r *AssignmentRepository) AddressFor(administrator entities.AdministratorName) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	address, ok := r.addresses[administrator]
	return address, ok
}

// Sites returns the number of assigned sites
func (r *AssignmentRepository) Sites() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.administrators)
}
