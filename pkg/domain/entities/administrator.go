package entities

// AdministratorName is the normalized name of the person following up a site (ADM)
type AdministratorName string

// IsNull reports whether no administrator is known
func (a AdministratorName) IsNull() bool {
	return a == ""
}

// AdministratorAssignment maps a site to its responsible administrator
type AdministratorAssignment struct {
	SiteID        SiteID            `json:"site_id"`
	Administrator AdministratorName `json:"administrator"`
}

// AddressBook maps administrators to their notification address
type AddressBook map[AdministratorName]string
