package auth

// Domain names one of the dashboard's business areas. Domain-admin roles
// get full control over their own area and read-only access elsewhere.
type Domain string

const (
	DomainDatasets      Domain = "Datasets"
	DomainCybersecurity Domain = "Cybersecurity"
	DomainITTickets     Domain = "IT Tickets"
)

// Action is a permission verb checked against a domain.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

var domainAdmins = map[Role]Domain{
	RoleDatasetsAdmin:      DomainDatasets,
	RoleCybersecurityAdmin: DomainCybersecurity,
	RoleITAdmin:            DomainITTickets,
}

// CheckPermission decides whether a role may perform an action in a
// domain. Pure function, default deny:
//   - admin may do anything anywhere,
//   - a domain admin may do anything in its own domain and view others,
//   - a plain user may only view,
//   - everything else is denied.
func CheckPermission(role Role, domain Domain, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleUser:
		return action == ActionView
	case RoleDatasetsAdmin, RoleCybersecurityAdmin, RoleITAdmin:
		if domainAdmins[role] == domain {
			return true
		}
		return action == ActionView
	default:
		return false
	}
}
