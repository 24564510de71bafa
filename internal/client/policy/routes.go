package policy

// Section is a navigation target inside the dashboard.
type Section string

const (
	SectionCars    Section = "cars"
	SectionUsers   Section = "users"
	SectionProfile Section = "profile"
)

const (
	dashboardPrefix = "/dashboard"
	adminPrefix     = "/dashboard/admin"
)

// Route returns the dashboard path for section. Admins live under
// /dashboard/admin; everyone else under /dashboard. ok is false when the
// section is not available to this caller.
func (d Decision) Route(s Section) (path string, ok bool) {
	prefix := dashboardPrefix
	if d.IsAdmin() {
		prefix = adminPrefix
	}

	switch s {
	case SectionCars:
		return prefix + "/cars", d.Allows(Cars)
	case SectionUsers:
		if !d.Allows(Users) {
			return "", false
		}
		return prefix + "/users", true
	case SectionProfile:
		return prefix + "/profile", true
	default:
		return "", false
	}
}
