// Package authz decides what an authenticated admin may do.
//
// The evaluator is pure: it never touches the store and never fails. Roles
// and capability flags come from the Admin record that governs the session,
// even when the session itself was opened with an office-user token.
package authz

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Capability names a permission flag.
type Capability string

const (
	Dashboard         Capability = "dashboard"
	UserManagement    Capability = "userManagement"
	PincodeManagement Capability = "pincodeManagement"
	AddressForms      Capability = "addressForms"
	Reports           Capability = "reports"
	Settings          Capability = "settings"
)

var (
	baseline   = []Capability{Dashboard, Reports, Settings}
	assignable = []Capability{UserManagement, PincodeManagement, AddressForms}
)

var labels = map[Capability]string{
	Dashboard:         "Dashboard",
	UserManagement:    "User management",
	PincodeManagement: "Pincode management",
	AddressForms:      "Address forms",
	Reports:           "Reports",
	Settings:          "Settings",
}

// Baseline returns the capabilities every admin always holds.
func Baseline() []Capability {
	return append([]Capability(nil), baseline...)
}

// Assignable returns the capabilities a super admin grants or revokes.
func Assignable() []Capability {
	return append([]Capability(nil), assignable...)
}

// Capabilities returns every known capability in a stable order.
func Capabilities() []Capability {
	return []Capability{Dashboard, UserManagement, PincodeManagement, AddressForms, Reports, Settings}
}

func ParseCapability(s string) (Capability, bool) {
	c := Capability(s)
	_, ok := labels[c]
	return c, ok
}

func (c Capability) Baseline() bool {
	for _, b := range baseline {
		if b == c {
			return true
		}
	}
	return false
}

func (c Capability) Label() string {
	if label, ok := labels[c]; ok {
		return label
	}
	return string(c)
}

// Permissions is the stored flag set.
type Permissions struct {
	Dashboard         bool `bson:"dashboard" json:"dashboard"`
	UserManagement    bool `bson:"userManagement" json:"userManagement"`
	PincodeManagement bool `bson:"pincodeManagement" json:"pincodeManagement"`
	AddressForms      bool `bson:"addressForms" json:"addressForms"`
	Reports           bool `bson:"reports" json:"reports"`
	Settings          bool `bson:"settings" json:"settings"`
}

// Has reports the stored flag for c. Unknown capabilities are absent, so false.
func (p Permissions) Has(c Capability) bool {
	switch c {
	case Dashboard:
		return p.Dashboard
	case UserManagement:
		return p.UserManagement
	case PincodeManagement:
		return p.PincodeManagement
	case AddressForms:
		return p.AddressForms
	case Reports:
		return p.Reports
	case Settings:
		return p.Settings
	}
	return false
}

// Grant extracts the assignable part of p.
func (p Permissions) Grant() Grant {
	return Grant{
		UserManagement:    p.UserManagement,
		PincodeManagement: p.PincodeManagement,
		AddressForms:      p.AddressForms,
	}
}

// Grant is the only shape in which admin permissions are written. Baseline
// capabilities have no field here, so a write can never switch them off.
type Grant struct {
	UserManagement    bool
	PincodeManagement bool
	AddressForms      bool
}

// Permissions expands g into a storable flag set with the baseline on.
func (g Grant) Permissions() Permissions {
	return Permissions{
		Dashboard:         true,
		UserManagement:    g.UserManagement,
		PincodeManagement: g.PincodeManagement,
		AddressForms:      g.AddressForms,
		Reports:           true,
		Settings:          true,
	}
}

// FullGrant holds every assignable capability.
func FullGrant() Grant {
	return Grant{UserManagement: true, PincodeManagement: true, AddressForms: true}
}

// Normalize forces the baseline capabilities on.
func Normalize(p Permissions) Permissions {
	return p.Grant().Permissions()
}

// Subject is the privilege view of whoever is making a request.
type Subject struct {
	Role                 Role
	Permissions          Permissions
	CanAssignPermissions bool
}

func (s Subject) SuperAdmin() bool {
	return s.Role == RoleSuperAdmin
}

// CanAccess decides whether s may use capability c. Super admins bypass the
// flag set entirely.
func CanAccess(s Subject, c Capability) bool {
	if s.SuperAdmin() {
		return true
	}
	return s.Permissions.Has(c)
}

// CanAssign decides whether s may edit office-user permissions.
func CanAssign(s Subject) bool {
	return s.SuperAdmin() || s.CanAssignPermissions
}
