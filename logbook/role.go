package logbook

import "strings"

// Role is the account type of the acting user. It selects which records a
// user sees and which projection is applied to them.
type Role string

const (
	RoleResident Role = "resident"
	RoleTutor    Role = "tutor"
	RoleMaster   Role = "master"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleResident, "":
		return RoleResident, true
	case RoleTutor:
		return RoleTutor, true
	case RoleMaster, "admin":
		return RoleMaster, true
	}
	return "", false
}

// SeesAll reports whether the role reads records across all owners.
func (r Role) SeesAll() bool {
	return r == RoleTutor || r == RoleMaster
}

// CanLog reports whether the role may add records of its own.
func (r Role) CanLog() bool {
	return r == RoleResident || r == RoleMaster
}

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// ScopeOwner returns the owner an aggregation is limited to: residents only
// ever see themselves, tutors and masters see requested ("" for everyone).
func (a Actor) ScopeOwner(requested string) string {
	if a.Role.SeesAll() {
		return strings.TrimSpace(requested)
	}
	return a.Name
}

// Authenticator checks credentials and returns the actor they belong to.
// The surrounding application decides the policy behind it.
type Authenticator interface {
	Authenticate(username, password, twoFactorCode string) (Actor, error)
}
