package domain

import "time"

// UserRole enumerates account roles.
type UserRole string

const (
	RoleUser            UserRole = "USER"
	RoleDepartmentAdmin UserRole = "DEPARTMENT_ADMIN"
	RoleSystemAdmin     UserRole = "SYSTEM_ADMIN"
)

// User is the domain model for everyone who files or handles tickets.
type User struct {
	ID       string
	Username string
	Email    string
	FullName string
	// PasswordHash is set for local accounts only; LDAP accounts delegate
	// credential checks to the directory and carry no local hash.
	PasswordHash string
	IsLDAP       bool
	// IsAdmin is the system-wide override flag kept alongside Role.
	IsAdmin      bool
	Role         UserRole
	DepartmentID *string
	// SecondaryDepartmentIDs holds additional department memberships.
	SecondaryDepartmentIDs []string
	Active                 bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsSystemAdmin reports whether the user has unrestricted access, either
// through the role or the legacy override flag.
func (u *User) IsSystemAdmin() bool {
	return u.IsAdmin || u.Role == RoleSystemAdmin
}
