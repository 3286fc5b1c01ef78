package enums

import "fmt"

// UserRole is the platform-level role attached to a user account.
type UserRole string

const (
	UserRoleUser     UserRole = "user"
	UserRoleMechanic UserRole = "mechanic"
	UserRoleAdmin    UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleUser,
	UserRoleMechanic,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// OneOf reports whether the role is contained in the allowed set.
func (u UserRole) OneOf(allowed ...UserRole) bool {
	for _, candidate := range allowed {
		if candidate == u {
			return true
		}
	}
	return false
}
