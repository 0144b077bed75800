package domain

// Role identifies the caller category carried by auth tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// CanChangePriority reports whether the role may escalate or change ticket
// priority.
func (r Role) CanChangePriority() bool {
	return r == RoleAdmin
}
