package workspace

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleHR     Role = "hr"
	RoleMember Role = "member"
)

// Member is a user's membership in a workspace.
type Member struct {
	WorkspaceID string
	UserID      string
	Role        Role
	Name        string
	Email       string
	JoinedAt    time.Time
}

// IsAdmin reports whether the member may change workspace configuration.
func (m Member) IsAdmin() bool {
	return m.Role == RoleOwner || m.Role == RoleAdmin
}

// CanViewTeam reports whether the member may read other members' attendance.
func (m Member) CanViewTeam() bool {
	return m.IsAdmin() || m.Role == RoleHR
}
