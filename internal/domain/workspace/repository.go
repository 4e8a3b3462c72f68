package workspace

import "context"

// MemberRepository is the membership and role provider.
type MemberRepository interface {
	// GetMember returns ErrNotMember when the user does not belong to the workspace.
	GetMember(ctx context.Context, workspaceID, userID string) (Member, error)
	ListMembers(ctx context.Context, workspaceID string) ([]Member, error)
	// ListWorkspaceIDs returns every workspace that has at least one member.
	ListWorkspaceIDs(ctx context.Context) ([]string, error)
}
