package postgresql

import (
	"context"
	"fmt"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type memberRepository struct {
	db *database.DB
}

// NewMemberRepository reads membership from the workspace_members table,
// which the workspace service owning invitations keeps in sync.
func NewMemberRepository(db *database.DB) workspace.MemberRepository {
	return &memberRepository{db: db}
}

// GetMember implements workspace.MemberRepository.
func (r *memberRepository) GetMember(ctx context.Context, workspaceID, userID string) (workspace.Member, error) {
	q := GetQuerier(ctx, r.db)

	var m workspace.Member
	err := q.QueryRow(ctx, `
		SELECT workspace_id, user_id, role, name, email, joined_at
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	).Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.Name, &m.Email, &m.JoinedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workspace.Member{}, workspace.ErrNotMember
		}
		return workspace.Member{}, fmt.Errorf("failed to get workspace member: %w", err)
	}
	return m, nil
}

// ListMembers implements workspace.MemberRepository.
func (r *memberRepository) ListMembers(ctx context.Context, workspaceID string) ([]workspace.Member, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT workspace_id, user_id, role, name, email, joined_at
		FROM workspace_members
		WHERE workspace_id = $1
		ORDER BY name ASC, user_id ASC`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}
	defer rows.Close()

	var members []workspace.Member
	for rows.Next() {
		var m workspace.Member
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.Name, &m.Email, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workspace member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workspace members: %w", err)
	}
	return members, nil
}

// ListWorkspaceIDs implements workspace.MemberRepository.
func (r *memberRepository) ListWorkspaceIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT workspace_id FROM workspace_members ORDER BY workspace_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace ids: %w", err)
	}
	return ids, nil
}
