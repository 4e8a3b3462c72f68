package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const changeRequestColumns = `
	id, attendance_id, workspace_id, user_id, request_type, requested_time, original_time, reason,
	status, reviewed_by, reviewed_at, reject_reason, created_at, updated_at`

type changeRequestRepository struct {
	db *database.DB
}

func NewChangeRequestRepository(db *database.DB) attendance.ChangeRequestRepository {
	return &changeRequestRepository{db: db}
}

func scanChangeRequest(row pgx.Row) (attendance.ChangeRequest, error) {
	var cr attendance.ChangeRequest
	err := row.Scan(
		&cr.ID, &cr.AttendanceID, &cr.WorkspaceID, &cr.UserID, &cr.RequestType, &cr.RequestedTime, &cr.OriginalTime, &cr.Reason,
		&cr.Status, &cr.ReviewedBy, &cr.ReviewedAt, &cr.RejectReason, &cr.CreatedAt, &cr.UpdatedAt,
	)
	return cr, err
}

// Create implements attendance.ChangeRequestRepository.
func (r *changeRequestRepository) Create(ctx context.Context, cr attendance.ChangeRequest) (attendance.ChangeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_change_requests (
			id, attendance_id, workspace_id, user_id, request_type, requested_time, original_time, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := q.QueryRow(ctx, query,
		cr.ID, cr.AttendanceID, cr.WorkspaceID, cr.UserID, cr.RequestType, cr.RequestedTime, cr.OriginalTime, cr.Reason, cr.Status,
	).Scan(&cr.CreatedAt, &cr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.ChangeRequest{}, attendance.ErrChangeRequestPending
		}
		return attendance.ChangeRequest{}, fmt.Errorf("failed to create change request: %w", err)
	}
	return cr, nil
}

// GetByID implements attendance.ChangeRequestRepository.
func (r *changeRequestRepository) GetByID(ctx context.Context, id string) (attendance.ChangeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + changeRequestColumns + ` FROM attendance_change_requests WHERE id = $1`

	cr, err := scanChangeRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ChangeRequest{}, attendance.ErrChangeRequestNotFound
		}
		return attendance.ChangeRequest{}, fmt.Errorf("failed to get change request: %w", err)
	}
	return cr, nil
}

// List implements attendance.ChangeRequestRepository.
func (r *changeRequestRepository) List(ctx context.Context, filter attendance.ChangeRequestFilter) ([]attendance.ChangeRequest, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"workspace_id = $1"}
	args := []interface{}{filter.WorkspaceID}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		whereClauses = append(whereClauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.AttendanceID != nil {
		args = append(args, *filter.AttendanceID)
		whereClauses = append(whereClauses, fmt.Sprintf("attendance_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + changeRequestColumns + `
		FROM attendance_change_requests
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list change requests: %w", err)
	}
	defer rows.Close()

	var requests []attendance.ChangeRequest
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change request: %w", err)
		}
		requests = append(requests, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change requests: %w", err)
	}
	return requests, nil
}

// HasPending implements attendance.ChangeRequestRepository.
func (r *changeRequestRepository) HasPending(ctx context.Context, attendanceID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_change_requests
			WHERE attendance_id = $1 AND status = 'PENDING'
		)`, attendanceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending change request: %w", err)
	}
	return exists, nil
}

// UpdateReview implements attendance.ChangeRequestRepository.
func (r *changeRequestRepository) UpdateReview(ctx context.Context, cr attendance.ChangeRequest) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendance_change_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4, reject_reason = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`,
		cr.ID, cr.Status, cr.ReviewedBy, cr.ReviewedAt, cr.RejectReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update change request review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrChangeRequestAlreadyProcessed
	}
	return nil
}

// Delete implements attendance.ChangeRequestRepository.
func (r *changeRequestRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_change_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete change request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrChangeRequestNotFound
	}
	return nil
}

type presenceCheckRepository struct {
	db *database.DB
}

func NewPresenceCheckRepository(db *database.DB) attendance.PresenceCheckRepository {
	return &presenceCheckRepository{db: db}
}

// Create implements attendance.PresenceCheckRepository.
func (r *presenceCheckRepository) Create(ctx context.Context, p attendance.PresenceCheck) (attendance.PresenceCheck, error) {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO presence_checks (id, user_id, workspace_id, attendance_id, session_id, status, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.UserID, p.WorkspaceID, p.AttendanceID, p.SessionID, p.Status, p.CheckedAt,
	)
	if err != nil {
		return attendance.PresenceCheck{}, fmt.Errorf("failed to record presence check: %w", err)
	}
	return p, nil
}
