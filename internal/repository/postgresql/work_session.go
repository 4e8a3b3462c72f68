package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `
	id, attendance_id, user_id, workspace_id, session_type, start_time, end_time, duration_minutes,
	is_verified, verification_method, wifi_ssid, ip_address, latitude, longitude, created_at`

type workSessionRepository struct {
	db *database.DB
}

func NewWorkSessionRepository(db *database.DB) attendance.WorkSessionRepository {
	return &workSessionRepository{db: db}
}

func scanSession(row pgx.Row) (attendance.WorkSession, error) {
	var s attendance.WorkSession
	err := row.Scan(
		&s.ID, &s.AttendanceID, &s.UserID, &s.WorkspaceID, &s.SessionType, &s.StartTime, &s.EndTime, &s.DurationMinutes,
		&s.IsVerified, &s.VerificationMethod, &s.WifiSSID, &s.IPAddress, &s.Latitude, &s.Longitude, &s.CreatedAt,
	)
	return s, err
}

func (r *workSessionRepository) list(ctx context.Context, query string, args ...interface{}) ([]attendance.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.WorkSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work sessions: %w", err)
	}
	return sessions, nil
}

// LockOwner implements attendance.WorkSessionRepository.
func (r *workSessionRepository) LockOwner(ctx context.Context, userID, workspaceID string) error {
	return lockKey(ctx, r.db, "attendance:"+workspaceID+":"+userID)
}

// GetOpen implements attendance.WorkSessionRepository.
func (r *workSessionRepository) GetOpen(ctx context.Context, userID, workspaceID string) (attendance.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + `
		FROM work_sessions
		WHERE user_id = $1 AND workspace_id = $2 AND end_time IS NULL
		LIMIT 1`

	s, err := scanSession(q.QueryRow(ctx, query, userID, workspaceID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.WorkSession{}, attendance.ErrNoActiveSession
		}
		return attendance.WorkSession{}, fmt.Errorf("failed to get open session: %w", err)
	}
	return s, nil
}

// ListByAttendance implements attendance.WorkSessionRepository.
func (r *workSessionRepository) ListByAttendance(ctx context.Context, attendanceID string) ([]attendance.WorkSession, error) {
	return r.list(ctx, `SELECT `+sessionColumns+`
		FROM work_sessions
		WHERE attendance_id = $1
		ORDER BY start_time ASC`, attendanceID)
}

// ListOpenByWorkspace implements attendance.WorkSessionRepository.
func (r *workSessionRepository) ListOpenByWorkspace(ctx context.Context, workspaceID string) ([]attendance.WorkSession, error) {
	return r.list(ctx, `SELECT `+sessionColumns+`
		FROM work_sessions
		WHERE workspace_id = $1 AND end_time IS NULL
		ORDER BY start_time ASC`, workspaceID)
}

// ListStaleOpen implements attendance.WorkSessionRepository.
func (r *workSessionRepository) ListStaleOpen(ctx context.Context, startedBefore time.Time) ([]attendance.WorkSession, error) {
	return r.list(ctx, `SELECT `+sessionColumns+`
		FROM work_sessions
		WHERE end_time IS NULL AND start_time < $1
		ORDER BY start_time ASC`, startedBefore)
}

// Create implements attendance.WorkSessionRepository.
func (r *workSessionRepository) Create(ctx context.Context, s attendance.WorkSession) (attendance.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_sessions (
			id, attendance_id, user_id, workspace_id, session_type, start_time, end_time, duration_minutes,
			is_verified, verification_method, wifi_ssid, ip_address, latitude, longitude
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`

	err := q.QueryRow(ctx, query,
		s.ID, s.AttendanceID, s.UserID, s.WorkspaceID, s.SessionType, s.StartTime, s.EndTime, s.DurationMinutes,
		s.IsVerified, s.VerificationMethod, s.WifiSSID, s.IPAddress, s.Latitude, s.Longitude,
	).Scan(&s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.WorkSession{}, attendance.ErrSessionAlreadyOpen
		}
		return attendance.WorkSession{}, fmt.Errorf("failed to create work session: %w", err)
	}
	return s, nil
}

// Close implements attendance.WorkSessionRepository.
func (r *workSessionRepository) Close(ctx context.Context, s attendance.WorkSession) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE work_sessions
		SET end_time = $2, duration_minutes = $3
		WHERE id = $1 AND end_time IS NULL`,
		s.ID, s.EndTime, s.DurationMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to close work session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNoActiveSession
	}
	return nil
}
