package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, user_id, workspace_id, date, check_in, check_out, work_location, status,
	total_minutes, office_minutes, remote_minutes, note, ip_address, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.UserID, &a.WorkspaceID, &a.Date, &a.CheckIn, &a.CheckOut, &a.WorkLocation, &a.Status,
		&a.TotalMinutes, &a.OfficeMinutes, &a.RemoteMinutes, &a.Note, &a.IPAddress, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}
	return records, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByUserAndDate(ctx context.Context, userID, workspaceID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE user_id = $1 AND workspace_id = $2 AND date = $3`

	a, err := scanAttendance(q.QueryRow(ctx, query, userID, workspaceID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by date: %w", err)
	}
	return a, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`

	a, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	return a, nil
}

// ListByUserBetween implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByUserBetween(ctx context.Context, userID, workspaceID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE user_id = $1 AND workspace_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, userID, workspaceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by user: %w", err)
	}
	return collectAttendances(rows)
}

// ListByWorkspaceBetween implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByWorkspaceBetween(ctx context.Context, workspaceID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE workspace_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC, user_id ASC`

	rows, err := q.Query(ctx, query, workspaceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by workspace: %w", err)
	}
	return collectAttendances(rows)
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			id, user_id, workspace_id, date, check_in, check_out, work_location, status,
			total_minutes, office_minutes, remote_minutes, note, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err := q.QueryRow(ctx, query,
		a.ID, a.UserID, a.WorkspaceID, a.Date, a.CheckIn, a.CheckOut, a.WorkLocation, a.Status,
		a.TotalMinutes, a.OfficeMinutes, a.RemoteMinutes, a.Note, a.IPAddress,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceExists
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return a, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances SET
			check_in = $2, check_out = $3, work_location = $4, status = $5,
			total_minutes = $6, office_minutes = $7, remote_minutes = $8,
			note = $9, ip_address = $10, updated_at = NOW()
		WHERE id = $1`

	tag, err := q.Exec(ctx, query,
		a.ID, a.CheckIn, a.CheckOut, a.WorkLocation, a.Status,
		a.TotalMinutes, a.OfficeMinutes, a.RemoteMinutes, a.Note, a.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// CreateAbsences implements attendance.AttendanceRepository.
func (r *attendanceRepository) CreateAbsences(ctx context.Context, records []attendance.Attendance) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (id, user_id, workspace_id, date, work_location, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, workspace_id, date) DO NOTHING`

	batch := &pgx.Batch{}
	for _, a := range records {
		batch.Queue(query, a.ID, a.UserID, a.WorkspaceID, a.Date, a.WorkLocation, attendance.StatusAbsent, a.Note)
	}

	inserted := 0
	switch b := q.(type) {
	case batchSender:
		results := b.SendBatch(ctx, batch)
		defer results.Close()
		for range records {
			tag, err := results.Exec()
			if err != nil {
				return inserted, fmt.Errorf("failed to insert absence: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
	default:
		for _, a := range records {
			tag, err := q.Exec(ctx, query, a.ID, a.UserID, a.WorkspaceID, a.Date, a.WorkLocation, attendance.StatusAbsent, a.Note)
			if err != nil {
				return inserted, fmt.Errorf("failed to insert absence: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
	}
	return inserted, nil
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}
