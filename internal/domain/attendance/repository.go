package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// GetByUserAndDate returns ErrAttendanceNotFound when the user has no record that day.
	GetByUserAndDate(ctx context.Context, userID, workspaceID string, date time.Time) (Attendance, error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	// ListByUserBetween returns records with from <= date <= to, ordered by date.
	ListByUserBetween(ctx context.Context, userID, workspaceID string, from, to time.Time) ([]Attendance, error)
	ListByWorkspaceBetween(ctx context.Context, workspaceID string, from, to time.Time) ([]Attendance, error)
	// Create returns ErrAttendanceExists when the (user, workspace, date) slot is taken.
	Create(ctx context.Context, a Attendance) (Attendance, error)
	Update(ctx context.Context, a Attendance) error
	// CreateAbsences inserts ABSENT records, skipping days that already have one.
	CreateAbsences(ctx context.Context, records []Attendance) (int, error)
}

type WorkSessionRepository interface {
	// LockOwner serializes ledger writes for one user in one workspace until
	// the surrounding transaction ends.
	LockOwner(ctx context.Context, userID, workspaceID string) error
	// GetOpen returns ErrNoActiveSession when nothing is open.
	GetOpen(ctx context.Context, userID, workspaceID string) (WorkSession, error)
	ListByAttendance(ctx context.Context, attendanceID string) ([]WorkSession, error)
	ListOpenByWorkspace(ctx context.Context, workspaceID string) ([]WorkSession, error)
	ListStaleOpen(ctx context.Context, startedBefore time.Time) ([]WorkSession, error)
	// Create returns ErrSessionAlreadyOpen when an open session already exists.
	Create(ctx context.Context, s WorkSession) (WorkSession, error)
	Close(ctx context.Context, s WorkSession) error
}

type ChangeRequestRepository interface {
	Create(ctx context.Context, cr ChangeRequest) (ChangeRequest, error)
	GetByID(ctx context.Context, id string) (ChangeRequest, error)
	List(ctx context.Context, filter ChangeRequestFilter) ([]ChangeRequest, error)
	HasPending(ctx context.Context, attendanceID string) (bool, error)
	UpdateReview(ctx context.Context, cr ChangeRequest) error
	Delete(ctx context.Context, id string) error
}

type PresenceCheckRepository interface {
	Create(ctx context.Context, p PresenceCheck) (PresenceCheck, error)
}
