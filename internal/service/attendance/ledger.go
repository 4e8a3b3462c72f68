package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/keylock"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

// ledger holds the write path shared by every service in this package. All
// mutations of one user's sessions and daily record go through withOwnerLock.
type ledger struct {
	transactor     database.Transactor
	attendanceRepo attendance.AttendanceRepository
	sessionRepo    attendance.WorkSessionRepository
	locks          *keylock.KeyLock
}

func ownerKey(userID, workspaceID string) string {
	return "attendance:" + workspaceID + ":" + userID
}

// withOwnerLock runs fn in a transaction holding both the in-process lock and
// the database advisory lock for (user, workspace).
func (l *ledger) withOwnerLock(ctx context.Context, userID, workspaceID string, fn func(ctx context.Context) error) error {
	unlock := l.locks.Lock(ownerKey(userID, workspaceID))
	defer unlock()

	return l.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := l.sessionRepo.LockOwner(ctx, userID, workspaceID); err != nil {
			return err
		}
		return fn(ctx)
	})
}

// openSession returns the open session, or nil when there is none.
func (l *ledger) openSession(ctx context.Context, userID, workspaceID string) (*attendance.WorkSession, error) {
	s, err := l.sessionRepo.GetOpen(ctx, userID, workspaceID)
	if err != nil {
		if errors.Is(err, attendance.ErrNoActiveSession) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	return &s, nil
}

// todayRecord returns the record for date, or nil when there is none.
func (l *ledger) todayRecord(ctx context.Context, userID, workspaceID string, date time.Time) (*attendance.Attendance, error) {
	a, err := l.attendanceRepo.GetByUserAndDate(ctx, userID, workspaceID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &a, nil
}

// sessionCloseTime caps an end instant at the end of the session's local
// day, so a session never spills into a day it was not started on.
func sessionCloseTime(s attendance.WorkSession, at time.Time, loc *time.Location) time.Time {
	_, dayEnd := period.DayBounds(period.CivilDate(s.StartTime, loc), loc)
	if at.After(dayEnd) {
		return dayEnd
	}
	return at
}

// closeAndSettle closes s, then recomputes the totals of its daily record.
// With checkout set the record also gets a checkOut when it has none.
func (l *ledger) closeAndSettle(ctx context.Context, s attendance.WorkSession, at time.Time, loc *time.Location, checkout bool) (attendance.WorkSession, attendance.Attendance, error) {
	s.Close(sessionCloseTime(s, at, loc))
	if err := l.sessionRepo.Close(ctx, s); err != nil {
		return attendance.WorkSession{}, attendance.Attendance{}, fmt.Errorf("failed to close session: %w", err)
	}

	record, err := l.attendanceRepo.GetByID(ctx, s.AttendanceID)
	if err != nil {
		return attendance.WorkSession{}, attendance.Attendance{}, fmt.Errorf("failed to get attendance for session: %w", err)
	}

	if checkout && record.CheckOut == nil {
		record.CheckOut = clampCheckOut(record, *s.EndTime)
	}

	if err := l.settle(ctx, &record); err != nil {
		return attendance.WorkSession{}, attendance.Attendance{}, err
	}
	return s, record, nil
}

// settle recomputes the minute totals of record from its sessions and saves it.
func (l *ledger) settle(ctx context.Context, record *attendance.Attendance) error {
	sessions, err := l.sessionRepo.ListByAttendance(ctx, record.ID)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	record.ApplyTotals(sessions)
	if err := l.attendanceRepo.Update(ctx, *record); err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

// clampCheckOut keeps checkOut >= checkIn.
func clampCheckOut(record attendance.Attendance, at time.Time) *time.Time {
	if record.CheckIn != nil && at.Before(*record.CheckIn) {
		at = *record.CheckIn
	}
	return &at
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// settingsLoader reads workspace policy, falling back to defaults for
// workspaces that never saved any.
type settingsLoader struct {
	repo            worksettings.WorkSettingsRepository
	defaultTimezone string
}

func (l settingsLoader) load(ctx context.Context, workspaceID string) (worksettings.WorkSettings, error) {
	return worksettings.LoadOrDefault(ctx, l.repo, workspaceID, l.defaultTimezone)
}

func publish(ctx context.Context, publisher attendance.EventPublisher, eventType, workspaceID, userID string, data interface{}) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, attendance.Event{
		Type:        eventType,
		WorkspaceID: workspaceID,
		UserID:      userID,
		Data:        data,
	})
	slog.Debug("attendance event published", "type", eventType, "workspace_id", workspaceID, "user_id", userID)
}

func errWorkspaceRequired() error {
	var errs validator.ValidationErrors
	errs.Add("workspaceId", "workspaceId is required")
	return errs.Err()
}
