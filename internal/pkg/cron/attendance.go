package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
)

type AttendanceJobs struct {
	maintenance attendance.MaintenanceService
	staleMaxAge time.Duration
	interval    time.Duration
}

func NewAttendanceJobs(maintenance attendance.MaintenanceService, staleMaxAge, interval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		maintenance: maintenance,
		staleMaxAge: staleMaxAge,
		interval:    interval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("close_stale_sessions", j.interval, j.CloseStaleSessions)
	scheduler.AddJob("mark_absences", j.interval, j.MarkAbsences)
}

// CloseStaleSessions ends sessions left open longer than the configured age.
func (j *AttendanceJobs) CloseStaleSessions(ctx context.Context) error {
	closed, err := j.maintenance.CloseStaleSessions(ctx, j.staleMaxAge)
	if err != nil {
		return fmt.Errorf("failed to close stale sessions: %w", err)
	}
	if closed > 0 {
		slog.Info("Cron: closed stale sessions", "count", closed, "max_age", j.staleMaxAge)
	}
	return nil
}

// MarkAbsences records members who never checked in on the previous weekday.
// Repeated runs are no-ops once the day is filled.
func (j *AttendanceJobs) MarkAbsences(ctx context.Context) error {
	marked, err := j.maintenance.MarkAbsences(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark absences: %w", err)
	}
	if marked > 0 {
		slog.Info("Cron: marked absences", "count", marked)
	}
	return nil
}
