package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/keylock"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
)

const autoClosedNote = "session closed automatically"

type MaintenanceServiceImpl struct {
	ledger
	settings   settingsLoader
	memberRepo workspace.MemberRepository
	publisher  attendance.EventPublisher
	now        func() time.Time
}

// CloseStaleSessions implements attendance.MaintenanceService. Sessions open
// longer than maxAge are ended at the end of their local day at the latest,
// and their daily record is checked out.
func (s *MaintenanceServiceImpl) CloseStaleSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	now := s.now().UTC()
	stale, err := s.sessionRepo.ListStaleOpen(ctx, now.Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	settingsCache := make(map[string]worksettings.WorkSettings)
	closed := 0
	for _, candidate := range stale {
		settings, ok := settingsCache[candidate.WorkspaceID]
		if !ok {
			settings, err = s.settings.load(ctx, candidate.WorkspaceID)
			if err != nil {
				slog.Error("failed to load settings for stale session", "workspace_id", candidate.WorkspaceID, "error", err)
				continue
			}
			settingsCache[candidate.WorkspaceID] = settings
		}

		var result attendance.WorkSession
		err := s.withOwnerLock(ctx, candidate.UserID, candidate.WorkspaceID, func(ctx context.Context) error {
			open, err := s.openSession(ctx, candidate.UserID, candidate.WorkspaceID)
			if err != nil {
				return err
			}
			// Closed or replaced since the listing.
			if open == nil || open.ID != candidate.ID {
				return nil
			}

			session, record, err := s.closeAndSettle(ctx, *open, now, settings.Location(), true)
			if err != nil {
				return err
			}
			record.AppendNote(autoClosedNote)
			if err := s.attendanceRepo.Update(ctx, record); err != nil {
				return fmt.Errorf("failed to annotate attendance: %w", err)
			}
			result = session
			return nil
		})
		if err != nil {
			slog.Error("failed to close stale session",
				"session_id", candidate.ID,
				"user_id", candidate.UserID,
				"workspace_id", candidate.WorkspaceID,
				"error", err,
			)
			continue
		}
		if result.ID == "" {
			continue
		}

		closed++
		publish(ctx, s.publisher, attendance.EventSessionAutoClosed, result.WorkspaceID, result.UserID, attendance.NewWorkSessionResponse(result))
	}

	return closed, nil
}

// MarkAbsences implements attendance.MaintenanceService. For every workspace
// it writes ABSENT records for members with nothing recorded on the previous
// local weekday.
func (s *MaintenanceServiceImpl) MarkAbsences(ctx context.Context) (int, error) {
	workspaceIDs, err := s.memberRepo.ListWorkspaceIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list workspaces: %w", err)
	}

	now := s.now().UTC()
	total := 0
	for _, workspaceID := range workspaceIDs {
		n, err := s.markWorkspaceAbsences(ctx, workspaceID, now)
		if err != nil {
			slog.Error("failed to mark absences", "workspace_id", workspaceID, "error", err)
			continue
		}
		total += n
	}
	return total, nil
}

func (s *MaintenanceServiceImpl) markWorkspaceAbsences(ctx context.Context, workspaceID string, now time.Time) (int, error) {
	settings, err := s.settings.load(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	day := PreviousWeekday(period.CivilDate(now, settings.Location()))

	members, err := s.memberRepo.ListMembers(ctx, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("failed to list members: %w", err)
	}
	records, err := s.attendanceRepo.ListByWorkspaceBetween(ctx, workspaceID, day, day)
	if err != nil {
		return 0, fmt.Errorf("failed to list attendance: %w", err)
	}

	recorded := make(map[string]struct{}, len(records))
	for _, r := range records {
		recorded[r.UserID] = struct{}{}
	}

	var absences []attendance.Attendance
	for _, m := range members {
		if _, ok := recorded[m.UserID]; ok {
			continue
		}
		// Nobody is absent from a day before they joined.
		if !m.JoinedAt.IsZero() && period.CivilDate(m.JoinedAt, settings.Location()).After(day) {
			continue
		}
		absences = append(absences, attendance.Attendance{
			ID:           newID(),
			UserID:       m.UserID,
			WorkspaceID:  workspaceID,
			Date:         day,
			WorkLocation: attendance.WorkLocationOffice,
			Status:       attendance.StatusAbsent,
		})
	}
	if len(absences) == 0 {
		return 0, nil
	}

	n, err := s.attendanceRepo.CreateAbsences(ctx, absences)
	if err != nil {
		return 0, fmt.Errorf("failed to create absences: %w", err)
	}
	return n, nil
}

// PreviousWeekday returns the closest Monday..Friday strictly before date.
func PreviousWeekday(date time.Time) time.Time {
	d := date.AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func NewMaintenanceService(
	transactor database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	sessionRepo attendance.WorkSessionRepository,
	settingsRepo worksettings.WorkSettingsRepository,
	memberRepo workspace.MemberRepository,
	publisher attendance.EventPublisher,
	locks *keylock.KeyLock,
	defaultTimezone string,
) attendance.MaintenanceService {
	return &MaintenanceServiceImpl{
		ledger: ledger{
			transactor:     transactor,
			attendanceRepo: attendanceRepo,
			sessionRepo:    sessionRepo,
			locks:          locks,
		},
		settings:   settingsLoader{repo: settingsRepo, defaultTimezone: defaultTimezone},
		memberRepo: memberRepo,
		publisher:  publisher,
		now:        time.Now,
	}
}
