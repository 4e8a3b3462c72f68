package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/keylock"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"github.com/codeb-platform/codeb-backend-go/internal/service/verification"
)

type AttendanceServiceImpl struct {
	ledger
	settings     settingsLoader
	presenceRepo attendance.PresenceCheckRepository
	memberRepo   workspace.MemberRepository
	gate         *verification.Gate
	publisher    attendance.EventPublisher
	now          func() time.Time
}

// actor is the caller of an operation together with the policy in effect.
type actor struct {
	userID   string
	member   workspace.Member
	settings worksettings.WorkSettings
	loc      *time.Location
	now      time.Time
	today    time.Time
}

func (s *AttendanceServiceImpl) resolveActor(ctx context.Context, workspaceID string) (actor, error) {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return actor{}, err
	}

	member, err := s.memberRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return actor{}, err
	}

	settings, err := s.settings.load(ctx, workspaceID)
	if err != nil {
		return actor{}, err
	}

	loc := settings.Location()
	now := s.now().UTC()
	return actor{
		userID:   userID,
		member:   member,
		settings: settings,
		loc:      loc,
		now:      now,
		today:    period.CivilDate(now, loc),
	}, nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.CheckInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckInResponse{}, err
	}

	a, err := s.resolveActor(ctx, req.WorkspaceID)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	claimed := attendance.WorkLocation(req.WorkLocation)
	decision, err := s.gate.Evaluate(ctx, a.settings, claimed, req.Signals)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	var resp attendance.CheckInResponse
	err = s.withOwnerLock(ctx, a.userID, req.WorkspaceID, func(ctx context.Context) error {
		record, err := s.todayRecord(ctx, a.userID, req.WorkspaceID, a.today)
		if err != nil {
			return err
		}

		if record != nil && record.IsCheckedIn() {
			if req.IsResume && record.IsCheckedOut() {
				resp, err = s.resume(ctx, a, *record, claimed, decision, req.Signals)
				return err
			}
			return attendance.ErrAlreadyCheckedIn
		}

		previous, err := s.endPreviousSession(ctx, a)
		if err != nil {
			return err
		}

		opened, err := s.openDay(ctx, a, record, claimed, req.Signals)
		if err != nil {
			return err
		}
		if req.Note != nil && *req.Note != "" {
			opened.AppendNote(*req.Note)
			if err := s.attendanceRepo.Update(ctx, opened); err != nil {
				return fmt.Errorf("failed to save attendance note: %w", err)
			}
		}

		session, err := s.startSession(ctx, a, opened, claimed.SessionType(), decision, req.Signals)
		if err != nil {
			return err
		}

		resp = attendance.CheckInResponse{
			Attendance:           attendance.NewAttendanceResponse(opened),
			Session:              attendance.NewWorkSessionResponse(session),
			Verification:         decision.Result(),
			PreviousSessionEnded: previous,
		}
		return nil
	})
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	eventType := attendance.EventCheckedIn
	if resp.Resumed {
		eventType = attendance.EventWorkResumed
	}
	publish(ctx, s.publisher, eventType, req.WorkspaceID, a.userID, resp)

	return resp, nil
}

// ResumeWork implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ResumeWork(ctx context.Context, req attendance.ResumeWorkRequest) (attendance.CheckInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckInResponse{}, err
	}

	a, err := s.resolveActor(ctx, req.WorkspaceID)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	claimed := attendance.WorkLocation(req.WorkLocation)
	decision, err := s.gate.Evaluate(ctx, a.settings, claimed, req.Signals)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	var resp attendance.CheckInResponse
	err = s.withOwnerLock(ctx, a.userID, req.WorkspaceID, func(ctx context.Context) error {
		record, err := s.todayRecord(ctx, a.userID, req.WorkspaceID, a.today)
		if err != nil {
			return err
		}
		if record == nil || !record.IsCheckedIn() {
			return attendance.ErrAttendanceNotFound
		}
		if !record.IsCheckedOut() {
			return attendance.ErrNotCheckedOut
		}
		resp, err = s.resume(ctx, a, *record, claimed, decision, req.Signals)
		return err
	})
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	publish(ctx, s.publisher, attendance.EventWorkResumed, req.WorkspaceID, a.userID, resp)
	return resp, nil
}

// resume reopens a checked-out day. The original checkIn is kept and checkOut
// is cleared until the resumed work ends.
func (s *AttendanceServiceImpl) resume(ctx context.Context, a actor, record attendance.Attendance, claimed attendance.WorkLocation, decision verification.Decision, signals attendance.Signals) (attendance.CheckInResponse, error) {
	previous, err := s.endPreviousSession(ctx, a)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}
	if previous != nil && previous.AttendanceID == record.ID {
		if record, err = s.attendanceRepo.GetByID(ctx, record.ID); err != nil {
			return attendance.CheckInResponse{}, fmt.Errorf("failed to reload attendance: %w", err)
		}
	}

	record.CheckOut = nil
	record.AppendNote(fmt.Sprintf("work resumed (%s)", claimed))
	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return attendance.CheckInResponse{}, fmt.Errorf("failed to reopen attendance: %w", err)
	}

	session, err := s.startSession(ctx, a, record, claimed.SessionType(), decision, signals)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	return attendance.CheckInResponse{
		Attendance:           attendance.NewAttendanceResponse(record),
		Session:              attendance.NewWorkSessionResponse(session),
		Verification:         decision.Result(),
		Resumed:              true,
		PreviousSessionEnded: previous,
	}, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a, err := s.resolveActor(ctx, req.WorkspaceID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var result attendance.Attendance
	err = s.withOwnerLock(ctx, a.userID, req.WorkspaceID, func(ctx context.Context) error {
		open, err := s.openSession(ctx, a.userID, req.WorkspaceID)
		if err != nil {
			return err
		}

		if open != nil {
			_, record, err := s.closeAndSettle(ctx, *open, a.now, a.loc, true)
			if err != nil {
				return err
			}
			result = record
			return nil
		}

		record, err := s.todayRecord(ctx, a.userID, req.WorkspaceID, a.today)
		if err != nil {
			return err
		}
		if record == nil || !record.IsCheckedIn() {
			return attendance.ErrNoActiveSession
		}
		if record.IsCheckedOut() {
			return attendance.ErrAlreadyCheckedOut
		}

		record.CheckOut = clampCheckOut(*record, a.now)
		if err := s.settle(ctx, record); err != nil {
			return err
		}
		result = *record
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	resp := attendance.NewAttendanceResponse(result)
	publish(ctx, s.publisher, attendance.EventCheckedOut, req.WorkspaceID, a.userID, resp)
	return resp, nil
}

// StartSession implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartSession(ctx context.Context, req attendance.StartSessionRequest) (attendance.StartSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.StartSessionResponse{}, err
	}

	a, err := s.resolveActor(ctx, req.WorkspaceID)
	if err != nil {
		return attendance.StartSessionResponse{}, err
	}

	sessionType := attendance.SessionType(req.SessionType)
	claimed := sessionType.Location()
	decision, err := s.gate.Evaluate(ctx, a.settings, claimed, req.Signals)
	if err != nil {
		return attendance.StartSessionResponse{}, err
	}

	var resp attendance.StartSessionResponse
	err = s.withOwnerLock(ctx, a.userID, req.WorkspaceID, func(ctx context.Context) error {
		record, err := s.todayRecord(ctx, a.userID, req.WorkspaceID, a.today)
		if err != nil {
			return err
		}
		if record != nil && record.IsCheckedOut() {
			return attendance.ErrAlreadyCheckedOut
		}

		previous, err := s.endPreviousSession(ctx, a)
		if err != nil {
			return err
		}

		var day attendance.Attendance
		if record != nil && record.IsCheckedIn() {
			// Re-read: closing the previous session changed the totals.
			day, err = s.attendanceRepo.GetByID(ctx, record.ID)
			if err != nil {
				return fmt.Errorf("failed to reload attendance: %w", err)
			}
		} else {
			day, err = s.openDay(ctx, a, record, claimed, req.Signals)
			if err != nil {
				return err
			}
		}

		session, err := s.startSession(ctx, a, day, sessionType, decision, req.Signals)
		if err != nil {
			return err
		}

		resp = attendance.StartSessionResponse{
			Session:              attendance.NewWorkSessionResponse(session),
			Attendance:           attendance.NewAttendanceResponse(day),
			Verification:         decision.Result(),
			PreviousSessionEnded: previous,
		}
		return nil
	})
	if err != nil {
		return attendance.StartSessionResponse{}, err
	}

	publish(ctx, s.publisher, attendance.EventSessionStarted, req.WorkspaceID, a.userID, resp)
	return resp, nil
}

// EndSession implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndSession(ctx context.Context, req attendance.EndSessionRequest) (attendance.EndSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EndSessionResponse{}, err
	}

	a, err := s.resolveActor(ctx, req.WorkspaceID)
	if err != nil {
		return attendance.EndSessionResponse{}, err
	}

	var resp attendance.EndSessionResponse
	err = s.withOwnerLock(ctx, a.userID, req.WorkspaceID, func(ctx context.Context) error {
		open, err := s.openSession(ctx, a.userID, req.WorkspaceID)
		if err != nil {
			return err
		}
		if open == nil {
			return attendance.ErrNoActiveSession
		}

		closed, record, err := s.closeAndSettle(ctx, *open, a.now, a.loc, req.IsCheckout)
		if err != nil {
			return err
		}

		resp = attendance.EndSessionResponse{
			Session:    attendance.NewWorkSessionResponse(closed),
			Attendance: attendance.NewAttendanceResponse(record),
		}
		return nil
	})
	if err != nil {
		return attendance.EndSessionResponse{}, err
	}

	eventType := attendance.EventSessionEnded
	if req.IsCheckout {
		eventType = attendance.EventCheckedOut
	}
	publish(ctx, s.publisher, eventType, req.WorkspaceID, a.userID, resp)
	return resp, nil
}

// GetTodaySessions implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTodaySessions(ctx context.Context, workspaceID string) (attendance.TodaySessionsResponse, error) {
	if workspaceID == "" {
		return attendance.TodaySessionsResponse{}, errWorkspaceRequired()
	}

	a, err := s.resolveActor(ctx, workspaceID)
	if err != nil {
		return attendance.TodaySessionsResponse{}, err
	}

	resp := attendance.TodaySessionsResponse{
		Date:     period.FormatDate(a.today),
		Sessions: []attendance.WorkSessionResponse{},
	}

	open, err := s.openSession(ctx, a.userID, workspaceID)
	if err != nil {
		return attendance.TodaySessionsResponse{}, err
	}

	record, err := s.todayRecord(ctx, a.userID, workspaceID, a.today)
	if err != nil {
		return attendance.TodaySessionsResponse{}, err
	}
	if record != nil {
		ar := attendance.NewAttendanceResponse(*record)
		resp.Attendance = &ar

		sessions, err := s.sessionRepo.ListByAttendance(ctx, record.ID)
		if err != nil {
			return attendance.TodaySessionsResponse{}, fmt.Errorf("failed to list sessions: %w", err)
		}
		for _, ws := range sessions {
			resp.Sessions = append(resp.Sessions, attendance.NewWorkSessionResponse(ws))
		}
		resp.TodaySummary = attendance.TodaySummary{
			TotalMinutes:  record.TotalMinutes,
			OfficeMinutes: record.OfficeMinutes,
			RemoteMinutes: record.RemoteMinutes,
			SessionCount:  len(sessions),
		}
	}

	if open != nil {
		active := attendance.NewWorkSessionResponse(*open)
		resp.ActiveSession = &active

		elapsed := open.ElapsedMinutes(a.now)
		resp.TodaySummary.ActiveElapsedMinutes = elapsed
		resp.TodaySummary.TotalMinutes += elapsed
		if open.SessionType == attendance.SessionTypeOffice {
			resp.TodaySummary.OfficeMinutes += elapsed
		} else {
			resp.TodaySummary.RemoteMinutes += elapsed
		}
	}

	return resp, nil
}

// ConfirmPresence implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ConfirmPresence(ctx context.Context, req attendance.PresenceCheckRequest) (attendance.PresenceCheckResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PresenceCheckResponse{}, err
	}

	a, err := s.resolveActor(ctx, req.WorkspaceID)
	if err != nil {
		return attendance.PresenceCheckResponse{}, err
	}

	check := attendance.PresenceCheck{
		ID:          newID(),
		UserID:      a.userID,
		WorkspaceID: req.WorkspaceID,
		Status:      attendance.PresenceStatus(req.Status),
		CheckedAt:   a.now,
	}

	open, err := s.openSession(ctx, a.userID, req.WorkspaceID)
	if err != nil {
		return attendance.PresenceCheckResponse{}, err
	}
	if open != nil {
		check.SessionID = &open.ID
		check.AttendanceID = &open.AttendanceID
	} else {
		record, err := s.todayRecord(ctx, a.userID, req.WorkspaceID, a.today)
		if err != nil {
			return attendance.PresenceCheckResponse{}, err
		}
		if record != nil {
			check.AttendanceID = &record.ID
		}
	}

	saved, err := s.presenceRepo.Create(ctx, check)
	if err != nil {
		return attendance.PresenceCheckResponse{}, fmt.Errorf("failed to record presence check: %w", err)
	}

	resp := attendance.PresenceCheckResponse{
		Acknowledged: true,
		ID:           saved.ID,
		Status:       saved.Status,
		CheckedAt:    saved.CheckedAt,
	}
	if open != nil && open.SessionType == attendance.SessionTypeRemote &&
		a.settings.PresenceCheckEnabled && a.settings.PresenceIntervalMinutes > 0 {
		next := a.now.Add(time.Duration(a.settings.PresenceIntervalMinutes) * time.Minute)
		resp.NextCheckAt = &next
	}

	publish(ctx, s.publisher, attendance.EventPresenceChecked, req.WorkspaceID, a.userID, resp)
	return resp, nil
}

// endPreviousSession closes whatever session is still open before a new one
// starts. A leftover from an earlier day also checks that day out.
func (s *AttendanceServiceImpl) endPreviousSession(ctx context.Context, a actor) (*attendance.WorkSessionResponse, error) {
	open, err := s.openSession(ctx, a.userID, a.member.WorkspaceID)
	if err != nil || open == nil {
		return nil, err
	}

	leftover := period.CivilDate(open.StartTime, a.loc).Before(a.today)
	closed, _, err := s.closeAndSettle(ctx, *open, a.now, a.loc, leftover)
	if err != nil {
		return nil, err
	}
	resp := attendance.NewWorkSessionResponse(closed)
	return &resp, nil
}

// openDay creates the daily record, or fills a placeholder without a
// check-in (an ABSENT mark written ahead of time).
func (s *AttendanceServiceImpl) openDay(ctx context.Context, a actor, existing *attendance.Attendance, claimed attendance.WorkLocation, signals attendance.Signals) (attendance.Attendance, error) {
	status := attendance.StatusPresent
	if a.settings.IsLate(a.now) {
		status = attendance.StatusLate
	}
	checkIn := a.now

	if existing != nil {
		existing.CheckIn = &checkIn
		existing.CheckOut = nil
		existing.WorkLocation = claimed
		existing.Status = status
		existing.IPAddress = optionalString(signals.EffectiveIP())
		if err := s.attendanceRepo.Update(ctx, *existing); err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
		}
		return *existing, nil
	}

	record := attendance.Attendance{
		ID:           newID(),
		UserID:       a.userID,
		WorkspaceID:  a.member.WorkspaceID,
		Date:         a.today,
		CheckIn:      &checkIn,
		WorkLocation: claimed,
		Status:       status,
		IPAddress:    optionalString(signals.EffectiveIP()),
	}
	created, err := s.attendanceRepo.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceExists) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

func (s *AttendanceServiceImpl) startSession(ctx context.Context, a actor, record attendance.Attendance, sessionType attendance.SessionType, decision verification.Decision, signals attendance.Signals) (attendance.WorkSession, error) {
	session := attendance.WorkSession{
		ID:                 newID(),
		AttendanceID:       record.ID,
		UserID:             a.userID,
		WorkspaceID:        record.WorkspaceID,
		SessionType:        sessionType,
		StartTime:          a.now,
		IsVerified:         decision.Verified,
		VerificationMethod: decision.Method,
		WifiSSID:           optionalString(signals.WifiSSID),
		IPAddress:          optionalString(signals.EffectiveIP()),
		Latitude:           signals.Latitude,
		Longitude:          signals.Longitude,
	}
	created, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		if errors.Is(err, attendance.ErrSessionAlreadyOpen) {
			return attendance.WorkSession{}, err
		}
		return attendance.WorkSession{}, fmt.Errorf("failed to create session: %w", err)
	}
	return created, nil
}

func NewAttendanceService(
	transactor database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	sessionRepo attendance.WorkSessionRepository,
	presenceRepo attendance.PresenceCheckRepository,
	settingsRepo worksettings.WorkSettingsRepository,
	memberRepo workspace.MemberRepository,
	gate *verification.Gate,
	publisher attendance.EventPublisher,
	locks *keylock.KeyLock,
	defaultTimezone string,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		ledger: ledger{
			transactor:     transactor,
			attendanceRepo: attendanceRepo,
			sessionRepo:    sessionRepo,
			locks:          locks,
		},
		settings:     settingsLoader{repo: settingsRepo, defaultTimezone: defaultTimezone},
		presenceRepo: presenceRepo,
		memberRepo:   memberRepo,
		gate:         gate,
		publisher:    publisher,
		now:          time.Now,
	}
}
