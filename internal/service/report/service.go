package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/report"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	attendanceRepo  attendance.AttendanceRepository
	sessionRepo     attendance.WorkSessionRepository
	settingsRepo    worksettings.WorkSettingsRepository
	memberRepo      workspace.MemberRepository
	defaultTimezone string
	now             func() time.Time
}

func NewReportService(
	attendanceRepo attendance.AttendanceRepository,
	sessionRepo attendance.WorkSessionRepository,
	settingsRepo worksettings.WorkSettingsRepository,
	memberRepo workspace.MemberRepository,
	defaultTimezone string,
) report.ReportService {
	return &ReportServiceImpl{
		attendanceRepo:  attendanceRepo,
		sessionRepo:     sessionRepo,
		settingsRepo:    settingsRepo,
		memberRepo:      memberRepo,
		defaultTimezone: defaultTimezone,
		now:             time.Now,
	}
}

// viewer checks that the caller may read the whole team's attendance.
func (s *ReportServiceImpl) viewer(ctx context.Context, workspaceID string) (workspace.Member, error) {
	if strings.TrimSpace(workspaceID) == "" {
		var errs validator.ValidationErrors
		errs.Add("workspaceId", "workspaceId is required")
		return workspace.Member{}, errs.Err()
	}
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return workspace.Member{}, err
	}
	m, err := s.memberRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return workspace.Member{}, err
	}
	if !m.CanViewTeam() {
		return workspace.Member{}, workspace.ErrAdminPrivilegeRequired
	}
	return m, nil
}

func (s *ReportServiceImpl) GetTeamBoard(ctx context.Context, workspaceID string) (report.TeamBoardResponse, error) {
	if _, err := s.viewer(ctx, workspaceID); err != nil {
		return report.TeamBoardResponse{}, err
	}

	settings, err := worksettings.LoadOrDefault(ctx, s.settingsRepo, workspaceID, s.defaultTimezone)
	if err != nil {
		return report.TeamBoardResponse{}, err
	}
	today := period.CivilDate(s.now(), settings.Location())

	var (
		members  []workspace.Member
		records  []attendance.Attendance
		sessions []attendance.WorkSession
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.memberRepo.ListMembers(gctx, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByWorkspaceBetween(gctx, workspaceID, today, today)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sessions, err = s.sessionRepo.ListOpenByWorkspace(gctx, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to list open sessions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.TeamBoardResponse{}, err
	}

	return BuildTeamBoard(today, members, records, sessions), nil
}

// BuildTeamBoard places every member in one state for the day. An open
// session wins over the record, so a member who resumed after checking out
// shows as working.
func BuildTeamBoard(today time.Time, members []workspace.Member, records []attendance.Attendance, sessions []attendance.WorkSession) report.TeamBoardResponse {
	byUser := make(map[string]attendance.Attendance, len(records))
	for _, r := range records {
		byUser[r.UserID] = r
	}
	openByUser := make(map[string]attendance.WorkSession, len(sessions))
	for _, s := range sessions {
		openByUser[s.UserID] = s
	}

	board := report.TeamBoardResponse{
		Date:    period.FormatDate(today),
		Members: make([]report.TeamMemberStatus, 0, len(members)),
	}

	for _, m := range members {
		row := report.TeamMemberStatus{
			UserID: m.UserID,
			Name:   m.Name,
			Email:  m.Email,
			Role:   string(m.Role),
			State:  report.StateNotCheckedIn,
		}

		record, hasRecord := byUser[m.UserID]
		if hasRecord {
			status := record.Status
			location := record.WorkLocation
			row.Status = &status
			row.CheckIn = record.CheckIn
			row.CheckOut = record.CheckOut
			row.TotalMinutes = record.TotalMinutes
			if record.IsCheckedIn() {
				row.WorkLocation = &location
			}
		}

		session, working := openByUser[m.UserID]
		switch {
		case working:
			sessionType := session.SessionType
			since := session.StartTime
			row.State = report.StateWorking
			row.ActiveSession = &sessionType
			row.ActiveSince = &since
		case hasRecord && record.Status == attendance.StatusAbsent && !record.IsCheckedIn():
			row.State = report.StateAbsent
		case hasRecord && record.IsCheckedOut():
			row.State = report.StateCheckedOut
		case hasRecord && record.IsCheckedIn():
			row.State = report.StateOnBreak
		}

		board.Members = append(board.Members, row)
		tally(&board.Stats, row)
	}

	sort.SliceStable(board.Members, func(i, j int) bool {
		return board.Members[i].Name < board.Members[j].Name
	})
	return board
}

func tally(stats *report.TeamStats, row report.TeamMemberStatus) {
	stats.Total++
	switch row.State {
	case report.StateWorking:
		stats.Working++
		if *row.ActiveSession == attendance.SessionTypeOffice {
			stats.Office++
		} else {
			stats.Remote++
		}
	case report.StateOnBreak:
		stats.OnBreak++
	case report.StateCheckedOut:
		stats.CheckedOut++
	case report.StateAbsent:
		stats.Absent++
	default:
		stats.NotCheckedIn++
	}
	if row.Status != nil && *row.Status == attendance.StatusLate {
		stats.Late++
	}
}

func (s *ReportServiceImpl) ExportMonthlyAttendance(ctx context.Context, req report.MonthlyExportRequest) (report.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return report.ExportFile{}, err
	}

	viewer, err := s.viewer(ctx, req.WorkspaceID)
	if err != nil {
		return report.ExportFile{}, err
	}

	from, to, err := period.ParseMonth(req.Month)
	if err != nil {
		var errs validator.ValidationErrors
		errs.Add("month", "month must be formatted as YYYY-MM")
		return report.ExportFile{}, errs.Err()
	}

	var (
		members []workspace.Member
		records []attendance.Attendance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.memberRepo.ListMembers(gctx, req.WorkspaceID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByWorkspaceBetween(gctx, req.WorkspaceID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.ExportFile{}, err
	}

	summaries := SummarizeMonth(members, records)
	content, err := renderMonthlyWorkbook(req.Month, members, summaries, records)
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to render workbook: %w", err)
	}

	slog.Info("monthly attendance exported",
		"workspace_id", req.WorkspaceID,
		"month", req.Month,
		"requested_by", viewer.UserID,
		"rows", len(records),
	)

	return report.ExportFile{
		Filename:    fmt.Sprintf("attendance-%s.xlsx", req.Month),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

// SummarizeMonth folds a month of records into one row per member, in
// member order. Records of users who left the workspace are ignored.
func SummarizeMonth(members []workspace.Member, records []attendance.Attendance) []report.MemberMonthSummary {
	index := make(map[string]int, len(members))
	out := make([]report.MemberMonthSummary, len(members))
	for i, m := range members {
		index[m.UserID] = i
		out[i] = report.MemberMonthSummary{UserID: m.UserID, Name: m.Name, Email: m.Email}
	}

	for _, r := range records {
		i, ok := index[r.UserID]
		if !ok {
			continue
		}
		row := &out[i]
		switch {
		case r.Status == attendance.StatusAbsent && !r.IsCheckedIn():
			row.DaysAbsent++
		case r.Status == attendance.StatusLate:
			row.DaysLate++
			row.DaysPresent++
		case r.IsCheckedIn():
			row.DaysPresent++
		}
		row.TotalMinutes += r.TotalMinutes
		row.OfficeMinutes += r.OfficeMinutes
		row.RemoteMinutes += r.RemoteMinutes
	}
	return out
}
