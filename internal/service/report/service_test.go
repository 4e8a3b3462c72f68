package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/report"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testWorkspace = "ws-1"

// fakeAttendanceRepo only serves the workspace range query the reports use.
type fakeAttendanceRepo struct {
	attendance.AttendanceRepository
	records []attendance.Attendance
}

func (r *fakeAttendanceRepo) ListByWorkspaceBetween(_ context.Context, workspaceID string, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.WorkspaceID == workspaceID && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	attendance.WorkSessionRepository
	open []attendance.WorkSession
}

func (r *fakeSessionRepo) ListOpenByWorkspace(context.Context, string) ([]attendance.WorkSession, error) {
	return r.open, nil
}

type fakeSettingsRepo struct{}

func (fakeSettingsRepo) Get(context.Context, string) (worksettings.WorkSettings, error) {
	return worksettings.WorkSettings{}, worksettings.ErrSettingsNotFound
}

func (fakeSettingsRepo) Upsert(_ context.Context, s worksettings.WorkSettings) (worksettings.WorkSettings, error) {
	return s, nil
}

type fakeMemberRepo struct {
	members []workspace.Member
}

func (r *fakeMemberRepo) GetMember(_ context.Context, workspaceID, userID string) (workspace.Member, error) {
	for _, m := range r.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return m, nil
		}
	}
	return workspace.Member{}, workspace.ErrNotMember
}

func (r *fakeMemberRepo) ListMembers(context.Context, string) ([]workspace.Member, error) {
	return r.members, nil
}

func (r *fakeMemberRepo) ListWorkspaceIDs(context.Context) ([]string, error) {
	return []string{testWorkspace}, nil
}

var seoul = time.FixedZone("KST", 9*60*60)

func at(day, hour, minute int) *time.Time {
	t := time.Date(2025, 3, day, hour, minute, 0, 0, seoul)
	return &t
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func teamMembers() []workspace.Member {
	return []workspace.Member{
		{WorkspaceID: testWorkspace, UserID: "u-dana", Name: "Dana", Role: workspace.RoleMember},
		{WorkspaceID: testWorkspace, UserID: "u-ari", Name: "Ari", Role: workspace.RoleMember},
		{WorkspaceID: testWorkspace, UserID: "u-boa", Name: "Boa", Role: workspace.RoleHR},
		{WorkspaceID: testWorkspace, UserID: "u-cho", Name: "Cho", Role: workspace.RoleMember},
		{WorkspaceID: testWorkspace, UserID: "u-eun", Name: "Eun", Role: workspace.RoleOwner},
	}
}

func record(userID string, d int, status attendance.Status, checkIn, checkOut *time.Time, office, remote int) attendance.Attendance {
	return attendance.Attendance{
		ID:            userID + "-" + day(d).Format("0102"),
		UserID:        userID,
		WorkspaceID:   testWorkspace,
		Date:          day(d),
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		WorkLocation:  attendance.WorkLocationOffice,
		Status:        status,
		TotalMinutes:  office + remote,
		OfficeMinutes: office,
		RemoteMinutes: remote,
	}
}

func TestBuildTeamBoard(t *testing.T) {
	records := []attendance.Attendance{
		record("u-ari", 10, attendance.StatusLate, at(10, 9, 30), nil, 60, 0),
		record("u-boa", 10, attendance.StatusPresent, at(10, 8, 50), at(10, 12, 0), 190, 0),
		record("u-cho", 10, attendance.StatusPresent, at(10, 9, 0), nil, 120, 0),
		record("u-dana", 10, attendance.StatusAbsent, nil, nil, 0, 0),
	}
	sessions := []attendance.WorkSession{
		{UserID: "u-ari", SessionType: attendance.SessionTypeRemote, StartTime: *at(10, 10, 30)},
	}

	board := BuildTeamBoard(day(10), teamMembers(), records, sessions)

	assert.Equal(t, "2025-03-10", board.Date)
	require.Len(t, board.Members, 5)
	states := map[string]report.MemberState{}
	for _, m := range board.Members {
		states[m.Name] = m.State
	}
	assert.Equal(t, report.StateWorking, states["Ari"])
	assert.Equal(t, report.StateCheckedOut, states["Boa"])
	assert.Equal(t, report.StateOnBreak, states["Cho"])
	assert.Equal(t, report.StateAbsent, states["Dana"])
	assert.Equal(t, report.StateNotCheckedIn, states["Eun"])
	assert.Equal(t, "Ari", board.Members[0].Name, "sorted by name")

	require.NotNil(t, board.Members[0].ActiveSession)
	assert.Equal(t, attendance.SessionTypeRemote, *board.Members[0].ActiveSession)
	assert.Nil(t, board.Members[3].WorkLocation, "absent members have no location")

	assert.Equal(t, report.TeamStats{
		Total: 5, Working: 1, OnBreak: 1, CheckedOut: 1, NotCheckedIn: 1, Absent: 1,
		Late: 1, Office: 0, Remote: 1,
	}, board.Stats)
}

func TestSummarizeMonth(t *testing.T) {
	records := []attendance.Attendance{
		record("u-ari", 3, attendance.StatusPresent, at(3, 9, 0), at(3, 18, 0), 480, 60),
		record("u-ari", 4, attendance.StatusLate, at(4, 9, 30), at(4, 18, 0), 0, 480),
		record("u-ari", 5, attendance.StatusAbsent, nil, nil, 0, 0),
		record("gone", 5, attendance.StatusPresent, at(5, 9, 0), nil, 10, 0),
	}

	rows := SummarizeMonth(teamMembers(), records)
	require.Len(t, rows, 5)

	ari := rows[1]
	assert.Equal(t, "Ari", ari.Name)
	assert.Equal(t, 2, ari.DaysPresent)
	assert.Equal(t, 1, ari.DaysLate)
	assert.Equal(t, 1, ari.DaysAbsent)
	assert.Equal(t, 1020, ari.TotalMinutes)
	assert.Equal(t, 480, ari.OfficeMinutes)
	assert.Equal(t, 540, ari.RemoteMinutes)
	assert.Zero(t, rows[0].TotalMinutes)
}

func newService(records []attendance.Attendance) *ReportServiceImpl {
	svc := NewReportService(
		&fakeAttendanceRepo{records: records},
		&fakeSessionRepo{},
		fakeSettingsRepo{},
		&fakeMemberRepo{members: teamMembers()},
		"Asia/Seoul",
	).(*ReportServiceImpl)
	svc.now = func() time.Time { return *at(10, 11, 0) }
	return svc
}

func TestGetTeamBoard_Permissions(t *testing.T) {
	svc := newService([]attendance.Attendance{
		record("u-cho", 10, attendance.StatusPresent, at(10, 9, 0), nil, 0, 0),
		record("u-cho", 7, attendance.StatusPresent, at(7, 9, 0), nil, 0, 0),
	})

	_, err := svc.GetTeamBoard(jwt.ContextWithUser(context.Background(), "u-ari"), testWorkspace)
	assert.ErrorIs(t, err, workspace.ErrAdminPrivilegeRequired)

	board, err := svc.GetTeamBoard(jwt.ContextWithUser(context.Background(), "u-boa"), testWorkspace)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", board.Date)
	assert.Equal(t, 1, board.Stats.OnBreak)
	assert.Equal(t, 4, board.Stats.NotCheckedIn)
}

func TestExportMonthlyAttendance(t *testing.T) {
	note := "session closed automatically"
	r := record("u-ari", 3, attendance.StatusPresent, at(3, 9, 0), at(3, 18, 0), 480, 30)
	r.Note = &note
	february := record("u-cho", 28, attendance.StatusPresent, at(28, 9, 0), at(28, 17, 0), 480, 0)
	february.Date = time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	svc := newService([]attendance.Attendance{
		r,
		record("u-cho", 4, attendance.StatusLate, at(4, 9, 40), at(4, 17, 0), 420, 0),
		record("u-dana", 4, attendance.StatusAbsent, nil, nil, 0, 0),
		february,
	})

	ctx := jwt.ContextWithUser(context.Background(), "u-eun")
	file, err := svc.ExportMonthlyAttendance(ctx, report.MonthlyExportRequest{WorkspaceID: testWorkspace, Month: "2025-03"})
	require.NoError(t, err)
	assert.Equal(t, "attendance-2025-03.xlsx", file.Filename)
	assert.Equal(t, xlsxContentType, file.ContentType)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	summary, err := wb.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 6)
	assert.Equal(t, "Name", summary[0][0])
	assert.Equal(t, "Ari", summary[2][0])
	assert.Equal(t, "8.5", summary[2][5])

	daily, err := wb.GetRows(DailySheet)
	require.NoError(t, err)
	require.Len(t, daily, 4, "header plus the three March records")
	assert.Equal(t, "2025-03-03", daily[1][0])
	assert.Equal(t, "Ari", daily[1][1])
	assert.Equal(t, note, daily[1][9])

	_, err = svc.ExportMonthlyAttendance(ctx, report.MonthlyExportRequest{WorkspaceID: testWorkspace, Month: "March"})
	assert.Error(t, err)

	_, err = svc.ExportMonthlyAttendance(jwt.ContextWithUser(context.Background(), "u-cho"), report.MonthlyExportRequest{WorkspaceID: testWorkspace, Month: "2025-03"})
	assert.ErrorIs(t, err, workspace.ErrAdminPrivilegeRequired)
}
