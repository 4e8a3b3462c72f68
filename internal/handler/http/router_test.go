package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/evaluation"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/report"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/handler/http/response"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/sse"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type stubAttendanceService struct {
	attendance.AttendanceService
	lastCheckIn attendance.CheckInRequest
	lastWeekly  attendance.WeeklySummaryRequest
	checkInErr  error
	deadline    time.Time
}

func (s *stubAttendanceService) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.CheckInResponse, error) {
	if _, err := jwt.UserIDFromContext(ctx); err != nil {
		return attendance.CheckInResponse{}, err
	}
	s.lastCheckIn = req
	if err := req.Validate(); err != nil {
		return attendance.CheckInResponse{}, err
	}
	if s.checkInErr != nil {
		return attendance.CheckInResponse{}, s.checkInErr
	}
	return attendance.CheckInResponse{}, nil
}

func (s *stubAttendanceService) GetWeeklySummary(ctx context.Context, req attendance.WeeklySummaryRequest) (attendance.WeeklySummaryResponse, error) {
	s.lastWeekly = req
	s.deadline, _ = ctx.Deadline()
	return attendance.WeeklySummaryResponse{}, nil
}

type stubChangeRequestService struct {
	attendance.ChangeRequestService
}

func (stubChangeRequestService) Get(context.Context, string) (attendance.ChangeRequestResponse, error) {
	return attendance.ChangeRequestResponse{}, attendance.ErrChangeRequestNotFound
}

type stubSettingsService struct {
	worksettings.WorkSettingsService
}

type stubReportService struct {
	report.ReportService
}

func (stubReportService) ExportMonthlyAttendance(_ context.Context, req report.MonthlyExportRequest) (report.ExportFile, error) {
	return report.ExportFile{
		Filename:    "attendance-" + req.Month + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte("xlsx"),
	}, nil
}

type stubEvaluationService struct {
	evaluation.EvaluationService
	lastList evaluation.ListEvaluationsRequest
}

func (s *stubEvaluationService) List(_ context.Context, req evaluation.ListEvaluationsRequest) (evaluation.ListEvaluationsResponse, error) {
	s.lastList = req
	return evaluation.ListEvaluationsResponse{}, nil
}

func (s *stubEvaluationService) RemoveEvaluator(context.Context, string, string) error {
	return workspace.ErrAdminPrivilegeRequired
}

type stubMemberRepo struct{}

func (stubMemberRepo) GetMember(_ context.Context, workspaceID, userID string) (workspace.Member, error) {
	if workspaceID != "ws-1" {
		return workspace.Member{}, workspace.ErrNotMember
	}
	role := workspace.RoleMember
	if userID == "owner-1" {
		role = workspace.RoleOwner
	}
	return workspace.Member{WorkspaceID: workspaceID, UserID: userID, Role: role}, nil
}

func (stubMemberRepo) ListMembers(context.Context, string) ([]workspace.Member, error) {
	return nil, nil
}

func (stubMemberRepo) ListWorkspaceIDs(context.Context) ([]string, error) {
	return []string{"ws-1"}, nil
}

type testServer struct {
	handler    http.Handler
	jwt        jwt.Service
	hub        *sse.Hub
	attendance *stubAttendanceService
	evaluation *stubEvaluationService
}

func newTestServer() *testServer {
	ts := &testServer{
		jwt:        jwt.NewJWTService(handlerTestSecret),
		hub:        sse.NewHub(),
		attendance: &stubAttendanceService{},
		evaluation: &stubEvaluationService{},
	}
	ts.handler = NewRouter(RouterOptions{RequestTimeout: 5 * time.Second}, ts.jwt, Handlers{
		Attendance:    NewAttendanceHandler(ts.attendance),
		ChangeRequest: NewChangeRequestHandler(stubChangeRequestService{}),
		WorkSettings:  NewWorkSettingsHandler(stubSettingsService{}),
		Report:        NewReportHandler(stubReportService{}),
		Evaluation:    NewEvaluationHandler(ts.evaluation),
		Stream:        NewStreamHandler(ts.jwt, stubMemberRepo{}, ts.hub, 50*time.Millisecond),
	})
	return ts
}

func (ts *testServer) accessToken(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken(userID, userID+"@example.com", time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/attendance/checkin", "", map[string]string{"workspaceId": "ws-1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sseToken, _, err := ts.jwt.GenerateSSEToken("u1", "ws-1")
	require.NoError(t, err)
	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/checkin", sseToken, map[string]string{"workspaceId": "ws-1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "stream tokens are not access tokens")

	rec = ts.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "heartbeat is public")
}

func TestCheckIn_PassesObservedIPAndBody(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/checkin",
		strings.NewReader(`{"workspaceId":"ws-1","workLocation":"REMOTE","isResume":true,"wifiSSID":"Home"}`))
	req.Header.Set("Authorization", "Bearer "+ts.accessToken(t, "u1"))
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := ts.attendance.lastCheckIn
	assert.Equal(t, "ws-1", got.WorkspaceID)
	assert.Equal(t, "REMOTE", got.WorkLocation)
	assert.True(t, got.IsResume)
	assert.Equal(t, "Home", got.WifiSSID)
	assert.Equal(t, "198.51.100.7", got.ObservedIP)
}

func TestCheckIn_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		body     map[string]string
		status   int
		code     string
		detailOn string
	}{
		{
			name:   "verification rejection carries the reason",
			err:    attendance.NewVerificationError(attendance.ReasonOfficeIPBlocksRemote),
			body:   map[string]string{"workspaceId": "ws-1", "workLocation": "REMOTE"},
			status: http.StatusForbidden,
			code:   "OFFICE_IP_BLOCKS_REMOTE",
		},
		{
			name:   "already checked in",
			err:    attendance.ErrAlreadyCheckedIn,
			body:   map[string]string{"workspaceId": "ws-1", "workLocation": "OFFICE"},
			status: http.StatusConflict,
			code:   "ALREADY_CHECKED_IN",
		},
		{
			name:   "not a member",
			err:    workspace.ErrNotMember,
			body:   map[string]string{"workspaceId": "ws-1", "workLocation": "OFFICE"},
			status: http.StatusForbidden,
			code:   "FORBIDDEN",
		},
		{
			name:     "validation",
			body:     map[string]string{"workspaceId": "ws-1", "workLocation": "BEACH"},
			status:   http.StatusUnprocessableEntity,
			code:     "VALIDATION_ERROR",
			detailOn: "workLocation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.attendance.checkInErr = tt.err

			rec := ts.do(t, http.MethodPost, "/api/v1/attendance/checkin", ts.accessToken(t, "u1"), tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			env := decode(t, rec)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.detailOn != "" {
				assert.Contains(t, env.Error.Details, tt.detailOn)
			}
		})
	}
}

func TestHandleError_WrappedValidationErrors(t *testing.T) {
	var errs validator.ValidationErrors
	errs.Add("month", "month must be YYYY-MM")

	rec := httptest.NewRecorder()
	response.HandleError(rec, fmt.Errorf("export: %w", errs.Err()))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "month must be YYYY-MM", env.Error.Details["month"])
}

func TestWeeklySummary_QueryParsing(t *testing.T) {
	ts := newTestServer()
	token := ts.accessToken(t, "u1")

	rec := ts.do(t, http.MethodGet, "/api/v1/attendance/weekly?workspaceId=ws-1&weeks=6", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, attendance.WeeklySummaryRequest{WorkspaceID: "ws-1", Weeks: 6}, ts.attendance.lastWeekly)

	rec = ts.do(t, http.MethodGet, "/api/v1/attendance/weekly?workspaceId=ws-1&weeks=six", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeRequest_NotFound(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(t, http.MethodGet, "/api/v1/attendance/change-request/cr-1", ts.accessToken(t, "u1"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport_StreamsWorkbook(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(t, http.MethodGet, "/api/v1/attendance/export?workspaceId=ws-1&month=2025-03", ts.accessToken(t, "u1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="attendance-2025-03.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx", rec.Body.String())
}

func TestEvaluation_ListQueryAndForbidden(t *testing.T) {
	ts := newTestServer()
	token := ts.accessToken(t, "u1")

	rec := ts.do(t, http.MethodGet, "/api/v1/evaluation?workspaceId=ws-1&type=monthly&year=2025&month=3", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := ts.evaluation.lastList
	assert.Equal(t, "monthly", got.Type)
	assert.Equal(t, 2025, got.Year)
	require.NotNil(t, got.Month)
	assert.Equal(t, 3, *got.Month)
	assert.Nil(t, got.Week)

	rec = ts.do(t, http.MethodDelete, "/api/v1/evaluation/evaluators/u2?workspaceId=ws-1", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AppliesRequestTimeout(t *testing.T) {
	ts := newTestServer()
	start := time.Now()
	rec := ts.do(t, http.MethodGet, "/api/v1/attendance/weekly?workspaceId=ws-1", ts.accessToken(t, "u1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.False(t, ts.attendance.deadline.IsZero(), "handlers run under the configured timeout")
	assert.WithinDuration(t, start.Add(5*time.Second), ts.attendance.deadline, time.Second)
}

func TestStream_TokenAndEvents(t *testing.T) {
	ts := newTestServer()
	server := httptest.NewServer(ts.handler)
	t.Cleanup(server.Close)

	rec := ts.do(t, http.MethodPost, "/api/v1/attendance/stream/token", ts.accessToken(t, "u1"), map[string]string{"workspaceId": "ws-2"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "only members get a stream token")

	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/stream/token", ts.accessToken(t, "u1"), map[string]string{"workspaceId": "ws-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var tok StreamTokenResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &tok))
	assert.Equal(t, 300, tok.ExpiresIn)

	resp, err := http.Get(server.URL + "/api/v1/attendance/stream?workspaceId=ws-9&token=" + tok.Token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	reader := openStream(t, server.URL, tok.Token)
	require.Eventually(t, func() bool { return ts.hub.SubscriberCount("ws-1") == 1 }, time.Second, 5*time.Millisecond)

	ts.hub.Publish(sse.Event{
		Type:        attendance.EventCheckedIn,
		WorkspaceID: "ws-1",
		UserID:      "u2",
		Data:        map[string]string{"ipAddress": "198.51.100.77", "wifiSSID": "HomeNet"},
	})
	ts.hub.Publish(sse.Event{Type: attendance.EventSessionStarted, WorkspaceID: "ws-1", UserID: "u1"})

	seen := readUntilEvent(t, reader, attendance.EventSessionStarted)
	assert.NotContains(t, seen, "198.51.100.77", "a member never sees a colleague's signals")
	assert.NotContains(t, seen, "event: "+attendance.EventCheckedIn+"\n")
}

func TestStream_AdminSeesWholeWorkspace(t *testing.T) {
	ts := newTestServer()
	server := httptest.NewServer(ts.handler)
	t.Cleanup(server.Close)

	token, _, err := ts.jwt.GenerateSSEToken("owner-1", "ws-1")
	require.NoError(t, err)
	reader := openStream(t, server.URL, token)
	require.Eventually(t, func() bool { return ts.hub.SubscriberCount("ws-1") == 1 }, time.Second, 5*time.Millisecond)

	ts.hub.Publish(sse.Event{
		Type:        attendance.EventCheckedIn,
		WorkspaceID: "ws-1",
		UserID:      "u2",
		Data:        map[string]string{"ipAddress": "198.51.100.77"},
	})

	seen := readUntilEvent(t, reader, attendance.EventCheckedIn)
	assert.Contains(t, seen, `"userId":"u2"`)
}

func TestStream_RejectsFormerMember(t *testing.T) {
	ts := newTestServer()
	token, _, err := ts.jwt.GenerateSSEToken("u1", "ws-2")
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/v1/attendance/stream?token="+token, "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// openStream connects to the SSE endpoint and consumes the connected frame.
func openStream(t *testing.T, baseURL, token string) *bufio.Reader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/attendance/stream?token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event: connected\n", line)
	return reader
}

// readUntilEvent returns everything read up to and including the data line
// of the named event.
func readUntilEvent(t *testing.T, reader *bufio.Reader, eventType string) string {
	t.Helper()
	var seen strings.Builder
	for i := 0; i < 50; i++ {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		seen.WriteString(line)
		if line == "event: "+eventType+"\n" {
			data, err := reader.ReadString('\n')
			require.NoError(t, err)
			seen.WriteString(data)
			return seen.String()
		}
	}
	t.Fatalf("event %s not received", eventType)
	return ""
}
