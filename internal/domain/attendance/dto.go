package attendance

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
)

// ========================================
// SIGNAL DTOs
// ========================================

// Signals are the client-collected inputs of the verification gate. Every
// field is optional; a missing signal only lowers the chance of being
// verified.
type Signals struct {
	IPAddress string   `json:"ipAddress" validate:"omitempty,ip"`
	WifiSSID  string   `json:"wifiSSID" validate:"omitempty,max=32"`
	WifiBSSID string   `json:"wifiBSSID" validate:"omitempty,mac"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`

	// ObservedIP is the address the server saw the request come from. It is
	// used when the client did not report one.
	ObservedIP string `json:"-"`
}

// EffectiveIP prefers the client reported address.
func (s Signals) EffectiveIP() string {
	if ip := strings.TrimSpace(s.IPAddress); ip != "" {
		return ip
	}
	return s.ObservedIP
}

// ========================================
// CHECK-IN / CHECK-OUT DTOs
// ========================================

type CheckInRequest struct {
	WorkspaceID  string  `json:"workspaceId" validate:"required"`
	WorkLocation string  `json:"workLocation" validate:"required,oneof=OFFICE REMOTE"`
	IsResume     bool    `json:"isResume"`
	Note         *string `json:"note" validate:"omitempty,max=500"`
	Signals
}

func (r *CheckInRequest) Validate() error {
	return validator.Struct(r).Err()
}

type CheckOutRequest struct {
	WorkspaceID string `json:"workspaceId" validate:"required"`
}

func (r *CheckOutRequest) Validate() error {
	return validator.Struct(r).Err()
}

type ResumeWorkRequest struct {
	WorkspaceID  string `json:"workspaceId" validate:"required"`
	WorkLocation string `json:"workLocation" validate:"required,oneof=OFFICE REMOTE"`
	Signals
}

func (r *ResumeWorkRequest) Validate() error {
	return validator.Struct(r).Err()
}

// ========================================
// SESSION DTOs
// ========================================

type StartSessionRequest struct {
	WorkspaceID string `json:"workspaceId" validate:"required"`
	SessionType string `json:"sessionType" validate:"required,oneof=OFFICE_WORK REMOTE_WORK"`
	Signals
}

func (r *StartSessionRequest) Validate() error {
	return validator.Struct(r).Err()
}

type EndSessionRequest struct {
	WorkspaceID string `json:"workspaceId" validate:"required"`
	IsCheckout  bool   `json:"isCheckout"`
}

func (r *EndSessionRequest) Validate() error {
	return validator.Struct(r).Err()
}

type VerificationResult struct {
	Verified   bool     `json:"verified"`
	IsOfficeIP bool     `json:"isOfficeIP"`
	Method     string   `json:"method"`
	Warnings   []string `json:"warnings,omitempty"`
}

type AttendanceResponse struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	WorkspaceID   string       `json:"workspaceId"`
	Date          string       `json:"date"`
	CheckIn       *time.Time   `json:"checkIn"`
	CheckOut      *time.Time   `json:"checkOut"`
	WorkLocation  WorkLocation `json:"workLocation"`
	Status        Status       `json:"status"`
	TotalMinutes  int          `json:"totalMinutes"`
	OfficeMinutes int          `json:"officeMinutes"`
	RemoteMinutes int          `json:"remoteMinutes"`
	Note          *string      `json:"note"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:            a.ID,
		UserID:        a.UserID,
		WorkspaceID:   a.WorkspaceID,
		Date:          period.FormatDate(a.Date),
		CheckIn:       a.CheckIn,
		CheckOut:      a.CheckOut,
		WorkLocation:  a.WorkLocation,
		Status:        a.Status,
		TotalMinutes:  a.TotalMinutes,
		OfficeMinutes: a.OfficeMinutes,
		RemoteMinutes: a.RemoteMinutes,
		Note:          a.Note,
	}
}

type WorkSessionResponse struct {
	ID                 string      `json:"id"`
	AttendanceID       string      `json:"attendanceId"`
	SessionType        SessionType `json:"sessionType"`
	StartTime          time.Time   `json:"startTime"`
	EndTime            *time.Time  `json:"endTime"`
	DurationMinutes    *int        `json:"durationMinutes"`
	IsVerified         bool        `json:"isVerified"`
	VerificationMethod string      `json:"verificationMethod"`
	WifiSSID           *string     `json:"wifiSSID"`
	IPAddress          *string     `json:"ipAddress"`
}

func NewWorkSessionResponse(s WorkSession) WorkSessionResponse {
	return WorkSessionResponse{
		ID:                 s.ID,
		AttendanceID:       s.AttendanceID,
		SessionType:        s.SessionType,
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		DurationMinutes:    s.DurationMinutes,
		IsVerified:         s.IsVerified,
		VerificationMethod: s.VerificationMethod,
		WifiSSID:           s.WifiSSID,
		IPAddress:          s.IPAddress,
	}
}

type CheckInResponse struct {
	Attendance           AttendanceResponse   `json:"attendance"`
	Session              WorkSessionResponse  `json:"session"`
	Verification         VerificationResult   `json:"verification"`
	Resumed              bool                 `json:"resumed"`
	PreviousSessionEnded *WorkSessionResponse `json:"previousSessionEnded"`
}

type StartSessionResponse struct {
	Session              WorkSessionResponse  `json:"session"`
	Attendance           AttendanceResponse   `json:"attendance"`
	Verification         VerificationResult   `json:"verification"`
	PreviousSessionEnded *WorkSessionResponse `json:"previousSessionEnded"`
}

type EndSessionResponse struct {
	Session    WorkSessionResponse `json:"session"`
	Attendance AttendanceResponse  `json:"attendance"`
}

type TodaySummary struct {
	TotalMinutes         int `json:"totalMinutes"`
	OfficeMinutes        int `json:"officeMinutes"`
	RemoteMinutes        int `json:"remoteMinutes"`
	ActiveElapsedMinutes int `json:"activeElapsedMinutes"`
	SessionCount         int `json:"sessionCount"`
}

type TodaySessionsResponse struct {
	Date          string                `json:"date"`
	Attendance    *AttendanceResponse   `json:"attendance"`
	Sessions      []WorkSessionResponse `json:"sessions"`
	ActiveSession *WorkSessionResponse  `json:"activeSession"`
	TodaySummary  TodaySummary          `json:"todaySummary"`
}

// ========================================
// WEEKLY DTOs
// ========================================

type WeeklySummaryRequest struct {
	WorkspaceID string `validate:"required"`
	Weeks       int    `validate:"gte=1,lte=12"`
}

func (r *WeeklySummaryRequest) Validate() error {
	if r.Weeks == 0 {
		r.Weeks = 4
	}
	return validator.Struct(r).Err()
}

type DailyBreakdown struct {
	Date          string        `json:"date"`
	DayOfWeek     string        `json:"dayOfWeek"`
	TotalMinutes  int           `json:"totalMinutes"`
	OfficeMinutes int           `json:"officeMinutes"`
	RemoteMinutes int           `json:"remoteMinutes"`
	Status        *Status       `json:"status"`
	WorkLocation  *WorkLocation `json:"workLocation"`
	CheckIn       *time.Time    `json:"checkIn"`
	CheckOut      *time.Time    `json:"checkOut"`
	IsToday       bool          `json:"isToday"`
}

type WeeklySummary struct {
	WeekStart          string           `json:"weekStart"`
	WeekEnd            string           `json:"weekEnd"`
	TargetMinutes      int              `json:"targetMinutes"`
	TotalWorkedMinutes int              `json:"totalWorkedMinutes"`
	OfficeMinutes      int              `json:"officeMinutes"`
	RemoteMinutes      int              `json:"remoteMinutes"`
	RemainingMinutes   int              `json:"remainingMinutes"`
	IsCompleted        bool             `json:"isCompleted"`
	ProgressPercent    int              `json:"progressPercent"`
	DaysWorked         int              `json:"daysWorked"`
	DailyBreakdown     []DailyBreakdown `json:"dailyBreakdown,omitempty"`
}

type WeeklySettingsDigest struct {
	Type                  string  `json:"type"`
	DailyRequiredMinutes  int     `json:"dailyRequiredMinutes"`
	WeeklyRequiredMinutes int     `json:"weeklyRequiredMinutes"`
	CoreTimeStart         *string `json:"coreTimeStart"`
	CoreTimeEnd           *string `json:"coreTimeEnd"`
}

type WeeklySummaryResponse struct {
	CurrentWeek   WeeklySummary        `json:"currentWeek"`
	PreviousWeeks []WeeklySummary      `json:"previousWeeks"`
	Settings      WeeklySettingsDigest `json:"settings"`
}

// ========================================
// PRESENCE CHECK DTOs
// ========================================

type PresenceCheckRequest struct {
	WorkspaceID string `json:"workspaceId" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=CONFIRMED MISSED"`
}

func (r *PresenceCheckRequest) Validate() error {
	if r.Status == "" {
		r.Status = string(PresenceConfirmed)
	}
	return validator.Struct(r).Err()
}

type PresenceCheckResponse struct {
	Acknowledged bool           `json:"acknowledged"`
	ID           string         `json:"id"`
	Status       PresenceStatus `json:"status"`
	CheckedAt    time.Time      `json:"checkedAt"`
	NextCheckAt  *time.Time     `json:"nextCheckAt"`
}

// ========================================
// CHANGE REQUEST DTOs
// ========================================

const (
	minChangeReasonLength = 5
	minRejectReasonLength = 3
)

type SubmitChangeRequest struct {
	WorkspaceID   string    `json:"workspaceId" validate:"required"`
	AttendanceID  string    `json:"attendanceId" validate:"required"`
	RequestType   string    `json:"requestType" validate:"required,oneof=CHECK_IN CHECK_OUT BOTH"`
	RequestedTime string    `json:"requestedTime" validate:"required"`
	Reason        string    `json:"reason" validate:"max=1000"`
	RequestedAt   time.Time `json:"-"`
}

func (r *SubmitChangeRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	errs := validator.Struct(r)

	if utf8.RuneCountInString(r.Reason) < minChangeReasonLength {
		errs.Add("reason", "reason must be at least 5 characters")
	}

	if r.RequestedTime != "" {
		t, ok := validator.IsValidDateTime(r.RequestedTime)
		if !ok {
			errs.Add("requestedTime", "requestedTime must be an ISO8601 timestamp")
		} else {
			r.RequestedAt = t
		}
	}

	return errs.Err()
}

type ListChangeRequestsRequest struct {
	WorkspaceID  string `validate:"required"`
	Status       string `validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
	AttendanceID string
}

func (r *ListChangeRequestsRequest) Validate() error {
	return validator.Struct(r).Err()
}

type ReviewChangeRequest struct {
	ID           string `json:"-"`
	WorkspaceID  string `json:"workspaceId" validate:"required"`
	Action       string `json:"action" validate:"required,oneof=approve reject"`
	RejectReason string `json:"rejectReason"`
}

func (r *ReviewChangeRequest) Validate() error {
	r.RejectReason = strings.TrimSpace(r.RejectReason)
	errs := validator.Struct(r)
	if r.Action == "reject" && utf8.RuneCountInString(r.RejectReason) < minRejectReasonLength {
		errs.Add("rejectReason", "rejectReason must be at least 3 characters")
	}
	return errs.Err()
}

type ChangeRequestResponse struct {
	ID            string              `json:"id"`
	AttendanceID  string              `json:"attendanceId"`
	WorkspaceID   string              `json:"workspaceId"`
	UserID        string              `json:"userId"`
	RequestType   RequestType         `json:"requestType"`
	RequestedTime time.Time           `json:"requestedTime"`
	OriginalTime  *time.Time          `json:"originalTime"`
	Reason        string              `json:"reason"`
	Status        ChangeRequestStatus `json:"status"`
	ReviewedBy    *string             `json:"reviewedBy"`
	ReviewedAt    *time.Time          `json:"reviewedAt"`
	RejectReason  *string             `json:"rejectReason"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func NewChangeRequestResponse(c ChangeRequest) ChangeRequestResponse {
	return ChangeRequestResponse{
		ID:            c.ID,
		AttendanceID:  c.AttendanceID,
		WorkspaceID:   c.WorkspaceID,
		UserID:        c.UserID,
		RequestType:   c.RequestType,
		RequestedTime: c.RequestedTime,
		OriginalTime:  c.OriginalTime,
		Reason:        c.Reason,
		Status:        c.Status,
		ReviewedBy:    c.ReviewedBy,
		ReviewedAt:    c.ReviewedAt,
		RejectReason:  c.RejectReason,
		CreatedAt:     c.CreatedAt,
	}
}
