package report

import (
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
)

// MemberState is a member's position in today's workday.
type MemberState string

const (
	StateNotCheckedIn MemberState = "NOT_CHECKED_IN"
	StateWorking      MemberState = "WORKING"
	StateOnBreak      MemberState = "ON_BREAK"
	StateCheckedOut   MemberState = "CHECKED_OUT"
	StateAbsent       MemberState = "ABSENT"
)

type TeamMemberStatus struct {
	UserID        string                   `json:"userId"`
	Name          string                   `json:"name"`
	Email         string                   `json:"email"`
	Role          string                   `json:"role"`
	State         MemberState              `json:"state"`
	Status        *attendance.Status       `json:"status"`
	WorkLocation  *attendance.WorkLocation `json:"workLocation"`
	CheckIn       *time.Time               `json:"checkIn"`
	CheckOut      *time.Time               `json:"checkOut"`
	TotalMinutes  int                      `json:"totalMinutes"`
	ActiveSession *attendance.SessionType  `json:"activeSession"`
	ActiveSince   *time.Time               `json:"activeSince"`
}

type TeamStats struct {
	Total        int `json:"total"`
	Working      int `json:"working"`
	OnBreak      int `json:"onBreak"`
	CheckedOut   int `json:"checkedOut"`
	NotCheckedIn int `json:"notCheckedIn"`
	Absent       int `json:"absent"`
	Late         int `json:"late"`
	Office       int `json:"office"`
	Remote       int `json:"remote"`
}

type TeamBoardResponse struct {
	Date    string             `json:"date"`
	Members []TeamMemberStatus `json:"members"`
	Stats   TeamStats          `json:"stats"`
}

type MonthlyExportRequest struct {
	WorkspaceID string `validate:"required"`
	Month       string `validate:"required,datetime=2006-01"`
}

func (r *MonthlyExportRequest) Validate() error {
	return validator.Struct(r).Err()
}

// MemberMonthSummary is one row of the monthly summary sheet.
type MemberMonthSummary struct {
	UserID        string
	Name          string
	Email         string
	DaysPresent   int
	DaysLate      int
	DaysAbsent    int
	TotalMinutes  int
	OfficeMinutes int
	RemoteMinutes int
}

type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
