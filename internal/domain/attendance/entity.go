package attendance

import (
	"math"
	"time"
)

type WorkLocation string

const (
	WorkLocationOffice WorkLocation = "OFFICE"
	WorkLocationRemote WorkLocation = "REMOTE"
)

func (l WorkLocation) Valid() bool {
	return l == WorkLocationOffice || l == WorkLocationRemote
}

// SessionType maps a claimed location to the ledger session kind.
func (l WorkLocation) SessionType() SessionType {
	if l == WorkLocationOffice {
		return SessionTypeOffice
	}
	return SessionTypeRemote
}

type SessionType string

const (
	SessionTypeOffice SessionType = "OFFICE_WORK"
	SessionTypeRemote SessionType = "REMOTE_WORK"
)

func (t SessionType) Valid() bool {
	return t == SessionTypeOffice || t == SessionTypeRemote
}

func (t SessionType) Location() WorkLocation {
	if t == SessionTypeOffice {
		return WorkLocationOffice
	}
	return WorkLocationRemote
}

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusLate    Status = "LATE"
	StatusAbsent  Status = "ABSENT"
)

// Attendance is the daily record of one user in one workspace. Date is the
// civil day in the workspace timezone, stored as midnight UTC.
type Attendance struct {
	ID            string
	UserID        string
	WorkspaceID   string
	Date          time.Time
	CheckIn       *time.Time
	CheckOut      *time.Time
	WorkLocation  WorkLocation
	Status        Status
	TotalMinutes  int
	OfficeMinutes int
	RemoteMinutes int
	Note          *string
	IPAddress     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a Attendance) IsCheckedIn() bool {
	return a.CheckIn != nil
}

func (a Attendance) IsCheckedOut() bool {
	return a.CheckOut != nil
}

// AppendNote adds a line to the record note.
func (a *Attendance) AppendNote(line string) {
	if a.Note == nil || *a.Note == "" {
		a.Note = &line
		return
	}
	joined := *a.Note + "\n" + line
	a.Note = &joined
}

// ApplyTotals derives the minute totals from the day's sessions. Only closed
// sessions count. A day without any tracked session falls back to the
// checkIn/checkOut delta attributed to the record's work location.
func (a *Attendance) ApplyTotals(sessions []WorkSession) {
	if len(sessions) == 0 {
		a.TotalMinutes, a.OfficeMinutes, a.RemoteMinutes = 0, 0, 0
		if a.CheckIn != nil && a.CheckOut != nil {
			minutes := DurationMinutes(*a.CheckIn, *a.CheckOut)
			a.TotalMinutes = minutes
			if a.WorkLocation == WorkLocationOffice {
				a.OfficeMinutes = minutes
			} else {
				a.RemoteMinutes = minutes
			}
		}
		return
	}

	totals := SumSessions(sessions)
	a.TotalMinutes = totals.Total
	a.OfficeMinutes = totals.Office
	a.RemoteMinutes = totals.Remote
}

// ApplyCorrection overwrites check-in and/or check-out with an approved
// correction. Minute totals are left alone; they stay derived from sessions.
func (a *Attendance) ApplyCorrection(requestType RequestType, at time.Time) error {
	checkIn, checkOut := a.CheckIn, a.CheckOut
	switch requestType {
	case RequestTypeCheckIn:
		checkIn = &at
	case RequestTypeCheckOut:
		checkOut = &at
	case RequestTypeBoth:
		checkIn = &at
		checkOut = &at
	default:
		return ErrInvalidRequestType
	}
	if checkIn != nil && checkOut != nil && checkOut.Before(*checkIn) {
		return ErrCheckOutBeforeCheckIn
	}
	a.CheckIn, a.CheckOut = checkIn, checkOut
	return nil
}

// WorkSession is one continuous stretch of work at one location.
type WorkSession struct {
	ID                 string
	AttendanceID       string
	UserID             string
	WorkspaceID        string
	SessionType        SessionType
	StartTime          time.Time
	EndTime            *time.Time
	DurationMinutes    *int
	IsVerified         bool
	VerificationMethod string
	WifiSSID           *string
	IPAddress          *string
	Latitude           *float64
	Longitude          *float64
	CreatedAt          time.Time
}

func (s WorkSession) IsOpen() bool {
	return s.EndTime == nil
}

// Close ends the session at the given instant. An end before the start is
// clamped to the start.
func (s *WorkSession) Close(at time.Time) {
	if at.Before(s.StartTime) {
		at = s.StartTime
	}
	minutes := DurationMinutes(s.StartTime, at)
	s.EndTime = &at
	s.DurationMinutes = &minutes
}

// ElapsedMinutes is the running length of an open session at now, or the
// stored duration of a closed one.
func (s WorkSession) ElapsedMinutes(now time.Time) int {
	if !s.IsOpen() {
		if s.DurationMinutes != nil {
			return *s.DurationMinutes
		}
		return DurationMinutes(s.StartTime, *s.EndTime)
	}
	return DurationMinutes(s.StartTime, now)
}

// DurationMinutes rounds the span to the nearest whole minute.
func DurationMinutes(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int(math.Round(float64(ms) / 60000))
}

type Totals struct {
	Total  int
	Office int
	Remote int
}

// SumSessions adds the durations of closed sessions by location.
func SumSessions(sessions []WorkSession) Totals {
	var t Totals
	for _, s := range sessions {
		if s.IsOpen() || s.DurationMinutes == nil {
			continue
		}
		d := *s.DurationMinutes
		t.Total += d
		if s.SessionType == SessionTypeOffice {
			t.Office += d
		} else {
			t.Remote += d
		}
	}
	return t
}

type RequestType string

const (
	RequestTypeCheckIn  RequestType = "CHECK_IN"
	RequestTypeCheckOut RequestType = "CHECK_OUT"
	RequestTypeBoth     RequestType = "BOTH"
)

type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "PENDING"
	ChangeRequestApproved ChangeRequestStatus = "APPROVED"
	ChangeRequestRejected ChangeRequestStatus = "REJECTED"
)

// ChangeRequest asks an admin to correct a recorded check-in or check-out.
type ChangeRequest struct {
	ID            string
	AttendanceID  string
	WorkspaceID   string
	UserID        string
	RequestType   RequestType
	RequestedTime time.Time
	OriginalTime  *time.Time
	Reason        string
	Status        ChangeRequestStatus
	ReviewedBy    *string
	ReviewedAt    *time.Time
	RejectReason  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c ChangeRequest) IsPending() bool {
	return c.Status == ChangeRequestPending
}

type ChangeRequestFilter struct {
	WorkspaceID  string
	UserID       *string
	AttendanceID *string
	Status       *ChangeRequestStatus
}

type PresenceStatus string

const (
	PresenceConfirmed PresenceStatus = "CONFIRMED"
	PresenceMissed    PresenceStatus = "MISSED"
)

// PresenceCheck is the marker written when a remote worker answers (or
// misses) a presence prompt. It has no effect on minutes or status.
type PresenceCheck struct {
	ID           string
	UserID       string
	WorkspaceID  string
	AttendanceID *string
	SessionID    *string
	Status       PresenceStatus
	CheckedAt    time.Time
}
