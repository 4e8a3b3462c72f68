package attendance

import (
	"errors"
	"strings"
)

// Attendance domain errors
var (
	// Check-in / session errors
	ErrAlreadyCheckedIn   = errors.New("you have already checked in today")
	ErrAlreadyCheckedOut  = errors.New("you have already checked out today")
	ErrNoActiveSession    = errors.New("no active work session, check-in required first")
	ErrNotCheckedOut      = errors.New("work is still in progress, check out before resuming")
	ErrSessionAlreadyOpen = errors.New("another work session was opened concurrently")
	ErrVerificationFailed = errors.New("attendance verification failed")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceExists   = errors.New("attendance record already exists for this day")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")

	// Change request errors
	ErrChangeRequestNotFound         = errors.New("change request not found")
	ErrChangeRequestPending          = errors.New("a pending change request already exists for this attendance")
	ErrChangeRequestAlreadyProcessed = errors.New("change request has already been approved or rejected")
	ErrInvalidRequestType            = errors.New("invalid change request type")
	ErrCheckOutBeforeCheckIn         = errors.New("check-out time cannot be before check-in time")
)

// Verification failure reasons.
const (
	ReasonOfficeIPBlocksRemote = "office-ip-blocks-remote"
	ReasonNotOfficeIP          = "not-office-ip"
	ReasonWifiRequiredNoMatch  = "wifi-required-no-match"
)

// VerificationError is a user-correctable rejection from the verification
// gate. Nothing is written when it is returned.
type VerificationError struct {
	Reason string
}

func NewVerificationError(reason string) *VerificationError {
	return &VerificationError{Reason: reason}
}

func (e *VerificationError) Error() string {
	return e.Reason
}

func (e *VerificationError) Unwrap() error {
	return ErrVerificationFailed
}

// Code renders the reason as an upper snake case error code.
func (e *VerificationError) Code() string {
	return strings.ToUpper(strings.ReplaceAll(e.Reason, "-", "_"))
}
