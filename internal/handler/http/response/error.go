package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/evaluation"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var verificationErr *attendance.VerificationError
	if errors.As(err, &verificationErr) {
		ForbiddenWithCode(w, verificationErr.Code(), verificationErr.Error())
		return
	}

	switch {
	case errors.Is(err, jwt.ErrMissingUser):
		Unauthorized(w, "Authentication required")

	// Workspace membership
	case errors.Is(err, workspace.ErrNotMember),
		errors.Is(err, workspace.ErrAdminPrivilegeRequired),
		errors.Is(err, attendance.ErrUnauthorized),
		errors.Is(err, evaluation.ErrNotEvaluator):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrVerificationFailed):
		ForbiddenWithCode(w, "VERIFICATION_FAILED", err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "ALREADY_CHECKED_IN", err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "ALREADY_CHECKED_OUT", err.Error())
	case errors.Is(err, attendance.ErrNotCheckedOut):
		Conflict(w, "NOT_CHECKED_OUT", err.Error())
	case errors.Is(err, attendance.ErrSessionAlreadyOpen),
		errors.Is(err, attendance.ErrAttendanceExists):
		Conflict(w, "CONFLICT", err.Error())
	case errors.Is(err, attendance.ErrNoActiveSession):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Change requests
	case errors.Is(err, attendance.ErrChangeRequestNotFound):
		NotFound(w, "Change request not found")
	case errors.Is(err, attendance.ErrChangeRequestPending):
		Conflict(w, "CHANGE_REQUEST_PENDING", err.Error())
	case errors.Is(err, attendance.ErrChangeRequestAlreadyProcessed):
		Conflict(w, "CHANGE_REQUEST_PROCESSED", err.Error())
	case errors.Is(err, attendance.ErrInvalidRequestType),
		errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		BadRequest(w, err.Error(), nil)

	// Work settings
	case errors.Is(err, worksettings.ErrSettingsNotFound):
		NotFound(w, "Work settings not found")
	case errors.Is(err, worksettings.ErrWifiNetworkNotFound):
		NotFound(w, "WiFi network not found")
	case errors.Is(err, worksettings.ErrWifiNetworkExists):
		Conflict(w, "WIFI_NETWORK_EXISTS", err.Error())

	// Evaluation
	case errors.Is(err, evaluation.ErrEvaluatorNotFound):
		NotFound(w, "Evaluator not found")
	case errors.Is(err, evaluation.ErrEvaluationNotFound):
		NotFound(w, "Evaluation not found")
	case errors.Is(err, evaluation.ErrEmployeeNotMember):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
