package http

import (
	"net/http"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetTodaySessions(w http.ResponseWriter, r *http.Request)
	StartSession(w http.ResponseWriter, r *http.Request)
	EndSession(w http.ResponseWriter, r *http.Request)
	GetWeeklySummary(w http.ResponseWriter, r *http.Request)
	ConfirmPresence(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// CheckIn implements AttendanceHandler. isResume=true on a checked-out day
// resumes work instead of failing.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ObservedIP = clientIP(r)

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckOutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// GetTodaySessions implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetTodaySessions(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetTodaySessions(r.Context(), r.URL.Query().Get("workspaceId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// StartSession implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartSession(w http.ResponseWriter, r *http.Request) {
	var req attendance.StartSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ObservedIP = clientIP(r)

	result, err := h.attendanceService.StartSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Work session started", result)
}

// EndSession implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndSession(w http.ResponseWriter, r *http.Request) {
	var req attendance.EndSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.EndSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work session ended", result)
}

// GetWeeklySummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	req := attendance.WeeklySummaryRequest{
		WorkspaceID: r.URL.Query().Get("workspaceId"),
	}
	weeks, ok := queryInt(r, "weeks")
	if !ok {
		response.BadRequest(w, "weeks must be a number", nil)
		return
	}
	if weeks != nil {
		req.Weeks = *weeks
	}

	result, err := h.attendanceService.GetWeeklySummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ConfirmPresence implements AttendanceHandler.
func (h *attendanceHandlerImpl) ConfirmPresence(w http.ResponseWriter, r *http.Request) {
	var req attendance.PresenceCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.ConfirmPresence(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
