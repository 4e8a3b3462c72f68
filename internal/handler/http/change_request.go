package http

import (
	"net/http"
	"strings"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ChangeRequestHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type changeRequestHandlerImpl struct {
	changeRequestService attendance.ChangeRequestService
}

func NewChangeRequestHandler(changeRequestService attendance.ChangeRequestService) ChangeRequestHandler {
	return &changeRequestHandlerImpl{
		changeRequestService: changeRequestService,
	}
}

// List implements ChangeRequestHandler. Admins see the whole workspace,
// everyone else only their own requests.
func (h *changeRequestHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := attendance.ListChangeRequestsRequest{
		WorkspaceID:  query.Get("workspaceId"),
		Status:       query.Get("status"),
		AttendanceID: query.Get("attendanceId"),
	}

	result, err := h.changeRequestService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{Total: len(result)})
}

// Submit implements ChangeRequestHandler.
func (h *changeRequestHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req attendance.SubmitChangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.changeRequestService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Change request submitted", result)
}

// Get implements ChangeRequestHandler.
func (h *changeRequestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.changeRequestService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Review implements ChangeRequestHandler.
func (h *changeRequestHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	var req attendance.ReviewChangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.changeRequestService.Review(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Change request "+strings.ToLower(string(result.Status)), result)
}

// Cancel implements ChangeRequestHandler.
func (h *changeRequestHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.changeRequestService.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Change request cancelled", nil)
}
