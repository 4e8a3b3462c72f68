package http

import (
	"net/http"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/evaluation"
	"github.com/codeb-platform/codeb-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EvaluationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	SubmitWeekly(w http.ResponseWriter, r *http.Request)
	ListEvaluators(w http.ResponseWriter, r *http.Request)
	AddEvaluator(w http.ResponseWriter, r *http.Request)
	RemoveEvaluator(w http.ResponseWriter, r *http.Request)
}

type evaluationHandlerImpl struct {
	evaluationService evaluation.EvaluationService
}

func NewEvaluationHandler(evaluationService evaluation.EvaluationService) EvaluationHandler {
	return &evaluationHandlerImpl{evaluationService: evaluationService}
}

// List implements EvaluationHandler. type selects weekly (default), monthly
// or yearly figures.
func (h *evaluationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := evaluation.ListEvaluationsRequest{
		WorkspaceID: query.Get("workspaceId"),
		Type:        query.Get("type"),
		EmployeeID:  query.Get("employeeId"),
	}

	year, ok := queryInt(r, "year")
	if !ok {
		response.BadRequest(w, "year must be a number", nil)
		return
	}
	if year != nil {
		req.Year = *year
	}
	if req.Week, ok = queryInt(r, "week"); !ok {
		response.BadRequest(w, "week must be a number", nil)
		return
	}
	if req.Month, ok = queryInt(r, "month"); !ok {
		response.BadRequest(w, "month must be a number", nil)
		return
	}

	result, err := h.evaluationService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SubmitWeekly implements EvaluationHandler.
func (h *evaluationHandlerImpl) SubmitWeekly(w http.ResponseWriter, r *http.Request) {
	var req evaluation.SubmitWeeklyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.evaluationService.SubmitWeekly(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Weekly evaluation saved", result)
}

// ListEvaluators implements EvaluationHandler.
func (h *evaluationHandlerImpl) ListEvaluators(w http.ResponseWriter, r *http.Request) {
	result, err := h.evaluationService.ListEvaluators(r.Context(), r.URL.Query().Get("workspaceId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AddEvaluator implements EvaluationHandler.
func (h *evaluationHandlerImpl) AddEvaluator(w http.ResponseWriter, r *http.Request) {
	var req evaluation.AddEvaluatorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.evaluationService.AddEvaluator(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Evaluator added", result)
}

// RemoveEvaluator implements EvaluationHandler.
func (h *evaluationHandlerImpl) RemoveEvaluator(w http.ResponseWriter, r *http.Request) {
	err := h.evaluationService.RemoveEvaluator(r.Context(), r.URL.Query().Get("workspaceId"), chi.URLParam(r, "userId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Evaluator removed", nil)
}
