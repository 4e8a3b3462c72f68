package http

import (
	"net/http"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/report"
	"github.com/codeb-platform/codeb-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	TeamBoard(w http.ResponseWriter, r *http.Request)
	ExportMonthly(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

// TeamBoard implements ReportHandler.
func (h *reportHandlerImpl) TeamBoard(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GetTeamBoard(r.Context(), r.URL.Query().Get("workspaceId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthly implements ReportHandler.
func (h *reportHandlerImpl) ExportMonthly(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	file, err := h.reportService.ExportMonthlyAttendance(r.Context(), report.MonthlyExportRequest{
		WorkspaceID: query.Get("workspaceId"),
		Month:       query.Get("month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}
