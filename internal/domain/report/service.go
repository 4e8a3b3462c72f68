package report

import "context"

// ReportService builds read-only views over a workspace's attendance for
// admins, owners and HR.
type ReportService interface {
	GetTeamBoard(ctx context.Context, workspaceID string) (TeamBoardResponse, error)
	ExportMonthlyAttendance(ctx context.Context, req MonthlyExportRequest) (ExportFile, error)
}
