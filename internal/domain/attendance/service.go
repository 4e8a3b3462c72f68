package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	// Check-in / check-out
	CheckIn(ctx context.Context, req CheckInRequest) (CheckInResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)
	ResumeWork(ctx context.Context, req ResumeWorkRequest) (CheckInResponse, error)

	// Session ledger
	StartSession(ctx context.Context, req StartSessionRequest) (StartSessionResponse, error)
	EndSession(ctx context.Context, req EndSessionRequest) (EndSessionResponse, error)
	GetTodaySessions(ctx context.Context, workspaceID string) (TodaySessionsResponse, error)

	// Aggregation
	GetWeeklySummary(ctx context.Context, req WeeklySummaryRequest) (WeeklySummaryResponse, error)

	// Presence checks
	ConfirmPresence(ctx context.Context, req PresenceCheckRequest) (PresenceCheckResponse, error)
}

type ChangeRequestService interface {
	Submit(ctx context.Context, req SubmitChangeRequest) (ChangeRequestResponse, error)
	List(ctx context.Context, req ListChangeRequestsRequest) ([]ChangeRequestResponse, error)
	Get(ctx context.Context, id string) (ChangeRequestResponse, error)
	Review(ctx context.Context, req ReviewChangeRequest) (ChangeRequestResponse, error)
	Cancel(ctx context.Context, id string) error
}

// MaintenanceService is driven by background jobs rather than users.
type MaintenanceService interface {
	CloseStaleSessions(ctx context.Context, maxAge time.Duration) (int, error)
	MarkAbsences(ctx context.Context) (int, error)
}
