package evaluation

import "context"

type EvaluationService interface {
	SubmitWeekly(ctx context.Context, req SubmitWeeklyRequest) (WeeklyEvaluationResponse, error)
	List(ctx context.Context, req ListEvaluationsRequest) (ListEvaluationsResponse, error)

	// Evaluator allow-list
	ListEvaluators(ctx context.Context, workspaceID string) (EvaluatorListResponse, error)
	AddEvaluator(ctx context.Context, req AddEvaluatorRequest) (EvaluatorResponse, error)
	RemoveEvaluator(ctx context.Context, workspaceID, userID string) error
}
