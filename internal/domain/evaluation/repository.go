package evaluation

import "context"

type EvaluationRepository interface {
	// Upsert writes by (workspace, employee, year, week); a resubmission
	// overwrites scores and evaluator.
	Upsert(ctx context.Context, e WeeklyEvaluation) (WeeklyEvaluation, error)
	List(ctx context.Context, filter EvaluationFilter) ([]WeeklyEvaluation, error)
}

type EvaluatorRepository interface {
	List(ctx context.Context, workspaceID string) ([]Evaluator, error)
	// Get returns ErrEvaluatorNotFound when the user was never designated.
	Get(ctx context.Context, workspaceID, userID string) (Evaluator, error)
	Upsert(ctx context.Context, e Evaluator) (Evaluator, error)
	Deactivate(ctx context.Context, workspaceID, userID string) error
}
