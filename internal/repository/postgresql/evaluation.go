package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/evaluation"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type evaluationRepository struct {
	db *database.DB
}

func NewEvaluationRepository(db *database.DB) evaluation.EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Upsert implements evaluation.EvaluationRepository. The original id and
// created_at survive a resubmission.
func (r *evaluationRepository) Upsert(ctx context.Context, e evaluation.WeeklyEvaluation) (evaluation.WeeklyEvaluation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO weekly_evaluations (
			id, workspace_id, employee_id, evaluator_id, year, week_number, week_start_date, week_end_date,
			project_quality, deadline_adherence, presentation, collaboration, self_initiative,
			total_score, feedback
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (workspace_id, employee_id, year, week_number) DO UPDATE SET
			evaluator_id = EXCLUDED.evaluator_id,
			week_start_date = EXCLUDED.week_start_date,
			week_end_date = EXCLUDED.week_end_date,
			project_quality = EXCLUDED.project_quality,
			deadline_adherence = EXCLUDED.deadline_adherence,
			presentation = EXCLUDED.presentation,
			collaboration = EXCLUDED.collaboration,
			self_initiative = EXCLUDED.self_initiative,
			total_score = EXCLUDED.total_score,
			feedback = EXCLUDED.feedback,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		e.ID, e.WorkspaceID, e.EmployeeID, e.EvaluatorID, e.Year, e.WeekNumber, e.WeekStartDate, e.WeekEndDate,
		e.Scores.ProjectQuality, e.Scores.DeadlineAdherence, e.Scores.Presentation, e.Scores.Collaboration, e.Scores.SelfInitiative,
		e.TotalScore, e.Feedback,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return evaluation.WeeklyEvaluation{}, fmt.Errorf("failed to upsert weekly evaluation: %w", err)
	}
	return e, nil
}

// List implements evaluation.EvaluationRepository.
func (r *evaluationRepository) List(ctx context.Context, filter evaluation.EvaluationFilter) ([]evaluation.WeeklyEvaluation, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"workspace_id = $1", "year = $2"}
	args := []interface{}{filter.WorkspaceID, filter.Year}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		whereClauses = append(whereClauses, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.WeekNumber != nil {
		args = append(args, *filter.WeekNumber)
		whereClauses = append(whereClauses, fmt.Sprintf("week_number = $%d", len(args)))
	}

	query := `
		SELECT id, workspace_id, employee_id, evaluator_id, year, week_number, week_start_date, week_end_date,
			   project_quality, deadline_adherence, presentation, collaboration, self_initiative,
			   total_score, feedback, created_at, updated_at
		FROM weekly_evaluations
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY week_number ASC, employee_id ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly evaluations: %w", err)
	}

	evals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (evaluation.WeeklyEvaluation, error) {
		var e evaluation.WeeklyEvaluation
		err := row.Scan(
			&e.ID, &e.WorkspaceID, &e.EmployeeID, &e.EvaluatorID, &e.Year, &e.WeekNumber, &e.WeekStartDate, &e.WeekEndDate,
			&e.Scores.ProjectQuality, &e.Scores.DeadlineAdherence, &e.Scores.Presentation, &e.Scores.Collaboration, &e.Scores.SelfInitiative,
			&e.TotalScore, &e.Feedback, &e.CreatedAt, &e.UpdatedAt,
		)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan weekly evaluations: %w", err)
	}
	return evals, nil
}

type evaluatorRepository struct {
	db *database.DB
}

func NewEvaluatorRepository(db *database.DB) evaluation.EvaluatorRepository {
	return &evaluatorRepository{db: db}
}

const evaluatorSelect = `
	SELECT e.workspace_id, e.user_id, COALESCE(m.name, ''), COALESCE(m.email, ''),
		   e.is_active, e.added_by, e.created_at, e.updated_at
	FROM evaluators e
	LEFT JOIN workspace_members m ON m.workspace_id = e.workspace_id AND m.user_id = e.user_id`

func scanEvaluator(row pgx.Row) (evaluation.Evaluator, error) {
	var ev evaluation.Evaluator
	err := row.Scan(&ev.WorkspaceID, &ev.UserID, &ev.Name, &ev.Email, &ev.IsActive, &ev.AddedBy, &ev.CreatedAt, &ev.UpdatedAt)
	return ev, err
}

// List implements evaluation.EvaluatorRepository.
func (r *evaluatorRepository) List(ctx context.Context, workspaceID string) ([]evaluation.Evaluator, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, evaluatorSelect+` WHERE e.workspace_id = $1 ORDER BY e.created_at ASC`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluators: %w", err)
	}
	defer rows.Close()

	var evaluators []evaluation.Evaluator
	for rows.Next() {
		ev, err := scanEvaluator(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluator: %w", err)
		}
		evaluators = append(evaluators, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluators: %w", err)
	}
	return evaluators, nil
}

// Get implements evaluation.EvaluatorRepository.
func (r *evaluatorRepository) Get(ctx context.Context, workspaceID, userID string) (evaluation.Evaluator, error) {
	q := GetQuerier(ctx, r.db)

	ev, err := scanEvaluator(q.QueryRow(ctx, evaluatorSelect+` WHERE e.workspace_id = $1 AND e.user_id = $2`, workspaceID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return evaluation.Evaluator{}, evaluation.ErrEvaluatorNotFound
		}
		return evaluation.Evaluator{}, fmt.Errorf("failed to get evaluator: %w", err)
	}
	return ev, nil
}

// Upsert implements evaluation.EvaluatorRepository. Re-adding a removed
// evaluator reactivates the existing row.
func (r *evaluatorRepository) Upsert(ctx context.Context, ev evaluation.Evaluator) (evaluation.Evaluator, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO evaluators (workspace_id, user_id, is_active, added_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			added_by = EXCLUDED.added_by,
			updated_at = NOW()
		RETURNING created_at, updated_at`,
		ev.WorkspaceID, ev.UserID, ev.IsActive, ev.AddedBy,
	).Scan(&ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return evaluation.Evaluator{}, fmt.Errorf("failed to upsert evaluator: %w", err)
	}
	return ev, nil
}

// Deactivate implements evaluation.EvaluatorRepository.
func (r *evaluatorRepository) Deactivate(ctx context.Context, workspaceID, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE evaluators SET is_active = FALSE, updated_at = NOW()
		WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate evaluator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return evaluation.ErrEvaluatorNotFound
	}
	return nil
}
