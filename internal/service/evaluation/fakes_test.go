package evaluation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/evaluation"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
)

type fakeEvaluationRepo struct {
	mu    sync.Mutex
	evals map[string]evaluation.WeeklyEvaluation
}

func newFakeEvaluationRepo() *fakeEvaluationRepo {
	return &fakeEvaluationRepo{evals: map[string]evaluation.WeeklyEvaluation{}}
}

func evalKey(e evaluation.WeeklyEvaluation) string {
	return fmt.Sprintf("%s/%s/%d/%d", e.WorkspaceID, e.EmployeeID, e.Year, e.WeekNumber)
}

func (r *fakeEvaluationRepo) Upsert(_ context.Context, e evaluation.WeeklyEvaluation) (evaluation.WeeklyEvaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := evalKey(e)
	if existing, ok := r.evals[key]; ok {
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
	}
	r.evals[key] = e
	return e, nil
}

func (r *fakeEvaluationRepo) List(_ context.Context, f evaluation.EvaluationFilter) ([]evaluation.WeeklyEvaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []evaluation.WeeklyEvaluation
	for _, e := range r.evals {
		if e.WorkspaceID != f.WorkspaceID || e.Year != f.Year {
			continue
		}
		if f.EmployeeID != nil && e.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.WeekNumber != nil && e.WeekNumber != *f.WeekNumber {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return evalKey(out[i]) < evalKey(out[j]) })
	return out, nil
}

type fakeEvaluatorRepo struct {
	mu         sync.Mutex
	evaluators map[string]evaluation.Evaluator
}

func newFakeEvaluatorRepo() *fakeEvaluatorRepo {
	return &fakeEvaluatorRepo{evaluators: map[string]evaluation.Evaluator{}}
}

func (r *fakeEvaluatorRepo) List(_ context.Context, workspaceID string) ([]evaluation.Evaluator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []evaluation.Evaluator
	for _, e := range r.evaluators {
		if e.WorkspaceID == workspaceID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *fakeEvaluatorRepo) Get(_ context.Context, workspaceID, userID string) (evaluation.Evaluator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.evaluators[workspaceID+"/"+userID]
	if !ok {
		return evaluation.Evaluator{}, evaluation.ErrEvaluatorNotFound
	}
	return e, nil
}

func (r *fakeEvaluatorRepo) Upsert(_ context.Context, e evaluation.Evaluator) (evaluation.Evaluator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[e.WorkspaceID+"/"+e.UserID] = e
	return e, nil
}

func (r *fakeEvaluatorRepo) Deactivate(_ context.Context, workspaceID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := workspaceID + "/" + userID
	e, ok := r.evaluators[key]
	if !ok {
		return evaluation.ErrEvaluatorNotFound
	}
	e.IsActive = false
	r.evaluators[key] = e
	return nil
}

type fakeMemberRepo struct {
	members []workspace.Member
}

func (r *fakeMemberRepo) GetMember(_ context.Context, workspaceID, userID string) (workspace.Member, error) {
	for _, m := range r.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return m, nil
		}
	}
	return workspace.Member{}, workspace.ErrNotMember
}

func (r *fakeMemberRepo) ListMembers(_ context.Context, workspaceID string) ([]workspace.Member, error) {
	var out []workspace.Member
	for _, m := range r.members {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) ListWorkspaceIDs(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, m := range r.members {
		if !seen[m.WorkspaceID] {
			seen[m.WorkspaceID] = true
			out = append(out, m.WorkspaceID)
		}
	}
	return out, nil
}
