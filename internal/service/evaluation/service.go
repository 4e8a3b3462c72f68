package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/evaluation"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type EvaluationServiceImpl struct {
	evaluationRepo evaluation.EvaluationRepository
	evaluatorRepo  evaluation.EvaluatorRepository
	memberRepo     workspace.MemberRepository
	now            func() time.Time
}

func NewEvaluationService(
	evaluationRepo evaluation.EvaluationRepository,
	evaluatorRepo evaluation.EvaluatorRepository,
	memberRepo workspace.MemberRepository,
) evaluation.EvaluationService {
	return &EvaluationServiceImpl{
		evaluationRepo: evaluationRepo,
		evaluatorRepo:  evaluatorRepo,
		memberRepo:     memberRepo,
		now:            time.Now,
	}
}

// caller resolves the authenticated user's membership and evaluator status.
type caller struct {
	member      workspace.Member
	isEvaluator bool
}

func (s *EvaluationServiceImpl) resolveCaller(ctx context.Context, workspaceID string) (caller, error) {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return caller{}, err
	}

	member, err := s.memberRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return caller{}, err
	}

	ev, err := s.evaluatorRepo.Get(ctx, workspaceID, userID)
	switch {
	case errors.Is(err, evaluation.ErrEvaluatorNotFound):
		return caller{member: member}, nil
	case err != nil:
		return caller{}, fmt.Errorf("failed to load evaluator: %w", err)
	}
	return caller{member: member, isEvaluator: ev.IsActive}, nil
}

func (s *EvaluationServiceImpl) SubmitWeekly(ctx context.Context, req evaluation.SubmitWeeklyRequest) (evaluation.WeeklyEvaluationResponse, error) {
	if err := req.Validate(); err != nil {
		return evaluation.WeeklyEvaluationResponse{}, err
	}

	c, err := s.resolveCaller(ctx, req.WorkspaceID)
	if err != nil {
		return evaluation.WeeklyEvaluationResponse{}, err
	}
	if !c.isEvaluator {
		return evaluation.WeeklyEvaluationResponse{}, evaluation.ErrNotEvaluator
	}

	employee, err := s.memberRepo.GetMember(ctx, req.WorkspaceID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, workspace.ErrNotMember) {
			return evaluation.WeeklyEvaluationResponse{}, evaluation.ErrEmployeeNotMember
		}
		return evaluation.WeeklyEvaluationResponse{}, fmt.Errorf("failed to load employee: %w", err)
	}

	scores := req.Scores().Clamp()
	start, end := period.WeekBounds(req.Year, req.WeekNumber)

	var feedback *string
	if req.Feedback != nil {
		if trimmed := strings.TrimSpace(*req.Feedback); trimmed != "" {
			feedback = &trimmed
		}
	}

	now := s.now()
	saved, err := s.evaluationRepo.Upsert(ctx, evaluation.WeeklyEvaluation{
		ID:            uuid.Must(uuid.NewV7()).String(),
		WorkspaceID:   req.WorkspaceID,
		EmployeeID:    req.EmployeeID,
		EvaluatorID:   c.member.UserID,
		Year:          req.Year,
		WeekNumber:    req.WeekNumber,
		WeekStartDate: start,
		WeekEndDate:   end,
		Scores:        scores,
		TotalScore:    scores.Total(),
		Feedback:      feedback,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return evaluation.WeeklyEvaluationResponse{}, fmt.Errorf("failed to save evaluation: %w", err)
	}

	slog.Info("weekly evaluation saved",
		"workspace_id", req.WorkspaceID,
		"employee_id", req.EmployeeID,
		"year", req.Year,
		"week", req.WeekNumber,
		"total_score", saved.TotalScore,
	)

	resp := evaluation.NewWeeklyEvaluationResponse(saved)
	resp.EmployeeName = employee.Name
	return resp, nil
}

func (s *EvaluationServiceImpl) List(ctx context.Context, req evaluation.ListEvaluationsRequest) (evaluation.ListEvaluationsResponse, error) {
	if err := req.Validate(); err != nil {
		return evaluation.ListEvaluationsResponse{}, err
	}
	if req.Year == 0 {
		req.Year, _ = period.WeekOf(s.now())
	}

	c, err := s.resolveCaller(ctx, req.WorkspaceID)
	if err != nil {
		return evaluation.ListEvaluationsResponse{}, err
	}

	filter := evaluation.EvaluationFilter{WorkspaceID: req.WorkspaceID, Year: req.Year}
	switch {
	case !c.member.IsAdmin() && !c.isEvaluator:
		// Everyone else only sees their own scores.
		own := c.member.UserID
		filter.EmployeeID = &own
	case req.EmployeeID != "":
		filter.EmployeeID = &req.EmployeeID
	}
	if req.Type == evaluation.ListTypeWeekly {
		filter.WeekNumber = req.Week
	}

	var (
		evals   []evaluation.WeeklyEvaluation
		members []workspace.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		evals, err = s.evaluationRepo.List(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list evaluations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		members, err = s.memberRepo.ListMembers(gctx, req.WorkspaceID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return evaluation.ListEvaluationsResponse{}, err
	}

	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.Name
	}

	resp := evaluation.ListEvaluationsResponse{Type: req.Type, Year: req.Year}
	switch req.Type {
	case evaluation.ListTypeMonthly:
		resp.Monthly = BuildMonthlySummaries(evals, req.Year, req.Month, names)
		if resp.Monthly == nil {
			resp.Monthly = []evaluation.MonthlySummary{}
		}
	case evaluation.ListTypeYearly:
		resp.Yearly = BuildYearlySummaries(evals, req.Year, names)
		if resp.Yearly == nil {
			resp.Yearly = []evaluation.YearlySummary{}
		}
	default:
		resp.Weekly = make([]evaluation.WeeklyEvaluationResponse, 0, len(evals))
		for _, e := range evals {
			r := evaluation.NewWeeklyEvaluationResponse(e)
			r.EmployeeName = names[e.EmployeeID]
			resp.Weekly = append(resp.Weekly, r)
		}
	}
	return resp, nil
}

func (s *EvaluationServiceImpl) ListEvaluators(ctx context.Context, workspaceID string) (evaluation.EvaluatorListResponse, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return evaluation.EvaluatorListResponse{}, errWorkspaceRequired()
	}

	c, err := s.resolveCaller(ctx, workspaceID)
	if err != nil {
		return evaluation.EvaluatorListResponse{}, err
	}

	evaluators, err := s.evaluatorRepo.List(ctx, workspaceID)
	if err != nil {
		return evaluation.EvaluatorListResponse{}, fmt.Errorf("failed to list evaluators: %w", err)
	}

	resp := evaluation.EvaluatorListResponse{
		Evaluators:  make([]evaluation.EvaluatorResponse, 0, len(evaluators)),
		IsEvaluator: c.isEvaluator,
		IsAdmin:     c.member.IsAdmin(),
	}
	for _, e := range evaluators {
		if e.IsActive {
			resp.Evaluators = append(resp.Evaluators, evaluation.NewEvaluatorResponse(e))
		}
	}
	return resp, nil
}

func (s *EvaluationServiceImpl) AddEvaluator(ctx context.Context, req evaluation.AddEvaluatorRequest) (evaluation.EvaluatorResponse, error) {
	if err := req.Validate(); err != nil {
		return evaluation.EvaluatorResponse{}, err
	}

	c, err := s.resolveCaller(ctx, req.WorkspaceID)
	if err != nil {
		return evaluation.EvaluatorResponse{}, err
	}
	if !c.member.IsAdmin() {
		return evaluation.EvaluatorResponse{}, workspace.ErrAdminPrivilegeRequired
	}

	target, err := s.memberRepo.GetMember(ctx, req.WorkspaceID, req.UserID)
	if err != nil {
		if errors.Is(err, workspace.ErrNotMember) {
			return evaluation.EvaluatorResponse{}, evaluation.ErrEmployeeNotMember
		}
		return evaluation.EvaluatorResponse{}, fmt.Errorf("failed to load member: %w", err)
	}

	now := s.now()
	saved, err := s.evaluatorRepo.Upsert(ctx, evaluation.Evaluator{
		WorkspaceID: req.WorkspaceID,
		UserID:      target.UserID,
		Name:        target.Name,
		Email:       target.Email,
		IsActive:    true,
		AddedBy:     c.member.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return evaluation.EvaluatorResponse{}, fmt.Errorf("failed to save evaluator: %w", err)
	}

	slog.Info("evaluator added", "workspace_id", req.WorkspaceID, "user_id", target.UserID, "added_by", c.member.UserID)
	return evaluation.NewEvaluatorResponse(saved), nil
}

func (s *EvaluationServiceImpl) RemoveEvaluator(ctx context.Context, workspaceID, userID string) error {
	if strings.TrimSpace(workspaceID) == "" {
		return errWorkspaceRequired()
	}

	c, err := s.resolveCaller(ctx, workspaceID)
	if err != nil {
		return err
	}
	if !c.member.IsAdmin() {
		return workspace.ErrAdminPrivilegeRequired
	}

	if err := s.evaluatorRepo.Deactivate(ctx, workspaceID, userID); err != nil {
		return err
	}

	slog.Info("evaluator removed", "workspace_id", workspaceID, "user_id", userID, "removed_by", c.member.UserID)
	return nil
}

func errWorkspaceRequired() error {
	var errs validator.ValidationErrors
	errs.Add("workspaceId", "workspaceId is required")
	return errs.Err()
}
