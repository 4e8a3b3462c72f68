package evaluation

import (
	"time"
	"unicode/utf8"

	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
)

// ========================================
// WEEKLY EVALUATION DTOs
// ========================================

const maxFeedbackLength = 2000

type SubmitWeeklyRequest struct {
	WorkspaceID       string  `json:"workspaceId" validate:"required"`
	EmployeeID        string  `json:"employeeId" validate:"required"`
	Year              int     `json:"year" validate:"gte=2020,lte=2100"`
	WeekNumber        int     `json:"weekNumber" validate:"gte=1,lte=53"`
	ProjectQuality    int     `json:"projectQuality"`
	DeadlineAdherence int     `json:"deadlineAdherence"`
	Presentation      int     `json:"presentation"`
	Collaboration     int     `json:"collaboration"`
	SelfInitiative    int     `json:"selfInitiative"`
	Feedback          *string `json:"feedback"`
}

// Validate checks identity and period fields. Scores are clamped, never
// rejected.
func (r *SubmitWeeklyRequest) Validate() error {
	errs := validator.Struct(r)

	if r.WeekNumber >= 1 && r.WeekNumber <= 53 && r.Year >= 2020 && r.Year <= 2100 &&
		!period.ValidWeek(r.Year, r.WeekNumber) {
		errs.Add("weekNumber", "weekNumber does not exist in this ISO year")
	}

	if r.Feedback != nil && utf8.RuneCountInString(*r.Feedback) > maxFeedbackLength {
		errs.Add("feedback", "feedback must not exceed 2000 characters")
	}

	return errs.Err()
}

func (r SubmitWeeklyRequest) Scores() Scores {
	return Scores{
		ProjectQuality:    r.ProjectQuality,
		DeadlineAdherence: r.DeadlineAdherence,
		Presentation:      r.Presentation,
		Collaboration:     r.Collaboration,
		SelfInitiative:    r.SelfInitiative,
	}
}

type WeeklyEvaluationResponse struct {
	ID                string    `json:"id"`
	WorkspaceID       string    `json:"workspaceId"`
	EmployeeID        string    `json:"employeeId"`
	EmployeeName      string    `json:"employeeName,omitempty"`
	EvaluatorID       string    `json:"evaluatorId"`
	Year              int       `json:"year"`
	WeekNumber        int       `json:"weekNumber"`
	WeekStartDate     string    `json:"weekStartDate"`
	WeekEndDate       string    `json:"weekEndDate"`
	ProjectQuality    int       `json:"projectQuality"`
	DeadlineAdherence int       `json:"deadlineAdherence"`
	Presentation      int       `json:"presentation"`
	Collaboration     int       `json:"collaboration"`
	SelfInitiative    int       `json:"selfInitiative"`
	TotalScore        int       `json:"totalScore"`
	Feedback          *string   `json:"feedback"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func NewWeeklyEvaluationResponse(e WeeklyEvaluation) WeeklyEvaluationResponse {
	return WeeklyEvaluationResponse{
		ID:                e.ID,
		WorkspaceID:       e.WorkspaceID,
		EmployeeID:        e.EmployeeID,
		EvaluatorID:       e.EvaluatorID,
		Year:              e.Year,
		WeekNumber:        e.WeekNumber,
		WeekStartDate:     period.FormatDate(e.WeekStartDate),
		WeekEndDate:       period.FormatDate(e.WeekEndDate),
		ProjectQuality:    e.Scores.ProjectQuality,
		DeadlineAdherence: e.Scores.DeadlineAdherence,
		Presentation:      e.Scores.Presentation,
		Collaboration:     e.Scores.Collaboration,
		SelfInitiative:    e.Scores.SelfInitiative,
		TotalScore:        e.TotalScore,
		Feedback:          e.Feedback,
		UpdatedAt:         e.UpdatedAt,
	}
}

// ========================================
// LIST DTOs
// ========================================

const (
	ListTypeWeekly  = "weekly"
	ListTypeMonthly = "monthly"
	ListTypeYearly  = "yearly"
)

type ListEvaluationsRequest struct {
	WorkspaceID string `validate:"required"`
	Type        string `validate:"omitempty,oneof=weekly monthly yearly"`
	Year        int    `validate:"omitempty,gte=2020,lte=2100"`
	Week        *int   `validate:"omitempty,gte=1,lte=53"`
	Month       *int   `validate:"omitempty,gte=1,lte=12"`
	EmployeeID  string
}

func (r *ListEvaluationsRequest) Validate() error {
	if r.Type == "" {
		r.Type = ListTypeWeekly
	}
	return validator.Struct(r).Err()
}

type WeekScore struct {
	WeekNumber int `json:"weekNumber"`
	TotalScore int `json:"totalScore"`
}

type MonthlySummary struct {
	EmployeeID      string      `json:"employeeId"`
	EmployeeName    string      `json:"employeeName"`
	Year            int         `json:"year"`
	Month           int         `json:"month"`
	AverageScore    float64     `json:"averageScore"`
	FlexWorkTier    Tier        `json:"flexWorkTier"`
	TierLabel       string      `json:"tierLabel"`
	EvaluationCount int         `json:"evaluationCount"`
	Weeks           []WeekScore `json:"weeks"`
}

type YearlySummary struct {
	EmployeeID            string     `json:"employeeId"`
	EmployeeName          string     `json:"employeeName"`
	Year                  int        `json:"year"`
	AverageScore          float64    `json:"averageScore"`
	FlexWorkTier          Tier       `json:"flexWorkTier"`
	TierLabel             string     `json:"tierLabel"`
	EvaluationCount       int        `json:"evaluationCount"`
	Q1Average             *float64   `json:"q1Average"`
	Q2Average             *float64   `json:"q2Average"`
	Q3Average             *float64   `json:"q3Average"`
	Q4Average             *float64   `json:"q4Average"`
	MonthlyScores         []*float64 `json:"monthlyScores"`
	HighestMonth          *int       `json:"highestMonth"`
	LowestMonth           *int       `json:"lowestMonth"`
	SuggestedRaisePercent *int       `json:"suggestedRaisePercent"`
}

type ListEvaluationsResponse struct {
	Type    string                     `json:"type"`
	Year    int                        `json:"year"`
	Weekly  []WeeklyEvaluationResponse `json:"weekly,omitempty"`
	Monthly []MonthlySummary           `json:"monthly,omitempty"`
	Yearly  []YearlySummary            `json:"yearly,omitempty"`
}

// ========================================
// EVALUATOR DTOs
// ========================================

type AddEvaluatorRequest struct {
	WorkspaceID string `json:"workspaceId" validate:"required"`
	UserID      string `json:"userId" validate:"required"`
}

func (r *AddEvaluatorRequest) Validate() error {
	return validator.Struct(r).Err()
}

type EvaluatorResponse struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	AddedBy   string    `json:"addedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewEvaluatorResponse(e Evaluator) EvaluatorResponse {
	return EvaluatorResponse{
		UserID:    e.UserID,
		Name:      e.Name,
		Email:     e.Email,
		IsActive:  e.IsActive,
		AddedBy:   e.AddedBy,
		CreatedAt: e.CreatedAt,
	}
}

type EvaluatorListResponse struct {
	Evaluators  []EvaluatorResponse `json:"evaluators"`
	IsEvaluator bool                `json:"isEvaluator"`
	IsAdmin     bool                `json:"isAdmin"`
}
