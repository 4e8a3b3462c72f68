package evaluation

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinCriterionScore = 0
	MaxCriterionScore = 20
)

// Tier is the flexible-work tier derived from an average score.
type Tier string

const (
	TierFullFlex Tier = "FULL_FLEX"
	TierStandard Tier = "STANDARD"
)

// TierThreshold is inclusive: an average of exactly 80 earns FULL_FLEX.
var TierThreshold = decimal.NewFromInt(80)

// TierFor classifies an exact average score.
func TierFor(average decimal.Decimal) Tier {
	if average.GreaterThanOrEqual(TierThreshold) {
		return TierFullFlex
	}
	return TierStandard
}

// Label is the name shown to Korean users.
func (t Tier) Label() string {
	if t == TierFullFlex {
		return "자유"
	}
	return "집중케어"
}

// Scores are the five weekly criteria.
type Scores struct {
	ProjectQuality    int
	DeadlineAdherence int
	Presentation      int
	Collaboration     int
	SelfInitiative    int
}

func clampScore(v int) int {
	if v < MinCriterionScore {
		return MinCriterionScore
	}
	if v > MaxCriterionScore {
		return MaxCriterionScore
	}
	return v
}

// Clamp forces every criterion into [0, 20].
func (s Scores) Clamp() Scores {
	return Scores{
		ProjectQuality:    clampScore(s.ProjectQuality),
		DeadlineAdherence: clampScore(s.DeadlineAdherence),
		Presentation:      clampScore(s.Presentation),
		Collaboration:     clampScore(s.Collaboration),
		SelfInitiative:    clampScore(s.SelfInitiative),
	}
}

func (s Scores) Total() int {
	return s.ProjectQuality + s.DeadlineAdherence + s.Presentation + s.Collaboration + s.SelfInitiative
}

type WeeklyEvaluation struct {
	ID            string
	WorkspaceID   string
	EmployeeID    string
	EvaluatorID   string
	Year          int
	WeekNumber    int
	WeekStartDate time.Time
	WeekEndDate   time.Time
	Scores        Scores
	TotalScore    int
	Feedback      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type EvaluationFilter struct {
	WorkspaceID string
	EmployeeID  *string
	Year        int
	WeekNumber  *int
}

type Evaluator struct {
	WorkspaceID string
	UserID      string
	Name        string
	Email       string
	IsActive    bool
	AddedBy     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
