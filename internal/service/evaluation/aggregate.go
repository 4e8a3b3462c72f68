package evaluation

import (
	"sort"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/evaluation"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

const scorePlaces = 2

// Raise suggestion bands, applied to the best quarterly average.
var (
	raiseHighThreshold = decimal.NewFromInt(88)
	raiseMidThreshold  = decimal.NewFromInt(83)
)

const (
	raiseHighPercent = 10
	raiseMidPercent  = 7
)

// mean averages whatever values exist. ok is false for an empty input.
func mean(values []decimal.Decimal) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	return decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values)))), true
}

func toFloat(d decimal.Decimal) float64 {
	return d.Round(scorePlaces).InexactFloat64()
}

func floatPtr(d decimal.Decimal) *float64 {
	f := toFloat(d)
	return &f
}

// monthBucket collects the weekly evaluations assigned to one month.
type monthBucket struct {
	weeks []evaluation.WeeklyEvaluation
}

func (b monthBucket) average() (decimal.Decimal, bool) {
	totals := make([]decimal.Decimal, 0, len(b.weeks))
	for _, w := range b.weeks {
		totals = append(totals, decimal.NewFromInt(int64(w.TotalScore)))
	}
	return mean(totals)
}

// groupByEmployeeMonth buckets evaluations by employee and by the month
// their ISO week belongs to, keeping only months of year.
func groupByEmployeeMonth(evals []evaluation.WeeklyEvaluation, year int) map[string]map[time.Month]*monthBucket {
	out := make(map[string]map[time.Month]*monthBucket)
	for _, e := range evals {
		y, m := period.MonthOfWeek(e.Year, e.WeekNumber)
		if y != year {
			continue
		}
		months, ok := out[e.EmployeeID]
		if !ok {
			months = make(map[time.Month]*monthBucket)
			out[e.EmployeeID] = months
		}
		b, ok := months[m]
		if !ok {
			b = &monthBucket{}
			months[m] = b
		}
		b.weeks = append(b.weeks, e)
	}
	return out
}

func sortedEmployees[V any](m map[string]V, names map[string]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if names[ids[i]] != names[ids[j]] {
			return names[ids[i]] < names[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// BuildMonthlySummaries averages weekly total scores per employee and month.
// With month set only that month is returned.
func BuildMonthlySummaries(evals []evaluation.WeeklyEvaluation, year int, month *int, names map[string]string) []evaluation.MonthlySummary {
	grouped := groupByEmployeeMonth(evals, year)

	var out []evaluation.MonthlySummary
	for _, employeeID := range sortedEmployees(grouped, names) {
		months := grouped[employeeID]
		for m := time.January; m <= time.December; m++ {
			if month != nil && int(m) != *month {
				continue
			}
			b, ok := months[m]
			if !ok {
				continue
			}
			avg, _ := b.average()
			tier := evaluation.TierFor(avg)

			sort.Slice(b.weeks, func(i, j int) bool { return b.weeks[i].WeekNumber < b.weeks[j].WeekNumber })
			weeks := make([]evaluation.WeekScore, 0, len(b.weeks))
			for _, w := range b.weeks {
				weeks = append(weeks, evaluation.WeekScore{WeekNumber: w.WeekNumber, TotalScore: w.TotalScore})
			}

			out = append(out, evaluation.MonthlySummary{
				EmployeeID:      employeeID,
				EmployeeName:    names[employeeID],
				Year:            year,
				Month:           int(m),
				AverageScore:    toFloat(avg),
				FlexWorkTier:    tier,
				TierLabel:       tier.Label(),
				EvaluationCount: len(b.weeks),
				Weeks:           weeks,
			})
		}
	}
	return out
}

// BuildYearlySummaries rolls monthly averages up into a year. Every month with
// data weighs the same, whatever its number of weeks.
func BuildYearlySummaries(evals []evaluation.WeeklyEvaluation, year int, names map[string]string) []evaluation.YearlySummary {
	grouped := groupByEmployeeMonth(evals, year)

	var out []evaluation.YearlySummary
	for _, employeeID := range sortedEmployees(grouped, names) {
		out = append(out, buildYearly(employeeID, names[employeeID], year, grouped[employeeID]))
	}
	return out
}

func buildYearly(employeeID, name string, year int, months map[time.Month]*monthBucket) evaluation.YearlySummary {
	summary := evaluation.YearlySummary{
		EmployeeID:    employeeID,
		EmployeeName:  name,
		Year:          year,
		MonthlyScores: make([]*float64, 12),
	}

	var (
		monthly  []decimal.Decimal
		quarters [4][]decimal.Decimal
		highest  decimal.Decimal
		lowest   decimal.Decimal
	)
	for m := time.January; m <= time.December; m++ {
		b, ok := months[m]
		if !ok {
			continue
		}
		avg, _ := b.average()
		summary.EvaluationCount += len(b.weeks)
		summary.MonthlyScores[m-1] = floatPtr(avg)
		monthly = append(monthly, avg)
		quarters[period.QuarterOf(m)-1] = append(quarters[period.QuarterOf(m)-1], avg)

		month := int(m)
		if summary.HighestMonth == nil || avg.GreaterThan(highest) {
			highest = avg
			summary.HighestMonth = &month
		}
		if summary.LowestMonth == nil || avg.LessThan(lowest) {
			lowest = avg
			summary.LowestMonth = &month
		}
	}

	yearAvg, _ := mean(monthly)
	tier := evaluation.TierFor(yearAvg)
	summary.AverageScore = toFloat(yearAvg)
	summary.FlexWorkTier = tier
	summary.TierLabel = tier.Label()

	var best *decimal.Decimal
	quarterTargets := []**float64{&summary.Q1Average, &summary.Q2Average, &summary.Q3Average, &summary.Q4Average}
	for i, q := range quarters {
		avg, ok := mean(q)
		if !ok {
			continue
		}
		*quarterTargets[i] = floatPtr(avg)
		if best == nil || avg.GreaterThan(*best) {
			a := avg
			best = &a
		}
	}
	if best != nil {
		raise := SuggestedRaise(*best)
		summary.SuggestedRaisePercent = &raise
	}

	return summary
}

// SuggestedRaise maps the best quarterly average to a raise percentage.
func SuggestedRaise(bestQuarter decimal.Decimal) int {
	switch {
	case bestQuarter.GreaterThanOrEqual(raiseHighThreshold):
		return raiseHighPercent
	case bestQuarter.GreaterThanOrEqual(raiseMidThreshold):
		return raiseMidPercent
	default:
		return 0
	}
}
