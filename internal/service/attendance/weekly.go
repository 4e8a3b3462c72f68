package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"golang.org/x/sync/errgroup"
)

// GetWeeklySummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetWeeklySummary(ctx context.Context, req attendance.WeeklySummaryRequest) (attendance.WeeklySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.WeeklySummaryResponse{}, err
	}

	a, err := s.resolveActor(ctx, req.WorkspaceID)
	if err != nil {
		return attendance.WeeklySummaryResponse{}, err
	}

	currentStart := period.StartOfWeek(a.today)
	from := currentStart.AddDate(0, 0, -7*(req.Weeks-1))
	to := currentStart.AddDate(0, 0, 6)

	var (
		records []attendance.Attendance
		open    *attendance.WorkSession
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByUserBetween(gctx, a.userID, req.WorkspaceID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		open, err = s.openSession(gctx, a.userID, req.WorkspaceID)
		return err
	})
	if err := g.Wait(); err != nil {
		return attendance.WeeklySummaryResponse{}, err
	}

	target := a.settings.WeeklyTarget()
	in := WeekInput{
		Records: records,
		Active:  open,
		Target:  target,
		Today:   a.today,
		Now:     a.now,
	}

	resp := attendance.WeeklySummaryResponse{
		CurrentWeek:   BuildWeeklySummary(currentStart, in, true),
		PreviousWeeks: make([]attendance.WeeklySummary, 0, req.Weeks-1),
		Settings: attendance.WeeklySettingsDigest{
			Type:                  string(a.settings.Type),
			DailyRequiredMinutes:  a.settings.DailyRequiredMinutes,
			WeeklyRequiredMinutes: target,
			CoreTimeStart:         a.settings.CoreTimeStart,
			CoreTimeEnd:           a.settings.CoreTimeEnd,
		},
	}
	for i := 1; i < req.Weeks; i++ {
		start := currentStart.AddDate(0, 0, -7*i)
		resp.PreviousWeeks = append(resp.PreviousWeeks, BuildWeeklySummary(start, in, false))
	}

	return resp, nil
}

// WeekInput is everything BuildWeeklySummary needs. Records may cover more
// than one week; only those inside the requested week are counted.
type WeekInput struct {
	Records []attendance.Attendance
	Active  *attendance.WorkSession
	Target  int
	Today   time.Time
	Now     time.Time
}

// BuildWeeklySummary rolls daily records up into progress against the weekly
// target. The running minutes of an open session count toward its day.
func BuildWeeklySummary(weekStart time.Time, in WeekInput, withBreakdown bool) attendance.WeeklySummary {
	weekEnd := weekStart.AddDate(0, 0, 6)

	byDate := make(map[string]attendance.Attendance, 7)
	for _, r := range in.Records {
		if r.Date.Before(weekStart) || r.Date.After(weekEnd) {
			continue
		}
		byDate[period.FormatDate(r.Date)] = r
	}

	summary := attendance.WeeklySummary{
		WeekStart:     period.FormatDate(weekStart),
		WeekEnd:       period.FormatDate(weekEnd),
		TargetMinutes: in.Target,
	}
	if withBreakdown {
		summary.DailyBreakdown = make([]attendance.DailyBreakdown, 0, 7)
	}

	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		key := period.FormatDate(date)
		day := attendance.DailyBreakdown{
			Date:      key,
			DayOfWeek: strings.ToUpper(date.Weekday().String()[:3]),
			IsToday:   date.Equal(in.Today),
		}

		if r, ok := byDate[key]; ok {
			day.TotalMinutes = r.TotalMinutes
			day.OfficeMinutes = r.OfficeMinutes
			day.RemoteMinutes = r.RemoteMinutes
			if in.Active != nil && in.Active.AttendanceID == r.ID {
				elapsed := in.Active.ElapsedMinutes(in.Now)
				day.TotalMinutes += elapsed
				if in.Active.SessionType == attendance.SessionTypeOffice {
					day.OfficeMinutes += elapsed
				} else {
					day.RemoteMinutes += elapsed
				}
			}

			status, location := r.Status, r.WorkLocation
			day.Status = &status
			day.CheckIn = r.CheckIn
			day.CheckOut = r.CheckOut
			if r.IsCheckedIn() {
				day.WorkLocation = &location
				summary.DaysWorked++
			}
		}

		summary.TotalWorkedMinutes += day.TotalMinutes
		summary.OfficeMinutes += day.OfficeMinutes
		summary.RemoteMinutes += day.RemoteMinutes
		if withBreakdown {
			summary.DailyBreakdown = append(summary.DailyBreakdown, day)
		}
	}

	summary.RemainingMinutes = max(in.Target-summary.TotalWorkedMinutes, 0)
	summary.IsCompleted = summary.TotalWorkedMinutes >= in.Target
	summary.ProgressPercent = progressPercent(summary.TotalWorkedMinutes, in.Target)
	return summary
}

func progressPercent(total, target int) int {
	if target <= 0 {
		return 100
	}
	// Floored so 100 is only reported once the target is met.
	return min(total*100/target, 100)
}
