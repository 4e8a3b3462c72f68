package report

import (
	"fmt"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/report"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SummarySheet = "Summary"
	DailySheet   = "Daily"
)

var (
	summaryHeader = []interface{}{"Name", "Email", "Days Present", "Days Late", "Days Absent", "Total Hours", "Office Hours", "Remote Hours"}
	dailyHeader   = []interface{}{"Date", "Name", "Status", "Location", "Check In", "Check Out", "Total Minutes", "Office Minutes", "Remote Minutes", "Note"}
)

func hours(minutes int) float64 {
	return float64(minutes*100/60) / 100
}

func clockOrBlank(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

// renderMonthlyWorkbook writes a summary sheet with one row per member and a
// daily sheet with one row per attendance record.
func renderMonthlyWorkbook(month string, members []workspace.Member, summaries []report.MemberMonthSummary, records []attendance.Attendance) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(DailySheet); err != nil {
		return nil, err
	}

	if err := writeRow(f, SummarySheet, 1, summaryHeader); err != nil {
		return nil, err
	}
	for i, s := range summaries {
		row := []interface{}{
			s.Name, s.Email, s.DaysPresent, s.DaysLate, s.DaysAbsent,
			hours(s.TotalMinutes), hours(s.OfficeMinutes), hours(s.RemoteMinutes),
		}
		if err := writeRow(f, SummarySheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if err := styleHeader(f, SummarySheet, len(summaryHeader)); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.Name
	}

	if err := writeRow(f, DailySheet, 1, dailyHeader); err != nil {
		return nil, err
	}
	for i, r := range records {
		note := ""
		if r.Note != nil {
			note = *r.Note
		}
		location := ""
		if r.IsCheckedIn() {
			location = string(r.WorkLocation)
		}
		row := []interface{}{
			period.FormatDate(r.Date), names[r.UserID], string(r.Status), location,
			clockOrBlank(r.CheckIn), clockOrBlank(r.CheckOut),
			r.TotalMinutes, r.OfficeMinutes, r.RemoteMinutes, note,
		}
		if err := writeRow(f, DailySheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if err := styleHeader(f, DailySheet, len(dailyHeader)); err != nil {
		return nil, err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Attendance %s", month),
		Creator: "codeb",
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
