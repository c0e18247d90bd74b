// Package report turns occupancy reports into .xlsx workbooks and reads
// desk import sheets.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/desk-booking/internal/model"
)

const (
	SheetSummary = "Summary"
	SheetDaily   = "Daily"
	SheetFloors  = "Floors"
)

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	dailyHeader = []string{"Date", "Day", "Occupied", "Free", "Total", "Rate %", "Non working", "Holiday"}
	floorHeader = []string{"Floor", "Name", "Desks", "Bookings", "Average rate %"}
)

// sheet appends rows to one worksheet.
type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func (s *sheet) write(values ...any) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.f.SetSheetRow(s.name, cell, &values)
}

func (s *sheet) header(columns []string) error {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	if err := s.write(values...); err != nil {
		return err
	}
	style, err := s.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(columns), s.row)
	if err != nil {
		return err
	}
	start, _ := excelize.CoordinatesToCellName(1, s.row)
	return s.f.SetCellStyle(s.name, start, end, style)
}

// OccupancyWorkbook lays r out over three sheets: Summary, Daily and
// Floors.  The caller closes the returned file.
func OccupancyWorkbook(r *model.OccupancyReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{SheetDaily, SheetFloors} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	if err := fill(f, r); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fill(f *excelize.File, r *model.OccupancyReport) error {
	summary := &sheet{f: f, name: SheetSummary}
	if err := summary.header([]string{"Metric", "Value"}); err != nil {
		return err
	}
	rows := [][]any{
		{"Start date", r.StartDate.String()},
		{"End date", r.EndDate.String()},
		{"Working days", r.TotalWorkingDays},
		{"Total desks", r.TotalDesks},
		{"Average occupancy %", float64(r.AverageOccupancyRate)},
		{"Average occupied desks", r.AverageOccupiedDesks},
		{"Average free desks", r.AverageFreeDesks},
		{"Most occupied day", dayLabel(r.MostOccupiedDay)},
		{"Least occupied day", dayLabel(r.LeastOccupiedDay)},
		{"Generated at", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
	}
	for _, row := range rows {
		if err := summary.write(row...); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "B", 26); err != nil {
		return err
	}

	daily := &sheet{f: f, name: SheetDaily}
	if err := daily.header(dailyHeader); err != nil {
		return err
	}
	for _, d := range r.DailyOccupancy {
		holiday := ""
		if d.HolidayName != nil {
			holiday = *d.HolidayName
		}
		nonWorking := "no"
		if d.NonWorking {
			nonWorking = "yes"
		}
		if err := daily.write(d.Date.String(), d.DayOfWeek, d.OccupiedDesks, d.FreeDesks, d.TotalDesks,
			float64(d.OccupancyRate), nonWorking, holiday); err != nil {
			return err
		}
	}

	floors := &sheet{f: f, name: SheetFloors}
	if err := floors.header(floorHeader); err != nil {
		return err
	}
	for _, fl := range r.FloorStatistics {
		if err := floors.write(fl.FloorNumber, fl.FloorName, fl.TotalDesks, fl.TotalBookings,
			float64(fl.AverageOccupancyRate)); err != nil {
			return err
		}
	}
	return nil
}

func dayLabel(d *model.DayOccupancy) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%d desks, %s%%)", d.Date, d.OccupiedDesks, d.OccupancyRate)
}

// WriteOccupancy streams the workbook of r to w.
func WriteOccupancy(w io.Writer, r *model.OccupancyReport) error {
	f, err := OccupancyWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Filename names the export of a range.
func Filename(r *model.OccupancyReport) string {
	return fmt.Sprintf("occupancy_%s_%s.xlsx", r.StartDate, r.EndDate)
}
