package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/desk-booking/internal/model"
)

func sampleReport() *model.OccupancyReport {
	mon := model.NewDate(2024, time.June, 3)
	sat := model.NewDate(2024, time.June, 8)
	name := "Founders day"
	d1 := model.DayOccupancy{Date: mon, DayOfWeek: "Monday", OccupiedDesks: 4, FreeDesks: 6, TotalDesks: 10, OccupancyRate: 40}
	return &model.OccupancyReport{
		StartDate:            mon,
		EndDate:              sat,
		TotalWorkingDays:     1,
		TotalDesks:           10,
		AverageOccupancyRate: 40,
		AverageOccupiedDesks: 4,
		AverageFreeDesks:     6,
		MostOccupiedDay:      &d1,
		LeastOccupiedDay:     &d1,
		DailyOccupancy: []model.DayOccupancy{
			d1,
			{Date: sat, DayOfWeek: "Saturday", TotalDesks: 10, FreeDesks: 10, NonWorking: true, HolidayName: &name},
		},
		FloorStatistics: []model.FloorOccupancy{
			{FloorID: 1, FloorName: "Ground", FloorNumber: 0, TotalDesks: 10, TotalBookings: 4, AverageOccupancyRate: 40},
		},
		GeneratedAt: time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteOccupancy(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOccupancy(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetSummary, SheetDaily, SheetFloors}, f.GetSheetList())

	v, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", v)
	v, err = f.GetCellValue(SheetSummary, "B9")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03 (4 desks, 40.00%)", v)

	daily, err := f.GetRows(SheetDaily)
	require.NoError(t, err)
	require.Len(t, daily, 3)
	assert.Equal(t, "Date", daily[0][0])
	require.GreaterOrEqual(t, len(daily[1]), 7)
	assert.Equal(t, []string{"2024-06-03", "Monday", "4", "6", "10", "40", "no"}, daily[1][:7])
	assert.Equal(t, "Founders day", daily[2][7])
	assert.Equal(t, "yes", daily[2][6])

	floors, err := f.GetRows(SheetFloors)
	require.NoError(t, err)
	require.Len(t, floors, 2)
	assert.Equal(t, "Ground", floors[1][1])
	assert.Equal(t, "4", floors[1][3])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "occupancy_2024-06-03_2024-06-08.xlsx", Filename(sampleReport()))
}

func deskSheet(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseDeskSheet(t *testing.T) {
	buf := deskSheet(t,
		[]any{"Floor_Number", "desk_number", "type", "notes"},
		[]any{1, "A-01", "hot_desk", " by the door "},
		[]any{"", "", "", ""},
		[]any{2, "B-07"},
	)

	rows, err := ParseDeskSheet(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.DeskImportRow{Row: 2, DeskNumber: "A-01", FloorNumber: "1", Type: "hot_desk", Notes: "by the door"}, rows[0])
	assert.Equal(t, 4, rows[1].Row)
	assert.Equal(t, "B-07", rows[1].DeskNumber)
	assert.Equal(t, "2", rows[1].FloorNumber)
	assert.Empty(t, rows[1].Type)
}

func TestParseDeskSheet_MissingColumn(t *testing.T) {
	buf := deskSheet(t, []any{"desk_number", "type"}, []any{"A-01", "STANDARD"})
	_, err := ParseDeskSheet(buf)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestParseDeskSheet_NotAWorkbook(t *testing.T) {
	_, err := ParseDeskSheet(bytes.NewBufferString("desk_number,floor_number\nA-01,1\n"))
	assert.Error(t, err)
}
