package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/desk-booking/internal/model"
)

// DeskColumns are the recognised header names of a desk import sheet.
var DeskColumns = []string{"desk_number", "floor_number", "type", "department_code", "equipment", "notes"}

// ErrMissingColumn is returned when the header row lacks desk_number or
// floor_number.
var ErrMissingColumn = errors.New("missing required column")

// ParseDeskSheet reads the first sheet of an .xlsx workbook.  The first row
// is the header; columns are matched by name, case-insensitively, in any
// order.  Blank rows are dropped and Row keeps the sheet row number.
func ParseDeskSheet(r io.Reader) ([]model.DeskImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrMissingColumn)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range DeskColumns[:2] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []model.DeskImportRow
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		out = append(out, model.DeskImportRow{
			Row:            n + 2,
			DeskNumber:     cell(row, "desk_number"),
			FloorNumber:    cell(row, "floor_number"),
			Type:           cell(row, "type"),
			DepartmentCode: cell(row, "department_code"),
			Equipment:      cell(row, "equipment"),
			Notes:          cell(row, "notes"),
		})
	}
	return out, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
