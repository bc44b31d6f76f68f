package pincode

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType is the download media type for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

const sheet = "Sheet1"

var header = []string{"Pincode", "Area", "City", "District", "State", "Serviceable"}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func record(p *PincodeArea) []string {
	return []string{
		strconv.Itoa(p.Pincode),
		p.AreaName,
		p.CityName,
		p.DistrictName,
		p.StateName,
		yesNo(p.Serviceable),
	}
}

func WriteCSV(w io.Writer, items []*PincodeArea) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range items {
		if err := cw.Write(record(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, items []*PincodeArea) error {
	f := excelize.NewFile()
	defer f.Close()

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}
	for i, p := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{p.Pincode, p.AreaName, p.CityName, p.DistrictName, p.StateName, yesNo(p.Serviceable)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "F", 20); err != nil {
		return err
	}
	return f.Write(w)
}

// ImportRow is one parsed spreadsheet row; Err is set when the row is unusable.
type ImportRow struct {
	Area *PincodeArea
	Err  error
}

// ReadXLSX parses the first sheet using the export column order. A leading
// header row is skipped.
func ReadXLSX(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	out := make([]ImportRow, 0, len(rows))
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), header[0]) {
			continue
		}
		if isBlank(row) {
			continue
		}
		out = append(out, parseRow(i+1, row))
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func field(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func parseRow(line int, row []string) ImportRow {
	n, ok := ParseNumber(field(row, 0))
	if !ok || n <= 0 {
		return ImportRow{Err: fmt.Errorf("row %d: invalid pincode %q", line, field(row, 0))}
	}
	p := &PincodeArea{
		Pincode:      n,
		AreaName:     field(row, 1),
		CityName:     field(row, 2),
		DistrictName: field(row, 3),
		StateName:    field(row, 4),
	}
	if p.AreaName == "" || p.CityName == "" || p.StateName == "" {
		return ImportRow{Err: fmt.Errorf("row %d: area, city and state are required", line)}
	}
	if p.DistrictName == "" {
		p.DistrictName = p.CityName
	}
	switch strings.ToLower(field(row, 5)) {
	case "yes", "true", "1", "y":
		p.Serviceable = true
	}
	return ImportRow{Area: p}
}
