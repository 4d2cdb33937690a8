package sync

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hospicetrack/hospicetrack/internal/domain/patient"
)

const (
	sheetActive   = "Active"
	sheetArchived = "Archived"
)

var activeHeader = []string{
	"First Name",
	"Last Name",
	"Date of Birth",
	"Phone",
	"Diagnosis",
	"Attending Physician",
	"Hospice Agency",
	"Progress (%)",
}

var archivedHeader = []string{
	"First Name",
	"Last Name",
	"Date of Birth",
	"Phone",
	"Diagnosis",
	"Attending Physician",
	"Hospice Agency",
	"Archived Date",
	"Archive Reason",
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// exportRow is one patient rendered for a worksheet. progress is only
// shown on the Active sheet; archive columns only on Archived.
func activeRow(p *patient.Patient, progress int) []any {
	return []any{
		p.FirstName, p.LastName, deref(p.BirthDate), deref(p.Phone),
		deref(p.Diagnosis), deref(p.AttendingPhysician), deref(p.HospiceAgency),
		progress,
	}
}

func archivedRow(p *patient.Patient) []any {
	archivedAt := ""
	if p.ArchivedAt != nil {
		archivedAt = p.ArchivedAt.Format("2006-01-02")
	}
	return []any{
		p.FirstName, p.LastName, deref(p.BirthDate), deref(p.Phone),
		deref(p.Diagnosis), deref(p.AttendingPhysician), deref(p.HospiceAgency),
		archivedAt, deref(p.ArchiveReason),
	}
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildWorkbook renders both collections into an xlsx document.
func buildWorkbook(active [][]any, archived [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, sheetActive, activeHeader, active); err != nil {
		return nil, err
	}
	if err := writeSheet(f, sheetArchived, archivedHeader, archived); err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// parseWorkbook reads intake rows from the first sheet of an uploaded
// workbook. The header row maps columns by name so column order does
// not matter; rows without a first or last name are skipped.
func parseWorkbook(r io.Reader) ([]*patient.Patient, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []*patient.Patient{}, nil
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	optional := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}

	var patients []*patient.Patient
	for _, row := range rows[1:] {
		first := cell(row, "first name")
		last := cell(row, "last name")
		if first == "" && last == "" {
			continue
		}
		patients = append(patients, &patient.Patient{
			FirstName:          first,
			LastName:           last,
			BirthDate:          optional(cell(row, "date of birth")),
			Phone:              optional(cell(row, "phone")),
			Diagnosis:          optional(cell(row, "diagnosis")),
			AttendingPhysician: optional(cell(row, "attending physician")),
			HospiceAgency:      optional(cell(row, "hospice agency")),
		})
	}
	return patients, nil
}
