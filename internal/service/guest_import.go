package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"planora/internal/domain"
)

const guestSheetName = "Guests"

// GuestImportHeader columns the import template carries. Import only
// takes identity and planning fields; RSVP state belongs to the guests.
var GuestImportHeader = []string{
	"First Name",
	"Last Name",
	"Email",
	"Phone",
	"Local Guest",
	"Dietary Restrictions",
	"Allergies",
	"Notes",
}

// GuestExportHeader columns of the full guest export.
var GuestExportHeader = []string{
	"First Name",
	"Last Name",
	"Email",
	"Phone",
	"RSVP Status",
	"RSVP Date",
	"Local Guest",
	"Plus One",
	"Plus One Name",
	"Dietary Restrictions",
	"Allergies",
	"Children",
	"Accommodation",
	"Notes",
}

// ParseGuestWorkbook reads an uploaded import workbook into guests.
// The header row must match GuestImportHeader exactly; rows without a
// first or last name are rejected with their row number.
func ParseGuestWorkbook(data []byte) ([]*domain.Guest, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := guestSheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		// Fall back to whatever the first sheet is called.
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook is empty")
	}

	if err := checkImportHeader(rows[0]); err != nil {
		return nil, err
	}

	guests := make([]*domain.Guest, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if rowEmpty(row) {
			continue
		}
		guest := &domain.Guest{
			FirstName:           strings.TrimSpace(cell(row, 0)),
			LastName:            strings.TrimSpace(cell(row, 1)),
			Email:               strings.TrimSpace(cell(row, 2)),
			Phone:               strings.TrimSpace(cell(row, 3)),
			IsLocalGuest:        parseYesNo(cell(row, 4)),
			DietaryRestrictions: strings.TrimSpace(cell(row, 5)),
			Allergies:           strings.TrimSpace(cell(row, 6)),
			Notes:               strings.TrimSpace(cell(row, 7)),
			RSVPStatus:          domain.RSVPPending,
		}
		if guest.FirstName == "" && guest.LastName == "" {
			return nil, fmt.Errorf("row %d: a guest needs at least a first or last name", rowNum)
		}
		guests = append(guests, guest)
	}
	if len(guests) == 0 {
		return nil, fmt.Errorf("workbook has no guest rows")
	}
	return guests, nil
}

func checkImportHeader(header []string) error {
	if len(header) < len(GuestImportHeader) {
		return fmt.Errorf("header row has %d columns, want %d", len(header), len(GuestImportHeader))
	}
	for i, want := range GuestImportHeader {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("header column %d is %q, want %q", i+1, header[i], want)
		}
	}
	return nil
}

// BuildGuestTemplate builds an empty import workbook with the header row.
func BuildGuestTemplate() ([]byte, error) {
	return buildGuestWorkbook(GuestImportHeader, nil)
}

// BuildGuestExport builds the full guest list workbook.
func BuildGuestExport(guests []*domain.Guest) ([]byte, error) {
	rows := make([][]any, 0, len(guests))
	for _, g := range guests {
		rsvpDate := ""
		if g.RSVPDate != nil {
			rsvpDate = g.RSVPDate.Format("2006-01-02 15:04")
		}
		accommodation := ""
		if g.NeedsAccommodation {
			accommodation = g.AccommodationPreference
		}
		rows = append(rows, []any{
			g.FirstName,
			g.LastName,
			g.Email,
			g.Phone,
			g.RSVPStatus,
			rsvpDate,
			yesNo(g.IsLocalGuest),
			yesNo(g.PlusOne.Confirmed),
			g.PlusOne.Name,
			g.DietaryRestrictions,
			g.Allergies,
			g.ChildrenCount,
			accommodation,
			g.Notes,
		})
	}
	return buildGuestWorkbook(GuestExportHeader, rows)
}

func buildGuestWorkbook(headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; Close only on the error paths.

	index, err := f.NewSheet(guestSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FDF2F8"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cellName, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(guestSheetName, cellName, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cellName, err)
		}
		if err := f.SetCellStyle(guestSheetName, cellName, cellName, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(guestSheetName, colName, colName, 18); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(guestSheetName, cellName, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cellName, err)
			}
		}
	}

	if err := f.SetPanes(guestSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseYesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
