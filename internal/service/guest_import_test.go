package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildTestWorkbook assembles a workbook with the import header plus the
// given data rows.
func buildTestWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for col, header := range GuestImportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestParseGuestWorkbook(t *testing.T) {
	data := buildTestWorkbook(t, [][]any{
		{"Maria", "Silva", "maria@example.com", "+351912345678", "Yes", "vegan", "", "notes here"},
		{"", "", "", "", "", "", "", ""}, // blank rows are skipped
		{"Joao", "", "", "", "no", "", "shellfish", ""},
	})

	guests, err := ParseGuestWorkbook(data)
	require.NoError(t, err)
	require.Len(t, guests, 2)

	assert.Equal(t, "Maria", guests[0].FirstName)
	assert.Equal(t, "Silva", guests[0].LastName)
	assert.True(t, guests[0].IsLocalGuest)
	assert.Equal(t, "vegan", guests[0].DietaryRestrictions)
	assert.Equal(t, "notes here", guests[0].Notes)

	assert.Equal(t, "Joao", guests[1].FirstName)
	assert.False(t, guests[1].IsLocalGuest)
	assert.Equal(t, "shellfish", guests[1].Allergies)
}

func TestParseGuestWorkbookBadHeader(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Name"))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = ParseGuestWorkbook(buf.Bytes())
	assert.Error(t, err)
}

func TestParseGuestWorkbookNoRows(t *testing.T) {
	template, err := BuildGuestTemplate()
	require.NoError(t, err)

	_, err = ParseGuestWorkbook(template)
	assert.Error(t, err)
}

func TestBuildGuestTemplateParsableHeader(t *testing.T) {
	template, err := BuildGuestTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(template))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(guestSheetName)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, GuestImportHeader, rows[0])
}
