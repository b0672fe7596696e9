package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateLedgerExcel creates an Excel budget ledger from the given
// LedgerData and returns the file contents as a byte slice.
func GenerateLedgerExcel(data LedgerData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Determine sheet name (max 31 chars, no []:*?/\).
	sheetName := sheetTitle(data.Title)

	// Rename default sheet.
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Column references (A through J).
	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	lastCol := columns[len(columns)-1] // "J"

	// Set column widths.
	widths := []float64{7, 18, 36, 18, 8, 14, 16, 14, 12, 28}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	// Title style: bold, 16pt.
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	// Subtitle style (client, address, date).
	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 11,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	// Column header style: bold, white text, charcoal background, centered.
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// Category row style: bold on a light fill.
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E9ECEF"},
			Pattern: 1,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}

	// Item style: normal with borders.
	itemStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 10,
		},
		Alignment: &excelize.Alignment{
			Vertical: "top",
			WrapText: true,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	// Summary label style: bold, right-aligned.
	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	// Summary value style: bold.
	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// Over budget variance: bold red.
	overBudgetStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "#DC2626",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create over budget style: %w", err)
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	// Row 1: Title merged across all columns.
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	// Row 2: Client and address (if present).
	if line := joinNonEmpty(" | ", data.Client, data.Address); line != "" {
		if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
			return nil, fmt.Errorf("merge client: %w", err)
		}
		f.SetCellValue(sheetName, "A2", sanitizeExcelCell(line))
		f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)
	}

	// Row 3: Date.
	date := data.ProjectDate
	if date == "" {
		date = data.GeneratedDate
	}
	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", sanitizeExcelCell("Date: "+date))
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// ── Row 5: Column Headers ───────────────────────────────────────────

	headers := []string{"#", "Manufacturer", "Description", "Dimensions", "Qty", "Unit Price", "Total", "Lead Time", "Status", "Notes"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s5", columns[i])
		f.SetCellValue(sheetName, cell, h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// ── Data Rows (starting row 6) ──────────────────────────────────────

	row := 6
	for _, s := range data.Sections {
		rowStr := fmt.Sprintf("%d", row)

		// Category heading with its subtotal in the Total column.
		f.SetCellValue(sheetName, "A"+rowStr, s.Index)
		if err := f.MergeCell(sheetName, "B"+rowStr, "F"+rowStr); err != nil {
			return nil, fmt.Errorf("merge section %s: %w", s.Index, err)
		}
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(s.Title))
		f.SetCellValue(sheetName, "G"+rowStr, FormatCurrency(s.Subtotal))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, sectionStyle)
		row++

		for _, r := range s.Rows {
			rowStr = fmt.Sprintf("%d", row)

			f.SetCellValue(sheetName, "A"+rowStr, r.Index)
			f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(r.Manufacturer))
			f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(r.Description))
			f.SetCellValue(sheetName, "D"+rowStr, sanitizeExcelCell(r.Dimensions))
			f.SetCellValue(sheetName, "E"+rowStr, r.Qty)
			f.SetCellValue(sheetName, "F"+rowStr, FormatAmount(r.UnitPrice))
			f.SetCellValue(sheetName, "G"+rowStr, FormatCurrency(r.LineTotal))
			f.SetCellValue(sheetName, "H"+rowStr, sanitizeExcelCell(r.LeadTime))
			f.SetCellValue(sheetName, "I"+rowStr, sanitizeExcelCell(r.Status))
			f.SetCellValue(sheetName, "J"+rowStr, sanitizeExcelCell(r.Notes))
			f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, itemStyle)

			row++
		}
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	// Skip a blank row.
	row++

	summary := []struct {
		label string
		value string
		style int
	}{
		{"Subtotal:", FormatCurrency(data.GrandTotal), summaryValueStyle},
		{fmt.Sprintf("Sales Tax (%s):", FormatPercent(data.SalesTaxRate)), FormatCurrency(data.Tax), summaryValueStyle},
		{"Total with Tax:", FormatCurrency(data.TotalWithTax), summaryValueStyle},
		{"Allowance:", FormatCurrency(data.Allowance), summaryValueStyle},
		{"Variance:", FormatCurrency(data.Variance), summaryValueStyle},
	}
	if data.OverBudget {
		summary[len(summary)-1].style = overBudgetStyle
	}
	for _, s := range summary {
		summaryRow := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "F"+summaryRow, s.label)
		f.SetCellStyle(sheetName, "F"+summaryRow, "F"+summaryRow, summaryLabelStyle)
		f.SetCellValue(sheetName, "G"+summaryRow, s.value)
		f.SetCellStyle(sheetName, "G"+summaryRow, "G"+summaryRow, s.style)
		row++
	}

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// sheetTitle trims a title into a valid worksheet name.
func sheetTitle(title string) string {
	name := []rune{}
	for _, r := range title {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			continue
		}
		name = append(name, r)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	if len(name) == 0 {
		return "Budget"
	}
	return string(name)
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
