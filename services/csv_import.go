package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"ffebudget/budget"
)

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportRow is one accepted spreadsheet row. Quantity and UnitPrice are nil
// when the cell was blank, so the item keeps its default.
type ImportRow struct {
	Row          int
	Manufacturer string
	Description  string
	Dimensions   string
	Quantity     *float64
	UnitPrice    *float64
	LeadTime     string
	Status       string
	Notes        string
}

// ImportResult is returned after parsing and validating an uploaded file.
type ImportResult struct {
	TotalRows int               `json:"total_rows"`
	ValidRows int               `json:"valid_rows"`
	ErrorRows int               `json:"error_rows"`
	Errors    []ValidationError `json:"errors"`
	Rows      []ImportRow       `json:"-"`
	FileName  string            `json:"-"`
}

// importColumns maps normalized header text to item field names.
var importColumns = map[string]string{
	"manufacturer": "manufacturer",
	"vendor":       "manufacturer",
	"description":  "description",
	"item":         "description",
	"dimensions":   "dimensions",
	"size":         "dimensions",
	"quantity":     "quantity",
	"qty":          "quantity",
	"unitprice":    "unitPrice",
	"price":        "unitPrice",
	"leadtime":     "leadTime",
	"status":       "status",
	"notes":        "notes",
}

var importLabels = map[string]string{
	"manufacturer": "Manufacturer",
	"description":  "Description",
	"dimensions":   "Dimensions",
	"quantity":     "Quantity",
	"unitPrice":    "Unit Price",
	"leadTime":     "Lead Time",
	"status":       "Status",
	"notes":        "Notes",
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	headers := allRows[0]
	dataRows := allRows[1:]
	return headers, dataRows, nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	headers := rows[0]
	dataRows := rows[1:]
	return headers, dataRows, nil
}

// mapHeaders maps uploaded column headers to item field names.
// Returns ordered list of field names (one per column) and any unrecognized columns.
func mapHeaders(headers []string) ([]string, []string) {
	mapped := make([]string, len(headers))
	var unrecognized []string

	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		// Strip trailing " *" that templates add for required fields
		norm = strings.TrimSuffix(norm, "*")
		norm = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(norm)

		if key, ok := importColumns[norm]; ok {
			mapped[i] = key
		} else {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ParseItemImport parses and validates an uploaded line item file. Blank
// rows are skipped. A row is accepted only if it has no errors.
func ParseItemImport(file io.Reader, fileName string) (*ImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	if strings.HasSuffix(lowerName, ".csv") {
		headers, dataRows, err = parseCSV(file)
	} else if strings.HasSuffix(lowerName, ".xlsx") {
		headers, dataRows, err = parseExcel(file)
	} else {
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	columnKeys, _ := mapHeaders(headers)
	if !contains(columnKeys, "description") {
		return nil, fmt.Errorf("file must have a Description column")
	}

	result := &ImportResult{FileName: fileName}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row

		rowData := make(map[string]string)
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[colIdx]); v != "" {
				rowData[key] = v
			}
		}
		if len(rowData) == 0 {
			continue
		}
		result.TotalRows++

		parsed, rowErrors := validateImportRow(rowNum, rowData)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		result.Rows = append(result.Rows, parsed)
	}
	result.ValidRows = len(result.Rows)

	return result, nil
}

// validateImportRow checks required and numeric cells of one row.
func validateImportRow(rowNum int, data map[string]string) (ImportRow, []ValidationError) {
	var errs []ValidationError
	parsed := ImportRow{
		Row:          rowNum,
		Manufacturer: data["manufacturer"],
		Description:  data["description"],
		Dimensions:   data["dimensions"],
		LeadTime:     data["leadTime"],
		Status:       data["status"],
		Notes:        data["notes"],
	}

	if parsed.Description == "" {
		errs = append(errs, ValidationError{Row: rowNum, Field: importLabels["description"], Message: "Description is required"})
	}
	for _, key := range []string{"quantity", "unitPrice"} {
		v, ok := data[key]
		if !ok {
			continue
		}
		n, err := budget.ParseAmount(v)
		if err != nil {
			errs = append(errs, ValidationError{Row: rowNum, Field: importLabels[key], Message: amountMessage(importLabels[key], err)})
			continue
		}
		if key == "quantity" {
			parsed.Quantity = &n
		} else {
			parsed.UnitPrice = &n
		}
	}

	return parsed, errs
}

func amountMessage(label string, err error) string {
	switch {
	case errors.Is(err, budget.ErrNegative):
		return label + " cannot be negative"
	case errors.Is(err, budget.ErrNotFinite):
		return label + " must be a finite number"
	}
	return label + " must be a number"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ApplyItemImport appends the rows to a category through the editor, one
// AddItem followed by field updates per row. It stops at the first
// mutation that is not applied and returns that result along with the ids
// added so far.
func ApplyItemImport(e *budget.Editor, categoryID string, rows []ImportRow) ([]int64, budget.Result) {
	added := make([]int64, 0, len(rows))
	last := budget.Result{Outcome: budget.NoOp}

	for _, r := range rows {
		res := e.AddItem(categoryID)
		if !res.OK() {
			return added, res
		}
		id := res.ItemID
		added = append(added, id)

		fields := []budget.ItemField{budget.Description(r.Description)}
		if r.Manufacturer != "" {
			fields = append(fields, budget.Manufacturer(r.Manufacturer))
		}
		if r.Dimensions != "" {
			fields = append(fields, budget.Dimensions(r.Dimensions))
		}
		if r.Quantity != nil {
			fields = append(fields, budget.Quantity(*r.Quantity))
		}
		if r.UnitPrice != nil {
			fields = append(fields, budget.UnitPrice(*r.UnitPrice))
		}
		if r.LeadTime != "" {
			fields = append(fields, budget.LeadTime(r.LeadTime))
		}
		if r.Status != "" {
			fields = append(fields, budget.Status(r.Status))
		}
		if r.Notes != "" {
			fields = append(fields, budget.Notes(r.Notes))
		}
		for _, f := range fields {
			if res := e.UpdateItemField(categoryID, id, f); res.Outcome == budget.Rejected {
				return added, res
			}
		}
		last = budget.Result{Outcome: budget.Applied, CategoryID: categoryID, ItemID: id}
	}
	return added, last
}

// GenerateErrorReport creates a downloadable .xlsx file from validation errors.
func GenerateErrorReport(errs []ValidationError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	defaultSheet := f.GetSheetName(0)
	f.SetSheetName(defaultSheet, sheet)

	// Header style
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	// Headers
	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errs {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, e.Message)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
