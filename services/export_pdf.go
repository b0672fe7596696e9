package services

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	mutedColor  = &props.Color{Red: 80, Green: 80, Blue: 80}
	footerColor = &props.Color{Red: 140, Green: 140, Blue: 140}
	alertColor  = &props.Color{Red: 220, Green: 38, Blue: 38}
)

func newPDF(o orientation.Type) core.Maroto {
	cfg := config.NewBuilder().
		WithOrientation(o).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	return maroto.New(cfg)
}

// GenerateLedgerPDF creates a landscape PDF budget ledger using maroto/v2.
// It returns the raw PDF bytes or an error.
func GenerateLedgerPDF(data LedgerData) ([]byte, error) {
	m := newPDF(orientation.Horizontal)

	// --- Header Section ---
	addHeader(m, data.Title, data.CompanyName, joinNonEmpty(" | ", data.Client, data.Address), data.ProjectDate)

	// --- Table Header ---
	addTableHeader(m)

	// --- Table Body ---
	for _, s := range data.Sections {
		addSectionRow(m, s)
		for _, r := range s.Rows {
			addTableRow(m, r)
		}
	}

	// --- Summary Section ---
	addSummary(m, data)

	// --- Terms ---
	addTerms(m, data.Terms)

	// --- Footer with generated date ---
	addFooter(m, data.GeneratedDate)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// GenerateSpecBookPDF creates a portrait PDF with one block per line item:
// its ledger fields, detailed description and attachment list.
func GenerateSpecBookPDF(data SpecBookData) ([]byte, error) {
	m := newPDF(orientation.Vertical)

	addHeader(m, data.Title+" - Specification Book", data.CompanyName, data.Client, "")

	if len(data.Entries) == 0 {
		m.AddRows(
			row.New(10).Add(
				col.New(12).Add(
					text.New("No line items.", props.Text{Size: 9, Align: align.Center, Color: mutedColor}),
				),
			),
		)
	}
	for _, e := range data.Entries {
		addSpecEntry(m, e)
	}

	addFooter(m, data.GeneratedDate)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addHeader adds the title, company, subtitle and date to the PDF.
func addHeader(m core.Maroto, title, company, subtitle, date string) {
	// Title row
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	// Company / client and date row
	left := joinNonEmpty(" - ", company, subtitle)
	if left != "" || date != "" {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(
					text.New(left, props.Text{
						Size:  9,
						Align: align.Left,
						Color: mutedColor,
					}),
				),
				col.New(4).Add(
					text.New(dateLabel(date), props.Text{
						Size:  9,
						Align: align.Right,
						Color: mutedColor,
					}),
				),
			),
		)
	}

	// Spacer
	m.AddRows(row.New(4))
}

func dateLabel(date string) string {
	if date == "" {
		return ""
	}
	return "Date: " + date
}

// ledgerColumns are the ledger table widths on the 12 column grid.
var ledgerColumns = []struct {
	title string
	width int
	align align.Type
}{
	{"#", 1, align.Center},
	{"Manufacturer", 2, align.Left},
	{"Description", 3, align.Left},
	{"Qty", 1, align.Right},
	{"Unit Price", 1, align.Right},
	{"Total", 2, align.Right},
	{"Lead Time", 1, align.Center},
	{"Status", 1, align.Center},
}

// addTableHeader adds the column header row for the ledger table.
func addTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerCell := props.Cell{BackgroundColor: headerBg}

	cols := make([]core.Col, 0, len(ledgerColumns))
	for _, c := range ledgerColumns {
		cols = append(cols, col.New(c.width).Add(
			text.New(c.title, props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Align: c.align,
				Color: &props.Color{Red: 255, Green: 255, Blue: 255},
			}),
		).WithStyle(&headerCell))
	}
	m.AddRows(row.New(8).Add(cols...))
}

// addSectionRow adds a category heading with its subtotal.
func addSectionRow(m core.Maroto, s LedgerSection) {
	bg := &props.Color{Red: 233, Green: 236, Blue: 239}
	cell := &props.Cell{BackgroundColor: bg}
	bold := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left}
	boldRight := bold
	boldRight.Align = align.Right

	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(s.Index, props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center})).WithStyle(cell),
			col.New(7).Add(text.New(s.Title, bold)).WithStyle(cell),
			col.New(2).Add(text.New(FormatCurrency(s.Subtotal), boldRight)).WithStyle(cell),
			col.New(2).WithStyle(cell),
		),
	)
}

// addTableRow adds a single line item row to the ledger table.
func addTableRow(m core.Maroto, r LedgerRow) {
	values := []string{
		r.Index,
		r.Manufacturer,
		r.Description,
		formatQty(r.Qty),
		FormatAmount(r.UnitPrice),
		FormatCurrency(r.LineTotal),
		r.LeadTime,
		r.Status,
	}

	cols := make([]core.Col, 0, len(ledgerColumns))
	for i, c := range ledgerColumns {
		cols = append(cols, col.New(c.width).Add(
			text.New(values[i], props.Text{Size: 7, Align: c.align}),
		))
	}
	m.AddRows(row.New(7).Add(cols...))

	// Dimensions and notes go on a muted second line when present.
	if detail := joinNonEmpty(" | ", r.Dimensions, r.Notes); detail != "" {
		m.AddRows(
			row.New(5).Add(
				col.New(3),
				col.New(9).Add(
					text.New(detail, props.Text{Size: 6, Align: align.Left, Color: mutedColor}),
				),
			),
		)
	}
}

// addSummary adds the totals and variance section at the bottom of the PDF.
func addSummary(m core.Maroto, data LedgerData) {
	// Spacer before summary
	m.AddRows(row.New(6))

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}

	labelStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}
	valueStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}
	varianceStyle := valueStyle
	if data.OverBudget {
		varianceStyle.Color = alertColor
	}

	lines := []struct {
		label string
		value string
		style props.Text
	}{
		{"Subtotal", FormatCurrency(data.GrandTotal), valueStyle},
		{fmt.Sprintf("Sales Tax (%s)", FormatPercent(data.SalesTaxRate)), FormatCurrency(data.Tax), valueStyle},
		{"Total with Tax", FormatCurrency(data.TotalWithTax), valueStyle},
		{"Allowance", FormatCurrency(data.Allowance), valueStyle},
		{"Variance", FormatCurrency(data.Variance), varianceStyle},
	}
	for _, l := range lines {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(
					text.New(l.label, labelStyle),
				).WithStyle(summaryCell),
				col.New(4).Add(
					text.New(l.value, l.style),
				).WithStyle(summaryCell),
			),
		)
	}
}

// addTerms prints the numbered terms and conditions.
func addTerms(m core.Maroto, terms []string) {
	if len(terms) == 0 {
		return
	}
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(text.New("Terms & Conditions", props.Text{Size: 8, Style: fontstyle.Bold})),
		),
	)
	for i, t := range terms {
		m.AddRows(
			row.New(wrappedHeight(t, 180, 4)).Add(
				col.New(12).Add(text.New(fmt.Sprintf("%d. %s", i+1, t), props.Text{Size: 7, Color: mutedColor})),
			),
		)
	}
}

// addSpecEntry adds one spec book block.
func addSpecEntry(m core.Maroto, e SpecBookEntry) {
	headingBg := &props.Cell{BackgroundColor: &props.Color{Red: 233, Green: 236, Blue: 239}}
	label := props.Text{Size: 7, Style: fontstyle.Bold, Color: mutedColor}
	value := props.Text{Size: 8}

	title := joinNonEmpty(" - ", e.Manufacturer, e.Description)
	if title == "" {
		title = "(untitled item)"
	}
	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New(e.Index, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center})).WithStyle(headingBg),
			col.New(8).Add(text.New(title, props.Text{Size: 9, Style: fontstyle.Bold})).WithStyle(headingBg),
			col.New(3).Add(text.New(e.Category, props.Text{Size: 8, Align: align.Right, Color: mutedColor})).WithStyle(headingBg),
		),
	)

	m.AddRows(
		row.New(5).Add(
			col.New(3).Add(text.New("Dimensions", label)),
			col.New(3).Add(text.New("Quantity", label)),
			col.New(3).Add(text.New("Lead Time", label)),
			col.New(3).Add(text.New("Status", label)),
		),
		row.New(6).Add(
			col.New(3).Add(text.New(e.Dimensions, value)),
			col.New(3).Add(text.New(formatQty(e.Qty), value)),
			col.New(3).Add(text.New(e.LeadTime, value)),
			col.New(3).Add(text.New(e.Status, value)),
		),
	)

	if e.DetailedDescription != "" {
		m.AddRows(
			row.New(5).Add(col.New(12).Add(text.New("Specification", label))),
			row.New(wrappedHeight(e.DetailedDescription, 120, 4)).Add(
				col.New(12).Add(text.New(e.DetailedDescription, value)),
			),
		)
	}

	if len(e.Attachments) > 0 {
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New("Attachments", label))))
		for _, a := range e.Attachments {
			m.AddRows(
				row.New(5).Add(
					col.New(6).Add(text.New(a.Name, props.Text{Size: 7})),
					col.New(4).Add(text.New(a.MimeType, props.Text{Size: 7, Color: mutedColor})),
					col.New(2).Add(text.New(a.Size, props.Text{Size: 7, Align: align.Right, Color: mutedColor})),
				),
			)
		}
	}

	// Spacer
	m.AddRows(row.New(5))
}

// wrappedHeight estimates a row height for s at roughly perLine characters
// per printed line.
func wrappedHeight(s string, perLine int, lineHeight float64) float64 {
	lines := 0
	for _, para := range strings.Split(s, "\n") {
		lines += len(para)/perLine + 1
	}
	return float64(lines)*lineHeight + 1
}

// addFooter adds the generated-date line at the bottom.
func addFooter(m core.Maroto, generated string) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", generated),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: footerColor,
					},
				),
			),
		),
	)
}
