// Package views renders the printable budget ledger.
package views

import "ffebudget/services"

var ledgerHeadings = []string{"#", "Manufacturer", "Description", "Dimensions", "Qty", "Unit Price", "Total", "Lead Time", "Status"}

type summaryLine struct {
	Label string
	Value string
	Over  bool
}

// summaryLines lists the totals under the ledger. Variance is flagged when
// the budget is exceeded.
func summaryLines(data services.LedgerData) []summaryLine {
	return []summaryLine{
		{Label: "Subtotal", Value: services.FormatCurrency(data.GrandTotal)},
		{Label: "Sales Tax (" + services.FormatPercent(data.SalesTaxRate) + ")", Value: services.FormatCurrency(data.Tax)},
		{Label: "Total with Tax", Value: services.FormatCurrency(data.TotalWithTax)},
		{Label: "Allowance", Value: services.FormatCurrency(data.Allowance)},
		{Label: "Variance", Value: services.FormatCurrency(data.Variance), Over: data.OverBudget},
	}
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
