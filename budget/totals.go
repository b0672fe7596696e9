package budget

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals is derived from a document on every read and never stored.
type Totals struct {
	CategoryTotals map[string]decimal.Decimal `json:"categoryTotals"`
	GrandTotal     decimal.Decimal            `json:"grandTotal"`
	Tax            decimal.Decimal            `json:"tax"`
	TotalWithTax   decimal.Decimal            `json:"totalWithTax"`
	Variance       decimal.Decimal            `json:"variance"`
}

// OverBudget reports whether the total with tax exceeds the allowance.
func (t Totals) OverBudget() bool {
	return t.Variance.IsNegative()
}

// LineTotal returns quantity * unit price for one item.
func LineTotal(it LineItem) decimal.Decimal {
	return decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(it.UnitPrice))
}

// CategoryTotal sums the line totals of c.
func CategoryTotal(c Category) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(LineTotal(it))
	}
	return sum
}

// ComputeTotals derives category subtotals, grand total, tax, total with
// tax and variance. Stored numerics are assumed valid; the mutation API and
// the loader guarantee that. Sums are exact decimals, rounding is left to
// formatting.
func ComputeTotals(info ProjectInfo, categories []Category) Totals {
	t := Totals{
		CategoryTotals: make(map[string]decimal.Decimal, len(categories)),
		GrandTotal:     decimal.Zero,
	}
	for _, c := range categories {
		ct := CategoryTotal(c)
		t.CategoryTotals[c.ID] = ct
		t.GrandTotal = t.GrandTotal.Add(ct)
	}
	t.Tax = t.GrandTotal.Mul(decimal.NewFromFloat(info.SalesTaxRate)).Div(hundred)
	t.TotalWithTax = t.GrandTotal.Add(t.Tax)
	t.Variance = decimal.NewFromFloat(info.Allowance).Sub(t.TotalWithTax)
	return t
}
