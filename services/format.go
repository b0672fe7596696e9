package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount. main sets it from config.
var CurrencySymbol = "$"

// FormatCurrency formats an amount with thousands separators and exactly
// 2 decimal places, e.g. $1,234,567.89. Half cents round away from zero.
func FormatCurrency(amount decimal.Decimal) string {
	amount = amount.Round(2)
	negative := amount.IsNegative()
	amount = amount.Abs()

	// Split into integer and decimal parts.
	parts := strings.SplitN(amount.StringFixed(2), ".", 2)
	whole := amount.Truncate(0).BigInt()

	result := CurrencySymbol + humanize.BigComma(whole) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// FormatAmount is FormatCurrency for stored float64 values such as the
// unit price or the allowance.
func FormatAmount(v float64) string {
	return FormatCurrency(decimal.NewFromFloat(v))
}

// FormatPercent renders a tax rate without trailing zeros: 8.25%, 10%.
func FormatPercent(rate float64) string {
	return decimal.NewFromFloat(rate).String() + "%"
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty float64) string {
	if !math.IsInf(qty, 0) && qty == math.Trunc(qty) {
		return humanize.BigComma(decimal.NewFromFloat(qty).BigInt())
	}
	return fmt.Sprintf("%.2f", qty)
}
