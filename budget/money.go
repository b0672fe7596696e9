package budget

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNotANumber = errors.New("not a number")
	ErrNotFinite  = errors.New("not a finite number")
	ErrNegative   = errors.New("negative value")
)

// ParseAmount parses user input for a quantity, price, allowance or tax
// rate. Thousands separators and a leading currency symbol are tolerated.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrNotANumber
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrNotANumber
	}
	return v, CheckAmount(v)
}

// CheckAmount validates a numeric field value: finite and non-negative.
func CheckAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNotFinite
	}
	if v < 0 {
		return ErrNegative
	}
	return nil
}
