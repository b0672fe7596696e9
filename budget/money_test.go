package budget

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr error
	}{
		{"170", 170, nil},
		{"  46 ", 46, nil},
		{"$1,250.50", 1250.5, nil},
		{"0", 0, nil},
		{"10.25", 10.25, nil},
		{"", 0, ErrNotANumber},
		{"abc", 0, ErrNotANumber},
		{"12abc", 0, ErrNotANumber},
		{"-1", 0, ErrNegative},
		{"NaN", 0, ErrNotFinite},
		{"Inf", 0, ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseAmount(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCheckAmount(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want error
	}{
		{"zero", 0, nil},
		{"positive", 42.5, nil},
		{"negative", -0.5, ErrNegative},
		{"nan", math.NaN(), ErrNotFinite},
		{"positive infinity", math.Inf(1), ErrNotFinite},
		{"negative infinity", math.Inf(-1), ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckAmount(tt.in); !errors.Is(err, tt.want) {
				t.Errorf("CheckAmount(%v) = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}
