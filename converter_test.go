package wellets

import (
	"errors"
	"math"
	"testing"
)

func TestConvertAmount(t *testing.T) {
	tests := []struct {
		name             string
		from, to, amount float64
		want             float64
	}{
		{"eur to reference", 0.8, 1, 100, 125},
		{"btc to usd", 0.01, 1, 1000, 100000},
		{"usd to eur", 1, 0.8, 100, 80},
		{"same rate", 0.8, 0.8, 42, 42},
		{"zero amount", 0.8, 1, 0, 0},
		{"negative amount", 1, 0.8, -10, -8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertAmount(tt.from, tt.to, tt.amount); !near(got, tt.want) {
				t.Errorf("ConvertAmount(%v, %v, %v) = %v, want %v", tt.from, tt.to, tt.amount, got, tt.want)
			}
		})
	}
}

func TestRateRatio(t *testing.T) {
	if got := RateRatio(0.8, 1); got != 0.8 {
		t.Errorf("RateRatio(0.8, 1) = %v, want 0.8", got)
	}
	if got := RateRatio(1, 0.01); !near(got, 100) {
		t.Errorf("RateRatio(1, 0.01) = %v, want 100", got)
	}
}

func TestToReferenceUnit(t *testing.T) {
	if got := ToReferenceUnit(0.8, 100); !near(got, 125) {
		t.Errorf("ToReferenceUnit(0.8, 100) = %v, want 125", got)
	}
	for _, rate := range []float64{1, 0.8, 0.01, 5.3} {
		if got, want := ToReferenceUnit(rate, 77), ConvertAmount(rate, 1, 77); !near(got, want) {
			t.Errorf("ToReferenceUnit(%v, 77) = %v, want ConvertAmount(%v, 1, 77) = %v", rate, got, rate, want)
		}
	}
}

func TestConvertAmount_RoundTrip(t *testing.T) {
	rates := []float64{1, 0.8, 0.01, 150.5, 3e-6}
	for _, a := range rates {
		for _, b := range rates {
			got := ConvertAmount(b, a, ConvertAmount(a, b, 1234.5))
			if !near(got, 1234.5) {
				t.Errorf("round trip %v -> %v -> %v = %v, want 1234.5", a, b, a, got)
			}
		}
	}
}

func TestConvertAmount_Linear(t *testing.T) {
	x := ConvertAmount(0.8, 1, 10)
	if got := ConvertAmount(0.8, 1, 30); !near(got, 3*x) {
		t.Errorf("ConvertAmount(0.8, 1, 30) = %v, want %v", got, 3*x)
	}
}

func TestConvert(t *testing.T) {
	got, err := Convert(eur, usd, 100)
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}
	if !near(got, 125) {
		t.Errorf("Convert(EUR, USD, 100) = %v, want 125", got)
	}

	got, err = Convert(btc, btc, 3)
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}
	if got != 3 {
		t.Errorf("Convert(BTC, BTC, 3) = %v, want 3", got)
	}
}

func TestConvert_InvalidRate(t *testing.T) {
	for _, rate := range []float64{0, -1, math.Inf(1), math.NaN()} {
		bad := Currency{ID: "bad", Acronym: "BAD", DollarRate: rate}
		if _, err := Convert(bad, usd, 1); !errors.Is(err, ErrInvalidCurrencyRate) {
			t.Errorf("Convert(rate %v, USD) error = %v, want ErrInvalidCurrencyRate", rate, err)
		}
		_, err := Convert(usd, bad, 1)
		var rateErr *InvalidCurrencyRateError
		if !errors.As(err, &rateErr) {
			t.Fatalf("Convert(USD, rate %v) error = %v, want *InvalidCurrencyRateError", rate, err)
		}
		if rateErr.CurrencyID != "bad" {
			t.Errorf("InvalidCurrencyRateError.CurrencyID = %q, want %q", rateErr.CurrencyID, "bad")
		}
	}
}

func TestQuoteRate(t *testing.T) {
	// 1 BTC is quoted 100 USD
	if got := QuoteRate(usd, 100); got != 0.01 {
		t.Errorf("QuoteRate(USD, 100) = %v, want 0.01", got)
	}
	// 1 USD is quoted 0.8 EUR
	if got := QuoteRate(eur, 0.8); !near(got, 1) {
		t.Errorf("QuoteRate(EUR, 0.8) = %v, want 1", got)
	}
}
