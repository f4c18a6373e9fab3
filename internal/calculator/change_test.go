package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func minuteSamples(closes ...float64) []model.PricePoint {
	start := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Time: start.Add(time.Duration(i) * time.Minute), Close: c}
	}
	return pts
}

func flatSamples(n int, close float64) []model.PricePoint {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = close
	}
	return minuteSamples(closes...)
}

func TestDailyChange(t *testing.T) {
	tests := []struct {
		price, open float64
		wantAbs     float64
		wantPct     float64
	}{
		{42.50, 40.00, 2.50, 6.25},
		{38.00, 40.00, -2.00, -5.00},
		{40.00, 40.00, 0, 0},
		{40.00, 0, 0, 0},
		{40.00, -1, 0, 0},
	}
	for _, tt := range tests {
		abs, pct := DailyChange(tt.price, tt.open)
		if !almostEqual(abs, tt.wantAbs) || !almostEqual(pct, tt.wantPct) {
			t.Errorf("DailyChange(%.2f, %.2f) = (%.4f, %.4f), want (%.4f, %.4f)",
				tt.price, tt.open, abs, pct, tt.wantAbs, tt.wantPct)
		}
	}
}

// For open > 0 the percentage must always equal abs/open*100.
func TestDailyChange_PctRelation(t *testing.T) {
	for _, pair := range [][2]float64{{103.7, 98.2}, {0.015, 0.02}, {5800, 5800}} {
		abs, pct := DailyChange(pair[0], pair[1])
		if !almostEqual(pct, abs/pair[1]*100) {
			t.Errorf("pct relation broken for price=%.4f open=%.4f: abs=%.6f pct=%.6f",
				pair[0], pair[1], abs, pct)
		}
	}
}

func TestHourlyChange_InsufficientSamples(t *testing.T) {
	for _, n := range []int{0, 1, 59} {
		abs, pct := HourlyChange(100, flatSamples(n, 99))
		if abs != 0 || pct != 0 {
			t.Errorf("%d samples: expected exact zeros, got (%.4f, %.4f)", n, abs, pct)
		}
	}
}

func TestHourlyChange_NonPositivePrice(t *testing.T) {
	abs, pct := HourlyChange(0, flatSamples(90, 50))
	if abs != 0 || pct != 0 {
		t.Errorf("zero price: expected zeros, got (%.4f, %.4f)", abs, pct)
	}
}

func TestHourlyChange_Lookback(t *testing.T) {
	// 120 samples; the one 60 positions before the last must be the base.
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 10 + float64(i)*0.01
	}
	pts := minuteSamples(closes...)
	base := closes[len(closes)-HourlyLookback]

	price := 12.34
	abs, pct := HourlyChange(price, pts)
	if !almostEqual(abs, price-base) {
		t.Errorf("abs = %.6f, want %.6f", abs, price-base)
	}
	if !almostEqual(pct, (price-base)/base*100) {
		t.Errorf("pct = %.6f, want %.6f", pct, (price-base)/base*100)
	}
}

func TestHourlyChange_ExactlySixtySamples(t *testing.T) {
	pts := flatSamples(HourlyLookback, 20)
	abs, pct := HourlyChange(25, pts)
	if !almostEqual(abs, 5) || !almostEqual(pct, 25) {
		t.Errorf("60 samples: got (%.4f, %.4f), want (5, 25)", abs, pct)
	}
}

func TestResolveScalars(t *testing.T) {
	hist := minuteSamples(10, 11, 12)

	// Quote fields present: used as-is.
	p, o, err := ResolveScalars(model.LiveQuote{Price: 12.5, Open: 10.5}, hist)
	if err != nil || p != 12.5 || o != 10.5 {
		t.Errorf("quote path: got (%.2f, %.2f, %v)", p, o, err)
	}

	// Quote absent: last/first of history.
	p, o, err = ResolveScalars(model.LiveQuote{}, hist)
	if err != nil || p != 12 || o != 10 {
		t.Errorf("history fallback: got (%.2f, %.2f, %v)", p, o, err)
	}

	// Nothing usable: the fetch fails.
	if _, _, err = ResolveScalars(model.LiveQuote{}, nil); err == nil {
		t.Error("expected error with no quote and no history")
	}
}
