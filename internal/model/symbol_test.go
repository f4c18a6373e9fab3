package model

import (
	"reflect"
	"testing"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bhp", "BHP.AX"},
		{"BHP.AX", "BHP.AX"},
		{"  pl8.ax ", "PL8.AX"},
		{"vas.", "VAS"},
		{".", ""},
		{"", ""},
		{"   ", ""},
		{"^aord", "^AORD.AX"},
	}
	for _, tt := range tests {
		if got := NormalizeSymbol(tt.in); got != tt.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSymbolSet(t *testing.T) {
	in := []string{"bhp.ax", "BHP.AX", "pl8.ax", "", "  "}
	want := []string{"BHP.AX", "PL8.AX"}
	if got := NormalizeSymbolSet(in); !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeSymbolSet(%v) = %v, want %v", in, got, want)
	}
}

func TestLookupTimeRange_Fallback(t *testing.T) {
	r := LookupTimeRange("nonsense")
	if r.Label != DefaultTimeRange {
		t.Errorf("expected fallback to %q, got %q", DefaultTimeRange, r.Label)
	}
	r = LookupTimeRange("6 Hrs")
	if r.Period != "1d" || r.Interval != "5m" || !r.Intraday {
		t.Errorf("unexpected mapping for 6 Hrs: %+v", r)
	}
}
