package exports

import (
	"testing"
	"time"
)

func TestFormatAmount(t *testing.T) {
	cents := func(v int64) *int64 { return &v }

	tests := []struct {
		name  string
		cents *int64
		want  string
	}{
		{"nil is empty", nil, ""},
		{"whole amount", cents(150000), "1500.00"},
		{"sub-unit amount", cents(4999), "49.99"},
		{"under one unit", cents(7), "0.07"},
		{"zero", cents(0), "0.00"},
		{"negative", cents(-1234), "-12.34"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAmount(tt.cents); got != tt.want {
				t.Fatalf("formatAmount() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTimePtr(t *testing.T) {
	if got := formatTimePtr(nil); got != "" {
		t.Fatalf("formatTimePtr(nil) = %q, want empty", got)
	}

	loc := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2026, 3, 15, 10, 30, 0, 0, loc)
	if got := formatTimePtr(&at); got != "2026-03-15T05:00:00Z" {
		t.Fatalf("formatTimePtr() = %q, want UTC rendering", got)
	}
}
