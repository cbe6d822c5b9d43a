package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"national number gets default region", "9876543210", "+919876543210"},
		{"already E.164", "+919876543210", "+919876543210"},
		{"whitespace trimmed", "  +91 98765 43210 ", "+919876543210"},
		{"foreign number with country code", "+14155552671", "+14155552671"},
		{"invalid number returned as-is", "12", "12"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input); got != tt.want {
				t.Fatalf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
