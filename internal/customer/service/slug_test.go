package service

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Acme Store", "acme-store"},
		{"already lowercase", "acme", "acme"},
		{"punctuation collapsed", "Acme, Inc.", "acme-inc"},
		{"multiple separators", "Acme   --  Store", "acme-store"},
		{"leading and trailing junk", "  ***Acme***  ", "acme"},
		{"digits kept", "Shop 24x7", "shop-24x7"},
		{"unicode stripped", "Café Déjà Vu", "caf-d-j-vu"},
		{"empty falls back", "", "org"},
		{"only symbols falls back", "!!!", "org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.input)
			if got != tt.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSuffixedSlug(t *testing.T) {
	if got := suffixedSlug("acme-store", 0); got != "acme-store" {
		t.Fatalf("suffix 0 = %q, want base unchanged", got)
	}
	if got := suffixedSlug("acme-store", 1); got != "acme-store-1" {
		t.Fatalf("suffix 1 = %q, want acme-store-1", got)
	}
	if got := suffixedSlug("acme-store", 12); got != "acme-store-12" {
		t.Fatalf("suffix 12 = %q, want acme-store-12", got)
	}
}
