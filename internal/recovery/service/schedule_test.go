package service

import (
	"testing"
	"time"
)

func TestNextRetryAtExponentialBackoff(t *testing.T) {
	policy := RetryPolicy{
		InitialDelay:      10 * time.Minute,
		BackoffMultiplier: 2,
		MaxDelay:          60 * time.Minute,
		MaxRetries:        5,
	}
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 10 * time.Minute},
		{1, 20 * time.Minute},
		{2, 40 * time.Minute},
		{3, 60 * time.Minute}, // 80 capped at 60
		{4, 60 * time.Minute},
		{10, 60 * time.Minute},
	}

	for _, tt := range tests {
		got := NextRetryAt(policy, now, tt.attempt)
		if want := now.Add(tt.want); !got.Equal(want) {
			t.Fatalf("attempt %d: got %v, want %v", tt.attempt, got, want)
		}
	}
}

func TestNextRetryAtReturnsUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 1, 15, 17, 30, 0, 0, ist)

	got := NextRetryAt(DefaultRetryPolicy, now, 0)
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC result, got %v", got.Location())
	}
	if want := now.UTC().Add(DefaultRetryPolicy.InitialDelay); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
