package service

import "testing"

func TestClassifyFailureByCode(t *testing.T) {
	tests := []struct {
		code string
		want Category
	}{
		{"issuer_declined", CategoryIssuerDecline},
		{"do_not_honor", CategoryIssuerDecline},
		{"transaction_not_permitted", CategoryIssuerDecline},
		{"insufficient_funds", CategoryFunds},
		{"otp_timeout", CategoryAuthTimeout},
		{"3ds_timeout", CategoryAuthTimeout},
		{"network_error", CategoryNetwork},
		{"upi_pending", CategoryUPIPending},
		{"RZP001_INSUFFICIENT_FUNDS", CategoryFunds},
		{"RZP_NETWORK_ISSUE", CategoryNetwork},
		{"RZP_UPI_INVALID_VPA", CategoryIssuerDecline},
		{"RZP_CARD_BLOCKED", CategoryIssuerDecline},
		{"some_new_code", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := ClassifyFailure(tt.code, "")
			if got != tt.want {
				t.Fatalf("ClassifyFailure(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassifyFailureByMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Category
	}{
		{"otp keyword", "OTP entry timed out", CategoryAuthTimeout},
		{"3ds keyword", "3DS challenge failed", CategoryAuthTimeout},
		{"authentication keyword", "authentication could not complete", CategoryAuthTimeout},
		{"network keyword", "network unreachable", CategoryNetwork},
		{"timeout keyword", "request timeout at acquirer", CategoryNetwork},
		{"gateway keyword", "gateway returned 502", CategoryNetwork},
		{"insufficient keyword", "Insufficient balance in account", CategoryFunds},
		{"upi pending", "UPI collect request pending", CategoryUPIPending},
		{"upi without pending", "UPI declined", CategoryUnknown},
		{"no signal", "card torn", CategoryUnknown},
		{"empty", "", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFailure("", tt.message)
			if got != tt.want {
				t.Fatalf("ClassifyFailure(_, %q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestClassifyFailureCodeBeatsMessage(t *testing.T) {
	got := ClassifyFailure("insufficient_funds", "network glitch")
	if got != CategoryFunds {
		t.Fatalf("code should win over message, got %q", got)
	}
}

func TestClassifyEventHardness(t *testing.T) {
	tests := []struct {
		name string
		code string
		want Hardness
	}{
		{"issuer decline is hard", "issuer_declined", HardnessHard},
		{"do not honor is hard", "do_not_honor", HardnessHard},
		{"insufficient funds is soft", "insufficient_funds", HardnessSoft},
		{"3ds timeout is soft", "3ds_timeout", HardnessSoft},
		{"unknown is soft", "mystery_code", HardnessSoft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyEvent(tt.code, "")
			if got.Hardness != tt.want {
				t.Fatalf("ClassifyEvent(%q).Hardness = %q, want %q", tt.code, got.Hardness, tt.want)
			}
		})
	}
}

func TestNextRetryOptions(t *testing.T) {
	network := NextRetryOptions(CategoryNetwork)
	if network.ScheduleStrategy != "network_retry" {
		t.Fatalf("network strategy = %q", network.ScheduleStrategy)
	}
	if network.CooldownSeconds != 30 {
		t.Fatalf("network cooldown = %d, want 30", network.CooldownSeconds)
	}
	if len(network.DelaysMinutes) != 2 || network.DelaysMinutes[1] != 5 {
		t.Fatalf("network delays = %v", network.DelaysMinutes)
	}

	funds := NextRetryOptions(CategoryFunds)
	if funds.ScheduleStrategy != "payday" {
		t.Fatalf("funds strategy = %q", funds.ScheduleStrategy)
	}
	if len(funds.DelaysMinutes) != 0 {
		t.Fatalf("funds should have no fixed delays, got %v", funds.DelaysMinutes)
	}

	pending := NextRetryOptions(CategoryUPIPending)
	if pending.ScheduleStrategy != "poll" {
		t.Fatalf("upi_pending strategy = %q", pending.ScheduleStrategy)
	}

	unknown := NextRetryOptions(CategoryUnknown)
	if unknown.ScheduleStrategy != "standard" {
		t.Fatalf("unknown strategy = %q", unknown.ScheduleStrategy)
	}
}
