package service

import "strings"

// Category buckets a gateway failure for routing and retry strategy.
type Category string

const (
	CategoryIssuerDecline Category = "issuer_decline"
	CategoryFunds         Category = "funds"
	CategoryAuthTimeout   Category = "auth_timeout"
	CategoryNetwork       Category = "network"
	CategoryUPIPending    Category = "upi_pending"
	CategoryUnknown       Category = "unknown"
)

// Hardness tells whether a failure is worth retrying with the same
// instrument. Hard failures need a different method.
type Hardness string

const (
	HardnessSoft Hardness = "soft"
	HardnessHard Hardness = "hard"
)

// codeCategories maps known gateway failure codes to categories. Codes take
// precedence over message keywords.
var codeCategories = map[string]Category{
	"issuer_declined":           CategoryIssuerDecline,
	"do_not_honor":              CategoryIssuerDecline,
	"transaction_not_permitted": CategoryIssuerDecline,
	"insufficient_funds":        CategoryFunds,
	"otp_timeout":               CategoryAuthTimeout,
	"3ds_timeout":               CategoryAuthTimeout,
	"network_error":             CategoryNetwork,
	"upi_pending":               CategoryUPIPending,

	// Razorpay-specific codes
	"RZP001_INSUFFICIENT_FUNDS": CategoryFunds,
	"RZP_NETWORK_ISSUE":         CategoryNetwork,
	"RZP_UPI_INVALID_VPA":       CategoryIssuerDecline,
	"RZP_CARD_BLOCKED":          CategoryIssuerDecline,
}

// ClassifyFailure resolves a failure code and free-text message into a
// category. Unknown inputs never error; they land in CategoryUnknown.
func ClassifyFailure(code, message string) Category {
	if code != "" {
		if category, ok := codeCategories[code]; ok {
			return category
		}
	}
	if message != "" {
		m := strings.ToLower(message)
		switch {
		case containsAny(m, "otp", "3ds", "authentication"):
			return CategoryAuthTimeout
		case containsAny(m, "network", "timeout", "gateway"):
			return CategoryNetwork
		case strings.Contains(m, "insufficient"):
			return CategoryFunds
		case strings.Contains(m, "upi") && strings.Contains(m, "pending"):
			return CategoryUPIPending
		}
	}
	return CategoryUnknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// RetryOptions describes how a failed payment should be retried.
type RetryOptions struct {
	Recommendation   string   `json:"recommendation"`
	Alternatives     []string `json:"alt"`
	CooldownSeconds  int      `json:"cooldown_seconds,omitempty"`
	ScheduleStrategy string   `json:"schedule_strategy"`
	DelaysMinutes    []int    `json:"delays_minutes"`
}

// NextRetryOptions returns the retry playbook for a failure category.
func NextRetryOptions(category Category) RetryOptions {
	switch category {
	case CategoryNetwork, CategoryAuthTimeout:
		return RetryOptions{
			Recommendation:   "Retry same method with fresh auth",
			Alternatives:     []string{"upi_collect", "netbanking"},
			CooldownSeconds:  30,
			ScheduleStrategy: "network_retry",
			DelaysMinutes:    []int{0, 5},
		}
	case CategoryFunds:
		return RetryOptions{
			Recommendation:   "Suggest alternate method",
			Alternatives:     []string{"netbanking", "card_other_bank", "upi_collect"},
			ScheduleStrategy: "payday",
			DelaysMinutes:    []int{},
		}
	case CategoryIssuerDecline:
		return RetryOptions{
			Recommendation:   "Try alternate card or netbanking",
			Alternatives:     []string{"card_other_bank", "netbanking", "upi_collect"},
			ScheduleStrategy: "standard",
			DelaysMinutes:    []int{0},
		}
	case CategoryUPIPending:
		return RetryOptions{
			Recommendation:   "Poll or provide cancel+alternate",
			Alternatives:     []string{"netbanking", "card"},
			ScheduleStrategy: "poll",
			DelaysMinutes:    []int{0, 2, 5},
		}
	default:
		return RetryOptions{
			Recommendation:   "Offer alternate method",
			Alternatives:     []string{"upi_collect", "netbanking", "card"},
			ScheduleStrategy: "standard",
			DelaysMinutes:    []int{0},
		}
	}
}

// Classification is the full classifier verdict for a failure event.
type Classification struct {
	Category Category     `json:"category"`
	Hardness Hardness     `json:"hardness"`
	Options  RetryOptions `json:"options"`
}

// ClassifyEvent combines category, retry options and hardness. Issuer
// declines are hard; everything else is soft and recoverable with the same
// instrument.
func ClassifyEvent(code, message string) Classification {
	category := ClassifyFailure(code, message)

	hardness := HardnessSoft
	if category == CategoryIssuerDecline {
		hardness = HardnessHard
	}
	switch code {
	case "insufficient_funds", "auth_timeout", "3ds_timeout":
		hardness = HardnessSoft
	case "issuer_declined":
		hardness = HardnessHard
	}

	return Classification{
		Category: category,
		Hardness: hardness,
		Options:  NextRetryOptions(category),
	}
}
