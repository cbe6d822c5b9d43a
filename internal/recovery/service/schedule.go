package service

import "time"

// RetryPolicy drives exponential backoff scheduling for recovery reminders.
type RetryPolicy struct {
	InitialDelay      time.Duration
	BackoffMultiplier int
	MaxDelay          time.Duration
	MaxRetries        int
}

// DefaultRetryPolicy spaces reminders 30 minutes apart, doubling up to a day.
var DefaultRetryPolicy = RetryPolicy{
	InitialDelay:      30 * time.Minute,
	BackoffMultiplier: 2,
	MaxDelay:          24 * time.Hour,
	MaxRetries:        5,
}

// NextRetryAt computes the time of the next retry using exponential backoff
// capped at the policy's max delay. attempt is zero-based.
func NextRetryAt(policy RetryPolicy, now time.Time, attempt int) time.Time {
	delay := policy.InitialDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(policy.BackoffMultiplier)
		if delay >= policy.MaxDelay {
			delay = policy.MaxDelay
			break
		}
	}
	if delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	return now.UTC().Add(delay)
}
