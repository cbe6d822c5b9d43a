package email

const (
	subjectRecoveryLinkFmt  = "Complete your payment to %s"
	subjectRetryReminderFmt = "Reminder: your payment to %s is still pending"
)
