package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskRecoveryRetryReminder = "recovery.retry_reminder"

type RecoveryRetryReminderPayload struct {
	AttemptID string `json:"attemptId"`
}

func NewRecoveryRetryReminderTask(payload RecoveryRetryReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecoveryRetryReminder, data), nil
}

func ParseRecoveryRetryReminderPayload(task *asynq.Task) (RecoveryRetryReminderPayload, error) {
	var payload RecoveryRetryReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RecoveryRetryReminderPayload{}, err
	}
	return payload, nil
}
