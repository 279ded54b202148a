package mq

import "time"

const RoutingKeyReminderDue = "reminder.due"

// ReminderDuePayload announces one occurrence of a reminder. ReminderDate
// identifies the occurrence, so a redelivered message for an occurrence
// that was already handled is recognised and skipped.
type ReminderDuePayload struct {
	ReminderID   int64     `json:"reminder_id"`
	UserID       int64     `json:"user_id"`
	ReminderDate time.Time `json:"reminder_date"`
}
