package model

import "time"

type Recurrence string

const (
	RecurrenceNone     Recurrence = ""
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiweekly Recurrence = "biweekly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly:
		return true
	}
	return false
}

// Next returns the occurrence after t, or false for a one-shot reminder.
func (r Recurrence) Next(t time.Time) (time.Time, bool) {
	switch r {
	case RecurrenceDaily:
		return t.AddDate(0, 0, 1), true
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7), true
	case RecurrenceBiweekly:
		return t.AddDate(0, 0, 14), true
	}
	return time.Time{}, false
}

type Reminder struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	ProjectID          *int64     `json:"project_id,omitempty"`
	PaperID            *int64     `json:"paper_id,omitempty"`
	ReminderDate       time.Time  `json:"reminder_date"`
	Message            string     `json:"message"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurrenceInterval Recurrence `json:"recurrence_interval,omitempty"`
	SentAt             *time.Time `json:"sent_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// DueReminder is a reminder joined with its owner's address, as read by the dispatcher.
type DueReminder struct {
	Reminder
	Email string
	Name  string
}
