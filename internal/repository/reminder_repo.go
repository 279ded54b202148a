package repository

import (
	"context"
	"time"

	"researchhub/internal/model"
	"researchhub/pkg/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ReminderRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReminderRepository(db *pgxpool.Pool, logger *zap.Logger) *ReminderRepository {
	return &ReminderRepository{db: db, logger: logger}
}

const reminderColumns = `r.id, r.user_id, r.project_id, r.paper_id, r.reminder_date, r.message,
        r.is_recurring, COALESCE(r.recurrence_interval, ''), r.sent_at, r.created_at`

func scanReminder(row pgx.Row, extra ...any) (model.Reminder, error) {
	var rem model.Reminder
	var interval string
	dest := []any{
		&rem.ID, &rem.UserID, &rem.ProjectID, &rem.PaperID, &rem.ReminderDate, &rem.Message,
		&rem.IsRecurring, &interval, &rem.SentAt, &rem.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return rem, err
	}
	rem.RecurrenceInterval = model.Recurrence(interval)
	return rem, nil
}

// Create inserts a reminder attached to a project or a paper the user owns.
func (r *ReminderRepository) Create(ctx context.Context, rem *model.Reminder) error {
	var parentQuery string
	var parentID int64
	switch {
	case rem.ProjectID != nil:
		parentQuery, parentID = `SELECT true FROM projects WHERE id = $1 AND user_id = $2`, *rem.ProjectID
	case rem.PaperID != nil:
		parentQuery, parentID = `SELECT true FROM research_papers WHERE id = $1 AND user_id = $2`, *rem.PaperID
	default:
		return apperr.Validation("reminder needs a project or a paper")
	}

	var owned bool
	if err := r.db.QueryRow(ctx, parentQuery, parentID, rem.UserID).Scan(&owned); err != nil {
		if rem.ProjectID != nil {
			return mapErr(err, "project")
		}
		return mapErr(err, "paper")
	}

	var interval *string
	if rem.RecurrenceInterval != model.RecurrenceNone {
		s := string(rem.RecurrenceInterval)
		interval = &s
	}
	query := `
        INSERT INTO reminders (user_id, project_id, paper_id, reminder_date, message, is_recurring, recurrence_interval, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		rem.UserID, rem.ProjectID, rem.PaperID, rem.ReminderDate, rem.Message, rem.IsRecurring, interval,
	).Scan(&rem.ID, &rem.CreatedAt)
	if err != nil {
		return mapErr(err, "reminder")
	}
	r.logger.Debug("Reminder created",
		zap.Int64("reminder_id", rem.ID),
		zap.Int64("user_id", rem.UserID),
		zap.Time("reminder_date", rem.ReminderDate),
	)
	return nil
}

// ListByParent returns reminders for one project or paper, soonest first.
func (r *ReminderRepository) ListByParent(ctx context.Context, userID int64, projectID, paperID *int64) ([]model.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
        FROM reminders r
        WHERE r.user_id = $1
          AND ($2::BIGINT IS NULL OR r.project_id = $2)
          AND ($3::BIGINT IS NULL OR r.paper_id = $3)
        ORDER BY r.reminder_date ASC, r.id
    `
	rows, err := r.db.Query(ctx, query, userID, projectID, paperID)
	if err != nil {
		return nil, mapErr(err, "reminder")
	}
	reminders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Reminder, error) {
		return scanReminder(row)
	})
	return reminders, mapErr(err, "reminder")
}

func (r *ReminderRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapErr(err, "reminder")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("reminder")
	}
	return nil
}

// ClaimDue marks up to limit due, unsent reminders as queued and returns
// them with the owner's address. Rows queued less than staleAfter ago are
// skipped so a reminder is not published twice while its delivery is pending.
func (r *ReminderRepository) ClaimDue(ctx context.Context, now time.Time, staleAfter time.Duration, limit int) ([]model.DueReminder, error) {
	query := `
        WITH due AS (
            SELECT id FROM reminders
            WHERE sent_at IS NULL
              AND reminder_date <= $1
              AND (queued_at IS NULL OR queued_at < $2)
            ORDER BY reminder_date
            LIMIT $3
            FOR UPDATE SKIP LOCKED
        ), claimed AS (
            UPDATE reminders SET queued_at = $1
            FROM due
            WHERE reminders.id = due.id
            RETURNING reminders.*
        )
        SELECT ` + reminderColumns + `, u.email, u.name
        FROM claimed r
        JOIN users u ON u.id = r.user_id
        ORDER BY r.reminder_date
    `
	rows, err := r.db.Query(ctx, query, now, now.Add(-staleAfter), limit)
	if err != nil {
		return nil, mapErr(err, "reminder")
	}
	due, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DueReminder, error) {
		var d model.DueReminder
		rem, err := scanReminder(row, &d.Email, &d.Name)
		d.Reminder = rem
		return d, err
	})
	if err != nil {
		return nil, mapErr(err, "reminder")
	}
	if len(due) > 0 {
		r.logger.Info("Claimed due reminders", zap.Int("count", len(due)))
	}
	return due, nil
}

// FindDue loads one reminder with its owner's address.
func (r *ReminderRepository) FindDue(ctx context.Context, id int64) (*model.DueReminder, error) {
	query := `SELECT ` + reminderColumns + `, u.email, u.name
        FROM reminders r
        JOIN users u ON u.id = r.user_id
        WHERE r.id = $1
    `
	var d model.DueReminder
	rem, err := scanReminder(r.db.QueryRow(ctx, query, id), &d.Email, &d.Name)
	if err != nil {
		return nil, mapErr(err, "reminder")
	}
	d.Reminder = rem
	return &d, nil
}

// MarkSent closes a one-shot reminder.
func (r *ReminderRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE reminders SET sent_at = $2 WHERE id = $1 AND sent_at IS NULL`, id, at)
	return mapErr(err, "reminder")
}

// Reschedule moves a recurring reminder to its next occurrence. The update
// only applies while reminder_date still equals from, so a redelivered
// message cannot advance the same reminder twice.
func (r *ReminderRepository) Reschedule(ctx context.Context, id int64, from, next time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE reminders SET reminder_date = $3, queued_at = NULL
        WHERE id = $1 AND reminder_date = $2 AND sent_at IS NULL
    `, id, from, next)
	if err != nil {
		return false, mapErr(err, "reminder")
	}
	return tag.RowsAffected() > 0, nil
}
