package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqcontracts "researchhub/contracts/mq"
	"researchhub/internal/mail"
	"researchhub/internal/model"
	"researchhub/pkg/logger"
	"researchhub/pkg/metrics"
	"researchhub/pkg/util"

	"go.uber.org/zap"
)

const (
	maxRetries     = 5
	retryHandlerID = "reminder"
)

type ReminderStore interface {
	FindDue(ctx context.Context, id int64) (*model.DueReminder, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
	Reschedule(ctx context.Context, id int64, from, next time.Time) (bool, error)
}

type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type DeadLetterPublisher interface {
	PublishToDLQ(routingKey string, payload []byte, originalError string) error
}

// ReminderDueHandler emails the owner of a due reminder, then closes a
// one-shot reminder or moves a recurring one to its next occurrence.
type ReminderDueHandler struct {
	reminders    ReminderStore
	mailer       mail.Sender
	retryCounter RetryCounter
	dlq          DeadLetterPublisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewReminderDueHandler(
	reminders ReminderStore,
	mailer mail.Sender,
	retryCounter RetryCounter,
	dlq DeadLetterPublisher,
	logger *zap.Logger,
) *ReminderDueHandler {
	return &ReminderDueHandler{
		reminders:    reminders,
		mailer:       mailer,
		retryCounter: retryCounter,
		dlq:          dlq,
		logger:       logger.Named("reminder_due"),
		now:          time.Now,
	}
}

// Handle returns nil to ack and an error to have the message requeued.
func (h *ReminderDueHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger)

	var p mqcontracts.ReminderDuePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error("Invalid reminder.due payload, sending to DLQ", zap.Error(err))
		h.deadLetter(raw, err)
		metrics.IncrementReminderDispatch("dead_letter")
		return nil
	}

	d, err := h.reminders.FindDue(ctx, p.ReminderID)
	if err != nil {
		return h.handleRepoError(log, "FindDue", err)
	}

	// 幂等：该 occurrence 已处理过（已发送或已顺延）
	if d.SentAt != nil || !d.ReminderDate.Equal(p.ReminderDate) {
		log.Info("Reminder occurrence already handled, skip",
			zap.Int64("reminder_id", p.ReminderID),
		)
		metrics.IncrementReminderDispatch("duplicate")
		return nil
	}

	retryKey := util.FormatRetryKey(retryHandlerID, p.ReminderID, p.ReminderDate)

	if err := h.mailer.Send(ctx, reminderMessage(d)); err != nil {
		return h.handleSendError(ctx, log, err, retryKey, raw, d)
	}

	if err := h.settle(ctx, d); err != nil {
		return h.handleRepoError(log, "settle", err)
	}
	if err := h.retryCounter.Reset(ctx, retryKey); err != nil {
		log.Warn("Failed to reset retry counter", zap.String("key", retryKey), zap.Error(err))
	}

	metrics.IncrementReminderDispatch("sent")
	log.Info("Reminder delivered",
		zap.Int64("reminder_id", d.ID),
		zap.Int64("user_id", d.UserID),
		zap.Bool("recurring", d.IsRecurring),
	)
	return nil
}

// settle closes the current occurrence: a one-shot reminder is marked sent,
// a recurring one moves to its first occurrence after now.
func (h *ReminderDueHandler) settle(ctx context.Context, d *model.DueReminder) error {
	now := h.now().UTC()
	next, ok := d.RecurrenceInterval.Next(d.ReminderDate)
	if !d.IsRecurring || !ok {
		return h.reminders.MarkSent(ctx, d.ID, now)
	}
	for !next.After(now) {
		next, _ = d.RecurrenceInterval.Next(next)
	}
	moved, err := h.reminders.Reschedule(ctx, d.ID, d.ReminderDate, next)
	if err != nil {
		return err
	}
	if !moved {
		h.logger.Info("Reminder already rescheduled", zap.Int64("reminder_id", d.ID))
	}
	return nil
}

func (h *ReminderDueHandler) handleSendError(ctx context.Context, log *zap.Logger, err error, retryKey string, raw json.RawMessage, d *model.DueReminder) error {
	isRetryable, errType := util.IsRetryableError(err)

	retryCount, cerr := h.retryCounter.IncrementAndGet(ctx, retryKey)
	if cerr != nil {
		log.Warn("Failed to increment retry counter", zap.String("key", retryKey), zap.Error(cerr))
	}

	log.Warn("Reminder email failed",
		zap.Int64("reminder_id", d.ID),
		zap.String("error_type", errType),
		zap.Bool("retryable", isRetryable),
		zap.Int64("retry", retryCount),
		zap.Error(err),
	)

	if util.ShouldRetry(retryCount, maxRetries, isRetryable) {
		metrics.IncrementReminderDispatch("retry")
		return err
	}

	// 放弃：写入 DLQ，并关闭本次 occurrence，避免被调度器再次领取
	h.deadLetter(raw, err)
	if serr := h.settle(ctx, d); serr != nil {
		log.Error("Failed to settle dead-lettered reminder", zap.Int64("reminder_id", d.ID), zap.Error(serr))
	}
	_ = h.retryCounter.Reset(ctx, retryKey)
	metrics.IncrementReminderDispatch("dead_letter")
	return nil
}

func (h *ReminderDueHandler) handleRepoError(log *zap.Logger, op string, err error) error {
	isRetryable, errType := util.IsRetryableError(err)
	log.Error("Repo error",
		zap.String("op", op),
		zap.String("error_type", errType),
		zap.Bool("retryable", isRetryable),
		zap.Error(err),
	)
	if isRetryable {
		return err
	}
	metrics.IncrementReminderDispatch("dropped")
	return nil
}

func (h *ReminderDueHandler) deadLetter(raw json.RawMessage, cause error) {
	if err := h.dlq.PublishToDLQ(mqcontracts.RoutingKeyReminderDue, raw, cause.Error()); err != nil {
		h.logger.Error("Failed to publish to DLQ", zap.Error(err))
	}
}

func reminderMessage(d *model.DueReminder) mail.Message {
	text := d.Message
	if text == "" {
		text = "You have a ResearchHub reminder due."
	}
	return mail.Message{
		To:      d.Email,
		ToName:  d.Name,
		Subject: fmt.Sprintf("ResearchHub reminder for %s", d.ReminderDate.Format("Jan 2, 2006 15:04 MST")),
		Text:    text,
	}
}
