package worker

import (
	"context"
	"time"

	mqcontracts "researchhub/contracts/mq"
	"researchhub/internal/model"

	"go.uber.org/zap"
)

type DueClaimer interface {
	ClaimDue(ctx context.Context, now time.Time, staleAfter time.Duration, limit int) ([]model.DueReminder, error)
}

type EventPublisher interface {
	PublishWithContext(ctx context.Context, routingKey string, payload any) error
}

type Config struct {
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"`
	BatchSize  int           `yaml:"batch_size"`
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 15 * time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	return c
}

// Dispatcher periodically claims due reminders and publishes one
// reminder.due event per occurrence.
type Dispatcher struct {
	reminders DueClaimer
	publisher EventPublisher
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

func NewDispatcher(reminders DueClaimer, publisher EventPublisher, cfg Config, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		reminders: reminders,
		publisher: publisher,
		cfg:       cfg.withDefaults(),
		logger:    logger.Named("dispatcher"),
		now:       time.Now,
	}
}

// Run dispatches immediately and then on every tick until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("Reminder dispatcher started",
		zap.Duration("interval", d.cfg.Interval),
		zap.Int("batch_size", d.cfg.BatchSize),
	)
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := d.RunOnce(ctx); err != nil {
			d.logger.Error("Reminder dispatch failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			d.logger.Info("Reminder dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce claims one batch and returns how many events were published.
// A reminder whose publish fails stays claimed and is picked up again once
// the claim goes stale.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	due, err := d.reminders.ClaimDue(ctx, d.now().UTC(), d.cfg.StaleAfter, d.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, r := range due {
		payload := mqcontracts.ReminderDuePayload{
			ReminderID:   r.ID,
			UserID:       r.UserID,
			ReminderDate: r.ReminderDate,
		}
		if err := d.publisher.PublishWithContext(ctx, mqcontracts.RoutingKeyReminderDue, payload); err != nil {
			d.logger.Error("Failed to publish reminder.due event",
				zap.Int64("reminder_id", r.ID),
				zap.Error(err),
			)
			continue
		}
		published++
	}

	if len(due) > 0 {
		d.logger.Info("Reminder dispatch completed",
			zap.Int("claimed", len(due)),
			zap.Int("published", published),
		)
	}
	return published, nil
}
