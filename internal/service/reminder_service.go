package service

import (
	"context"
	"strings"
	"time"

	"researchhub/internal/model"
	"researchhub/pkg/apperr"

	"go.uber.org/zap"
)

type ReminderService struct {
	reminders ReminderStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewReminderService(reminders ReminderStore, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		logger:    logger.Named("reminder"),
		now:       time.Now,
	}
}

type CreateReminderInput struct {
	ProjectID          *int64           `json:"project_id"`
	PaperID            *int64           `json:"paper_id"`
	ReminderDate       time.Time        `json:"reminder_date"`
	Message            string           `json:"message"`
	IsRecurring        bool             `json:"is_recurring"`
	RecurrenceInterval model.Recurrence `json:"recurrence_interval"`
}

func (s *ReminderService) Create(ctx context.Context, userID int64, in CreateReminderInput) (*model.Reminder, error) {
	if (in.ProjectID == nil) == (in.PaperID == nil) {
		return nil, apperr.Validation("exactly one of project_id or paper_id is required")
	}
	if in.ReminderDate.IsZero() {
		return nil, apperr.Validation("reminder_date is required")
	}
	if in.ReminderDate.Before(s.now()) {
		return nil, apperr.Validation("reminder_date must be in the future")
	}
	if !in.RecurrenceInterval.Valid() {
		return nil, apperr.Validation("unknown recurrence interval %q", in.RecurrenceInterval)
	}
	if in.IsRecurring != (in.RecurrenceInterval != model.RecurrenceNone) {
		return nil, apperr.Validation("recurring reminders need an interval and one-shot reminders must not have one")
	}

	r := &model.Reminder{
		UserID:             userID,
		ProjectID:          in.ProjectID,
		PaperID:            in.PaperID,
		ReminderDate:       in.ReminderDate.UTC(),
		Message:            strings.TrimSpace(in.Message),
		IsRecurring:        in.IsRecurring,
		RecurrenceInterval: in.RecurrenceInterval,
	}
	if err := s.reminders.Create(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("Reminder created",
		zap.Int64("user_id", userID),
		zap.Int64("reminder_id", r.ID),
		zap.Time("reminder_date", r.ReminderDate),
		zap.String("recurrence", string(r.RecurrenceInterval)),
	)
	return r, nil
}

func (s *ReminderService) List(ctx context.Context, userID int64, projectID, paperID *int64) ([]model.Reminder, error) {
	if projectID != nil && paperID != nil {
		return nil, apperr.Validation("filter by project_id or paper_id, not both")
	}
	return s.reminders.ListByParent(ctx, userID, projectID, paperID)
}

func (s *ReminderService) Delete(ctx context.Context, userID, id int64) error {
	return s.reminders.Delete(ctx, userID, id)
}
