package service

import (
	"context"
	"testing"
	"time"

	"researchhub/internal/model"
	"researchhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateReminder(t *testing.T) {
	store := &fakeReminders{}
	svc := NewReminderService(store, zap.NewNop())
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	projectID := int64(3)

	r, err := svc.Create(context.Background(), 1, CreateReminderInput{
		ProjectID:          &projectID,
		ReminderDate:       now.Add(time.Hour),
		Message:            " Review step 2 ",
		IsRecurring:        true,
		RecurrenceInterval: model.RecurrenceWeekly,
	})
	require.NoError(t, err)
	assert.Equal(t, "Review step 2", r.Message)
	assert.Equal(t, int64(1), r.UserID)

	list, err := svc.List(context.Background(), 1, &projectID, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateReminderValidation(t *testing.T) {
	svc := NewReminderService(&fakeReminders{}, zap.NewNop())
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	id := int64(1)
	future := now.Add(time.Hour)

	cases := map[string]CreateReminderInput{
		"no parent":            {ReminderDate: future},
		"both parents":         {ProjectID: &id, PaperID: &id, ReminderDate: future},
		"missing date":         {ProjectID: &id},
		"past date":            {ProjectID: &id, ReminderDate: now.Add(-time.Minute)},
		"unknown interval":     {ProjectID: &id, ReminderDate: future, IsRecurring: true, RecurrenceInterval: "monthly"},
		"recurring without":    {ProjectID: &id, ReminderDate: future, IsRecurring: true},
		"interval on one-shot": {PaperID: &id, ReminderDate: future, RecurrenceInterval: model.RecurrenceDaily},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, in)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}

func TestListRemindersRejectsBothFilters(t *testing.T) {
	svc := NewReminderService(&fakeReminders{}, zap.NewNop())
	id := int64(1)

	_, err := svc.List(context.Background(), 1, &id, &id)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
