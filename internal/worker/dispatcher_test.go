package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	mqcontracts "researchhub/contracts/mq"
	"researchhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClaimer struct {
	due        []model.DueReminder
	err        error
	staleAfter time.Duration
	limit      int
	calls      int
}

func (f *fakeClaimer) ClaimDue(_ context.Context, _ time.Time, staleAfter time.Duration, limit int) ([]model.DueReminder, error) {
	f.calls++
	f.staleAfter = staleAfter
	f.limit = limit
	due := f.due
	f.due = nil
	return due, f.err
}

type fakePublisher struct {
	failFor  int64
	payloads []mqcontracts.ReminderDuePayload
	keys     []string
}

func (f *fakePublisher) PublishWithContext(_ context.Context, key string, payload any) error {
	p := payload.(mqcontracts.ReminderDuePayload)
	if p.ReminderID == f.failFor {
		return errors.New("channel closed")
	}
	f.keys = append(f.keys, key)
	f.payloads = append(f.payloads, p)
	return nil
}

func due(id int64, at time.Time) model.DueReminder {
	return model.DueReminder{Reminder: model.Reminder{ID: id, UserID: 1, ReminderDate: at}, Email: "a@b.co"}
}

func TestRunOncePublishesClaimed(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	claimer := &fakeClaimer{due: []model.DueReminder{due(1, at), due(2, at), due(3, at)}}
	pub := &fakePublisher{failFor: 2}
	d := NewDispatcher(claimer, pub, Config{}, zap.NewNop())

	n, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"reminder.due", "reminder.due"}, pub.keys)
	assert.Equal(t, int64(3), pub.payloads[1].ReminderID)
	assert.Equal(t, at, pub.payloads[0].ReminderDate)
	assert.Equal(t, 15*time.Minute, claimer.staleAfter)
	assert.Equal(t, 100, claimer.limit)
}

func TestRunOnceClaimError(t *testing.T) {
	claimer := &fakeClaimer{err: errors.New("db down")}
	d := NewDispatcher(claimer, &fakePublisher{}, Config{}, zap.NewNop())

	_, err := d.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	claimer := &fakeClaimer{}
	d := NewDispatcher(claimer, &fakePublisher{}, Config{Interval: time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
	assert.GreaterOrEqual(t, claimer.calls, 1)
}
