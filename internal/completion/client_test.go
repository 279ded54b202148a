package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"researchhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

type fakeModel struct {
	reply   string
	err     error
	delay   time.Duration
	options llms.CallOptions
	prompt  string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&f.options)
	}
	if len(messages) > 0 && len(messages[0].Parts) > 0 {
		if tc, ok := messages[0].Parts[0].(llms.TextContent); ok {
			f.prompt = tc.Text
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestCompleteUsesPurposeBudget(t *testing.T) {
	fake := &fakeModel{reply: "Idea: x | Complexity: 2 | Duration: 3 days"}
	c := NewWithModel(fake, Config{Model: "test-model"}, zap.NewNop())

	got, err := c.Complete(context.Background(), PurposeIdea, "hello")
	require.NoError(t, err)
	assert.Equal(t, fake.reply, got)
	assert.Equal(t, 100, fake.options.MaxTokens)
	assert.Equal(t, "test-model", fake.options.Model)
	assert.Equal(t, "hello", fake.prompt)
}

func TestCompleteWrapsFailureAsUpstream(t *testing.T) {
	fake := &fakeModel{err: errors.New("429 too many requests")}
	c := NewWithModel(fake, Config{}, zap.NewNop())

	_, err := c.Complete(context.Background(), PurposeRoadmap, "p")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.True(t, apperr.Retryable(err))
}

func TestCompleteTimesOut(t *testing.T) {
	fake := &fakeModel{reply: "late", delay: time.Second}
	c := NewWithModel(fake, Config{Timeout: 20 * time.Millisecond}, zap.NewNop())

	_, err := c.Complete(context.Background(), PurposeSection, "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompleteEmptyChoices(t *testing.T) {
	c := NewWithModel(&fakeModel{}, Config{}, zap.NewNop())
	got, err := c.Complete(context.Background(), PurposeFormat, "p")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMaxTokens(t *testing.T) {
	assert.Equal(t, 300, MaxTokens(PurposeElaboration))
	assert.Equal(t, 2048, MaxTokens(PurposeConvert))
	assert.Equal(t, 500, MaxTokens(Purpose("unknown")))
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.Error(t, err)
}
