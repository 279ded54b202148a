// Package completion sends single-shot prompts to the chat-completion model.
// There are no retries and no streaming; each call is bounded by a timeout
// and by a shared token-bucket limiter.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"researchhub/pkg/apperr"
	"researchhub/pkg/metrics"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Purpose string

const (
	PurposeIdea        Purpose = "idea"
	PurposeElaboration Purpose = "elaboration"
	PurposeRoadmap     Purpose = "roadmap"
	PurposeSection     Purpose = "section"
	PurposeFormat      Purpose = "format"
	PurposeConvert     Purpose = "convert"
	PurposePlagiarism  Purpose = "plagiarism"
)

// maxTokens is the output budget per call site.
var maxTokens = map[Purpose]int{
	PurposeIdea:        100,
	PurposeElaboration: 300,
	PurposeRoadmap:     1024,
	PurposeSection:     500,
	PurposeFormat:      2048,
	PurposeConvert:     2048,
	PurposePlagiarism:  300,
}

func MaxTokens(p Purpose) int {
	if n, ok := maxTokens[p]; ok {
		return n
	}
	return 500
}

// Completer is what the services depend on.
type Completer interface {
	Complete(ctx context.Context, purpose Purpose, prompt string) (string, error)
}

type Config struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
}

const (
	defaultModel     = "gpt-3.5-turbo"
	defaultTimeout   = 60 * time.Second
	defaultRateLimit = 2.0
	defaultBurst     = 4
)

type Client struct {
	llm     llms.Model
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New builds a client backed by the OpenAI-compatible chat endpoint.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("completion: api key required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return NewWithModel(llm, cfg, logger), nil
}

// NewWithModel wraps an existing llms.Model.
func NewWithModel(llm llms.Model, cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	return &Client{
		llm:     llm,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:  logger.Named("completion"),
	}
}

// Complete returns the first choice's text. An empty completion is not an
// error; the parsers degrade it to defaults.
func (c *Client) Complete(ctx context.Context, purpose Purpose, prompt string) (string, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordCompletionLatency(string(purpose), "rate_limited", time.Since(start))
		return "", apperr.Upstream("completion", fmt.Errorf("rate limiter: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.llm.GenerateContent(callCtx,
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, prompt)},
		llms.WithModel(c.model),
		llms.WithMaxTokens(MaxTokens(purpose)),
	)
	if err != nil {
		metrics.RecordCompletionLatency(string(purpose), "error", time.Since(start))
		c.logger.Error("Completion call failed",
			zap.String("purpose", string(purpose)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", apperr.Upstream("completion", err)
	}

	var text string
	if len(resp.Choices) > 0 && resp.Choices[0] != nil {
		text = resp.Choices[0].Content
	}

	metrics.RecordCompletionLatency(string(purpose), "ok", time.Since(start))
	c.logger.Debug("Completion call finished",
		zap.String("purpose", string(purpose)),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}
