// Package mail delivers plain-text email through SendGrid's v3 API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"researchhub/pkg/apperr"
	"researchhub/pkg/metrics"

	"go.uber.org/zap"
)

type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	FromEmail string        `yaml:"from_email"`
	FromName  string        `yaml:"from_name"`
	Timeout   time.Duration `yaml:"timeout"`
}

type SendGrid struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewSendGrid(cfg Config, logger *zap.Logger) (*SendGrid, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid: api key required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("sendgrid: from email required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SendGrid{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("sendgrid"),
	}, nil
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" || strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.Text) == "" {
		return apperr.Validation("recipient, subject and body are required")
	}

	body, err := json.Marshal(sendRequest{
		Personalizations: []personalization{{To: []address{{Email: msg.To, Name: msg.ToName}}}},
		From:             address{Email: s.cfg.FromEmail, Name: s.cfg.FromName},
		Subject:          msg.Subject,
		Content:          []content{{Type: "text/plain", Value: msg.Text}},
	})
	if err != nil {
		return apperr.Internal("encode email", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return apperr.Internal("build email request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamLatency("sendgrid", "error", time.Since(start))
		return apperr.Upstream("email", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	metrics.RecordUpstreamLatency("sendgrid", fmt.Sprint(resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.logger.Info("Email sent",
			zap.String("to", msg.To),
			zap.String("message_id", resp.Header.Get("X-Message-Id")),
		)
		return nil
	}
	return classifyStatus(resp.StatusCode, raw)
}

func classifyStatus(status int, raw []byte) error {
	detail := strings.TrimSpace(string(raw))
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 {
		detail = er.Errors[0].Message
	}
	cause := fmt.Errorf("sendgrid http %d: %s", status, detail)

	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return apperr.Upstream("email", cause)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.Internal("email service rejected credentials", cause)
	default:
		return apperr.Wrap(apperr.KindValidation, "email rejected: "+detail, cause)
	}
}

// LogSender logs messages instead of sending them; used when no API key is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("mail")}
}

func (l *LogSender) Send(_ context.Context, msg Message) error {
	l.logger.Info("Email delivery skipped, no mail provider configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
