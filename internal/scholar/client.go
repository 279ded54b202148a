// Package scholar searches Google Scholar through SerpAPI.
package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"researchhub/internal/model"
	"researchhub/pkg/apperr"
	"researchhub/pkg/circuitbreaker"
	"researchhub/pkg/metrics"

	"go.uber.org/zap"
)

const (
	DefaultQuery = "research papers"
	unknown      = "Unknown"
	resultCount  = 10
)

type Config struct {
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Cache stores raw result payloads by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	cache      Cache
	logger     *zap.Logger
}

func NewClient(cfg Config, cache Cache, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://serpapi.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	logger = logger.Named("scholar")

	bc := circuitbreaker.DefaultConfig("scholar")
	bc.OnStateChange = func(name string, from, to circuitbreaker.State) {
		logger.Warn("Circuit breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	// 4xx from SerpAPI means a bad query or key, not an unhealthy upstream.
	bc.IsFailure = func(err error) bool { return apperr.Is(err, apperr.KindUpstream) }

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    circuitbreaker.NewCircuitBreaker(bc),
		cache:      cache,
		logger:     logger,
	}
}

type serpPublication struct {
	Title string `json:"title"`
}

type serpResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Title       string           `json:"title"`
		Link        string           `json:"link"`
		Publication *serpPublication `json:"publication"`
		PublicationInfo struct {
			Summary string `json:"summary"`
			Authors []struct {
				Name string `json:"name"`
			} `json:"authors"`
		} `json:"publication_info"`
	} `json:"organic_results"`
}

// Search returns up to ten results for q; an empty q searches DefaultQuery.
func (c *Client) Search(ctx context.Context, q string) ([]model.ScholarResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		q = DefaultQuery
	}
	if c.cfg.APIKey == "" {
		return nil, apperr.Internal("scholar search is not configured", nil)
	}

	key := "scholar:" + strings.ToLower(q)
	if c.cache != nil {
		if raw, ok, err := c.cache.Get(ctx, key); err != nil {
			c.logger.Warn("Scholar cache read failed", zap.Error(err))
		} else if ok {
			var cached []model.ScholarResult
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	var results []model.ScholarResult
	err := c.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		var err error
		results, err = c.fetch(ctx, q)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
		return nil, apperr.Upstream("scholar search", err)
	}
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if raw, err := json.Marshal(results); err == nil {
			if err := c.cache.Set(ctx, key, raw, c.cfg.CacheTTL); err != nil {
				c.logger.Warn("Scholar cache write failed", zap.Error(err))
			}
		}
	}
	return results, nil
}

func (c *Client) fetch(ctx context.Context, q string) ([]model.ScholarResult, error) {
	params := url.Values{}
	params.Set("engine", "google_scholar")
	params.Set("q", q)
	params.Set("api_key", c.cfg.APIKey)
	params.Set("num", fmt.Sprint(resultCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, apperr.Internal("build scholar request", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamLatency("serpapi", "error", time.Since(start))
		return nil, apperr.Upstream("scholar search", err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamLatency("serpapi", fmt.Sprint(resp.StatusCode), time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apperr.Upstream("scholar search", err)
	}

	var sr serpResponse
	decodeErr := json.Unmarshal(body, &sr)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, apperr.Upstream("scholar search", fmt.Errorf("serpapi http %d: %s", resp.StatusCode, sr.Error))
	case resp.StatusCode >= 400:
		return nil, apperr.Wrap(apperr.KindValidation, "scholar search rejected the query", fmt.Errorf("serpapi http %d: %s", resp.StatusCode, sr.Error))
	case decodeErr != nil:
		return nil, apperr.Upstream("scholar search", fmt.Errorf("decode serpapi response: %w", decodeErr))
	}

	results := make([]model.ScholarResult, 0, len(sr.OrganicResults))
	for _, r := range sr.OrganicResults {
		authors := make([]string, 0, len(r.PublicationInfo.Authors))
		for _, a := range r.PublicationInfo.Authors {
			authors = append(authors, a.Name)
		}
		results = append(results, model.ScholarResult{
			Title:       r.Title,
			Authors:     authors,
			Publication: publication(r.Publication, r.PublicationInfo.Summary),
			Year:        year(r.PublicationInfo.Summary),
			Link:        r.Link,
		})
	}
	c.logger.Debug("Scholar search", zap.String("query", q), zap.Int("results", len(results)))
	return results, nil
}

var yearPattern = regexp.MustCompile(`\d{4}`)

func year(summary string) string {
	if y := yearPattern.FindString(summary); y != "" {
		return y
	}
	return unknown
}

// publication prefers the explicit venue, then the venue segment of a
// summary shaped "Authors - Venue, Year - host".
func publication(p *serpPublication, summary string) string {
	if p != nil && strings.TrimSpace(p.Title) != "" {
		return strings.TrimSpace(p.Title)
	}
	parts := strings.Split(summary, " - ")
	if len(parts) >= 2 {
		venue := strings.TrimSpace(yearPattern.ReplaceAllString(parts[1], ""))
		venue = strings.TrimSpace(strings.TrimRight(venue, ", "))
		if venue != "" {
			return venue
		}
	}
	return unknown
}
