// Package provider is the client side of the image-generation provider
// contract: submitting edit jobs to the fal.ai queue and decoding the
// webhook it later calls.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blendi-remade/reve-studio/internal/observability"

	"github.com/cenkalti/backoff/v5"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultTimeout         = 20 * time.Second
	defaultMaxAttempts     = 3
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 5 * time.Second
	maxErrorBodyLen        = 512

	// CorrelationParam carries the comment id on the webhook URL so a
	// callback can be matched even before the job id has been stored.
	CorrelationParam = "comment_id"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("generation provider is not configured")

// Config captures the runtime settings required to talk to fal.ai.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	WebhookURL  string
	MaxAttempts int
	Timeout     time.Duration
}

// SubmitRequest is one image edit job.
type SubmitRequest struct {
	Prompt        string
	ImageURL      string
	CorrelationID string
}

// SubmitResult holds the provider's job id.
type SubmitResult struct {
	RequestID string `json:"request_id"`
}

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fal.ai API error: http %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the provider may accept the same request later.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == fiber.StatusTooManyRequests || e.StatusCode >= 500
}

// FalClient submits jobs to the fal.ai queue API using fiber's HTTP client.
type FalClient struct {
	cfg             Config
	initialInterval time.Duration
	maxInterval     time.Duration
}

// Option customizes the client.
type Option func(*FalClient)

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(initial, max time.Duration) Option {
	return func(c *FalClient) {
		c.initialInterval = initial
		c.maxInterval = max
	}
}

// NewFalClient constructs a client. Zero values fall back to defaults.
func NewFalClient(cfg Config, opts ...Option) *FalClient {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Model = strings.Trim(strings.TrimSpace(cfg.Model), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://queue.fal.run"
	}
	if cfg.Model == "" {
		cfg.Model = "fal-ai/reve/edit"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &FalClient{
		cfg:             cfg,
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type editRequest struct {
	Prompt       string `json:"prompt"`
	ImageURL     string `json:"image_url"`
	NumImages    int    `json:"num_images"`
	OutputFormat string `json:"output_format"`
}

// Submit queues an edit job. Network errors, 429 and 5xx answers are retried
// with exponential backoff; any other rejection fails at once.
func (c *FalClient) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	span, ctx := observability.NewClientSpan(ctx, "fal.submit",
		attribute.String("fal.model", c.cfg.Model),
		attribute.String("correlation_id", req.CorrelationID),
	)
	defer span.End()
	done := observability.TrackProviderSubmit()

	endpoint, err := c.endpoint(req.CorrelationID)
	if err != nil {
		span.SetError(err)
		done("error")
		return nil, err
	}
	body := editRequest{
		Prompt:       req.Prompt,
		ImageURL:     req.ImageURL,
		NumImages:    1,
		OutputFormat: "png",
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.initialInterval
	expo.MaxInterval = c.maxInterval

	result, err := backoff.Retry(ctx, func() (*SubmitResult, error) {
		return c.post(endpoint, body)
	},
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			observability.GlobalLogger.WarnContext(ctx, "fal submit failed, retrying",
				"correlation_id", req.CorrelationID, "retry_in", wait, "error", err)
		}),
	)
	if err != nil {
		span.SetError(err)
		done("error")
		return nil, err
	}

	span.AddAttributes(attribute.String("fal.request_id", result.RequestID))
	done("ok")
	return result, nil
}

func (c *FalClient) post(endpoint string, body editRequest) (*SubmitResult, error) {
	observability.ProviderSubmitAttempts.Inc()

	agent := fiber.Post(endpoint)
	agent.Set(fiber.HeaderAuthorization, "Key "+c.cfg.APIKey)
	agent.JSON(body)
	agent.Timeout(c.cfg.Timeout)
	if err := agent.Parse(); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("fal.ai request: %w", err))
	}

	code, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("fal.ai request: %w", errors.Join(errs...))
	}

	if code < 200 || code >= 300 {
		statusErr := &StatusError{StatusCode: code, Body: truncate(string(respBody))}
		if statusErr.Retryable() {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	var result SubmitResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("fal.ai response: %w", err))
	}
	if result.RequestID == "" {
		return nil, backoff.Permanent(errors.New("fal.ai response: missing request_id"))
	}
	return &result, nil
}

// endpoint builds the queue URL, passing the webhook (tagged with the
// correlation id) in fal_webhook.
func (c *FalClient) endpoint(correlationID string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL + "/" + c.cfg.Model)
	if err != nil {
		return "", fmt.Errorf("fal.ai base url: %w", err)
	}
	if c.cfg.WebhookURL != "" {
		hook, err := WebhookWithCorrelation(c.cfg.WebhookURL, correlationID)
		if err != nil {
			return "", err
		}
		q := u.Query()
		q.Set("fal_webhook", hook)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// WebhookWithCorrelation appends the correlation id to a webhook URL,
// keeping any query it already has.
func WebhookWithCorrelation(webhookURL, correlationID string) (string, error) {
	u, err := url.Parse(webhookURL)
	if err != nil {
		return "", fmt.Errorf("webhook url: %w", err)
	}
	if correlationID != "" {
		q := u.Query()
		q.Set(CorrelationParam, correlationID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrorBodyLen {
		return s
	}
	cut := maxErrorBodyLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
