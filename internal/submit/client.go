package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"inkrelay-backend/internal/stroke"
	"inkrelay-backend/pkg/api"
	appErrors "inkrelay-backend/pkg/errors"
)

// Status reflects where a submission currently is. Terminal statuses
// are reported once; reverting the display back to idle is a UI
// concern, not part of the protocol.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusOptimizing Status = "optimizing"
	StatusSubmitting Status = "submitting"
	StatusRetrying   Status = "retrying"
	StatusSuccess    Status = "success"
	StatusQueued     Status = "queued"
	StatusError      Status = "error"
)

// Config tunes the submission client.
type Config struct {
	// Endpoint is the full URL of the ingestion endpoint.
	Endpoint string
	// Token is the bearer credential sent with every request.
	Token string
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// RetryBackoff is the fixed wait schedule indexed by attempt; the
	// last value repeats for further attempts.
	RetryBackoff []time.Duration
	// DefaultColor and DefaultStrokeWidth fill meta fields the caller
	// leaves empty.
	DefaultColor       string
	DefaultStrokeWidth float64
	// QueueOnFailure persists the payload to the offline queue when
	// delivery fails for anything but invalid input.
	QueueOnFailure bool
	// Optimizer tunes the transport optimization pass.
	Optimizer stroke.OptimizerConfig
}

// DefaultConfig returns the standard client settings for an endpoint.
func DefaultConfig(endpoint, token string) Config {
	return Config{
		Endpoint:           endpoint,
		Token:              token,
		Timeout:            8 * time.Second,
		MaxRetries:         2,
		RetryBackoff:       []time.Duration{300 * time.Millisecond, 700 * time.Millisecond},
		DefaultColor:       "#000000",
		DefaultStrokeWidth: 12,
		QueueOnFailure:     true,
		Optimizer:          stroke.DefaultOptimizerConfig(),
	}
}

// Result is the outcome of one submission. Queued distinguishes
// "saved locally, not yet delivered" from a plain failure.
type Result struct {
	Success  bool
	Queued   bool
	Response *api.SubmitResponse
	Err      error
}

// SubmitOptions carries per-submission parameters.
type SubmitOptions struct {
	Canvas          api.CanvasSize
	Color           string
	BaseStrokeWidth float64
}

// Client delivers optimized stroke payloads to the ingestion endpoint.
// Retries are strictly sequential with a fixed backoff schedule; there
// is no mid-request cancellation beyond the per-attempt timeout.
type Client struct {
	cfg        Config
	identity   ClientContext
	queue      *Queue
	optimizer  *stroke.Optimizer
	httpClient *http.Client
	logger     *zap.Logger

	onStatus func(Status)
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewClient creates a submission client for the given identity.
func NewClient(cfg Config, identity ClientContext, queue *Queue, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		identity:   identity,
		queue:      queue,
		optimizer:  stroke.NewOptimizer(cfg.Optimizer, nil),
		httpClient: &http.Client{},
		logger:     logger,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// OnStatus registers a callback observing status transitions.
func (c *Client) OnStatus(fn func(Status)) {
	c.onStatus = fn
}

// Queue exposes the client's offline queue for operator tooling.
func (c *Client) Queue() *Queue {
	return c.queue
}

func (c *Client) setStatus(s Status) {
	if c.onStatus != nil {
		c.onStatus(s)
	}
}

// Submit optimizes the strokes, builds the payload and delivers it.
// Empty input fails synchronously without any network call. On
// exhausted retries the payload lands in the offline queue and the
// result reports Queued.
func (c *Client) Submit(ctx context.Context, strokes [][]stroke.Point, opts SubmitOptions) Result {
	totalPoints := 0
	for _, s := range strokes {
		totalPoints += len(s)
	}
	if len(strokes) == 0 || totalPoints == 0 {
		c.setStatus(StatusError)
		return Result{Err: appErrors.NewValidation("nothing to submit")}
	}

	c.setStatus(StatusOptimizing)
	optimized := c.optimizer.Optimize(strokes)
	stats := stroke.Stats(strokes, optimized)
	c.logger.Debug("Optimized strokes",
		zap.Int("originalPoints", stats.OriginalPoints),
		zap.Int("optimizedPoints", stats.OptimizedPoints),
		zap.Int("payloadBytes", stats.PayloadBytes),
	)

	payload := c.buildPayload(optimized, opts)

	c.setStatus(StatusSubmitting)
	resp, err := c.send(ctx, payload)
	if err == nil {
		c.setStatus(StatusSuccess)
		return Result{Success: true, Response: resp}
	}

	if c.cfg.QueueOnFailure && !appErrors.IsValidation(err) {
		item := c.queue.Add(payload)
		c.logger.Warn("Submission failed, saved to offline queue",
			zap.String("queueItemId", item.ID),
			zap.Error(err),
		)
		c.setStatus(StatusQueued)
		return Result{Queued: true, Err: err}
	}

	c.setStatus(StatusError)
	return Result{Err: err}
}

func (c *Client) buildPayload(optimized [][]stroke.CompactPoint, opts SubmitOptions) api.SubmitPayload {
	color := opts.Color
	if color == "" {
		color = c.cfg.DefaultColor
	}
	baseWidth := opts.BaseStrokeWidth
	if baseWidth == 0 {
		baseWidth = c.cfg.DefaultStrokeWidth
	}

	// The idempotency key covers the optimized points, not the raw
	// capture: a resubmission counts as the same event only while the
	// delivered content is identical.
	createdAt := c.now().UTC().Format(time.RFC3339)
	return api.SubmitPayload{
		SessionID:      c.identity.SessionID,
		ClientID:       c.identity.ClientID,
		IdempotencyKey: IdempotencyKey(c.identity.ClientID, createdAt, optimized),
		Canvas:         opts.Canvas,
		Strokes:        optimized,
		Meta: api.SubmitMeta{
			CreatedAt:       createdAt,
			Color:           color,
			BaseStrokeWidth: baseWidth,
		},
	}
}

// send runs the bounded retry loop. Only transient failures (timeout
// or 5xx) are retried; everything else aborts immediately.
func (c *Client) send(ctx context.Context, payload api.SubmitPayload) (*api.SubmitResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := c.post(ctx, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt >= c.cfg.MaxRetries || !appErrors.IsTransient(err) {
			break
		}

		backoff := c.backoffFor(attempt)
		c.setStatus(StatusRetrying)
		c.logger.Info("Retrying submission",
			zap.Int("attempt", attempt+1),
			zap.Int("maxRetries", c.cfg.MaxRetries),
			zap.Duration("backoff", backoff),
		)
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) backoffFor(attempt int) time.Duration {
	if len(c.cfg.RetryBackoff) == 0 {
		return 0
	}
	if attempt >= len(c.cfg.RetryBackoff) {
		return c.cfg.RetryBackoff[len(c.cfg.RetryBackoff)-1]
	}
	return c.cfg.RetryBackoff[attempt]
}

// post performs one HTTP attempt under the configured timeout.
func (c *Client) post(ctx context.Context, payload api.SubmitPayload) (*api.SubmitResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, appErrors.NewInternal("failed to encode payload", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.NewInternal("failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isTimeout(err) {
			return nil, appErrors.NewTransient("request timeout", err)
		}
		return nil, appErrors.NewInternal("network error", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode >= 500:
		return nil, appErrors.NewTransient(
			fmt.Sprintf("server error (HTTP %d): %s", resp.StatusCode, errorMessage(respBody)), nil)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, appErrors.NewValidation(errorMessage(respBody))
	case resp.StatusCode >= 400:
		return nil, appErrors.NewPermanent(
			fmt.Sprintf("request rejected (HTTP %d): %s", resp.StatusCode, errorMessage(respBody)), nil)
	}

	var out api.SubmitResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, appErrors.NewInternal("failed to decode response", err)
	}
	return &out, nil
}

// ResendPending re-sends queued items still below the attempt ceiling.
// Delivered items leave the queue; failed ones have their attempt
// counter bumped. Payloads are sent as stored, without re-optimizing.
func (c *Client) ResendPending(ctx context.Context, maxAttempts int) (delivered, failed int) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for _, item := range c.queue.Pending(maxAttempts) {
		_, err := c.send(ctx, item.Payload)
		if err != nil {
			failed++
			if qErr := c.queue.IncrementAttempts(item.ID); qErr != nil {
				c.logger.Error("Failed to update queue item", zap.String("id", item.ID), zap.Error(qErr))
			}
			c.logger.Warn("Queued item resend failed",
				zap.String("id", item.ID),
				zap.Int("attempts", item.Attempts+1),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		delivered++
		if qErr := c.queue.Remove(item.ID); qErr != nil {
			c.logger.Error("Failed to remove delivered queue item", zap.String("id", item.ID), zap.Error(qErr))
		}
	}
	return delivered, failed
}

func errorMessage(body []byte) string {
	var er api.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	if len(body) > 0 {
		return string(body)
	}
	return "unknown error"
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
