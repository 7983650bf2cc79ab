package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"talentscout/interview/internal/models"
)

// sleep waits for d or until ctx is done. Tests replace it to skip backoff.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type RetryConfig struct {
	// Timeout bounds every single attempt.
	Timeout time.Duration
	// Retries is the number of attempts after the first one.
	Retries int
	// Backoff is the delay before the first retry; it doubles on every retry.
	Backoff time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Timeout: 20 * time.Second, Retries: 2, Backoff: 500 * time.Millisecond}
}

// Retrier decorates a Provider with a per-attempt timeout and bounded retries.
// Errors it returns wrap models.ErrCollaboratorTimeout or models.ErrCollaborator.
type Retrier struct {
	provider Provider
	config   RetryConfig
	logger   *zap.Logger
}

func NewRetrier(provider Provider, config RetryConfig, logger *zap.Logger) *Retrier {
	if config.Retries < 0 {
		config.Retries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrier{provider: provider, config: config, logger: logger}
}

func (r *Retrier) GetProviderName() string {
	return r.provider.GetProviderName()
}

func (r *Retrier) GenerateContent(ctx context.Context, prompt string, requestID string) (*GenerationResponse, error) {
	var lastErr error
	delay := r.config.Backoff

	for attempt := 0; attempt <= r.config.Retries; attempt++ {
		if attempt > 0 {
			wait := delay
			if IsRateLimitError(lastErr) {
				wait *= 2
			}
			if err := sleep(ctx, wait); err != nil {
				return nil, classify(err)
			}
			delay *= 2
		}

		resp, err := r.attempt(ctx, prompt, requestID)
		if err == nil {
			resp.Metadata.Attempts = attempt + 1
			return resp, nil
		}
		lastErr = err

		r.logger.Warn("collaborator call failed",
			zap.String("provider", r.provider.GetProviderName()),
			zap.String("request_id", requestID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	return nil, classify(lastErr)
}

func (r *Retrier) attempt(ctx context.Context, prompt string, requestID string) (*GenerationResponse, error) {
	callCtx := ctx
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	resp, err := r.provider.GenerateContent(callCtx, prompt, requestID)
	if err == nil && callCtx.Err() != nil {
		// the provider ignored its deadline
		err = callCtx.Err()
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, &ProviderError{
			Provider: r.provider.GetProviderName(),
			Code:     ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}
	return resp, nil
}

func retryable(err error) bool {
	return ErrorCode(err) != ErrCodeAPIKey
}

func classify(err error) error {
	if err == nil {
		return models.ErrCollaborator
	}
	if errors.Is(err, context.DeadlineExceeded) || ErrorCode(err) == ErrCodeTimeout {
		return fmt.Errorf("%w: %w", models.ErrCollaboratorTimeout, err)
	}
	return fmt.Errorf("%w: %w", models.ErrCollaborator, err)
}
