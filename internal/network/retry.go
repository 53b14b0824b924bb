package network

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/goran-ethernal/ScanKit/pkg/config"
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// retryableError checks if an error should trigger a retry.
// Explorer responses are final unless they report a rate limit or a server side failure.
func retryableError(err error) bool {
	if err == nil {
		return false
	}

	var (
		apiErr     *types.APIError
		proxyErr   *types.ProxyError
		contentErr *types.ContentTypeError
	)
	switch {
	case errors.As(err, &apiErr):
		return types.IsRateLimitError(err)
	case errors.As(err, &proxyErr):
		return false
	case errors.As(err, &contentErr):
		return contentErr.Status == http.StatusTooManyRequests || contentErr.Status >= http.StatusInternalServerError
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"timeout", "deadline exceeded",
		"connection reset", "unexpected eof",
		"too many requests", "bad gateway", "service unavailable",
	} {
		if strings.Contains(errStr, fragment) {
			return true
		}
	}

	return false
}

// calculateBackoff computes the backoff duration for a given attempt with jitter.
func calculateBackoff(attempt int, cfg *config.RetryConfig) time.Duration {
	if attempt <= 1 {
		return 0
	}

	backoff := float64(cfg.InitialBackoff.Duration) * math.Pow(cfg.BackoffMultiplier, float64(attempt-2)) //nolint:mnd
	backoff = min(backoff, float64(cfg.MaxBackoff.Duration))

	// jitter of +/-25%
	jitterRange := backoff * 0.25                               //nolint:mnd
	backoff += (rand.Float64() * 2 * jitterRange) - jitterRange //nolint:gosec,mnd

	return time.Duration(max(backoff, 0))
}

// retryWithBackoff executes fn with exponential backoff retry logic.
// Errors that are not worth retrying are returned as they are, so typed explorer
// errors reach the caller untouched.
func retryWithBackoff(ctx context.Context, cfg *config.RetryConfig, action string, fn func() error) error {
	if cfg == nil {
		return fn()
	}

	var lastErr error
	startTime := time.Now()

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled before attempt %d: %w", attempt, err)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryableError(err) {
			return err
		}

		if attempt >= cfg.MaxAttempts {
			break
		}

		if backoff := calculateBackoff(attempt+1, cfg); backoff > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during backoff (attempt %d/%d): %w",
					attempt, cfg.MaxAttempts, ctx.Err())
			}
		}

		retryInc(action)
	}

	return fmt.Errorf("all %d attempts failed after %v (last error: %w)",
		cfg.MaxAttempts, time.Since(startTime), lastErr)
}
