package errors

import (
	"context"
	"time"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	Multiplier      float64
	RetryableErrors []ErrorCode
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		RetryableErrors: []ErrorCode{
			ErrCodeRemote,
		},
	}
}

// RetryFunc is a function that can be retried
type RetryFunc func() error

// RetryWithConfig retries a function with custom configuration
func RetryWithConfig(ctx context.Context, fn RetryFunc, config *RetryConfig) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryableError(err, config.RetryableErrors) {
			return err
		}

		if attempt == config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = NextDelay(delay, config.Multiplier, config.MaxDelay)
	}

	return WrapEngineError(
		lastErr,
		ErrCodeRemote,
		"",
		"maximum retry attempts exceeded",
	).WithContext("attempts", config.MaxAttempts)
}

func isRetryableError(err error, retryableCodes []ErrorCode) bool {
	if _, ok := AsRevert(err); ok {
		return false
	}

	var engineErr *EngineError
	if As(err, &engineErr) {
		for _, code := range retryableCodes {
			if engineErr.Code == code {
				return true
			}
		}
		return engineErr.IsRetryable()
	}

	return IsRetryable(err)
}

// NextDelay grows delay by multiplier, capped at maxDelay.
func NextDelay(delay time.Duration, multiplier float64, maxDelay time.Duration) time.Duration {
	if multiplier < 1 {
		multiplier = 1
	}
	next := time.Duration(float64(delay) * multiplier)
	if maxDelay > 0 && next > maxDelay {
		return maxDelay
	}
	return next
}
