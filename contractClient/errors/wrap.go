package errors

import (
	"errors"
	"strings"
)

// WrapEngineError wraps an error as an EngineError if it isn't already one
func WrapEngineError(err error, code ErrorCode, network, message string) *EngineError {
	if err == nil {
		return nil
	}

	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		engineErr.WithContext("wrapped_message", message)
		if network != "" && engineErr.Network == "" {
			engineErr.Network = network
		}
		return engineErr
	}

	return NewEngineError(code, network, message, err)
}

// Is checks if an error is of a specific type
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As checks if an error can be assigned to a target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsCode checks if an error is an EngineError with specific code
func IsCode(err error, code ErrorCode) bool {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Code == code
	}
	return false
}

// AsRevert extracts the RevertError from an error chain.
func AsRevert(err error) (*RevertError, bool) {
	var revertErr *RevertError
	if errors.As(err, &revertErr) {
		return revertErr, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := AsRevert(err); ok {
		return false
	}

	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"too many requests",
		"rate limit",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// GetSeverity returns the severity of an error
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}

	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Severity
	}
	if _, ok := AsRevert(err); ok {
		return SeverityMedium
	}
	return SeverityLow
}
