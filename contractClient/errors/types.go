package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents different categories of engine errors
type ErrorCode string

const (
	// ErrCodeEncode indicates a value that cannot be encoded for its declared type
	ErrCodeEncode ErrorCode = "ENCODE"

	// ErrCodeDecode indicates a malformed remote payload
	ErrCodeDecode ErrorCode = "DECODE"

	// ErrCodeRemote indicates a transport failure
	ErrCodeRemote ErrorCode = "REMOTE"

	// ErrCodeRevert indicates a call or transaction that reverted on chain
	ErrCodeRevert ErrorCode = "REVERT"

	// ErrCodeTimeout indicates a receipt that was not observed in time
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeUnknownNetwork indicates an address book lookup miss
	ErrCodeUnknownNetwork ErrorCode = "UNKNOWN_NETWORK"

	// ErrCodeEventMismatch indicates a log that does not belong to the expected event
	ErrCodeEventMismatch ErrorCode = "EVENT_MISMATCH"

	// ErrCodeValidation indicates invalid caller input
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeConfig indicates configuration errors
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodeInternal indicates internal errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Sentinels usable with errors.Is against any EngineError chain.
var (
	ErrLengthMismatch    = errors.New("length mismatch")
	ErrOffsetOutOfBounds = errors.New("offset out of bounds")
	ErrInvalidValue      = errors.New("invalid value")
	ErrEventMismatch     = errors.New("event mismatch")
	ErrUnknownNetwork    = errors.New("unknown network")
	ErrTimeout           = errors.New("receipt timeout")
	ErrReverted          = errors.New("execution reverted")
)

// EngineError is the error type returned by every engine component.
type EngineError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Network  string                 `json:"network,omitempty"`
	Severity Severity               `json:"severity"`
	Cause    error                  `json:"-"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, network, message string, cause error) *EngineError {
	return &EngineError{
		Code:     code,
		Message:  message,
		Network:  network,
		Severity: determineSeverity(code),
		Cause:    cause,
		Context:  make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Network != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Network, e.Code, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying cause
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *EngineError) WithContext(key string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsRetryable returns true if the error is retryable
func (e *EngineError) IsRetryable() bool {
	return e.Code == ErrCodeRemote
}

func determineSeverity(code ErrorCode) Severity {
	switch code {
	case ErrCodeInternal:
		return SeverityCritical
	case ErrCodeDecode, ErrCodeUnknownNetwork:
		return SeverityHigh
	case ErrCodeRevert, ErrCodeTimeout, ErrCodeRemote:
		return SeverityMedium
	case ErrCodeEncode, ErrCodeValidation, ErrCodeConfig, ErrCodeEventMismatch:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// RevertError reports an on-chain revert. Reason is empty when the node
// returned no structured revert data.
type RevertError struct {
	Reason string
	Data   []byte
	TxHash string
}

// NewRevertError creates a RevertError
func NewRevertError(reason string, data []byte) *RevertError {
	return &RevertError{Reason: reason, Data: data}
}

// Error implements the error interface
func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

// Is matches ErrReverted.
func (e *RevertError) Is(target error) bool {
	return target == ErrReverted
}

// Common error constructors

// NewEncodeError creates an encode error
func NewEncodeError(message string, cause error) *EngineError {
	return NewEngineError(ErrCodeEncode, "", message, cause)
}

// NewDecodeError creates a decode error. Cause is usually one of
// ErrLengthMismatch, ErrOffsetOutOfBounds or ErrInvalidValue.
func NewDecodeError(cause error, format string, args ...interface{}) *EngineError {
	return NewEngineError(ErrCodeDecode, "", fmt.Sprintf(format, args...), cause)
}

// NewRemoteError creates a transport error
func NewRemoteError(network, message string, cause error) *EngineError {
	return NewEngineError(ErrCodeRemote, network, message, cause)
}

// NewTimeoutError creates a receipt timeout error
func NewTimeoutError(network, message string) *EngineError {
	return NewEngineError(ErrCodeTimeout, network, message, ErrTimeout)
}

// NewUnknownNetworkError creates an address book miss error
func NewUnknownNetworkError(contract, network string) *EngineError {
	return NewEngineError(ErrCodeUnknownNetwork, network,
		fmt.Sprintf("no address registered for %s", contract), ErrUnknownNetwork)
}

// NewEventMismatchError creates an event mismatch error
func NewEventMismatchError(event string, expected, actual string) *EngineError {
	return NewEngineError(ErrCodeEventMismatch, "",
		fmt.Sprintf("log does not match event %s", event), ErrEventMismatch).
		WithContext("expected_topic", expected).
		WithContext("actual_topic", actual)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *EngineError {
	return NewEngineError(ErrCodeValidation, "", message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *EngineError {
	return NewEngineError(ErrCodeConfig, "", message, cause)
}
