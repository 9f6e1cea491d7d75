package helpers

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ScreenerError struct {
	Message string
	Cause   error
}

func (e *ScreenerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ScreenerError) Unwrap() error {
	return e.Cause
}

// Distinct error types mapping the failure taxonomy: configuration errors are
// fatal at startup, credential errors degrade the app, fetch errors skip one
// symbol, storage errors only affect the history endpoint.
type ConfigurationError struct{ ScreenerError }
type CredentialError struct{ ScreenerError }
type FetchError struct{ ScreenerError }
type StorageError struct{ ScreenerError }

// -----------------------------------------------------------------------------

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{ScreenerError{Message: message, Cause: cause}}
}

func NewCredentialError(message string, cause error) *CredentialError {
	return &CredentialError{ScreenerError{Message: message, Cause: cause}}
}

func NewFetchError(message string, cause error) *FetchError {
	return &FetchError{ScreenerError{Message: message, Cause: cause}}
}

func NewStorageError(message string, cause error) *StorageError {
	return &StorageError{ScreenerError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts the operation up to maxRetries times with
// exponential backoff. Used only inside a single fetch attempt; the scan loop
// itself never retries beyond its next tick.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		time.Sleep(delay)
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, maxRetries, lastErr)
}
