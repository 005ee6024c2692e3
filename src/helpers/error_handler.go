package helpers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"market-breadth/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type MarketBreadthError struct {
	Message string
	Cause   error
}

func (e *MarketBreadthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MarketBreadthError) Unwrap() error {
	return e.Cause
}

type ConfigurationError struct{ MarketBreadthError }
type NetworkError struct{ MarketBreadthError }
type DataSourceError struct{ MarketBreadthError }
type DatabaseError struct{ MarketBreadthError }
type ValidationError struct{ MarketBreadthError }

// -----------------------------------------------------------------------------

func NewNetworkError(msg string, cause error) *NetworkError {
	return &NetworkError{MarketBreadthError{Message: msg, Cause: cause}}
}

func NewDataSourceError(msg string, cause error) *DataSourceError {
	return &DataSourceError{MarketBreadthError{Message: msg, Cause: cause}}
}

func NewDatabaseError(msg string, cause error) *DatabaseError {
	return &DatabaseError{MarketBreadthError{Message: msg, Cause: cause}}
}

func NewValidationError(msg string, cause error) *ValidationError {
	return &ValidationError{MarketBreadthError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// permanentError marks a failure that RetryWithBackoff must not retry.
type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so RetryWithBackoff returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff runs fn once plus up to maxRetries more times, doubling the
// delay after each failure. It stops early when ctx is done or fn returns a
// Permanent error; a cancelled ctx is joined into the returned error.
func RetryWithBackoff[T any](ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			if log != nil {
				log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt, maxRetries+1, operation, lastErr, delay)
			}
			select {
			case <-ctx.Done():
				return zero, errors.Join(lastErr, ctx.Err())
			case <-time.After(delay):
			}
		}

		res, err := fn(attempt)
		if err == nil {
			return res, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, errors.Join(lastErr, ctx.Err())
		}
	}

	return zero, lastErr
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler tracks consecutive cycle failures.
type ErrorHandler struct {
	Logger      *logger.Logger
	MaxWarnings int

	mu         sync.Mutex
	errorCount int
	lastErr    error
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewNopLogger("ErrorHandler")
	}
	return &ErrorHandler{
		Logger:      log,
		MaxWarnings: 10,
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.mu.Lock()
	e.errorCount = 0
	e.lastErr = nil
	e.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ErrorCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errorCount
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// -----------------------------------------------------------------------------

// Handle logs err and counts it. Past MaxWarnings consecutive failures the
// log level is raised to ERROR.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}

	e.mu.Lock()
	e.errorCount++
	e.lastErr = err
	count := e.errorCount
	e.mu.Unlock()

	if count >= e.MaxWarnings {
		e.Logger.Error("Error in %s (%d consecutive): %v", context, count, err)
		return
	}
	e.Logger.Warning("Error in %s: %v", context, err)
}
