// Package testutil provides wait helpers for tests that drive loop
// goroutines.
//
// Helpers return errors instead of calling t.Fatal so they stay safe to use
// from any goroutine: t.Fatal calls runtime.Goexit, which only terminates
// the calling goroutine, not the test.
package testutil

import (
	"fmt"
	"time"
)

// Eventually waits for a condition to become true.
//
// Example:
//
//	if err := testutil.Eventually(time.Second, 5*time.Millisecond, func() bool {
//	    return sink.Updates() == 1
//	}); err != nil {
//	    t.Fatal(err)
//	}
func Eventually(timeout, interval time.Duration, condition func() bool) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("condition not met within %v", timeout)
}

// WithTimeout runs a function and fails if it does not return in time.
// Guards shutdown paths that could otherwise hang the whole test run.
func WithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("operation timed out after %v", timeout)
	}
}

// Retry retries a function until it succeeds or max attempts is reached.
func Retry(maxAttempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if err := fn(); err != nil {
			lastErr = err
			time.Sleep(delay)
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
