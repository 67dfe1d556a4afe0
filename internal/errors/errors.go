// Package errors provides custom error types for the reclamebot application.
//
// This package defines domain-specific errors that help with error handling
// and recovery throughout the application. Each error type provides context
// about what went wrong and can be used for specific recovery strategies.
//
// None of these errors cross the automation-session boundary: the session
// converts them to boolean/empty results and logs the diagnostic. They exist
// so the conversion sites can still distinguish failure classes.
package errors

import "fmt"

// SessionExpiredError indicates that the portal session has expired and needs
// re-authentication.
//
// This error is returned when:
//   - The login form is detected on a page that should show the dashboard
//   - Session cookies have expired
//   - The user has been logged out by the server
//
// Recovery strategy: re-login on the next cycle (each cycle starts fresh)
type SessionExpiredError struct {
	Message string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: %s", e.Message)
}

// NewSessionExpiredError creates a new session expired error with context
func NewSessionExpiredError(msg string) *SessionExpiredError {
	return &SessionExpiredError{Message: msg}
}

// LoginFailedError indicates that a login attempt failed.
//
// This error is returned when:
//   - Navigation to the login page fails
//   - The login form never renders within the wait timeout
//   - Form submission fails
//   - The post-login landing indicator never appears
//
// Recovery strategy: the cycle is abandoned; the next scheduled cycle
// retries with a fresh browser
type LoginFailedError struct {
	Message string
	Err     error
}

func (e *LoginFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("login failed: %s", e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *LoginFailedError) Unwrap() error {
	return e.Err
}

// NewLoginFailedError creates a new login failed error with context
func NewLoginFailedError(msg string, err error) *LoginFailedError {
	return &LoginFailedError{Message: msg, Err: err}
}

// FetchError wraps failures that occur while listing or opening complaints.
//
// This error is returned when:
//   - Navigation to the listing fails
//   - The complaint list never renders within the wait timeout
//   - Extraction of a single item fails (item is skipped, not fatal)
//
// Recovery strategy: skip the item or return the partial listing
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("fetch error: %s", e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new fetch error with context
func NewFetchError(msg string, err error) *FetchError {
	return &FetchError{Message: msg, Err: err}
}

// SubmitFailedError indicates that a response submission did not confirm.
//
// This error is returned when:
//   - Navigation to the reply surface fails
//   - The response textarea never renders
//   - The success indicator never appears after clicking submit
//
// Recovery strategy: none; the complaint is recorded as failed and is not
// retried automatically
type SubmitFailedError struct {
	ComplaintID string
	Message     string
	Err         error
}

func (e *SubmitFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submit failed for %s: %s: %v", e.ComplaintID, e.Message, e.Err)
	}
	return fmt.Sprintf("submit failed for %s: %s", e.ComplaintID, e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *SubmitFailedError) Unwrap() error {
	return e.Err
}

// NewSubmitFailedError creates a new submit failed error with context
func NewSubmitFailedError(complaintID, msg string, err error) *SubmitFailedError {
	return &SubmitFailedError{ComplaintID: complaintID, Message: msg, Err: err}
}

// IsLoginFailed checks if the error is a login failure error
func IsLoginFailed(err error) bool {
	_, ok := err.(*LoginFailedError)
	return ok
}

// IsSessionExpired checks if the error is a session expired error
func IsSessionExpired(err error) bool {
	_, ok := err.(*SessionExpiredError)
	return ok
}

// IsSubmitFailed checks if the error is a submit failure error
func IsSubmitFailed(err error) bool {
	_, ok := err.(*SubmitFailedError)
	return ok
}
