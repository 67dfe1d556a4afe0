package errors

import (
	stderrors "errors"
	"testing"
)

func TestSessionExpiredError(t *testing.T) {
	err := NewSessionExpiredError("redirected to login")
	expected := "session expired: redirected to login"

	if err.Error() != expected {
		t.Errorf("expected %q but got %q", expected, err.Error())
	}
}

func TestLoginFailedError(t *testing.T) {
	baseErr := NewSessionExpiredError("base error")
	err := NewLoginFailedError("landing page never appeared", baseErr)

	if err.Message != "landing page never appeared" {
		t.Errorf("expected message 'landing page never appeared' but got %q", err.Message)
	}

	if err.Err == nil {
		t.Error("expected wrapped error but got nil")
	}

	if !stderrors.Is(err, err) {
		t.Error("expected error to match itself via errors.Is")
	}
}

func TestFetchError(t *testing.T) {
	baseErr := NewSessionExpiredError("base error")
	err := NewFetchError("complaint list did not render", baseErr)

	if err.Message != "complaint list did not render" {
		t.Errorf("expected message 'complaint list did not render' but got %q", err.Message)
	}

	if err.Error() == "" {
		t.Error("expected non-empty error string")
	}

	if stderrors.Unwrap(err) != baseErr {
		t.Error("expected Unwrap to return the wrapped error")
	}
}

func TestSubmitFailedError(t *testing.T) {
	err := NewSubmitFailedError("RA-1001", "no success indicator", nil)

	expected := "submit failed for RA-1001: no success indicator"
	if err.Error() != expected {
		t.Errorf("expected %q but got %q", expected, err.Error())
	}
}

func TestIsLoginFailed(t *testing.T) {
	loginErr := NewLoginFailedError("test", nil)
	if !IsLoginFailed(loginErr) {
		t.Error("expected IsLoginFailed to return true for LoginFailedError")
	}

	otherErr := NewSessionExpiredError("test")
	if IsLoginFailed(otherErr) {
		t.Error("expected IsLoginFailed to return false for non-LoginFailedError")
	}
}

func TestIsSubmitFailed(t *testing.T) {
	submitErr := NewSubmitFailedError("RA-1", "test", nil)
	if !IsSubmitFailed(submitErr) {
		t.Error("expected IsSubmitFailed to return true for SubmitFailedError")
	}

	if IsSubmitFailed(NewFetchError("test", nil)) {
		t.Error("expected IsSubmitFailed to return false for FetchError")
	}
}
