package httpclient

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/kbukum/apiwrap/errors"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeTimeout, "timeout"},
		{ErrCodeConnection, "connection"},
		{ErrCodeValidation, "validation"},
		{ErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	err := NewTimeoutError(context.DeadlineExceeded)
	if got, want := err.Error(), "httpclient: timeout: context deadline exceeded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestIsHelpers(t *testing.T) {
	timeout := NewTimeoutError(errors.New("slow"))
	conn := NewConnectionError(errors.New("refused"))
	invalid := NewValidationError("bad url")

	if !IsTimeout(timeout) || IsTimeout(conn) {
		t.Error("IsTimeout mismatch")
	}
	if !IsConnection(conn) || IsConnection(invalid) {
		t.Error("IsConnection mismatch")
	}
	if !IsValidation(invalid) || IsValidation(timeout) {
		t.Error("IsValidation mismatch")
	}
	if !IsRetryable(timeout) || !IsRetryable(conn) || IsRetryable(invalid) {
		t.Error("IsRetryable mismatch")
	}
	if IsTimeout(errors.New("plain")) {
		t.Error("plain error must not match")
	}
}

func TestError_ToAppError(t *testing.T) {
	tests := []struct {
		err  *Error
		want apperrors.ErrorCode
	}{
		{NewTimeoutError(errors.New("x")), apperrors.ErrCodeTimeout},
		{NewConnectionError(errors.New("x")), apperrors.ErrCodeConnectionFailed},
		{NewValidationError("x"), apperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		app := tt.err.ToAppError()
		if app.Code != tt.want {
			t.Errorf("%s: code = %s, want %s", tt.err.Code, app.Code, tt.want)
		}
		if !errors.Is(app, tt.err) {
			t.Errorf("%s: AppError should wrap the transport error", tt.err.Code)
		}
	}
}
