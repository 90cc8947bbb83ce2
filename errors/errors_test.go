package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeBadRequest, "bad", http.StatusBadRequest)
	if got := err.Error(); got != "BAD_REQUEST: bad" {
		t.Errorf("unexpected message %q", got)
	}

	cause := fmt.Errorf("boom")
	err.WithCause(cause)
	if !strings.Contains(err.Error(), "cause: boom") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find cause")
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := Validation("invalid").WithDetail("a", 1).WithDetails(map[string]any{"b": 2})
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{200, ""},
		{302, ""},
		{400, ErrCodeBadRequest},
		{401, ErrCodeUnauthorized},
		{403, ErrCodeForbidden},
		{404, ErrCodeNotFound},
		{409, ErrCodeClientError},
		{422, ErrCodeClientError},
		{429, ErrCodeRateLimited},
		{500, ErrCodeServerError},
		{503, ErrCodeServerError},
	}
	for _, tt := range tests {
		if got := FromHTTPStatus(tt.status); got != tt.want {
			t.Errorf("FromHTTPStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestIsClientCode(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeBadRequest, ErrCodeUnauthorized, ErrCodeForbidden, ErrCodeNotFound, ErrCodeRateLimited, ErrCodeClientError} {
		if !IsClientCode(code) {
			t.Errorf("expected %s to be a client code", code)
		}
	}
	for _, code := range []ErrorCode{ErrCodeServerError, ErrCodeTimeout, ErrCodeInternal} {
		if IsClientCode(code) {
			t.Errorf("expected %s not to be a client code", code)
		}
	}
}

func TestFromResponse_DefaultMessage(t *testing.T) {
	err := FromResponse(400, "")
	if err.Message != "response status code: 400" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Code != ErrCodeBadRequest {
		t.Errorf("expected BAD_REQUEST, got %s", err.Code)
	}

	err = FromResponse(503, "down")
	if err.Message != "down" || !err.Retryable {
		t.Errorf("expected retryable 'down', got %+v", err)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"timeout", Timeout("GET"), ErrCodeTimeout, http.StatusGatewayTimeout},
		{"connection", ConnectionFailed("api.example.org"), ErrCodeConnectionFailed, http.StatusServiceUnavailable},
		{"invalid input", InvalidInput("url", "empty"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"missing field", MissingField("api_root"), ErrCodeMissingField, http.StatusBadRequest},
		{"internal", Internal(fmt.Errorf("x")), ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected %d, got %d", tc.status, tc.err.HTTPStatus)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", New(ErrCodeNotFound, "gone", 404))
	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeNotFound {
		t.Fatalf("expected NOT_FOUND app error, got %v %v", appErr, ok)
	}
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError to be true")
	}
	if !HasCode(wrapped, ErrCodeNotFound) {
		t.Error("expected HasCode to match")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error should not be an AppError")
	}
}
