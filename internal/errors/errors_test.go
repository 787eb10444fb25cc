package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	testCases := []struct {
		name       string
		err        *AppError
		errorType  ErrorType
		statusCode int
		code       string
	}{
		{"validation", NewValidationError("bad path", nil), ErrorTypeValidation, http.StatusBadRequest, CodeInvalidArgument},
		{"not found", NewNotFoundError("missing", cause), ErrorTypeNotFound, http.StatusNotFound, CodeFileNotFound},
		{"decode", NewDecodeError("corrupt", cause), ErrorTypeDecode, http.StatusUnprocessableEntity, CodeDecodeError},
		{"network", NewNetworkError("fetch", cause), ErrorTypeNetwork, http.StatusBadGateway, CodeFetchError},
		{"timeout", NewTimeoutError("slow", cause), ErrorTypeTimeout, http.StatusGatewayTimeout, CodeTimeout},
		{"internal", NewInternalError("oops", cause), ErrorTypeInternal, http.StatusInternalServerError, CodeAnalysisError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Type != tc.errorType {
				t.Errorf("Expected type %s, got %s", tc.errorType, tc.err.Type)
			}
			if tc.err.StatusCode != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, tc.err.StatusCode)
			}
			if tc.err.Code() != tc.code {
				t.Errorf("Expected code %s, got %s", tc.code, tc.err.Code())
			}
		})
	}
}

func TestAppError_PreservesCause(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := NewDecodeError("failed to decode image", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
	if err.Details != "unexpected EOF" {
		t.Errorf("Expected details to carry the cause message, got %q", err.Details)
	}
	if err.Error() != "decode: failed to decode image (caused by: unexpected EOF)" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}
}

func TestHelpers_FindWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewNotFoundError("missing", nil))

	if !IsType(wrapped, ErrorTypeNotFound) {
		t.Error("Expected IsType to see through wrapping")
	}
	if GetStatusCode(wrapped) != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", GetStatusCode(wrapped))
	}
	if GetCode(wrapped) != CodeFileNotFound {
		t.Errorf("Expected %s, got %s", CodeFileNotFound, GetCode(wrapped))
	}
}

func TestHelpers_PlainError(t *testing.T) {
	err := errors.New("plain")

	if IsType(err, ErrorTypeInternal) {
		t.Error("Plain errors have no AppError type")
	}
	if GetStatusCode(err) != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", GetStatusCode(err))
	}
	if GetCode(err) != CodeAnalysisError {
		t.Errorf("Expected %s, got %s", CodeAnalysisError, GetCode(err))
	}
}
