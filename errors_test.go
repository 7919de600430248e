package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestNewError(t *testing.T) {
	err := NewError(CodeNotFound, "resource not found")
	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.Message != "resource not found" {
		t.Errorf("expected message 'resource not found', got %s", err.Message)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(CodeInvalidArgument, "invalid field: %s", "email")
	if err.Code != CodeInvalidArgument {
		t.Errorf("expected code %s, got %s", CodeInvalidArgument, err.Code)
	}
	if err.Message != "invalid field: email" {
		t.Errorf("expected formatted message, got %s", err.Message)
	}
}

func TestErrorError(t *testing.T) {
	err := NewError(CodeInternal, "something went wrong")
	expected := "internal: something went wrong"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestError_WithDetail(t *testing.T) {
	base := NewError(CodeConflict, "taken")
	a := base.WithDetail("field", "email")
	b := a.WithDetail("value", "x@example.com")

	if base.Details != nil {
		t.Errorf("expected original to stay without details, got %v", base.Details)
	}
	if len(a.Details) != 1 || a.Details["field"] != "email" {
		t.Errorf("unexpected details %v", a.Details)
	}
	if len(b.Details) != 2 {
		t.Errorf("expected 2 details, got %v", b.Details)
	}
}

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{&ConfigError{Group: "Users", Operation: "get", Reason: "bad"}, "bridge: route group Users: operation get: bad"},
		{&ConfigError{Group: "Users", Reason: "bad"}, "bridge: route group Users: bad"},
		{&ConfigError{Operation: "get", Reason: "bad"}, "bridge: operation get: bad"},
		{&ConfigError{Reason: "bad"}, "bridge: bad"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestDefaultErrorTransformer(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		wantCode ErrorCode
		wantMsg  string
	}{
		{
			name:     "nil error",
			input:    nil,
			wantCode: "",
			wantMsg:  "",
		},
		{
			name:     "service error passthrough",
			input:    NewError(CodeNotFound, "not found"),
			wantCode: CodeNotFound,
			wantMsg:  "not found",
		},
		{
			name:     "wrapped service error",
			input:    fmt.Errorf("lookup: %w", NewError(CodePermissionDenied, "nope")),
			wantCode: CodePermissionDenied,
			wantMsg:  "nope",
		},
		{
			name:     "context deadline exceeded",
			input:    context.DeadlineExceeded,
			wantCode: CodeDeadlineExceeded,
			wantMsg:  "request timeout",
		},
		{
			name:     "context canceled",
			input:    context.Canceled,
			wantCode: CodeCanceled,
			wantMsg:  "context canceled",
		},
		{
			name:     "generic error",
			input:    errors.New("something failed"),
			wantCode: CodeInternal,
			wantMsg:  "something failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DefaultErrorTransformer(tt.input)
			if tt.input == nil {
				if result != nil {
					t.Errorf("expected nil for nil input, got %v", result)
				}
				return
			}
			if result.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, result.Code)
			}
			if result.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, result.Message)
			}
		})
	}
}

func TestDefaultErrorTransformer_ValidationErrors(t *testing.T) {
	type TestStruct struct {
		Email string `validate:"required,email"`
		Age   int    `validate:"gte=0,lte=120"`
	}

	validate := validator.New()
	s := TestStruct{Email: "invalid", Age: -1}
	err := validate.Struct(s)

	result := DefaultErrorTransformer(err)
	if result.Code != CodeInvalidArgument {
		t.Errorf("expected code %s, got %s", CodeInvalidArgument, result.Code)
	}
	want := "Email: must be a valid email address; Age: must be at least 0"
	if result.Message != want {
		t.Errorf("expected message %q, got %q", want, result.Message)
	}
	if result.Details == nil {
		t.Fatal("expected details to be non-nil")
	}
	if result.Details["Email"] != "must be a valid email address" {
		t.Errorf("unexpected Email detail %v", result.Details["Email"])
	}
	if _, ok := result.Details["Age"]; !ok {
		t.Error("expected Age field in details")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code       ErrorCode
		wantStatus int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeResourceExhausted, http.StatusTooManyRequests},
		{CodeNotImplemented, http.StatusNotImplemented},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeDeadlineExceeded, http.StatusGatewayTimeout},
		{CodeCanceled, 499},
		{CodeInternal, http.StatusInternalServerError},
		{ErrorCode("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if status := tt.code.HTTPStatus(); status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, status)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	svcErr := NewError(CodeNotFound, "resource not found").WithDetail("id", "42")
	w := httptest.NewRecorder()

	NewApp().writeError(w, svcErr)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}
	want := `{"success":false,"error":{"code":"not_found","message":"resource not found","details":{"id":"42"}}}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("unexpected body\n got: %s\nwant: %s", got, want)
	}
}
