package bridge

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestRequestFromContext(t *testing.T) {
	t.Run("with request in context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		ctx := newContext(context.Background(), w, req, CallInfo{Group: "Users", Operation: "get"})

		result := RequestFromContext(ctx)
		if result != req {
			t.Error("expected request to be returned from context")
		}
	})

	t.Run("without request in context", func(t *testing.T) {
		ctx := context.Background()
		result := RequestFromContext(ctx)
		if result != nil {
			t.Error("expected nil when request not in context")
		}
	})
}

func TestSetHeader(t *testing.T) {
	t.Run("with writer in context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		ctx := newContext(context.Background(), w, req, CallInfo{Group: "Users", Operation: "get"})

		SetHeader(ctx, "X-Custom-Header", "custom-value")

		if w.Header().Get("X-Custom-Header") != "custom-value" {
			t.Errorf("expected header to be set, got %s", w.Header().Get("X-Custom-Header"))
		}
	})

	t.Run("without writer in context", func(t *testing.T) {
		ctx := context.Background()
		// Should not panic
		SetHeader(ctx, "X-Custom-Header", "custom-value")
	})
}

func TestCallFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	ctx := newContext(context.Background(), httptest.NewRecorder(), req, CallInfo{Group: "Users", Operation: "get"})

	info, ok := CallFromContext(ctx)
	if !ok {
		t.Fatal("expected call info in context")
	}
	if info.Group != "Users" || info.Operation != "get" {
		t.Errorf("unexpected call info %+v", info)
	}

	if _, ok := CallFromContext(context.Background()); ok {
		t.Error("expected no call info in background context")
	}
}
