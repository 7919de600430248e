package bridge

import (
	"context"
	"net/http"
)

type contextKey struct {
	name string
}

var (
	requestKey = &contextKey{"request"}
	writerKey  = &contextKey{"writer"}
	callKey    = &contextKey{"call"}
)

// CallInfo identifies the operation being served.
type CallInfo struct {
	Group     string
	Operation string
}

// RequestFromContext returns the HTTP request from the context.
func RequestFromContext(ctx context.Context) *http.Request {
	if r, ok := ctx.Value(requestKey).(*http.Request); ok {
		return r
	}
	return nil
}

// SetHeader sets an HTTP response header.
// It requires that the operation was called via App.Handler.
func SetHeader(ctx context.Context, key, value string) {
	if w, ok := ctx.Value(writerKey).(http.ResponseWriter); ok {
		w.Header().Set(key, value)
	}
}

// CallFromContext returns the route group and operation of the current call.
func CallFromContext(ctx context.Context) (CallInfo, bool) {
	info, ok := ctx.Value(callKey).(CallInfo)
	return info, ok
}

func newContext(ctx context.Context, w http.ResponseWriter, r *http.Request, info CallInfo) context.Context {
	ctx = context.WithValue(ctx, writerKey, w)
	ctx = context.WithValue(ctx, requestKey, r)
	ctx = context.WithValue(ctx, callKey, info)
	return ctx
}
