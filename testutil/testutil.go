// Package testutil provides testing helpers for HTTP handlers that answer
// with the bridge response envelope.
// It does not import bridge and can be used from any package.
package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// RequestBuilder helps construct test HTTP requests with fluent API.
type RequestBuilder struct {
	method  string
	path    string
	body    []byte
	headers map[string]string
	query   url.Values
}

// NewRequest creates a new request builder for GET /.
func NewRequest() *RequestBuilder {
	return &RequestBuilder{
		method:  http.MethodGet,
		path:    "/",
		headers: make(map[string]string),
		query:   make(url.Values),
	}
}

// Method sets the HTTP method and path.
func (b *RequestBuilder) Method(method, path string) *RequestBuilder {
	b.method = method
	b.path = path
	return b
}

// GET sets the HTTP method to GET.
func (b *RequestBuilder) GET(path string) *RequestBuilder {
	return b.Method(http.MethodGet, path)
}

// POST sets the HTTP method to POST.
func (b *RequestBuilder) POST(path string) *RequestBuilder {
	return b.Method(http.MethodPost, path)
}

// WithJSON sets the request body as JSON.
func (b *RequestBuilder) WithJSON(v any) *RequestBuilder {
	data, _ := json.Marshal(v)
	b.body = data
	b.headers["Content-Type"] = "application/json"
	return b
}

// WithBody sets the raw request body.
func (b *RequestBuilder) WithBody(body string) *RequestBuilder {
	b.body = []byte(body)
	return b
}

// WithHeader adds a header to the request.
func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.headers[key] = value
	return b
}

// WithQuery adds a query parameter. Repeated keys are kept in order.
func (b *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	b.query.Add(key, value)
	return b
}

// Build creates the HTTP request and ResponseRecorder.
func (b *RequestBuilder) Build() (*http.Request, *httptest.ResponseRecorder) {
	path := b.path
	if len(b.query) > 0 {
		path += "?" + b.query.Encode()
	}

	var req *http.Request
	if len(b.body) > 0 {
		req = httptest.NewRequest(b.method, path, bytes.NewReader(b.body))
	} else {
		req = httptest.NewRequest(b.method, path, nil)
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	return req, httptest.NewRecorder()
}

// Serve builds the request and serves it with h.
func (b *RequestBuilder) Serve(h http.Handler) *httptest.ResponseRecorder {
	req, w := b.Build()
	h.ServeHTTP(w, req)
	return w
}

// Envelope is the decoded response envelope. Data stays raw.
type Envelope struct {
	Success bool           `json:"success"`
	Data    jsontext.Value `json:"data,omitzero"`
	Error   *ErrorResponse `json:"error,omitzero"`
}

// ErrorResponse represents the error member of the envelope.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) {
	t.Helper()
	if w.Code != expectedStatus {
		t.Errorf("expected status %d, got %d\nBody: %s", expectedStatus, w.Code, w.Body.String())
	}
}

// DecodeEnvelope decodes the response body as an envelope.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) *Envelope {
	t.Helper()

	contentType := w.Header().Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		t.Errorf("expected Content-Type to contain application/json, got %s", contentType)
	}

	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v\nBody: %s", err, w.Body.String())
	}
	return &env
}

// AssertData checks for a successful envelope whose data equals expected
// once both are encoded as JSON.
func AssertData(t *testing.T, w *httptest.ResponseRecorder, expected any) {
	t.Helper()

	env := DecodeEnvelope(t, w)
	if !env.Success {
		t.Errorf("expected success, got error %+v", env.Error)
		return
	}

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to encode expected value: %v", err)
	}
	want, got := jsontext.Value(expectedJSON), env.Data.Clone()
	if len(got) == 0 {
		got = jsontext.Value("null")
	}
	// Compare canonical forms to ignore formatting and member order.
	if err := want.Canonicalize(); err != nil {
		t.Fatalf("failed to canonicalize expected value: %v", err)
	}
	if err := got.Canonicalize(); err != nil {
		t.Fatalf("failed to canonicalize data: %v", err)
	}
	if string(want) != string(got) {
		t.Errorf("data mismatch:\nExpected:\n%s\nActual:\n%s", want, got)
	}
}

// AssertError checks for an error envelope with the expected code.
func AssertError(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) *ErrorResponse {
	t.Helper()

	env := DecodeEnvelope(t, w)
	if env.Success {
		t.Fatalf("expected error %s, got success\nBody: %s", expectedCode, w.Body.String())
	}
	if env.Error == nil {
		t.Fatalf("error envelope has no error member\nBody: %s", w.Body.String())
	}
	if env.Error.Code != expectedCode {
		t.Errorf("expected error code %s, got %s (message: %s)", expectedCode, env.Error.Code, env.Error.Message)
	}
	return env.Error
}

// AssertHeader checks that a response header has the expected value.
func AssertHeader(t *testing.T, w *httptest.ResponseRecorder, key, expectedValue string) {
	t.Helper()
	actual := w.Header().Get(key)
	if actual != expectedValue {
		t.Errorf("expected header %s=%s, got %s", key, expectedValue, actual)
	}
}
