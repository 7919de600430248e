package bridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/zwisler-a/bridge/testutil"
)

type page struct {
	Size   int    `json:"size"`
	Cursor string `json:"cursor,omitempty"`
}

type findResult struct {
	Name  string   `json:"name"`
	Limit *int     `json:"limit"`
	Tags  []string `json:"tags"`
	Page  page     `json:"page"`
}

func quietApp() *App {
	return NewApp().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		base, segment, want string
	}{
		{"/users", "get", "/users/get"},
		{"/users/", "/get", "/users/get"},
		{"users", "", "/users"},
		{"", "get", "/get"},
		{"", "", "/"},
		{"/api//v1/", "//users/", "/api/v1/users"},
	}
	for _, tt := range tests {
		if got := JoinPath(tt.base, tt.segment); got != tt.want {
			t.Errorf("JoinPath(%q, %q) = %q, want %q", tt.base, tt.segment, got, tt.want)
		}
	}
}

func TestHandler_GET_QueryParams(t *testing.T) {
	find := func(ctx context.Context, name string, limit *int, tags []string, p page) (findResult, error) {
		return findResult{Name: name, Limit: limit, Tags: tags, Page: p}, nil
	}
	app := quietApp().Register(NewRoute("Users").BasePath("/users").
		Endpoint(Endpoint("find", find, "name", "limit", "tags", "page")).
		Build())

	w := testutil.NewRequest().
		GET("/users/find").
		WithQuery("name", "bob").
		WithQuery("limit", "5").
		WithQuery("tags", "a").
		WithQuery("tags", "b").
		WithQuery("page.size", "20").
		WithQuery("page.cursor", "xyz").
		Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusOK)
	limit := 5
	testutil.AssertData(t, w, findResult{
		Name:  "bob",
		Limit: &limit,
		Tags:  []string{"a", "b"},
		Page:  page{Size: 20, Cursor: "xyz"},
	})
}

func TestHandler_GET_MissingAndInvalidQuery(t *testing.T) {
	find := func(ctx context.Context, name string, limit *int) (findResult, error) {
		return findResult{Name: name, Limit: limit}, nil
	}
	h := quietApp().Register(NewRoute("Users").BasePath("/users").
		Endpoint(Endpoint("find", find, "name", "limit")).
		Build()).Handler()

	w := testutil.NewRequest().GET("/users/find").Serve(h)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertData(t, w, findResult{})

	w = testutil.NewRequest().GET("/users/find").WithQuery("limit", "many").Serve(h)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	testutil.AssertError(t, w, "invalid_argument")
}

func TestHandler_POST_Body(t *testing.T) {
	create := func(ctx context.Context, u user, notify bool) (*user, error) {
		if notify {
			u.Name += "!"
		}
		u.ID = 7
		return &u, nil
	}
	h := quietApp().Register(NewRoute("Users").BasePath("/users").
		Endpoint(Endpoint("create", create, "user", "notify").Method(POST).Path("/")).
		Build()).Handler()

	w := testutil.NewRequest().
		POST("/users").
		WithJSON(map[string]any{"user": map[string]any{"name": "alice"}, "notify": true}).
		Serve(h)

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertData(t, w, user{ID: 7, Name: "alice!"})
}

func TestHandler_POST_ValidationError(t *testing.T) {
	create := func(ctx context.Context, u *user) (*user, error) { return u, nil }
	h := quietApp().Register(NewRoute("Users").
		Endpoint(Endpoint("create", create, "user").Method(PUT)).
		Build()).Handler()

	w := testutil.NewRequest().
		Method(http.MethodPut, "/create").
		WithJSON(map[string]any{"user": map[string]any{"id": 1}}).
		Serve(h)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	errResp := testutil.AssertError(t, w, "invalid_argument")
	if errResp.Details["Name"] != "required" {
		t.Errorf("expected Name detail, got %v", errResp.Details)
	}
}

func TestHandler_POST_InvalidBody(t *testing.T) {
	create := func(ctx context.Context, u user) error { return nil }

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{not json"},
		{"wrong member type", `{"user": "alice"}`},
		{"not an object", `[1, 2]`},
	}
	h := quietApp().Register(NewRoute("Users").
		Endpoint(Endpoint("create", create, "user").Method(POST)).
		Build()).Handler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.NewRequest().POST("/create").WithBody(tt.body).Serve(h)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
			testutil.AssertError(t, w, "invalid_argument")
		})
	}
}

func TestHandler_POST_BodyTooLarge(t *testing.T) {
	create := func(ctx context.Context, u user) error { return nil }
	h := quietApp().WithMaxRequestBodySize(16).Register(NewRoute("Users").
		Endpoint(Endpoint("create", create, "user").Method(POST)).
		Build()).Handler()

	w := testutil.NewRequest().
		POST("/create").
		WithJSON(map[string]any{"user": map[string]any{"name": strings.Repeat("x", 64)}}).
		Serve(h)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	testutil.AssertError(t, w, "invalid_argument")
}

func TestHandler_InjectedParams(t *testing.T) {
	who := func(ctx context.Context, ip string, id int64, tenant string, method string, agent string) (map[string]any, error) {
		return map[string]any{"ip": ip, "id": id, "tenant": tenant, "method": method, "agent": agent}, nil
	}
	app := quietApp().
		WithParamRule("tenant", func(r *http.Request) (any, error) { return "acme", nil }).
		Register(NewRoute("Users").
			Endpoint(Endpoint("who", who, "ip", "id", "tenant", "method", "agent").
				Inject(0, "ip").
				Inject(2, "tenant").
				Inject(3, "method").
				Inject(4, "header:User-Agent")).
			Build())

	w := testutil.NewRequest().
		GET("/who").
		WithQuery("id", "3").
		WithQuery("ip", "10.0.0.1").
		WithHeader("User-Agent", "test-agent").
		Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusOK)
	// httptest requests come from 192.0.2.1; a caller cannot override injected values.
	testutil.AssertData(t, w, map[string]any{
		"ip":     "192.0.2.1",
		"id":     3,
		"tenant": "acme",
		"method": "GET",
		"agent":  "test-agent",
	})
}

func TestHandler_InjectedParam_Errors(t *testing.T) {
	op := func(ctx context.Context, v string) error { return nil }

	tests := []struct {
		name     string
		app      *App
		wantCode string
	}{
		{
			name:     "unknown rule",
			app:      quietApp(),
			wantCode: "internal",
		},
		{
			name: "rule error",
			app: quietApp().WithParamRule("custom", func(r *http.Request) (any, error) {
				return nil, NewError(CodeUnauthenticated, "no token")
			}),
			wantCode: "unauthenticated",
		},
		{
			name: "unassignable value",
			app: quietApp().WithParamRule("custom", func(r *http.Request) (any, error) {
				return 42, nil
			}),
			wantCode: "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.app.Register(NewRoute("G").Endpoint(Endpoint("op", op, "v").Inject(0, "custom")).Build())
			w := testutil.NewRequest().GET("/op").Serve(tt.app.Handler())
			testutil.AssertError(t, w, tt.wantCode)
		})
	}
}

func TestHandler_MiddlewareOrder(t *testing.T) {
	var order []string
	record := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	ping := func(ctx context.Context) error {
		order = append(order, "handler")
		return nil
	}

	app := quietApp().
		WithMiddleware(record("app1")).
		WithMiddleware(record("app2")).
		Register(NewRoute("G").
			WithMiddleware(record("group")).
			Endpoint(Endpoint("ping", ping).WithMiddleware(record("op1")).WithMiddleware(record("op2"))).
			Build())

	w := testutil.NewRequest().GET("/ping").Serve(app.Handler())
	testutil.AssertStatus(t, w, http.StatusOK)

	want := []string{"app1", "app2", "group", "op1", "op2", "handler"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("expected order %v, got %v", want, order)
	}
}

func TestHandler_VoidResponse(t *testing.T) {
	var got CallInfo
	ping := func(ctx context.Context) {
		got, _ = CallFromContext(ctx)
		SetHeader(ctx, "X-Pinged", "yes")
	}
	h := quietApp().Register(NewRoute("Health").Endpoint(Endpoint("ping", ping).Method(DELETE)).Build()).Handler()

	w := testutil.NewRequest().Method(http.MethodDelete, "/ping").Serve(h)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertHeader(t, w, "X-Pinged", "yes")
	if body := strings.TrimSpace(w.Body.String()); body != `{"success":true}` {
		t.Errorf("unexpected body %s", body)
	}
	if got.Group != "Health" || got.Operation != "ping" {
		t.Errorf("unexpected call info %+v", got)
	}
}

func TestHandler_NotImplemented(t *testing.T) {
	h := quietApp().Register(NewRoute("Users").Endpoint(Declare("search").Method(POST)).Build()).Handler()

	w := testutil.NewRequest().POST("/search").Serve(h)
	testutil.AssertStatus(t, w, http.StatusNotImplemented)
	testutil.AssertError(t, w, "not_implemented")
}

func TestHandler_NotFound(t *testing.T) {
	h := quietApp().Register(NewRoute("Users").Endpoint(Endpoint("get", usersAPI{}.Get, "id")).Build()).Handler()

	w := testutil.NewRequest().GET("/nope").Serve(h)
	testutil.AssertStatus(t, w, http.StatusNotFound)
	testutil.AssertError(t, w, "not_found")
}

func TestHandler_SkipsMisconfigured(t *testing.T) {
	var buf bytes.Buffer
	app := NewApp().WithLogger(slog.New(slog.NewTextHandler(&buf, nil))).
		Register(NewRoute("Users").Endpoint(Endpoint("bad", func(a int) {})).Build())

	w := testutil.NewRequest().GET("/bad").Serve(app.Handler())
	testutil.AssertStatus(t, w, http.StatusNotFound)
	if !strings.Contains(buf.String(), "skipping misconfigured operation") {
		t.Errorf("expected log entry, got %s", buf.String())
	}
}

func TestHandler_Errors(t *testing.T) {
	failing := func(ctx context.Context) error { return errors.New("database exploded") }
	missing := func(ctx context.Context) (*user, error) { return nil, NewError(CodeNotFound, "no such user") }
	boom := func(ctx context.Context) error { panic("boom") }

	route := func() RouteGroup {
		return NewRoute("G").
			Endpoint(Endpoint("failing", failing)).
			Endpoint(Endpoint("missing", missing)).
			Endpoint(Endpoint("boom", boom)).
			Build()
	}

	tests := []struct {
		name       string
		app        *App
		path       string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"internal error", quietApp(), "/failing", http.StatusInternalServerError, "internal", "database exploded"},
		{"masked internal error", quietApp().WithMaskInternalErrors(), "/failing", http.StatusInternalServerError, "internal", "internal server error"},
		{"service error", quietApp(), "/missing", http.StatusNotFound, "not_found", "no such user"},
		{"panic", quietApp(), "/boom", http.StatusInternalServerError, "internal", "internal server error (panic): boom"},
		{
			name: "custom transformer",
			app: quietApp().WithErrorTransformer(func(err error) *Error {
				if strings.Contains(err.Error(), "database") {
					return NewError(CodeUnavailable, "try later")
				}
				return nil
			}),
			path:       "/failing",
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "unavailable",
			wantMsg:    "try later",
		},
		{
			name:       "transformer falls back to default",
			app:        quietApp().WithErrorTransformer(func(err error) *Error { return nil }),
			path:       "/missing",
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
			wantMsg:    "no such user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.NewRequest().GET(tt.path).Serve(tt.app.Register(route()).Handler())
			testutil.AssertStatus(t, w, tt.wantStatus)
			errResp := testutil.AssertError(t, w, tt.wantCode)
			if errResp.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, errResp.Message)
			}
		})
	}
}

func TestHandler_DuplicateRoute(t *testing.T) {
	var buf bytes.Buffer
	first := func() string { return "first" }
	second := func() string { return "second" }
	app := NewApp().WithLogger(slog.New(slog.NewTextHandler(&buf, nil))).
		Register(NewRoute("A").BasePath("/x").Endpoint(Endpoint("get", first)).Build()).
		Register(NewRoute("B").BasePath("/x").Endpoint(Endpoint("get", second)).Build())

	w := testutil.NewRequest().GET("/x/get").Serve(app.Handler())
	testutil.AssertData(t, w, "first")
	if !strings.Contains(buf.String(), "duplicate route") {
		t.Errorf("expected duplicate route warning, got %s", buf.String())
	}
}
