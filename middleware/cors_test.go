package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *CORSConfig
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantHeaders map[string]string
	}{
		{
			name:       "nil config allows any origin",
			method:     http.MethodGet,
			origin:     "http://localhost:4200",
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin":   "*",
				"Access-Control-Expose-Headers": RequestIDHeader,
			},
		},
		{
			name:       "no origin passes through untouched",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin": "",
			},
		},
		{
			name:       "preflight with defaults",
			method:     http.MethodOptions,
			origin:     "http://localhost:4200",
			preflight:  true,
			wantStatus: http.StatusNoContent,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "GET, POST, PUT, PATCH, DELETE, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type, Authorization, X-Request-Id",
				"Access-Control-Max-Age":       "",
			},
		},
		{
			name:       "OPTIONS without request method is not a preflight",
			method:     http.MethodOptions,
			origin:     "http://localhost:4200",
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Methods": "",
			},
		},
		{
			name:       "specific origin allowed",
			cfg:        &CORSConfig{AllowOrigins: []string{"https://app.example.com"}},
			method:     http.MethodPost,
			origin:     "https://app.example.com",
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin": "https://app.example.com",
				"Vary":                        "Origin",
			},
		},
		{
			name:       "specific origin rejected",
			cfg:        &CORSConfig{AllowOrigins: []string{"https://app.example.com"}},
			method:     http.MethodPost,
			origin:     "https://evil.example.com",
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin": "",
			},
		},
		{
			name:       "wildcard with credentials echoes origin",
			cfg:        &CORSConfig{AllowCredentials: true},
			method:     http.MethodGet,
			origin:     "https://app.example.com",
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin":      "https://app.example.com",
				"Access-Control-Allow-Credentials": "true",
			},
		},
		{
			name:       "custom preflight settings",
			cfg:        &CORSConfig{AllowMethods: []string{"GET"}, AllowHeaders: []string{"X-Custom"}, MaxAge: 600},
			method:     http.MethodOptions,
			origin:     "https://app.example.com",
			preflight:  true,
			wantStatus: http.StatusNoContent,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Methods": "GET",
				"Access-Control-Allow-Headers": "X-Custom",
				"Access-Control-Max-Age":       "600",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/users/get", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			w := httptest.NewRecorder()

			CORS(tt.cfg)(okHandler).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			for k, want := range tt.wantHeaders {
				if got := w.Header().Get(k); got != want {
					t.Errorf("header %s: expected %q, got %q", k, want, got)
				}
			}
		})
	}
}

func TestCORS_DoesNotMutateConfig(t *testing.T) {
	cfg := &CORSConfig{}
	CORS(cfg)
	if cfg.AllowOrigins != nil || cfg.AllowMethods != nil || cfg.AllowHeaders != nil {
		t.Errorf("config was mutated: %+v", cfg)
	}
}
