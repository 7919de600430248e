package bridge

import (
	"log/slog"
	"net/http"
	"sync"
)

// App is the registry of route groups.
// It is the input of the client generator and, through Handler, an
// http.Handler serving the registered operations.
type App struct {
	mu                 sync.RWMutex
	groups             []RouteGroup
	rules              map[string]ParamRule
	middlewares        []func(http.Handler) http.Handler
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	logger             *slog.Logger
	maxRequestBodySize int64
}

// OperationRef is a registered operation with a back-reference to the
// identity of its owning route group.
type OperationRef struct {
	Group     string
	Operation Operation
}

func NewApp() *App {
	return &App{
		rules:              make(map[string]ParamRule),
		maxRequestBodySize: 1 << 20, // 1MB default
	}
}

// WithLogger sets a custom logger for the app.
// If not set, slog.Default() will be used.
func (a *App) WithLogger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// WithMiddleware adds an HTTP middleware to wrap the app.
// Middleware is applied in the order added (first added is outermost).
func (a *App) WithMiddleware(mw func(http.Handler) http.Handler) *App {
	a.middlewares = append(a.middlewares, mw)
	return a
}

// WithErrorTransformer adds a custom error transformer.
func (a *App) WithErrorTransformer(fn ErrorTransformer) *App {
	a.errorTransformer = fn
	return a
}

// WithMaskInternalErrors replaces the message of internal errors with a
// generic one. The original error is still logged.
func (a *App) WithMaskInternalErrors() *App {
	a.maskInternalErrors = true
	return a
}

// WithMaxRequestBodySize sets the maximum request body size.
// A value of 0 means no limit. Default is 1MB.
func (a *App) WithMaxRequestBodySize(size int64) *App {
	a.maxRequestBodySize = size
	return a
}

// WithParamRule registers a named extraction rule for injected parameters.
// It replaces a built-in rule of the same name.
func (a *App) WithParamRule(name string, rule ParamRule) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rules[name] = rule
	return a
}

// Register adds a route group. Group identities must be unique; a duplicate
// is logged here and rejected by the generator.
func (a *App) Register(g RouteGroup) *App {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, existing := range a.groups {
		if existing.Name == g.Name {
			a.log().Warn("duplicate route group registration",
				slog.String("group", g.Name))
			break
		}
	}
	a.groups = append(a.groups, g.clone())
	return a
}

// Routes returns copies of the registered route groups in registration order.
func (a *App) Routes() []RouteGroup {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]RouteGroup, len(a.groups))
	for i, g := range a.groups {
		out[i] = g.clone()
	}
	return out
}

// Operations returns every registered operation, in registration order,
// tagged with its group identity.
func (a *App) Operations() []OperationRef {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []OperationRef
	for _, g := range a.groups {
		for _, op := range g.Operations {
			out = append(out, OperationRef{Group: g.Name, Operation: op.clone()})
		}
	}
	return out
}

func (a *App) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}
