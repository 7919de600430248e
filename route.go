package bridge

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"slices"
)

// RouteGroup is a named collection of operations sharing a base path and
// middleware. Operation order is declaration order.
type RouteGroup struct {
	Name       string
	BasePath   string
	Middleware []func(http.Handler) http.Handler
	Operations []Operation
}

// Validate checks every operation of the group and rejects duplicate
// operation names. All problems are reported, joined.
func (g RouteGroup) Validate() error {
	var errs []error
	if g.Name == "" {
		errs = append(errs, &ConfigError{Reason: "route group name is empty"})
	}
	seen := make(map[string]bool, len(g.Operations))
	for _, op := range g.Operations {
		if err := op.Validate(); err != nil {
			var cfgErr *ConfigError
			if errors.As(err, &cfgErr) {
				cfgErr.Group = g.Name
			}
			errs = append(errs, err)
			continue
		}
		if seen[op.Name] {
			errs = append(errs, &ConfigError{Group: g.Name, Operation: op.Name, Reason: "duplicate operation name"})
		}
		seen[op.Name] = true
	}
	return errors.Join(errs...)
}

func (g RouteGroup) clone() RouteGroup {
	g.Middleware = slices.Clone(g.Middleware)
	ops := make([]Operation, len(g.Operations))
	for i, op := range g.Operations {
		ops[i] = op.clone()
	}
	g.Operations = ops
	return g
}

// RouteBuilder assembles a RouteGroup.
//
//	users := bridge.NewRoute("Users").
//	    BasePath("/users").
//	    Endpoint(bridge.Endpoint("get", svc.Get, "id")).
//	    Endpoint(bridge.Endpoint("create", svc.Create, "user").Method(bridge.POST)).
//	    Build()
type RouteBuilder struct {
	group RouteGroup
}

// NewRoute starts a route group with the given identity.
func NewRoute(name string) *RouteBuilder {
	return &RouteBuilder{group: RouteGroup{Name: name}}
}

// RouteFor starts a route group named after the Go type of v.
// Pointers are dereferenced, so RouteFor(&UsersAPI{}) is named "UsersAPI".
func RouteFor(v any) *RouteBuilder {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := ""
	if t != nil {
		name = t.Name()
	}
	if name == "" {
		name = fmt.Sprintf("%T", v)
	}
	return NewRoute(name)
}

// BasePath sets the prefix prepended to every operation path.
func (b *RouteBuilder) BasePath(p string) *RouteBuilder {
	b.group.BasePath = p
	return b
}

// WithMiddleware adds HTTP middleware shared by all operations of the group.
func (b *RouteBuilder) WithMiddleware(mw func(http.Handler) http.Handler) *RouteBuilder {
	b.group.Middleware = append(b.group.Middleware, mw)
	return b
}

// Endpoint appends the operation built by e.
func (b *RouteBuilder) Endpoint(e *EndpointBuilder) *RouteBuilder {
	b.group.Operations = append(b.group.Operations, e.Build())
	return b
}

// Operation appends an already built operation.
func (b *RouteBuilder) Operation(op Operation) *RouteBuilder {
	b.group.Operations = append(b.group.Operations, op.clone())
	return b
}

// Build returns the route group value.
func (b *RouteBuilder) Build() RouteGroup {
	return b.group.clone()
}
