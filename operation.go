package bridge

import (
	"context"
	"encoding"
	"fmt"
	"net/http"
	"reflect"
	"slices"
)

// Verb is the HTTP method an operation is served under.
type Verb string

const (
	GET     Verb = "GET"
	POST    Verb = "POST"
	PUT     Verb = "PUT"
	DELETE  Verb = "DELETE"
	PATCH   Verb = "PATCH"
	HEAD    Verb = "HEAD"
	OPTIONS Verb = "OPTIONS"
)

func (v Verb) valid() bool {
	switch v {
	case GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS:
		return true
	}
	return false
}

// HasBody reports whether caller-supplied parameters travel as a JSON object
// in the request body. All other verbs carry them in the query string.
func (v Verb) HasBody() bool {
	return v == POST || v == PUT || v == PATCH
}

// InjectedParam marks a parameter whose value is bound on the server by a
// named extraction rule. Injected parameters never appear in a generated client.
type InjectedParam struct {
	Index int
	Rule  string
}

var (
	contextType         = reflect.TypeFor[context.Context]()
	errorType           = reflect.TypeFor[error]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Operation is one callable unit of a route group.
//
// ParamNames and ParamTypes are positional and must have the same length.
// Operations are values; the builders hand out copies so a registered
// operation cannot be changed afterwards.
type Operation struct {
	Name       string
	Verb       Verb
	Path       string
	ParamNames []string
	ParamTypes []reflect.Type
	Injected   []InjectedParam
	Returns    reflect.Type
	Middleware []func(http.Handler) http.Handler

	fn           reflect.Value
	takesContext bool
	returnsError bool
	invalid      string
}

// Served reports whether the operation is backed by a Go function.
// Operations created with Declare only describe a client surface.
func (op Operation) Served() bool {
	return op.fn.IsValid()
}

// InjectedRule returns the extraction rule bound to the parameter at index i.
func (op Operation) InjectedRule(i int) (string, bool) {
	for _, p := range op.Injected {
		if p.Index == i {
			return p.Rule, true
		}
	}
	return "", false
}

// CallerParams returns the indices of the caller-supplied parameters in
// declaration order.
func (op Operation) CallerParams() []int {
	idx := make([]int, 0, len(op.ParamTypes))
	for i := range op.ParamTypes {
		if _, ok := op.InjectedRule(i); !ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// Validate checks the operation for configuration inconsistencies.
func (op Operation) Validate() error {
	fail := func(format string, args ...any) error {
		return &ConfigError{Operation: op.Name, Reason: fmt.Sprintf(format, args...)}
	}
	if op.Name == "" {
		return fail("operation name is empty")
	}
	if op.invalid != "" {
		return fail("%s", op.invalid)
	}
	if !op.Verb.valid() {
		return fail("unsupported verb %q", op.Verb)
	}
	if len(op.ParamNames) != len(op.ParamTypes) {
		return fail("declares %d parameter names for %d parameters", len(op.ParamNames), len(op.ParamTypes))
	}
	seen := make(map[string]bool, len(op.ParamNames))
	for _, name := range op.ParamNames {
		if name == "" {
			return fail("parameter name is empty")
		}
		if seen[name] {
			return fail("duplicate parameter name %q", name)
		}
		seen[name] = true
	}
	bound := make(map[int]bool, len(op.Injected))
	for _, p := range op.Injected {
		if p.Index < 0 || p.Index >= len(op.ParamTypes) {
			return fail("injected parameter index %d outside %d parameters", p.Index, len(op.ParamTypes))
		}
		if p.Rule == "" {
			return fail("injected parameter %q has no rule", op.ParamNames[p.Index])
		}
		if bound[p.Index] {
			return fail("parameter %q injected twice", op.ParamNames[p.Index])
		}
		bound[p.Index] = true
	}
	if !op.Verb.HasBody() {
		for _, i := range op.CallerParams() {
			if err := checkQueryType(op.ParamTypes[i], make(map[reflect.Type]bool)); err != nil {
				return fail("parameter %s: %v, use a verb with a body", op.ParamNames[i], err)
			}
		}
	}
	return nil
}

// checkQueryType reports the first part of t the query decoder cannot fill:
// maps and interfaces, also inside slices and struct fields.
func checkQueryType(t reflect.Type, seen map[reflect.Type]bool) error {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || seen[t] || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return nil
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Map, reflect.Interface:
		return fmt.Errorf("%s cannot be sent as query parameters", t)
	case reflect.Slice, reflect.Array:
		return checkQueryType(t.Elem(), seen)
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if (!f.IsExported() && !f.Anonymous) || f.Tag.Get("json") == "-" {
				continue
			}
			if err := checkQueryType(f.Type, seen); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
	}
	return nil
}

func (op Operation) clone() Operation {
	op.ParamNames = slices.Clone(op.ParamNames)
	op.ParamTypes = slices.Clone(op.ParamTypes)
	op.Injected = slices.Clone(op.Injected)
	op.Middleware = slices.Clone(op.Middleware)
	return op
}

// EndpointBuilder assembles an Operation.
type EndpointBuilder struct {
	op Operation
}

// Endpoint describes an operation served by fn.
//
// fn must be a function. A leading context.Context parameter is supplied by
// the server and is not a declared parameter. The remaining parameters are
// named positionally by paramNames. fn may return nothing, a value, an error,
// or a value and an error; the value type becomes the operation's return type.
//
//	bridge.Endpoint("find", users.Find, "name", "limit")
func Endpoint(name string, fn any, paramNames ...string) *EndpointBuilder {
	b := &EndpointBuilder{op: Operation{
		Name:       name,
		Verb:       GET,
		ParamNames: slices.Clone(paramNames),
	}}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		b.op.invalid = fmt.Sprintf("handler is %T, not a function", fn)
		return b
	}
	t := v.Type()
	if t.IsVariadic() {
		b.op.invalid = "variadic handlers are not supported"
		return b
	}

	in := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		b.op.takesContext = true
		in = 1
	}
	for ; in < t.NumIn(); in++ {
		b.op.ParamTypes = append(b.op.ParamTypes, t.In(in))
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			b.op.returnsError = true
		} else {
			b.op.Returns = t.Out(0)
		}
	case 2:
		if t.Out(1) != errorType {
			b.op.invalid = fmt.Sprintf("second result must be error, got %s", t.Out(1))
			return b
		}
		b.op.Returns = t.Out(0)
		b.op.returnsError = true
	default:
		b.op.invalid = fmt.Sprintf("handler returns %d results, want at most 2", t.NumOut())
		return b
	}

	b.op.fn = v
	return b
}

// Declare describes an operation without a Go implementation.
// Parameters are added with Param, the result with Returns. The server
// answers declared operations with not_implemented.
func Declare(name string) *EndpointBuilder {
	return &EndpointBuilder{op: Operation{Name: name, Verb: GET}}
}

// Method sets the HTTP verb. Default is GET.
func (b *EndpointBuilder) Method(v Verb) *EndpointBuilder {
	b.op.Verb = v
	return b
}

// Path sets the path segment appended to the group's base path.
// Default is the operation name.
func (b *EndpointBuilder) Path(p string) *EndpointBuilder {
	b.op.Path = p
	return b
}

// Param appends a named parameter of type t. Only valid on declared
// operations; parameter types of a served operation come from its function.
func (b *EndpointBuilder) Param(name string, t reflect.Type) *EndpointBuilder {
	if b.op.fn.IsValid() {
		b.op.invalid = fmt.Sprintf("Param(%q) on an operation served by a function", name)
		return b
	}
	b.op.ParamNames = append(b.op.ParamNames, name)
	b.op.ParamTypes = append(b.op.ParamTypes, t)
	return b
}

// Inject binds the parameter at index to a server-side extraction rule.
func (b *EndpointBuilder) Inject(index int, rule string) *EndpointBuilder {
	b.op.Injected = append(b.op.Injected, InjectedParam{Index: index, Rule: rule})
	return b
}

// Returns overrides the operation's return type.
func (b *EndpointBuilder) Returns(t reflect.Type) *EndpointBuilder {
	b.op.Returns = t
	return b
}

// WithMiddleware adds HTTP middleware that wraps only this operation.
func (b *EndpointBuilder) WithMiddleware(mw func(http.Handler) http.Handler) *EndpointBuilder {
	b.op.Middleware = append(b.op.Middleware, mw)
	return b
}

// Build returns the operation value.
func (b *EndpointBuilder) Build() Operation {
	op := b.op.clone()
	if op.Path == "" {
		op.Path = op.Name
	}
	return op
}
