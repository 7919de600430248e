package bridge

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	// Query keys are JSON names, matching what generated clients send.
	schemaDecoder.SetAliasTag("json")
	schemaDecoder.IgnoreUnknownKeys(true)
}

// JoinPath joins a base path and an operation path segment into an absolute
// URL path with single separators.
func JoinPath(base, segment string) string {
	var parts []string
	for _, p := range []string{base, segment} {
		for _, s := range strings.Split(p, "/") {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	return "/" + strings.Join(parts, "/")
}

// Handler returns an http.Handler serving every registered operation at
// VERB BasePath/Path. Middleware runs outer to inner: app, group, operation.
//
// Example:
//
//	app := bridge.NewApp().Register(users)
//	http.ListenAndServe(":8080", app.Handler())
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mounted := make(map[string]string)

	for _, g := range a.Routes() {
		for _, op := range g.Operations {
			if err := op.Validate(); err != nil {
				a.log().Error("skipping misconfigured operation",
					slog.String("group", g.Name),
					slog.String("operation", op.Name),
					slog.Any("error", err))
				continue
			}

			pattern := string(op.Verb) + " " + JoinPath(g.BasePath, op.Path)
			if owner, exists := mounted[pattern]; exists {
				a.log().Warn("duplicate route",
					slog.String("route", pattern),
					slog.String("group", g.Name),
					slog.String("operation", op.Name),
					slog.String("mounted_by", owner))
				continue
			}
			mounted[pattern] = g.Name + "." + op.Name

			var h http.Handler = newOperationHandler(a, g.Name, op)
			for i := len(op.Middleware) - 1; i >= 0; i-- {
				h = op.Middleware[i](h)
			}
			for i := len(g.Middleware) - 1; i >= 0; i-- {
				h = g.Middleware[i](h)
			}
			mux.Handle(pattern, h)
		}
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, NewError(CodeNotFound, "route not found"))
	})

	h := a.recoverPanics(mux)
	// Apply middleware in reverse order so first added is outermost
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

func (a *App) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			a.log().Error("PANIC recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			a.handleError(w, Errorf(CodeInternal, "internal server error (panic): %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

type operationHandler struct {
	app   *App
	group string
	op    Operation

	caller    []int
	queryType reflect.Type // holder struct for query decoding, nil for body verbs
}

func newOperationHandler(a *App, group string, op Operation) *operationHandler {
	h := &operationHandler{app: a, group: group, op: op, caller: op.CallerParams()}
	if !op.Verb.HasBody() && len(h.caller) > 0 {
		fields := make([]reflect.StructField, len(h.caller))
		for j, i := range h.caller {
			fields[j] = reflect.StructField{
				Name: fmt.Sprintf("P%d", j),
				Type: op.ParamTypes[i],
				Tag:  reflect.StructTag(`json:"` + op.ParamNames[i] + `"`),
			}
		}
		h.queryType = reflect.StructOf(fields)
	}
	return h
}

func (h *operationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.op.Served() {
		h.app.writeError(w, Errorf(CodeNotImplemented, "operation %s.%s has no implementation", h.group, h.op.Name))
		return
	}

	ctx := newContext(r.Context(), w, r, CallInfo{Group: h.group, Operation: h.op.Name})
	r = r.WithContext(ctx)

	args, err := h.arguments(w, r)
	if err != nil {
		h.app.handleError(w, err)
		return
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if h.op.takesContext {
		in = append(in, reflect.ValueOf(ctx))
	}
	in = append(in, args...)
	out := h.op.fn.Call(in)

	if h.op.returnsError {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			h.app.handleError(w, errVal.Interface().(error))
			return
		}
	}

	var data any
	if len(out) == 2 || (len(out) == 1 && !h.op.returnsError) {
		data = out[0].Interface()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := encodeResponse(w, data); err != nil {
		// Response may be partially written, nothing we can do. Log for debugging.
		h.app.log().Error("failed to encode response",
			slog.String("group", h.group),
			slog.String("operation", h.op.Name),
			slog.Any("error", err))
	}
}

// arguments binds every declared parameter: caller-supplied ones from the
// request, injected ones from their extraction rules.
func (h *operationHandler) arguments(w http.ResponseWriter, r *http.Request) ([]reflect.Value, error) {
	op := h.op
	args := make([]reflect.Value, len(op.ParamTypes))

	if len(h.caller) > 0 {
		var err error
		if op.Verb.HasBody() {
			err = h.decodeBody(w, r, args)
		} else {
			err = h.decodeQuery(r, args)
		}
		if err != nil {
			return nil, err
		}
		for _, i := range h.caller {
			if err := validateArg(args[i]); err != nil {
				return nil, err
			}
		}
	}

	for _, p := range op.Injected {
		rule, ok := h.app.rule(p.Rule)
		if !ok {
			return nil, Errorf(CodeInternal, "unknown parameter rule %q", p.Rule)
		}
		v, err := rule(r)
		if err != nil {
			return nil, err
		}
		rv, err := assignValue(v, op.ParamTypes[p.Index])
		if err != nil {
			return nil, Errorf(CodeInternal, "parameter %s: %v", op.ParamNames[p.Index], err)
		}
		args[p.Index] = rv
	}
	return args, nil
}

func (h *operationHandler) decodeBody(w http.ResponseWriter, r *http.Request, args []reflect.Value) error {
	var data []byte
	if r.Body != nil {
		body := io.Reader(r.Body)
		if h.app.maxRequestBodySize > 0 {
			body = http.MaxBytesReader(w, r.Body, h.app.maxRequestBodySize)
		}
		var err error
		if data, err = io.ReadAll(body); err != nil {
			return Errorf(CodeInvalidArgument, "failed to read body: %v", err)
		}
	}

	fields := make(map[string]jsontext.Value)
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
		}
	}

	for _, i := range h.caller {
		ptr := reflect.New(h.op.ParamTypes[i])
		if raw, ok := fields[h.op.ParamNames[i]]; ok {
			if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
				return Errorf(CodeInvalidArgument, "parameter %s: %v", h.op.ParamNames[i], err)
			}
		}
		args[i] = ptr.Elem()
	}
	return nil
}

func (h *operationHandler) decodeQuery(r *http.Request, args []reflect.Value) error {
	holder := reflect.New(h.queryType)
	if err := schemaDecoder.Decode(holder.Interface(), r.URL.Query()); err != nil {
		return Errorf(CodeInvalidArgument, "failed to decode query: %v", err)
	}
	for j, i := range h.caller {
		args[i] = holder.Elem().Field(j)
	}
	return nil
}

// validateArg runs struct validation on struct and pointer-to-struct arguments.
func validateArg(v reflect.Value) error {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(v.Interface())
}

func (a *App) handleError(w http.ResponseWriter, err error) {
	var svcErr *Error
	if a.errorTransformer != nil {
		svcErr = a.errorTransformer(err)
	}
	if svcErr == nil {
		svcErr = DefaultErrorTransformer(err)
	}
	if svcErr.Code == CodeInternal {
		a.log().Error("operation failed", slog.Any("error", err))
		if a.maskInternalErrors {
			svcErr = NewError(CodeInternal, "internal server error")
		}
	}
	a.writeError(w, svcErr)
}

func (a *App) writeError(w http.ResponseWriter, svcErr *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.Code.HTTPStatus())
	if err := encodeErrorResponse(w, svcErr); err != nil {
		// Headers already sent, nothing we can do. Log for debugging.
		a.log().Error("failed to encode error response",
			slog.String("code", string(svcErr.Code)),
			slog.String("message", svcErr.Message),
			slog.Any("error", err))
	}
}
