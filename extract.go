package bridge

import (
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"
)

// ParamRule extracts the value of a server-injected parameter from the request.
// The result must be assignable or convertible to the parameter type.
type ParamRule func(r *http.Request) (any, error)

// Built-in rules. "header:<Name>" resolves to the named request header.
var builtinRules = map[string]ParamRule{
	"url": func(r *http.Request) (any, error) {
		return r.URL.String(), nil
	},
	"path": func(r *http.Request) (any, error) {
		return r.URL.Path, nil
	},
	"method": func(r *http.Request) (any, error) {
		return r.Method, nil
	},
	"query": func(r *http.Request) (any, error) {
		return r.URL.Query(), nil
	},
	"ip": func(r *http.Request) (any, error) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr, nil
		}
		return host, nil
	},
	"request": func(r *http.Request) (any, error) {
		return r, nil
	},
}

// rule looks up an extraction rule, custom rules first.
func (a *App) rule(name string) (ParamRule, bool) {
	a.mu.RLock()
	rule, ok := a.rules[name]
	a.mu.RUnlock()
	if ok {
		return rule, true
	}
	if header, found := strings.CutPrefix(name, "header:"); found {
		return func(r *http.Request) (any, error) {
			return r.Header.Get(header), nil
		}, true
	}
	rule, ok = builtinRules[name]
	return rule, ok
}

// assignValue converts an extracted value to the parameter type.
func assignValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case rv.Type().ConvertibleTo(t) && rv.Kind() == t.Kind():
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}
