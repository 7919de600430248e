// Package provider converts Go types into the intermediate representation
// (IR) that emitters use to produce client code.
package provider

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/zwisler-a/bridge/bridgegen/ir"
)

var (
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
)

// Resolver turns reflect.Type values into type descriptors using runtime
// reflection.
//
// A Resolver memoizes every struct type it has seen, so each Go type is
// walked once and resolves to the same reference on every later call.
// It is not safe for concurrent use; the generator creates one per run.
type Resolver struct {
	cache      map[reflect.Type]*ir.ReferenceDescriptor // struct type -> reference
	flattening map[reflect.Type]bool                    // embedded structs being flattened
	owners     map[ir.Identity]reflect.Type             // identity -> the type that claimed it
	types      []*ir.StructDescriptor
	warnings   []ir.Warning
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		cache:      make(map[reflect.Type]*ir.ReferenceDescriptor),
		flattening: make(map[reflect.Type]bool),
		owners:     make(map[ir.Identity]reflect.Type),
	}
}

// Types returns every struct descriptor discovered so far, in discovery order.
func (r *Resolver) Types() []*ir.StructDescriptor {
	return r.types
}

// Warnings returns the non-fatal issues recorded so far.
func (r *Resolver) Warnings() []ir.Warning {
	return r.warnings
}

// Resolve returns the descriptor of t. Struct types resolve to a reference
// and are recorded in Types, together with every struct they reach.
func (r *Resolver) Resolve(t reflect.Type) (ir.TypeDescriptor, error) {
	return r.ResolveNamed(t, "", "")
}

// ResolveNamed is like Resolve, but an anonymous struct found at the top of t
// is named name in package pkg instead of being rejected.
func (r *Resolver) ResolveNamed(t reflect.Type, name, pkg string) (ir.TypeDescriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("nil type")
	}
	return r.resolve(t, name, pkg)
}

// resolve converts t. parentName and parentPkg name anonymous structs.
func (r *Resolver) resolve(t reflect.Type, parentName, parentPkg string) (ir.TypeDescriptor, error) {
	if desc := checkSpecialType(t); desc != nil {
		return desc, nil
	}
	if err := checkUnsupportedType(t); err != nil {
		return nil, err
	}

	switch t.Kind() {
	case reflect.Bool:
		return ir.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return ir.Number(), nil

	case reflect.String:
		return ir.String(), nil

	case reflect.Slice:
		// Special case: []byte
		if t.Elem().Kind() == reflect.Uint8 {
			return ir.Bytes(), nil
		}
		elem, err := r.resolve(t.Elem(), parentName, parentPkg)
		if err != nil {
			return nil, err
		}
		return ir.Slice(elem), nil

	case reflect.Array:
		elem, err := r.resolve(t.Elem(), parentName, parentPkg)
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, t.Len()), nil

	case reflect.Map:
		if err := validateMapKeyType(t.Key()); err != nil {
			return nil, err
		}
		key, err := r.resolve(t.Key(), "", "")
		if err != nil {
			return nil, err
		}
		value, err := r.resolve(t.Elem(), parentName, parentPkg)
		if err != nil {
			return nil, err
		}
		return ir.Map(key, value), nil

	case reflect.Pointer:
		elem, err := r.resolve(t.Elem(), parentName, parentPkg)
		if err != nil {
			return nil, err
		}
		return ir.Ptr(elem), nil

	case reflect.Struct:
		return r.resolveStruct(t, parentName, parentPkg)

	case reflect.Interface:
		// Interfaces with methods map to any with a warning
		r.addWarning("INTERFACE_TYPE", fmt.Sprintf("interface type %s mapped to any", t), t.String())
		return ir.Any(), nil

	default:
		return nil, fmt.Errorf("unsupported type: %s (kind: %s)", t, t.Kind())
	}
}

// resolveStruct returns the reference to t, walking its fields on first use.
func (r *Resolver) resolveStruct(t reflect.Type, parentName, parentPkg string) (ir.TypeDescriptor, error) {
	if ref, ok := r.cache[t]; ok {
		return ref, nil
	}

	id := ir.Identity{Name: typeName(t), Package: t.PkgPath()}
	if t.Name() == "" {
		if parentName == "" {
			return nil, fmt.Errorf("cannot name anonymous struct %s without a parent type", t)
		}
		id = ir.Identity{Name: parentName, Package: parentPkg}
	}
	if owner, taken := r.owners[id]; taken && owner != t {
		// Generic instantiations over same-named arguments from different
		// packages sanitize alike; fall back to the fully qualified form.
		alt := ir.Identity{Name: qualifiedSyntheticName(t.Name()), Package: id.Package}
		if t.Name() == "" || alt == id || r.owners[alt] != nil {
			return nil, fmt.Errorf("types %s and %s share identity %s", owner, t, id)
		}
		id = alt
	}

	// The reference is cached before the fields are walked, so a struct
	// reached again on its own resolution path stops here.
	ref := &ir.ReferenceDescriptor{Target: id}
	desc := &ir.StructDescriptor{Name: id}
	r.cache[t] = ref
	r.owners[id] = t
	r.types = append(r.types, desc)

	fields, err := r.structFields(t, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id.Name, err)
	}
	desc.Fields = fields
	return ref, nil
}

// structFields collects the JSON-visible fields of t. Untagged embedded
// structs are flattened in place; a field declared directly on t wins over
// a promoted field with the same JSON name.
func (r *Resolver) structFields(t reflect.Type, owner ir.Identity) ([]ir.FieldDescriptor, error) {
	var fields []ir.FieldDescriptor
	direct := make(map[string]bool)

	type promoted struct {
		at     int
		fields []ir.FieldDescriptor
	}
	var embedded []promoted

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get("json")
		jsonName, optional, skip, inline := parseJSONTag(tag, field.Name)
		if skip {
			continue
		}

		if field.Anonymous && (inline || strings.Split(tag, ",")[0] == "") {
			et := field.Type
			for et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct && checkSpecialType(et) == nil {
				if r.flattening[et] {
					return nil, fmt.Errorf("field %s: embedded struct %s embeds itself", field.Name, et)
				}
				r.flattening[et] = true
				inner, err := r.structFields(et, owner)
				delete(r.flattening, et)
				if err != nil {
					return nil, err
				}
				embedded = append(embedded, promoted{at: len(fields), fields: inner})
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		fieldType, err := r.resolve(field.Type, owner.Name+"_"+field.Name, owner.Package)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		direct[jsonName] = true
		fields = append(fields, ir.FieldDescriptor{
			Name:     field.Name,
			JSONName: jsonName,
			Type:     fieldType,
			Optional: optional,
		})
	}

	if len(embedded) == 0 {
		return fields, nil
	}

	// Splice promoted fields at their embedding position.
	out := make([]ir.FieldDescriptor, 0, len(fields))
	next := 0
	for _, e := range embedded {
		out = append(out, fields[next:e.at]...)
		next = e.at
		for _, f := range e.fields {
			if direct[f.JSONName] {
				continue
			}
			direct[f.JSONName] = true
			out = append(out, f)
		}
	}
	return append(out, fields[next:]...), nil
}

// checkSpecialType checks for types with a dedicated JSON form.
func checkSpecialType(t reflect.Type) ir.TypeDescriptor {
	switch {
	case t.PkgPath() == "time" && t.Name() == "Time":
		return ir.Time()
	case t.PkgPath() == "time" && t.Name() == "Duration":
		return ir.Duration()
	case t.PkgPath() == "encoding/json" && t.Name() == "Number":
		return ir.String()
	case t.PkgPath() == "encoding/json" && t.Name() == "RawMessage":
		return ir.Any()
	case t.PkgPath() == "github.com/go-json-experiment/json/jsontext" && t.Name() == "Value":
		return ir.Any()
	case t.Kind() == reflect.Interface && t.NumMethod() == 0:
		return ir.Any()
	case t.Kind() == reflect.Struct && t.NumField() == 0 && t.Name() == "":
		return ir.Empty()
	}

	// Named types with custom text encoding (uuid.UUID, net.IP) are strings
	// on the wire, whatever their Go shape.
	if t.Name() != "" && t.Kind() != reflect.Interface {
		if implements(t, jsonMarshalerType) {
			return ir.Any()
		}
		if implements(t, textMarshalerType) {
			return ir.String()
		}
	}
	return nil
}

func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

// checkUnsupportedType returns an error if the type has no JSON form.
func checkUnsupportedType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Chan:
		return fmt.Errorf("unsupported type: chan %s", t.Elem())
	case reflect.Complex64:
		return fmt.Errorf("unsupported type: complex64")
	case reflect.Complex128:
		return fmt.Errorf("unsupported type: complex128")
	case reflect.Func:
		return fmt.Errorf("unsupported type: func")
	case reflect.UnsafePointer:
		return fmt.Errorf("unsupported type: unsafe.Pointer")
	}
	return nil
}

// validateMapKeyType validates that the map key type encodes as a JSON object key.
func validateMapKeyType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return nil
	}
	if implements(t, textMarshalerType) {
		return nil
	}
	return fmt.Errorf("unsupported map key type: %s", t)
}

var qualifiedIdent = regexp.MustCompile(`[\w./-]*[./]`)

// typeName returns the identifier for a named type. Generic instantiations
// are sanitized with package paths dropped: Page[example.com/api.User]
// becomes Page_User.
func typeName(t reflect.Type) string {
	name := t.Name()
	if !strings.Contains(name, "[") {
		return name
	}
	return syntheticName(qualifiedIdent.ReplaceAllString(name, ""))
}

// qualifiedSyntheticName sanitizes a generic instantiation keeping the
// package paths of its arguments.
func qualifiedSyntheticName(name string) string {
	return syntheticName(strings.NewReplacer(".", "_", "/", "_", "-", "_").Replace(name))
}

func syntheticName(name string) string {
	result := strings.NewReplacer(
		"[]", "Slice",
		"*", "Ptr",
		"[", "_",
		"]", "",
		",", "_",
		" ", "",
	).Replace(name)

	var b strings.Builder
	for i, c := range result {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			b.WriteRune(c)
		case c >= '0' && c <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// parseJSONTag parses a json struct tag and returns the JSON name and flags.
func parseJSONTag(tag, fieldName string) (jsonName string, optional, skip, inline bool) {
	if tag == "" {
		return fieldName, false, false, false
	}

	parts := strings.Split(tag, ",")
	jsonName = parts[0]

	// If name is exactly "-" and there are no options, skip the field
	if jsonName == "-" && len(parts) == 1 {
		return "", false, true, false
	}

	// If name is empty string (e.g., ",omitempty"), use field name
	if jsonName == "" {
		jsonName = fieldName
	}
	// Quoted names are a json/v2 form: json:"'my-name'"
	if len(jsonName) >= 2 && jsonName[0] == '\'' && jsonName[len(jsonName)-1] == '\'' {
		jsonName = jsonName[1 : len(jsonName)-1]
	}

	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty", "omitzero":
			optional = true
		case "inline":
			inline = true
		}
	}

	return jsonName, optional, false, inline
}

func (r *Resolver) addWarning(code, message, typeName string) {
	r.warnings = append(r.warnings, ir.Warning{
		Code:     code,
		Message:  message,
		TypeName: typeName,
	})
}
