package typescript

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/zwisler-a/bridge/bridgegen/ir"
)

// Emitter renders IR descriptors as TypeScript.
// Display names of referenced types come from the naming pass run by
// NewEmitter, so every reference and every file agrees on them.
type Emitter struct {
	config Config
	names  map[ir.Identity]string
	indent string
}

// NewEmitter returns an Emitter for a schema whose struct types are types.
// The returned warnings come from the naming pass.
func NewEmitter(cfg Config, types []*ir.StructDescriptor) (*Emitter, []ir.Warning) {
	cfg = cfg.withDefaults()
	ids := make([]ir.Identity, len(types))
	for i, t := range types {
		ids[i] = t.Name
	}
	names, warnings := AssignNames(ids)
	return &Emitter{
		config: cfg,
		names:  names,
		indent: strings.Repeat(" ", cfg.IndentSize),
	}, warnings
}

// TypeName returns the display name of id.
func (e *Emitter) TypeName(id ir.Identity) string {
	if n, ok := e.names[id]; ok {
		return n
	}
	return escapeReservedWord(sanitizeIdentifier(id.Name))
}

// InterfacePath returns the artifact path of the type definition of id.
func (e *Emitter) InterfacePath(id ir.Identity) string {
	return InterfacesDir + "/" + kebabCase(e.TypeName(id)) + ".interface." + e.config.Extension
}

// importPath returns the extensionless module specifier of a file path,
// relative to the directory from.
func importPath(from, path string) string {
	if dot := strings.LastIndex(path, "."); dot > strings.LastIndex(path, "/") {
		path = path[:dot]
	}
	if from != "" {
		if rel, ok := strings.CutPrefix(path, from+"/"); ok {
			return "./" + rel
		}
	}
	return "./" + path
}

// EmitInterface renders the type definition of a struct descriptor.
func (e *Emitter) EmitInterface(s *ir.StructDescriptor) (File, error) {
	var buf bytes.Buffer

	var refs []ir.Identity
	seen := map[ir.Identity]bool{s.Name: true}
	for _, id := range ir.References(s) {
		if !seen[id] {
			seen[id] = true
			refs = append(refs, id)
		}
	}
	for _, id := range refs {
		fmt.Fprintf(&buf, "import { %s } from '%s';\n", e.TypeName(id), importPath(InterfacesDir, e.InterfacePath(id)))
	}
	if len(refs) > 0 {
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "export interface %s {\n", e.TypeName(s.Name))
	for _, field := range s.Fields {
		buf.WriteString(e.indent)

		name := field.JSONName
		if name == "" {
			name = field.Name
		}
		if needsQuoting(name) {
			fmt.Fprintf(&buf, "%q", name)
		} else {
			buf.WriteString(name)
		}

		optional, nullable := optionalNullable(field)
		if optional {
			buf.WriteString("?")
		}
		buf.WriteString(": ")

		typeExpr, err := e.TypeExpr(field.Type)
		if err != nil {
			return File{}, fmt.Errorf("failed to emit field %s.%s type: %w", s.Name.Name, field.Name, err)
		}
		buf.WriteString(typeExpr)
		if nullable {
			buf.WriteString(" | null")
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")

	return File{Path: e.InterfacePath(s.Name), Content: buf.Bytes()}, nil
}

// optionalNullable decides the field form:
//  1. omitempty / omitzero → optional (field?: T)
//  2. pointer → nullable (field: T | null)
//  3. everything else, slices and maps included, is required; the JSON
//     codec writes nil slices as [] and nil maps as {}.
func optionalNullable(field ir.FieldDescriptor) (optional, nullable bool) {
	if field.Optional {
		return true, false
	}
	if _, ok := field.Type.(*ir.PtrDescriptor); ok {
		return false, true
	}
	return false, false
}

// TypeExpr renders a type expression.
func (e *Emitter) TypeExpr(typ ir.TypeDescriptor) (string, error) {
	switch t := typ.(type) {
	case *ir.PrimitiveDescriptor:
		return e.emitPrimitive(t), nil
	case *ir.ArrayDescriptor:
		return e.emitArray(t)
	case *ir.MapDescriptor:
		return e.emitMap(t)
	case *ir.ReferenceDescriptor:
		return e.TypeName(t.Target), nil
	case *ir.PtrDescriptor:
		// Nested pointers render as their element; field and parameter
		// level nullability is decided by the caller.
		return e.TypeExpr(t.Element)
	case nil:
		return "", fmt.Errorf("missing type expression")
	default:
		return "", fmt.Errorf("unsupported type expression kind: %s", typ.Kind())
	}
}

func (e *Emitter) emitPrimitive(p *ir.PrimitiveDescriptor) string {
	switch p.PrimitiveKind {
	case ir.PrimitiveBool:
		return "boolean"
	case ir.PrimitiveNumber:
		return "number"
	case ir.PrimitiveString:
		return "string"
	case ir.PrimitiveBytes:
		return "string" // base64
	case ir.PrimitiveTime:
		return "string" // RFC 3339
	case ir.PrimitiveDuration:
		return "number" // nanoseconds
	case ir.PrimitiveEmpty:
		return "Record<string, never>"
	default:
		return e.config.UnknownType
	}
}

func (e *Emitter) emitArray(a *ir.ArrayDescriptor) (string, error) {
	elemType, err := e.TypeExpr(a.Element)
	if err != nil {
		return "", err
	}

	if a.Length > 0 && a.Length <= 10 {
		parts := make([]string, a.Length)
		for i := range parts {
			parts[i] = elemType
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	}
	if strings.Contains(elemType, "|") {
		elemType = "(" + elemType + ")"
	}
	return elemType + "[]", nil
}

func (e *Emitter) emitMap(m *ir.MapDescriptor) (string, error) {
	valueType, err := e.TypeExpr(m.Value)
	if err != nil {
		return "", err
	}
	// JSON object keys are always strings
	return fmt.Sprintf("Record<string, %s>", valueType), nil
}
