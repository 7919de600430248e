package typescript

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/zwisler-a/bridge/bridgegen/ir"
)

// ServiceClass returns the class name of the service generated for a group:
// "users" → "UsersService", "UserService" stays "UserService".
func ServiceClass(group string) string {
	name := pascalCase(sanitizeIdentifier(group))
	if name == "" {
		name = "Api"
	}
	if !strings.HasSuffix(name, "Service") {
		name += "Service"
	}
	return name
}

// ServicePath returns the artifact path of the service generated for a group.
func (e *Emitter) ServicePath(group string) string {
	class := ServiceClass(group)
	base := strings.TrimSuffix(class, "Service")
	if base == "" {
		base = class
	}
	return kebabCase(base) + ".service." + e.config.Extension
}

// queryHelper flattens caller parameters into HttpParams the way the server
// decodes query strings: repeated keys for lists of scalars, dotted keys
// for object members and indexed lists of objects.
const queryHelper = `function toHttpParams(values: Record<string, unknown>): HttpParams {
	let params = new HttpParams();
	const add = (key: string, value: unknown): void => {
		if (value === undefined || value === null) {
			return;
		}
		if (Array.isArray(value)) {
			value.forEach((item, i) => add(typeof item === 'object' && item !== null ? key + '.' + i : key, item));
			return;
		}
		if (typeof value === 'object') {
			Object.entries(value as Record<string, unknown>).forEach(([k, v]) => add(key + '.' + k, v));
			return;
		}
		params = params.append(key, String(value));
	};
	Object.entries(values).forEach(([key, value]) => add(key, value));
	return params;
}
`

// EmitService renders the service of one group. referenced lists the struct
// types the group's signatures use, in import order.
func (e *Emitter) EmitService(g ir.GroupDescriptor, referenced []ir.Identity) (File, error) {
	var body bytes.Buffer
	needsQuery := false

	// Distinct operation names can sanitize to one identifier ("get-user",
	// "get_user"); later ones get a trailing underscore.
	methods := map[string]bool{"constructor": true}
	for i, op := range g.Operations {
		if i > 0 {
			body.WriteString("\n")
		}
		method := sanitizeIdentifier(op.Name)
		for methods[method] {
			method += "_"
		}
		methods[method] = true

		usesQuery, err := e.emitMethod(&body, method, op)
		if err != nil {
			return File{}, fmt.Errorf("operation %s.%s: %w", g.Name, op.Name, err)
		}
		needsQuery = needsQuery || usesQuery
	}

	var buf bytes.Buffer
	buf.WriteString("import { Injectable } from '@angular/core';\n")
	if needsQuery {
		buf.WriteString("import { HttpClient, HttpParams } from '@angular/common/http';\n")
	} else {
		buf.WriteString("import { HttpClient } from '@angular/common/http';\n")
	}
	buf.WriteString("import { Observable } from 'rxjs';\n\n")
	fmt.Fprintf(&buf, "import { ApiResponse } from '%s';\n", importPath("", e.EnvelopePath()))
	for _, id := range referenced {
		fmt.Fprintf(&buf, "import { %s } from '%s';\n", e.TypeName(id), importPath("", e.InterfacePath(id)))
	}

	buf.WriteString("\n@Injectable()\n")
	fmt.Fprintf(&buf, "export class %s {\n", ServiceClass(g.Name))
	fmt.Fprintf(&buf, "%sconstructor(private http: HttpClient) {}\n", e.indent)
	if body.Len() > 0 {
		buf.WriteString("\n")
		buf.Write(body.Bytes())
	}
	buf.WriteString("}\n")

	if needsQuery {
		buf.WriteString("\n")
		buf.WriteString(indentTabs(queryHelper, e.indent))
	}

	return File{Path: e.ServicePath(g.Name), Content: buf.Bytes()}, nil
}

// emitMethod renders one callable and reports whether it sends query parameters.
func (e *Emitter) emitMethod(buf *bytes.Buffer, method string, op ir.OperationDescriptor) (bool, error) {
	in1 := e.indent
	in2 := e.indent + e.indent

	var params, members []string
	idents := make(map[string]bool, len(op.Params))
	for _, p := range op.Params {
		ident := paramIdentifier(p.Name)
		for idents[ident] {
			ident += "_"
		}
		idents[ident] = true

		typeExpr, err := e.TypeExpr(p.Type)
		if err != nil {
			return false, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		if _, ok := p.Type.(*ir.PtrDescriptor); ok {
			typeExpr += " | null"
		}
		params = append(params, ident+": "+typeExpr)

		switch {
		case p.Name == ident:
			members = append(members, ident)
		case needsQuoting(p.Name):
			members = append(members, fmt.Sprintf("%q: %s", p.Name, ident))
		default:
			members = append(members, p.Name+": "+ident)
		}
	}

	result := "void"
	if op.Response != nil {
		var err error
		if result, err = e.TypeExpr(op.Response); err != nil {
			return false, fmt.Errorf("response: %w", err)
		}
	}
	envelope := "ApiResponse<" + result + ">"

	fmt.Fprintf(buf, "%s%s(%s): Observable<%s> {\n", in1, method, strings.Join(params, ", "), envelope)

	object := "{ " + strings.Join(members, ", ") + " }"
	call := fmt.Sprintf("this.http.request<%s>(%s, %s", envelope, tsString(op.Verb), tsString(op.Path))
	usesQuery := false
	switch {
	case len(members) == 0:
		fmt.Fprintf(buf, "%sreturn %s);\n", in2, call)
	case op.BodyParams:
		fmt.Fprintf(buf, "%sreturn %s, { body: %s });\n", in2, call, object)
	default:
		usesQuery = true
		fmt.Fprintf(buf, "%sconst params = toHttpParams(%s);\n", in2, object)
		fmt.Fprintf(buf, "%sreturn %s, { params });\n", in2, call)
	}
	fmt.Fprintf(buf, "%s}\n", in1)
	return usesQuery, nil
}

// tsString quotes s as a single-quoted TypeScript string literal.
func tsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}
