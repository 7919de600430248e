package typescript

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/zwisler-a/bridge/bridgegen/ir"
)

// ModulePath returns the artifact path of the aggregating module.
func (e *Emitter) ModulePath() string {
	return "api.module." + e.config.Extension
}

// EmitModule renders the NgModule providing the services of groups, in
// order. Callers pass only the groups that produced a service.
func (e *Emitter) EmitModule(groups []ir.GroupDescriptor) File {
	var buf bytes.Buffer

	buf.WriteString("import { NgModule } from '@angular/core';\n")
	buf.WriteString("import { HttpClientModule } from '@angular/common/http';\n")
	if len(groups) > 0 {
		buf.WriteString("\n")
	}

	classes := make([]string, len(groups))
	for i, g := range groups {
		classes[i] = ServiceClass(g.Name)
		fmt.Fprintf(&buf, "import { %s } from '%s';\n", classes[i], importPath("", e.ServicePath(g.Name)))
	}

	buf.WriteString("\n")
	for _, g := range groups {
		fmt.Fprintf(&buf, "export * from '%s';\n", importPath("", e.ServicePath(g.Name)))
	}
	fmt.Fprintf(&buf, "export * from '%s';\n\n", importPath("", e.EnvelopePath()))

	buf.WriteString("@NgModule({\n")
	fmt.Fprintf(&buf, "%simports: [HttpClientModule],\n", e.indent)
	if len(classes) == 0 {
		fmt.Fprintf(&buf, "%sproviders: [],\n", e.indent)
	} else {
		fmt.Fprintf(&buf, "%sproviders: [\n", e.indent)
		for _, c := range classes {
			fmt.Fprintf(&buf, "%s%s%s,\n", e.indent, e.indent, c)
		}
		fmt.Fprintf(&buf, "%s],\n", e.indent)
	}
	buf.WriteString("})\n")
	buf.WriteString("export class ApiModule {}\n")

	return File{Path: e.ModulePath(), Content: buf.Bytes()}
}

// indentTabs replaces leading tabs of a template with the configured indent.
func indentTabs(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, "\t")
		lines[i] = strings.Repeat(indent, len(line)-len(trimmed)) + trimmed
	}
	return strings.Join(lines, "\n")
}
