// Package discover finds the functions that hand the CLI a registry.
//
// It scans a Go package for package-level functions with these signatures:
//   - func() *bridge.App
//   - func() *bridgegen.Generator
//   - func(*bridgegen.Generator) *bridgegen.Generator (optional config hook)
//
// The signature is the only marker; nothing has to be annotated.
package discover

import (
	"fmt"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

const (
	bridgePkg    = "github.com/zwisler-a/bridge"
	bridgegenPkg = "github.com/zwisler-a/bridge/bridgegen"
)

// ExportType represents the return type of an export function.
type ExportType int

const (
	ExportTypeApp       ExportType = iota // func() *bridge.App
	ExportTypeGenerator                   // func() *bridgegen.Generator
)

func (t ExportType) String() string {
	switch t {
	case ExportTypeApp:
		return "*bridge.App"
	case ExportTypeGenerator:
		return "*bridgegen.Generator"
	default:
		return "unknown"
	}
}

// Export is a discovered export function.
type Export struct {
	Name string
	Type ExportType
	Pos  token.Position
}

// ConfigFunc is a discovered func(*bridgegen.Generator) *bridgegen.Generator.
// It is applied to generators built from an *bridge.App export.
type ConfigFunc struct {
	Name string
	Pos  token.Position
}

// Result contains discovered exports and package info.
type Result struct {
	Exports     []Export
	ConfigFunc  *ConfigFunc
	PackagePath string
	ModulePath  string
	ModuleDir   string // directory containing go.mod
	Dir         string // directory containing the package
}

// Find scans a Go package for export functions.
//
// The pattern follows go command semantics:
//   - "." for current directory
//   - Import path like "github.com/foo/bar"
//   - Absolute or relative directory path
func Find(pattern string) (*Result, error) {
	return FindDir(pattern, "")
}

// FindDir is like Find but resolves the pattern relative to dir.
func FindDir(pattern, dir string) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles |
			packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo |
			packages.NeedModule,
		Dir: dir,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %q", pattern)
	}
	if len(pkgs) > 1 {
		return nil, fmt.Errorf("multiple packages found matching %q; specify a single package", pattern)
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkg.Errors[0])
	}

	result := &Result{PackagePath: pkg.PkgPath}
	if pkg.Module != nil {
		result.ModulePath = pkg.Module.Path
		result.ModuleDir = pkg.Module.Dir
	}
	if len(pkg.GoFiles) > 0 {
		result.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	// Scope names are sorted, so exports come out in a stable order.
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok {
			continue
		}
		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Recv() != nil {
			continue
		}

		if isConfigFunc(sig) {
			result.ConfigFunc = &ConfigFunc{Name: fn.Name(), Pos: pkg.Fset.Position(fn.Pos())}
			continue
		}

		if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
			continue
		}
		exportType, ok := classifyType(sig.Results().At(0).Type())
		if !ok {
			continue
		}
		result.Exports = append(result.Exports, Export{
			Name: fn.Name(),
			Type: exportType,
			Pos:  pkg.Fset.Position(fn.Pos()),
		})
	}

	return result, nil
}

func isConfigFunc(sig *types.Signature) bool {
	if sig.Params().Len() != 1 || sig.Results().Len() != 1 {
		return false
	}
	return isNamedPtr(sig.Params().At(0).Type(), bridgegenPkg, "Generator") &&
		isNamedPtr(sig.Results().At(0).Type(), bridgegenPkg, "Generator")
}

// isNamedPtr reports whether t is *pkgPath.name.
func isNamedPtr(t types.Type, pkgPath, name string) bool {
	ptr, ok := t.(*types.Pointer)
	if !ok {
		return false
	}
	named, ok := ptr.Elem().(*types.Named)
	if !ok {
		return false
	}
	pkg := named.Obj().Pkg()
	return pkg != nil && pkg.Path() == pkgPath && named.Obj().Name() == name
}

func classifyType(t types.Type) (ExportType, bool) {
	switch {
	case isNamedPtr(t, bridgePkg, "App"):
		return ExportTypeApp, true
	case isNamedPtr(t, bridgegenPkg, "Generator"):
		return ExportTypeGenerator, true
	default:
		return 0, false
	}
}

// SelectExport picks the export to use.
//
// With an empty name it returns the only export and fails on zero or
// several. With a name it returns that export or fails.
func SelectExport(exports []Export, name string) (*Export, error) {
	if name != "" {
		for i := range exports {
			if exports[i].Name == name {
				return &exports[i], nil
			}
		}
		return nil, fmt.Errorf("export %q not found", name)
	}

	switch len(exports) {
	case 0:
		return nil, fmt.Errorf("no export found\n\nAdd a function that returns *bridge.App:\n\n    func SetupApp() *bridge.App {\n        app := bridge.NewApp()\n        // ...\n        return app\n    }")
	case 1:
		return &exports[0], nil
	default:
		var msg strings.Builder
		msg.WriteString("multiple exports found:\n")
		for _, e := range exports {
			fmt.Fprintf(&msg, "  - %s() %s\n", e.Name, e.Type)
		}
		msg.WriteString("\nSpecify which one: bridge gen --export <name> <outdir>")
		return nil, fmt.Errorf("%s", msg.String())
	}
}
