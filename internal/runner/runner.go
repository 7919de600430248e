// Package runner executes client generation by building and running a
// modified version of the user's package.
//
// It uses Go's -overlay flag to replace the user's main() with a runner
// that calls the export function and generates output.
package runner

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/go-json-experiment/json"
	"golang.org/x/tools/imports"

	"github.com/zwisler-a/bridge/internal/discover"
)

const runnerFileName = "bridge_runner_main_.go"

// Options configures the runner.
type Options struct {
	// Export is the function to call.
	Export discover.Export

	// OutDir is the output directory for generated files.
	// Ignored in check mode.
	OutDir string

	// CheckMode generates in memory and prints
	// "<groups> <operations> <types> <warnings>" on stdout instead of
	// writing files. Warnings go to the log either way.
	CheckMode bool

	// Extension overrides the artifact extension when non-empty.
	// Only used when Export.Type is ExportTypeApp.
	Extension string

	// ConfigFunc is the optional config function name.
	// Only used when Export.Type is ExportTypeApp.
	ConfigFunc string

	// NoConfig disables the config function even if one exists.
	NoConfig bool

	// LogLevel is the level of the generator's logger inside the runner.
	LogLevel slog.Level

	// PkgDir is the directory containing the package.
	PkgDir string
}

// Output is what the runner binary printed.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Exec builds and runs the generator.
//
// It creates an overlay that:
// 1. Replaces files containing func main() with versions that have main() removed
// 2. Adds a runner file with our own main()
//
// The overlay approach lets us work with package main and unexported functions.
func Exec(opts Options) (*Output, error) {
	tmpDir, err := os.MkdirTemp("", "bridge-gen-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	overlay, err := stripMains(opts.PkgDir, tmpDir)
	if err != nil {
		return nil, err
	}

	runnerSrc, err := Generate(opts)
	if err != nil {
		return nil, fmt.Errorf("generate runner: %w", err)
	}
	runnerFile := filepath.Join(tmpDir, runnerFileName)
	if err := os.WriteFile(runnerFile, runnerSrc, 0644); err != nil {
		return nil, fmt.Errorf("write runner: %w", err)
	}
	overlay[filepath.Join(opts.PkgDir, runnerFileName)] = runnerFile

	overlayJSON, err := json.Marshal(struct {
		Replace map[string]string `json:"Replace"`
	}{Replace: overlay}, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("marshal overlay: %w", err)
	}
	overlayFile := filepath.Join(tmpDir, "overlay.json")
	if err := os.WriteFile(overlayFile, overlayJSON, 0644); err != nil {
		return nil, fmt.Errorf("write overlay: %w", err)
	}

	// -mod=mod lets the build update go.mod/go.sum if needed
	binaryPath := filepath.Join(tmpDir, "runner")
	buildCmd := exec.Command("go", "build", "-mod=mod", "-tags", "bridge_gen_runner", "-overlay", overlayFile, "-o", binaryPath, ".")
	buildCmd.Dir = opts.PkgDir
	buildCmd.Env = append(os.Environ(), "GOWORK=off")
	if buildOut, err := buildCmd.CombinedOutput(); err != nil {
		return &Output{Stderr: buildOut}, fmt.Errorf("build: %w", err)
	}

	var stdout, stderr bytes.Buffer
	runCmd := exec.Command(binaryPath)
	runCmd.Dir = opts.PkgDir
	runCmd.Stdout = &stdout
	runCmd.Stderr = &stderr
	err = runCmd.Run()
	out := &Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		return out, fmt.Errorf("run: %w", err)
	}
	return out, nil
}

// stripMains writes a main-less copy of every non-test file in pkgDir that
// declares func main() and returns the overlay replacements.
func stripMains(pkgDir, tmpDir string) (map[string]string, error) {
	files, err := filepath.Glob(filepath.Join(pkgDir, "*.go"))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}

	overlay := make(map[string]string)
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		hasMain, modified, err := removeMain(file)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", file, err)
		}
		if !hasMain {
			continue
		}
		tmpFile := filepath.Join(tmpDir, filepath.Base(file))
		if err := os.WriteFile(tmpFile, modified, 0644); err != nil {
			return nil, fmt.Errorf("write modified %s: %w", file, err)
		}
		overlay[file] = tmpFile
	}
	return overlay, nil
}

// removeMain parses a Go file and returns a version with func main() removed.
// Imports only main() used are dropped so the file still compiles.
func removeMain(filename string) (bool, []byte, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return false, nil, err
	}

	hasMain := false
	var decls []ast.Decl
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == "main" && fn.Recv == nil {
			hasMain = true
			continue
		}
		decls = append(decls, decl)
	}
	if !hasMain {
		return false, nil, nil
	}
	f.Decls = decls

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return false, nil, err
	}
	src, err := imports.Process(filename, buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return false, nil, err
	}
	return true, src, nil
}

// Generate renders the runner main() source for opts.
func Generate(opts Options) ([]byte, error) {
	if opts.Export.Type != discover.ExportTypeApp && opts.Export.Type != discover.ExportTypeGenerator {
		return nil, fmt.Errorf("unknown export type: %v", opts.Export.Type)
	}

	tmpl, err := template.New("runner").Parse(runnerTemplate)
	if err != nil {
		return nil, err
	}

	isApp := opts.Export.Type == discover.ExportTypeApp
	data := struct {
		IsApp      bool
		ExportFunc string
		OutDir     string
		CheckMode  bool
		Extension  string
		ConfigFunc string
		LogLevel   int
	}{
		IsApp:      isApp,
		ExportFunc: opts.Export.Name,
		OutDir:     opts.OutDir,
		CheckMode:  opts.CheckMode,
		LogLevel:   int(opts.LogLevel),
	}
	// Generator exports carry their configuration in code
	if isApp {
		data.Extension = opts.Extension
		if !opts.NoConfig {
			data.ConfigFunc = opts.ConfigFunc
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format runner: %w", err)
	}
	return src, nil
}

const runnerTemplate = `//go:build bridge_gen_runner

package main

import (
	"fmt"
	"log/slog"
	"os"
{{if .IsApp}}
	"github.com/zwisler-a/bridge/bridgegen"
{{end}}
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level({{.LogLevel}})})))

{{if .IsApp}}
	g := bridgegen.FromApp({{.ExportFunc}}())
{{- if .Extension}}
	g = g.Extension({{printf "%q" .Extension}})
{{- end}}
{{- if .ConfigFunc}}
	g = {{.ConfigFunc}}(g)
{{- end}}
{{else}}
	g := {{.ExportFunc}}()
{{end}}
{{if .CheckMode}}
	result, err := g.Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bridge check: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d %d %d %d\n", result.Groups, result.Operations, result.Types, len(result.Warnings))
{{else}}
	if _, err := g.ToDir({{printf "%q" .OutDir}}); err != nil {
		fmt.Fprintf(os.Stderr, "bridge gen: %v\n", err)
		os.Exit(1)
	}
{{end}}
}
`
