package bridgegen

import (
	"context"
	"log/slog"

	"github.com/zwisler-a/bridge"
	"github.com/zwisler-a/bridge/bridgegen/sink"
)

// Generator provides a fluent API for code generation.
// Create with FromApp() and configure with method chaining.
//
// Example:
//
//	bridgegen.FromApp(app).
//	    IndentSize(4).
//	    ToDir("./client/src/app/api")
type Generator struct {
	app *bridge.App
	cfg Config
}

// FromApp creates a new Generator for the given app.
// This is the entry point for the fluent API.
func FromApp(app *bridge.App) *Generator {
	return &Generator{app: app}
}

// Extension sets the file extension of the artifacts, without the dot.
func (g *Generator) Extension(ext string) *Generator {
	g.cfg.Extension = ext
	return g
}

// IndentSize sets the number of spaces per indent level.
func (g *Generator) IndentSize(n int) *Generator {
	g.cfg.IndentSize = n
	return g
}

// UnknownType sets the TypeScript type emitted for Go's any.
// Valid values: "any" (default), "unknown".
func (g *Generator) UnknownType(t string) *Generator {
	g.cfg.UnknownType = t
	return g
}

// WithLogger sets the logger receiving progress and warnings.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.cfg.Logger = logger
	return g
}

// Config returns a copy of the accumulated configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// ToDir generates files to the specified directory.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(dir string) (*Result, error) {
	cfg := g.cfg
	cfg.OutDir = dir
	return Generate(g.app, &cfg)
}

// ToSink generates files into out.
func (g *Generator) ToSink(ctx context.Context, out sink.OutputSink) (*Result, error) {
	cfg := g.cfg
	return GenerateTo(ctx, g.app, out, &cfg)
}

// Generate returns generated files in memory without writing to disk.
// Use ToDir() to write files to disk instead.
func (g *Generator) Generate() (*Result, error) {
	cfg := g.cfg
	cfg.OutDir = ""
	return Generate(g.app, &cfg)
}
