// Package bridgegen generates an Angular client for the route groups of a
// bridge.App: one service per route group, one interface per struct type the
// services reach, the shared response envelope and an NgModule providing the
// services.
//
// Generation is an offline transform. For a fixed registry the output is
// byte-identical on every run.
package bridgegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zwisler-a/bridge"
	"github.com/zwisler-a/bridge/bridgegen/ir"
	"github.com/zwisler-a/bridge/bridgegen/provider"
	"github.com/zwisler-a/bridge/bridgegen/sink"
	"github.com/zwisler-a/bridge/bridgegen/typescript"
)

// Config holds the configuration for code generation.
type Config struct {
	// OutDir is the directory where generated files will be written.
	// e.g. "./client/src/app/api"
	// If empty, files are only returned in the Result.
	OutDir string

	// Extension is the file extension of every artifact, without the dot.
	// Default: "ts"
	Extension string

	// IndentSize is the number of spaces per indent level.
	// Default: 2
	IndentSize int

	// UnknownType is the TypeScript type emitted for Go's any.
	// Supported values: "any", "unknown". Default: "any"
	UnknownType string

	// Logger receives progress and warnings. Default: slog.Default()
	Logger *slog.Logger
}

// Artifact is one generated file.
type Artifact = typescript.File

// Result is the outcome of a generation run.
type Result struct {
	// Files in write order.
	Files []Artifact

	// Warnings are non-fatal issues, such as qualified type names.
	Warnings []ir.Warning

	// Groups, Operations and Types count what the run generated clients and
	// interfaces for.
	Groups     int
	Operations int
	Types      int
}

// Generate generates the client for the registered route groups into
// cfg.OutDir. A nil cfg uses the defaults and writes nothing.
func Generate(app *bridge.App, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg = applyConfigDefaults(cfg)

	var out sink.OutputSink
	if cfg.OutDir == "" {
		out = sink.NewMemorySink()
	} else {
		out = sink.NewFilesystemSink(cfg.OutDir)
	}
	return GenerateTo(context.Background(), app, out, cfg)
}

// GenerateTo generates the client and hands every artifact to out, in order:
// services (group order), type definitions (discovery order), the response
// envelope and the module. cfg.OutDir is ignored.
//
// Configuration errors fail the run before anything is written. A failed
// write aborts the run; artifacts written before it are kept.
func GenerateTo(ctx context.Context, app *bridge.App, out sink.OutputSink, cfg *Config) (*Result, error) {
	if app == nil {
		return nil, fmt.Errorf("app is required")
	}
	if out == nil {
		return nil, fmt.Errorf("output sink is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg = applyConfigDefaults(cfg)
	logger := cfg.Logger

	// 1. Resolve every group into the schema
	schema, referenced, err := buildSchema(app)
	if err != nil {
		return nil, err
	}
	if errs := schema.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema: %w", errors.Join(errs...))
	}

	// 2. Render everything before the first write
	emitter, warnings := typescript.NewEmitter(typescript.Config{
		Extension:   cfg.Extension,
		IndentSize:  cfg.IndentSize,
		UnknownType: cfg.UnknownType,
	}, schema.Types)
	for _, w := range warnings {
		schema.AddWarning(w)
	}

	files, err := render(emitter, schema, referenced)
	if err != nil {
		return nil, err
	}

	// 3. Write
	if err := out.EnsureDir(ctx, "."); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := out.EnsureDir(ctx, typescript.InterfacesDir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", typescript.InterfacesDir, err)
	}
	for _, f := range files {
		if err := out.WriteFile(ctx, f.Path, f.Content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		logger.Debug("wrote artifact", slog.String("path", f.Path), slog.Int("bytes", len(f.Content)))
	}

	for _, w := range schema.Warnings {
		logger.Warn(w.Message, slog.String("code", w.Code), slog.String("type", w.TypeName))
	}
	logger.Info("generated client",
		slog.Int("groups", len(schema.Groups)),
		slog.Int("types", len(schema.Types)),
		slog.Int("files", len(files)))

	res := &Result{
		Files:    files,
		Warnings: schema.Warnings,
		Groups:   len(schema.Groups),
		Types:    len(schema.Types),
	}
	for _, g := range schema.Groups {
		res.Operations += len(g.Operations)
	}
	return res, nil
}

// buildSchema resolves the registry. It returns the schema and, per group,
// the struct types its service imports.
func buildSchema(app *bridge.App) (*ir.Schema, map[string][]ir.Identity, error) {
	var errs []error
	routes, err := indexRoutes(app.Routes())
	if err != nil {
		errs = append(errs, err)
	}

	resolver := provider.NewResolver()
	schema := &ir.Schema{}
	referenced := make(map[string][]ir.Identity)

	// Groups without operations never show up here and produce nothing.
	order, byGroup := groupOperations(app.Operations())
	for _, name := range order {
		g, ok := routes[name]
		if !ok {
			continue // duplicate identity, reported above
		}
		g.Operations = byGroup[name]

		res, err := buildGroup(g, resolver)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		schema.AddGroup(res.Descriptor)
		referenced[name] = res.Referenced
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}

	for _, t := range resolver.Types() {
		schema.AddType(t)
	}
	for _, w := range resolver.Warnings() {
		schema.AddWarning(w)
	}
	return schema, referenced, nil
}

func render(e *typescript.Emitter, schema *ir.Schema, referenced map[string][]ir.Identity) ([]Artifact, error) {
	var files []Artifact

	for _, g := range schema.Groups {
		f, err := e.EmitService(g, referenced[g.Name])
		if err != nil {
			return nil, &bridge.ConfigError{Group: g.Name, Reason: err.Error()}
		}
		files = append(files, f)
	}
	for _, t := range schema.Types {
		f, err := e.EmitInterface(t)
		if err != nil {
			return nil, fmt.Errorf("failed to emit %s: %w", t.Name, err)
		}
		files = append(files, f)
	}
	files = append(files, e.EmitEnvelope(), e.EmitModule(schema.Groups))

	// Type names are unique after the naming pass, but group names such as
	// "Users" and "UsersService" still map to the same service file.
	paths := make(map[string]bool, len(files))
	for _, f := range files {
		if paths[f.Path] {
			return nil, &bridge.ConfigError{Reason: fmt.Sprintf("more than one artifact would be written to %s", f.Path)}
		}
		paths[f.Path] = true
	}
	return files, nil
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.Extension == "" {
		result.Extension = "ts"
	}
	if result.IndentSize <= 0 {
		result.IndentSize = 2
	}
	if result.UnknownType == "" {
		result.UnknownType = "any"
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}
	return &result
}
