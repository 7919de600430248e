package check

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zwisler-a/bridge/internal/discover"
	"github.com/zwisler-a/bridge/internal/runner"
)

type Cmd struct {
	Export  string `help:"Export function name (required if multiple exports exist)." short:"e"`
	Package string `help:"Package to scan (default: current directory)." short:"p" default:"."`
}

func (c *Cmd) Run(logger *slog.Logger, level slog.Level) error {
	result, err := discover.Find(c.Package)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	export, err := discover.SelectExport(result.Exports, c.Export)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Found export: %s() %s\n", export.Name, export.Type)
	if result.ConfigFunc != nil {
		fmt.Printf("✓ Found config: %s(*bridgegen.Generator) *bridgegen.Generator\n", result.ConfigFunc.Name)
	}

	opts := runner.Options{
		Export:    *export,
		CheckMode: true,
		LogLevel:  level,
		PkgDir:    result.Dir,
	}
	if result.ConfigFunc != nil && export.Type == discover.ExportTypeApp {
		opts.ConfigFunc = result.ConfigFunc.Name
	}

	logger.Debug("checking export", slog.String("package", result.PackagePath), slog.String("export", export.Name))

	output, err := runner.Exec(opts)
	if output != nil {
		os.Stderr.Write(output.Stderr)
	}
	if err != nil {
		return err
	}
	return report(os.Stdout, output.Stdout)
}

// report parses "<groups> <operations> <types> <warnings>" from the runner.
func report(w io.Writer, raw []byte) error {
	var groups, operations, types, warnings int
	if _, err := fmt.Sscanf(string(raw), "%d %d %d %d", &groups, &operations, &types, &warnings); err != nil {
		return fmt.Errorf("parse check output: %w\nraw output: %s", err, raw)
	}

	fmt.Fprintf(w, "✓ %d route groups, %d operations, %d types\n", groups, operations, types)
	if warnings > 0 {
		fmt.Fprintf(w, "! %d warnings\n", warnings)
	}
	fmt.Fprintln(w, "✓ All types resolvable")
	return nil
}
