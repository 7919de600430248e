package gen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zwisler-a/bridge/internal/discover"
	"github.com/zwisler-a/bridge/internal/runner"
)

type Cmd struct {
	Out       string `arg:"" help:"Output directory for generated files."`
	Export    string `help:"Export function name (required if multiple exports exist)." short:"e"`
	Extension string `help:"File extension of the generated artifacts, without the dot." name:"ext" default:"ts"`
	NoConfig  bool   `help:"Ignore the config function."`
	Package   string `help:"Package to scan (default: current directory)." short:"p" default:"."`
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

	if export.Type == discover.ExportTypeGenerator && c.Extension != "ts" {
		return fmt.Errorf("--ext not supported with *bridgegen.Generator export\n\nYour export returns *bridgegen.Generator - configuration is in code.\nSet the extension in your generator function:\n\n    return bridgegen.FromApp(setupApp()).\n        Extension(%q)", c.Extension)
	}

	outDir, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	opts := runner.Options{
		Export:    *export,
		OutDir:    outDir,
		Extension: c.Extension,
		NoConfig:  c.NoConfig,
		LogLevel:  level,
		PkgDir:    result.Dir,
	}
	if result.ConfigFunc != nil && export.Type == discover.ExportTypeApp {
		opts.ConfigFunc = result.ConfigFunc.Name
	}

	logger.Debug("running generator",
		slog.String("package", result.PackagePath),
		slog.String("export", export.Name),
		slog.String("out", outDir))

	output, err := runner.Exec(opts)
	if output != nil {
		os.Stderr.Write(output.Stderr)
		os.Stdout.Write(output.Stdout)
	}
	return err
}
