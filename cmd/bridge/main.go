package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/zwisler-a/bridge/cmd/bridge/internal/check"
	"github.com/zwisler-a/bridge/cmd/bridge/internal/gen"
	"github.com/zwisler-a/bridge/internal/logx"
)

type CLI struct {
	Config   string `help:"Configuration file (.json, .yaml or .toml)." type:"path" env:"BRIDGE_CONFIG"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info" env:"BRIDGE_LOG_LEVEL"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate the Angular client for a bridge app."`
	Check   check.Cmd  `cmd:"" help:"Validate exports and types without generating files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	jsonPaths, yamlPaths, tomlPaths := configCandidatePaths(findUserConfig(os.Args[1:]))

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("bridge"),
		kong.Description("Generate typed Angular clients from bridge route groups."),
		kong.UsageOnError(),
		// Flags and env override config file values
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(yamlLoader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	level, err := logx.ParseLevel(cli.LogLevel)
	ctx.FatalIfErrorf(err)
	logger := logx.New(os.Stderr, level)

	ctx.Bind(logger)
	ctx.Bind(level)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// findUserConfig returns the --config value before kong has parsed anything.
func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("BRIDGE_CONFIG")
}

// configCandidatePaths routes an explicit config file to the loader matching
// its extension, followed by the .bridge.* files of the working directory.
func configCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userPath != "" {
		switch strings.ToLower(filepath.Ext(userPath)) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userPath)
		case ".toml":
			tomlPaths = append(tomlPaths, userPath)
		default:
			jsonPaths = append(jsonPaths, userPath)
		}
	}
	jsonPaths = append(jsonPaths, ".bridge.json")
	yamlPaths = append(yamlPaths, ".bridge.yaml", ".bridge.yml")
	tomlPaths = append(tomlPaths, ".bridge.toml")
	return jsonPaths, yamlPaths, tomlPaths
}

// yamlLoader resolves flags like kongyaml.Loader and falls back to the bare
// flag name, so a top-level "ext: mts" sets "gen --ext" as it does in the
// JSON and TOML files.
func yamlLoader(r io.Reader) (kong.Resolver, error) {
	scoped, err := kongyaml.Loader(r)
	if err != nil {
		return nil, err
	}
	return kong.ResolverFunc(func(ctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		v, err := scoped.Resolve(ctx, parent, flag)
		if v != nil || err != nil {
			return v, err
		}
		return scoped.Resolve(ctx, &kong.Path{App: ctx.Model}, flag)
	}), nil
}
