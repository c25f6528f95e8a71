package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/lcsc2kicad/internal"
	"github.com/starford/lcsc2kicad/internal/batch"
	"github.com/starford/lcsc2kicad/internal/converter"
	"github.com/starford/lcsc2kicad/internal/logging"
	pkgconfig "github.com/starford/lcsc2kicad/pkg/config"
)

var version = "dev"

// loadConfig reads the config file, applies flag overrides and builds the
// process logger.
func loadConfig(cmd *cli.Command) (*internal.Config, []internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOrDefault(cmd.String("config"), cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.Bool("debug") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	if cmd.IsSet("output") {
		cfg.Library.Dir = cmd.String("output")
	}
	if cmd.IsSet("lib-name") {
		cfg.Library.Name = cmd.String("lib-name")
	}
	if cmd.IsSet("project-relative") {
		cfg.Library.ProjectRelative = cmd.Bool("project-relative")
	}
	if cmd.IsSet("global-env") {
		cfg.Library.GlobalEnv = cmd.String("global-env")
	}
	if cmd.IsSet("overwrite") {
		cfg.Library.Overwrite = cmd.Bool("overwrite")
	}
	if cmd.IsSet("parallel") {
		cfg.Batch.Parallel = int(cmd.Int("parallel"))
	}
	if cmd.IsSet("continue-on-error") {
		cfg.Batch.ContinueOnError = cmd.Bool("continue-on-error")
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(logging.Options{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	slog.SetDefault(logger)

	return cfg, []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogger(logger),
		internal.WithVersion(version),
	}, nil
}

// componentIDs collects ids from --id, positional arguments and --batch.
func componentIDs(cmd *cli.Command) ([]string, error) {
	ids := append([]string{}, cmd.StringSlice("id")...)
	ids = append(ids, cmd.Args().Slice()...)
	if file := cmd.String("batch"); file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		fromFile, err := batch.ReadIDs(f)
		if err != nil {
			return nil, fmt.Errorf("read batch file: %w", err)
		}
		ids = append(ids, fromFile...)
	}
	return ids, nil
}

func conversionOptions(cmd *cli.Command, cfg *internal.Config) converter.Options {
	full := cmd.Bool("full")
	return converter.Options{
		Symbol:          full || cmd.Bool("symbol"),
		Footprint:       full || cmd.Bool("footprint"),
		Model3D:         full || cmd.Bool("3d"),
		Overwrite:       cfg.Library.Overwrite,
		ProjectRelative: cfg.Library.ProjectRelative,
		GlobalEnv:       cfg.Library.GlobalEnv,
	}
}

func runConvert(ctx context.Context, cmd *cli.Command) error {
	cfg, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ids, err := componentIDs(cmd)
	if err != nil {
		return err
	}
	_, err = internal.Convert(ctx, internal.ConvertRequest{
		IDs:     ids,
		Options: conversionOptions(cmd, cfg),
		Batch: batch.Options{
			Parallel:        cfg.Batch.Parallel,
			ContinueOnError: cfg.Batch.ContinueOnError,
		},
	}, opts...)
	return err
}

func runRemove(ctx context.Context, cmd *cli.Command) error {
	_, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ids, err := componentIDs(cmd)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no component ids given")
	}
	return internal.Remove(ctx, ids, opts...)
}

func runList(ctx context.Context, cmd *cli.Command) error {
	_, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.List(ctx, internal.ListRequest{
		Query:  cmd.String("query"),
		Limit:  int(cmd.Int("limit")),
		Offset: int(cmd.Int("offset")),
		Sort:   cmd.String("sort"),
		Sync:   cmd.Bool("sync"),
	}, opts...)
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	file := cmd.Args().First()
	if file == "" {
		return fmt.Errorf("watch needs the path of a batch list file")
	}
	conv := conversionOptions(cmd, cfg)
	if conv.Validate() != nil {
		// No selection given: follow the list with full conversions.
		conv.Symbol, conv.Footprint, conv.Model3D = true, true, true
	}
	return internal.Watch(ctx, file, conv, batch.Options{
		Parallel:        cfg.Batch.Parallel,
		ContinueOnError: true,
	}, opts...)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	_, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if file := cmd.String("watch"); file != "" {
		opts = append(opts, internal.WithWatchFile(file))
	}
	if err := internal.Serve(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	_, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "symbol", Usage: "Convert the schematic symbol"},
		&cli.BoolFlag{Name: "footprint", Usage: "Convert the footprint"},
		&cli.BoolFlag{Name: "3d", Usage: "Download the 3D model (WRL and STEP)"},
		&cli.BoolFlag{Name: "full", Usage: "Shorthand for --symbol --footprint --3d"},
		&cli.BoolFlag{Name: "overwrite", Usage: "Replace an existing symbol with the same name"},
		&cli.BoolFlag{Name: "project-relative", Usage: "Reference 3D models relative to ${KIPRJMOD}"},
		&cli.StringFlag{Name: "global-env", Usage: "Environment variable that roots 3D model paths"},
		&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Usage: "Number of components converted at once"},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "lcsc2kicad",
		Usage:   "Convert LCSC/EasyEDA components into a KiCad symbol, footprint and 3D model library",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Library directory", Sources: cli.EnvVars("LCSC2KICAD_OUTPUT")},
			&cli.StringFlag{Name: "lib-name", Usage: "Library nickname"},
			&cli.BoolFlag{Name: "debug", Usage: "Log at debug level"},
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Convert one or more components",
				ArgsUsage: "[ID...]",
				Flags: append(selectionFlags(),
					&cli.StringSliceFlag{Name: "id", Usage: "LCSC part number (repeatable)"},
					&cli.StringFlag{Name: "batch", Aliases: []string{"b"}, Usage: "File listing part numbers"},
					&cli.BoolFlag{Name: "continue-on-error", Usage: "Keep converting after a failure"},
				),
				Action: runConvert,
			},
			{
				Name:      "remove",
				Usage:     "Remove every artifact of the given components",
				ArgsUsage: "[ID...]",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "id", Usage: "LCSC part number (repeatable)"},
					&cli.StringFlag{Name: "batch", Aliases: []string{"b"}, Usage: "File listing part numbers"},
				},
				Action: runRemove,
			},
			{
				Name:  "list",
				Usage: "List converted components",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search instead of listing"},
					&cli.IntFlag{Name: "limit", Value: 50, Usage: "Page size"},
					&cli.IntFlag{Name: "offset", Usage: "Page offset"},
					&cli.StringFlag{Name: "sort", Usage: "Sort by updated, id or name"},
					&cli.BoolFlag{Name: "sync", Usage: "Drop catalog entries whose files are gone first"},
				},
				Action: runList,
			},
			{
				Name:      "watch",
				Usage:     "Convert ids as they are added to a batch list file",
				ArgsUsage: "FILE",
				Flags:     selectionFlags(),
				Action:    runWatch,
			},
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Usage: "HTTP port"},
					&cli.StringFlag{Name: "watch", Usage: "Also follow this batch list file"},
				},
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
