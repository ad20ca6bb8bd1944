package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/odl/internal"
	pkgconfig "github.com/starford/odl/pkg/config"
)

// loadConfig reads the --config file over the defaults. A missing file
// leaves the defaults in place, so library commands work without one.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// setupLogger sends JSON logs, including soft warnings, to stderr so they
// never mix with command output.
func setupLogger(cfg *internal.Config) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	})))
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "odl",
		Usage: "Build, check and exchange Keck observing programs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("ODL_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			validateCommand(),
			estimateCommand(),
			calsCommand(),
			starlistCommand(),
			targetsCommand(),
			headerCommand(),
			uploadCommand(),
			downloadCommand(),
			pingCommand(),
			{
				Name:   "serve",
				Usage:  "Run the local program database (HTTP API, watcher, SSE)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: serveMCP,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
