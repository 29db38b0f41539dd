package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/itembox/internal"
	"github.com/starford/itembox/internal/mcpserver"
	"github.com/starford/itembox/internal/sink"
	pkgconfig "github.com/starford/itembox/pkg/config"
)

var version = "dev"

// loadConfig reads the optional config file named by the root --config flag
// and applies the --root override.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	root := cmd.Root()

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(root.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := root.String("root"); dir != "" {
		cfg.Storage.Root = dir
	}
	return cfg, nil
}

// withApp opens the application for one command and closes it afterwards.
func withApp(cmd *cli.Command, fn func(*internal.App) error, opts ...internal.Option) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts = append([]internal.Option{internal.WithConfig(cfg), internal.WithLogOutput(cmd.Root().ErrWriter)}, opts...)
	app, err := internal.Open(opts...)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func addAction(ctx context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *internal.App) error {
		return app.Service.Add(ctx, cmd.String("item"))
	})
}

func removeAction(ctx context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *internal.App) error {
		return app.Service.Remove(ctx, cmd.String("item"))
	})
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *internal.App) error {
		return app.Service.List(ctx, cmd.Bool("sorted"), sink.NewConsole(cmd.Root().Writer))
	}, internal.WithoutJournal())
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *internal.App) error {
		events, err := app.Service.History(ctx, 0)
		if err != nil {
			return err
		}
		w := cmd.Root().Writer
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.At.Local().Format("2006-01-02 15:04:05"), e.Op, e.Item)
		}
		return nil
	}, internal.WithJournalRequired())
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithLogOutput(cmd.Root().ErrWriter)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpAction(_ context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *internal.App) error {
		return mcpserver.New(app.Service, version).ServeStdio()
	})
}

func itemFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:     "item",
		Aliases:  []string{"i"},
		Usage:    usage,
		Required: true,
	}
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "itembox",
		Usage:     "To-do list kept as empty files in a directory",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Storage root directory (overrides storage.root)",
				Sources: cli.EnvVars("ITEMBOX_ROOT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "add an item",
				Flags:  []cli.Flag{itemFlag("name of the item to add")},
				Action: addAction,
			},
			{
				Name:   "remove",
				Usage:  "remove an item",
				Flags:  []cli.Flag{itemFlag("name of the item to remove")},
				Action: removeAction,
			},
			{
				Name:  "list",
				Usage: "list all items",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "sorted",
						Usage: "sort items by name; otherwise order is unspecified",
					},
				},
				Action: listAction,
			},
			{
				Name:   "history",
				Usage:  "show recent add and remove operations",
				Action: historyAction,
			},
			{
				Name:   "serve",
				Usage:  "serve the HTTP API with live change events",
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "serve MCP tools over stdio",
				Action: mcpAction,
			},
		},
	}
}

func main() {
	cmd := newCommand(os.Stdout, os.Stderr)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
