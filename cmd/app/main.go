package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/tavla/internal"
	"github.com/starford/tavla/internal/boardservice"
	"github.com/starford/tavla/internal/index"
	"github.com/starford/tavla/internal/mcpserver"
	"github.com/starford/tavla/internal/store"
	pkgconfig "github.com/starford/tavla/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
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

// serveMCP runs the MCP server on stdin/stdout against the same board
// file and index the HTTP server uses. Logs go to stderr so they do not
// corrupt the stdio protocol stream.
func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	fs, err := store.NewFS(cfg.Board.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	saver := store.NewSaver(fs, logger, nil)
	defer saver.Close()

	svc := boardservice.NewService(fs, saver, db, silentNotifier{}, logger)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	return mcpserver.New(svc).ServeStdio()
}

// silentNotifier drops change notifications; the stdio MCP process has
// no SSE clients.
type silentNotifier struct{}

func (silentNotifier) PublishCardEvent(string, string) {}
func (silentNotifier) PublishBoardUpdated()            {}
func (silentNotifier) PublishSaveFailed(string)        {}

func main() {
	cmd := &cli.Command{
		Name:   "tavla",
		Usage:  "Local-first kanban board with a JSON board document, filter expressions, and full-text card search",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
