package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexanderramin/juno/internal/cli"
	"github.com/alexanderramin/juno/internal/config"
	"github.com/alexanderramin/juno/internal/db"
	"github.com/alexanderramin/juno/internal/repository"
	"github.com/alexanderramin/juno/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.LoadConfig()

	var opts []service.Option
	if cfg.LogUseCases {
		opts = append(opts, service.WithObserver(service.NewLogUseCaseObserver(os.Stderr)))
	}

	app := &cli.App{
		Config: cfg,
		Open: func(ctx context.Context, cfg config.Config) (*service.Workspace, func() error, error) {
			return openWorkspace(ctx, cfg, opts...)
		},
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	defer app.Close()

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

// openWorkspace wires the repositories for the configured backend and
// loads the owner's workspace from them.
func openWorkspace(ctx context.Context, cfg config.Config, opts ...service.Option) (*service.Workspace, func() error, error) {
	switch cfg.Backend {
	case config.BackendFile:
		store, err := repository.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		ws, err := service.OpenWorkspace(ctx, cfg.Owner, store, store, opts...)
		if err != nil {
			return nil, nil, err
		}
		return ws, func() error { return nil }, nil

	default:
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		tasks := repository.NewSQLiteTaskRepo(database)
		segments := repository.NewSQLiteSegmentRepo(database)
		ws, err := service.OpenWorkspace(ctx, cfg.Owner, tasks, segments, opts...)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return ws, database.Close, nil
	}
}
