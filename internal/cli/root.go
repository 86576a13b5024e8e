package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/juno/internal/config"
	"github.com/alexanderramin/juno/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// OpenFunc loads a workspace for cfg. The returned close func releases the
// backing store.
type OpenFunc func(ctx context.Context, cfg config.Config) (*service.Workspace, func() error, error)

// App carries what the commands need: resolved configuration, a way to
// open the workspace it points at, and terminal facts.
type App struct {
	Config config.Config
	Open   OpenFunc

	// Now defaults to time.Now; tests pin it.
	Now func() time.Time

	// IsInteractive reports whether stdin is a terminal. Forms and the
	// board are only offered when it returns true.
	IsInteractive func() bool

	// RunBoard starts the interactive board. Defaults to a full-screen
	// bubbletea program.
	RunBoard func(m tea.Model) error

	ws      *service.Workspace
	closeWS func() error
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// workspace opens the configured workspace on first use and reuses it for
// the rest of the process.
func (a *App) workspace(ctx context.Context) (*service.Workspace, error) {
	if a.ws != nil {
		return a.ws, nil
	}
	if err := a.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if a.Open == nil {
		return nil, errors.New("no storage backend configured")
	}
	ws, closeFn, err := a.Open(ctx, a.Config)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage at %s: %w", a.Config.Backend, a.Config.StoragePath(), err)
	}
	a.ws, a.closeWS = ws, closeFn
	return ws, nil
}

// Close releases the workspace if a command opened one.
func (a *App) Close() error {
	if a.closeWS == nil {
		return nil
	}
	err := a.closeWS()
	a.ws, a.closeWS = nil, nil
	return err
}

// NewRootCmd creates the top-level "juno" command and registers all
// subcommands against the provided App. Run without a subcommand it opens
// the board on a terminal and prints the All view otherwise.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "juno",
		Short:         "Personal task manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runBoard(cmd, app)
			}
			return printView(cmd, app, "all")
		},
	}

	root.PersistentFlags().AddFlagSet(storageFlags(&app.Config))

	root.AddCommand(
		newAddCmd(app),
		newListCmd(app),
		newTodayCmd(app),
		newShowCmd(app),
		newDoneCmd(app),
		newStatusCmd(app),
		newPriorityCmd(app),
		newDeadlineCmd(app),
		newMoveCmd(app),
		newEditCmd(app),
		newRemoveCmd(app),
		newSubCmd(app),
		newSegmentCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newBoardCmd(app),
	)

	return root
}

// storageFlags overrides the environment-derived configuration. Flags
// write straight into cfg so defaults shown in help are the resolved ones.
func storageFlags(cfg *config.Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("storage", pflag.ContinueOnError)
	fs.Var(newBackendValue(&cfg.Backend), "backend", "storage backend: sqlite or file (env JUNO_BACKEND)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (env JUNO_DB)")
	fs.StringVar(&cfg.FilePath, "file", cfg.FilePath, "JSON store path for the file backend (env JUNO_FILE)")
	fs.StringVar(&cfg.Owner, "owner", cfg.Owner, "owner id whose tasks to use (env JUNO_OWNER)")
	return fs
}

// backendValue is a pflag.Value that accepts only known backends.
type backendValue struct {
	target *config.Backend
}

func newBackendValue(target *config.Backend) *backendValue {
	return &backendValue{target: target}
}

func (b *backendValue) String() string {
	if b.target == nil {
		return ""
	}
	return string(*b.target)
}

func (b *backendValue) Set(s string) error {
	switch v := config.Backend(s); v {
	case config.BackendSQLite, config.BackendFile:
		*b.target = v
		return nil
	}
	return fmt.Errorf("want %s or %s", config.BackendSQLite, config.BackendFile)
}

func (b *backendValue) Type() string { return "backend" }
