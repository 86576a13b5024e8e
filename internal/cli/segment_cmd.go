package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/alexanderramin/juno/internal/cli/formatter"
	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/service"
	"github.com/spf13/cobra"
)

func newSegmentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "segment",
		Aliases: []string{"seg"},
		Short:   "Manage segments",
	}

	cmd.AddCommand(
		newSegmentListCmd(app),
		newSegmentAddCmd(app),
		newSegmentRenameCmd(app),
		newSegmentRemoveCmd(app),
		newSegmentMoveCmd(app),
	)

	return cmd
}

func newSegmentListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List segments with task counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSegmentList(ws.Segments().Segments(), ws.Tasks().Tasks()))
				return nil
			})
		},
	}
}

func newSegmentAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Create a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				if err := ws.Segments().AddSegment(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added segment %s\n", formatter.SegmentBadge(args[0]))
				return nil
			})
		},
	}
}

func newSegmentRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a segment and move its tasks along",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				if err := ws.Segments().EditSegment(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", formatter.SegmentBadge(args[0]), formatter.SegmentBadge(args[1]))
				return nil
			})
		},
	}
}

func newSegmentRemoveCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"delete"},
		Short:   "Delete a segment; its tasks move to All",
		Long:    "Delete a segment; its tasks move to All. The default segments need --force or confirmation on a terminal.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if domain.IsDefaultSegment(name) && !force {
				if !app.interactive() {
					return fmt.Errorf("%w: %q is a default segment (use --force)", domain.ErrValidation, name)
				}
				var ok bool
				if err := confirmForm(fmt.Sprintf("Delete default segment %q?", name), &ok).Run(); err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				if err := ws.Segments().DeleteSegment(ctx, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted segment %s\n", formatter.SegmentBadge(name))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "allow deleting a default segment")
	return cmd
}

func newSegmentMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "move NAME up|down",
		Short:     "Move a segment one place up or down",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir int
			switch args[1] {
			case "up":
				dir = -1
			case "down":
				dir = 1
			default:
				return fmt.Errorf("%w: direction must be up or down, got %q", domain.ErrValidation, args[1])
			}
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				idx := slices.Index(ws.Segments().Segments(), args[0])
				if idx < 0 {
					return fmt.Errorf("segment %q: %w", args[0], domain.ErrNotFound)
				}
				if err := ws.Segments().MoveSegment(ctx, idx, dir); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSegmentList(ws.Segments().Segments(), ws.Tasks().Tasks()))
				return nil
			})
		},
	}
}
