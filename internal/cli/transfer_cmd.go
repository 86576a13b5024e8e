package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/record"
	"github.com/alexanderramin/juno/internal/service"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as JSON or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			write := record.WriteJSON
			switch strings.ToLower(format) {
			case "json":
			case "csv":
				write = record.WriteCSV
			default:
				return fmt.Errorf("%w: unknown format %q (want json or csv)", domain.ErrValidation, format)
			}

			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				docs := record.FromTasks(ws.Tasks().Tasks())
				var w io.Writer = cmd.OutOrStdout()
				if out != "" && out != "-" {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("creating export file: %w", err)
					}
					defer f.Close()
					w = f
				}
				if err := write(w, docs); err != nil {
					return err
				}
				if out != "" && out != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", len(docs), out)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create tasks from a JSON export",
		Long: "Create tasks from a JSON array in the export format. Every task gets a new id; " +
			"segments the file names but the workspace lacks are created.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := record.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				res, err := ws.Tasks().ImportTasks(ctx, docs)
				if res.Created > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d tasks\n", res.Created, len(docs))
				}
				if len(res.SegmentsAdded) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Added segments: %s\n", strings.Join(res.SegmentsAdded, ", "))
				}
				return err
			})
		},
	}
}
