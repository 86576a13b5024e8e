package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/juno/internal/cli/formatter"
	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/service"
	"github.com/spf13/cobra"
)

func newSubCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sub",
		Aliases: []string{"subtask"},
		Short:   "Manage sub-tasks",
	}

	cmd.AddCommand(
		newSubAddCmd(app),
		newSubDoneCmd(app),
		newSubStatusCmd(app),
		newSubPriorityCmd(app),
		newSubDeadlineCmd(app),
		newSubEditCmd(app),
		newSubRemoveCmd(app),
	)

	return cmd
}

func newSubAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add TASK TEXT...",
		Short: "Add a sub-task to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				taskID, err := resolveTaskArg(ws, args[0])
				if err != nil {
					return err
				}
				sub, err := ws.Tasks().AddSubTask(ctx, taskID, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", formatter.Dim(formatter.ShortID(sub.ID)), sub.Text)
				return nil
			})
		},
	}
}

func newSubDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "done TASK SUB",
		Aliases: []string{"toggle"},
		Short:   "Toggle a sub-task between done and todo",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateSubTaskCmd(cmd, app, args[0], args[1], func(ctx context.Context, ts *service.TaskStore, taskID, subID string) error {
				return ts.ToggleSubTask(ctx, taskID, subID)
			})
		},
	}
}

func newSubStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status TASK SUB STATUS",
		Short: "Set a sub-task's status",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := domain.ParseStatus(args[2])
			if err != nil {
				return err
			}
			return updateSubTaskCmd(cmd, app, args[0], args[1], func(ctx context.Context, ts *service.TaskStore, taskID, subID string) error {
				return ts.SetSubTaskStatus(ctx, taskID, subID, st)
			})
		},
	}
}

func newSubPriorityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "priority TASK SUB PRIORITY",
		Short: "Set a sub-task's priority",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParsePriority(args[2])
			if err != nil {
				return err
			}
			return updateSubTaskCmd(cmd, app, args[0], args[1], func(ctx context.Context, ts *service.TaskStore, taskID, subID string) error {
				return ts.SetSubTaskPriority(ctx, taskID, subID, p)
			})
		},
	}
}

func newSubDeadlineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deadline TASK SUB DATE",
		Short: "Set or clear a sub-task's deadline",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			due, err := parseDeadline(args[2], app.now())
			if err != nil {
				return err
			}
			return updateSubTaskCmd(cmd, app, args[0], args[1], func(ctx context.Context, ts *service.TaskStore, taskID, subID string) error {
				return ts.SetSubTaskDeadline(ctx, taskID, subID, due)
			})
		},
	}
}

func newSubEditCmd(app *App) *cobra.Command {
	var text, priority, status, deadline string

	cmd := &cobra.Command{
		Use:   "edit TASK SUB",
		Short: "Edit a sub-task's text, priority, status or deadline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			useForm := !changed("text") && !changed("priority") && !changed("status") && !changed("deadline")

			return updateSubTaskCmd(cmd, app, args[0], args[1], func(ctx context.Context, ts *service.TaskStore, taskID, subID string) error {
				var patch domain.Patch
				var err error
				if useForm {
					if !app.interactive() {
						return fmt.Errorf("%w: nothing to change (use --text, --priority, --status or --deadline)", domain.ErrValidation)
					}
					sub, err := findSub(ts, taskID, subID)
					if err != nil {
						return err
					}
					if patch, err = editEntryForm(sub.Entry, app.now()); err != nil {
						return err
					}
				} else {
					flags := patchFlags{text: text, priority: priority, status: status, deadline: deadline}
					if patch, err = flags.patch(changed, app.now()); err != nil {
						return err
					}
				}
				return ts.EditSubTask(ctx, taskID, subID, patch)
			})
		},
	}

	addPatchFlags(cmd, &text, &priority, &status, &deadline)
	return cmd
}

func newSubRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm TASK SUB",
		Aliases: []string{"delete"},
		Short:   "Delete a sub-task",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				taskID, subID, err := resolveSubTaskArgs(ws, args[0], args[1])
				if err != nil {
					return err
				}
				sub, err := findSub(ws.Tasks(), taskID, subID)
				if err != nil {
					return err
				}
				if err := ws.Tasks().DeleteSubTask(ctx, taskID, subID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", formatter.Dim(formatter.ShortID(subID)), sub.Text)
				return nil
			})
		},
	}
}

func updateSubTaskCmd(cmd *cobra.Command, app *App, taskRef, subRef string, fn func(ctx context.Context, ts *service.TaskStore, taskID, subID string) error) error {
	return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
		taskID, subID, err := resolveSubTaskArgs(ws, taskRef, subRef)
		if err != nil {
			return err
		}
		if err := fn(ctx, ws.Tasks(), taskID, subID); err != nil {
			return err
		}
		sub, err := findSub(ws.Tasks(), taskID, subID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s  %s  %s\n",
			formatter.Dim(formatter.ShortID(sub.ID)),
			formatter.Checkbox(sub.Completed),
			formatter.EntryText(sub.Entry),
			formatter.StatusPill(sub.Status),
			formatter.PriorityBadge(sub.Priority),
		)
		return nil
	})
}

func findSub(ts *service.TaskStore, taskID, subID string) (domain.SubTask, error) {
	t, err := ts.Task(taskID)
	if err != nil {
		return domain.SubTask{}, err
	}
	sub, ok := t.SubTask(subID)
	if !ok {
		return domain.SubTask{}, fmt.Errorf("sub-task %q: %w", subID, domain.ErrNotFound)
	}
	return *sub, nil
}
