package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/juno/internal/cli/formatter"
	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/service"
	"github.com/alexanderramin/juno/internal/view"
	"github.com/spf13/cobra"
)

func newAddCmd(app *App) *cobra.Command {
	var priority, segment, deadline string

	cmd := &cobra.Command{
		Use:   "add [TEXT...]",
		Short: "Create a task",
		Long:  "Create a task. With no text on a terminal, a form asks for the details.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				if strings.TrimSpace(text) == "" {
					if !app.interactive() {
						return fmt.Errorf("%w: task text is required", domain.ErrValidation)
					}
					in := taskFormInput{Priority: domain.Priority(priority), Segment: segment, Deadline: deadline}
					if err := taskForm("New task", ws.Segments().Segments(), app.now(), &in).Run(); err != nil {
						return err
					}
					text, priority, segment, deadline = in.Text, string(in.Priority), in.Segment, in.Deadline
				}

				p, err := domain.ParsePriority(domain.CoalesceStr(priority, string(domain.PriorityLow)))
				if err != nil {
					return err
				}
				due, err := parseDeadline(deadline, app.now())
				if err != nil {
					return err
				}

				t, err := ws.Tasks().CreateTask(ctx, text, p, segment)
				if err != nil {
					return err
				}
				if due != nil {
					if err := ws.Tasks().SetDeadline(ctx, t.ID, due); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", formatter.Dim(formatter.ShortID(t.ID)), t.Text)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default low)")
	cmd.Flags().StringVarP(&segment, "segment", "s", "", "segment name (default All)")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "deadline: YYYY-MM-DD, today, tomorrow or +Nd")

	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var sel string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in a view",
		Long:    "List tasks in a view: all, today, or a segment name.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printView(cmd, app, sel)
		},
	}

	cmd.Flags().StringVarP(&sel, "view", "v", "all", "all, today or a segment name")
	return cmd
}

func newTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "List tasks and sub-tasks due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printView(cmd, app, domain.SelectorToday)
		},
	}
}

func printView(cmd *cobra.Command, app *App, selector string) error {
	return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
		sel := view.ParseSelector(selector)
		if sel.Kind == view.KindSegment && !slices.Contains(ws.Segments().Segments(), sel.Segment) {
			return fmt.Errorf("segment %q: %w", sel.Segment, domain.ErrNotFound)
		}
		now := app.now()
		items := view.Filter(ws.Tasks().Tasks(), sel, now)
		fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskList(sel.String(), items, now))
		return nil
	})
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one task with its sub-tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				id, err := resolveTaskArg(ws, args[0])
				if err != nil {
					return err
				}
				t, err := ws.Tasks().Task(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskDetail(t, app.now()))
				return nil
			})
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "done ID",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task between done and todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateTaskCmd(cmd, app, args[0], func(ctx context.Context, ts *service.TaskStore, id string) error {
				return ts.ToggleTask(ctx, id)
			})
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Set a task's status (todo, in-progress, done)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return updateTaskCmd(cmd, app, args[0], func(ctx context.Context, ts *service.TaskStore, id string) error {
				return ts.SetStatus(ctx, id, st)
			})
		},
	}
}

func newPriorityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "priority ID PRIORITY",
		Short: "Set a task's priority (low, medium, high)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParsePriority(args[1])
			if err != nil {
				return err
			}
			return updateTaskCmd(cmd, app, args[0], func(ctx context.Context, ts *service.TaskStore, id string) error {
				return ts.SetPriority(ctx, id, p)
			})
		},
	}
}

func newDeadlineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deadline ID DATE",
		Short: "Set or clear a task's deadline",
		Long:  "Set a task's deadline to YYYY-MM-DD, today, tomorrow or +Nd. Use none to clear it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			due, err := parseDeadline(args[1], app.now())
			if err != nil {
				return err
			}
			return updateTaskCmd(cmd, app, args[0], func(ctx context.Context, ts *service.TaskStore, id string) error {
				return ts.SetDeadline(ctx, id, due)
			})
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move ID SEGMENT",
		Short: "Move a task to another segment (All for none)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateTaskCmd(cmd, app, args[0], func(ctx context.Context, ts *service.TaskStore, id string) error {
				return ts.MoveTask(ctx, id, args[1])
			})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var text, priority, status, deadline string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task's text, priority, status or deadline",
		Long:  "Edit a task. Without flags on a terminal, a form shows the current values.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			useForm := !changed("text") && !changed("priority") && !changed("status") && !changed("deadline")

			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				id, err := resolveTaskArg(ws, args[0])
				if err != nil {
					return err
				}
				var patch domain.Patch
				if useForm {
					if !app.interactive() {
						return fmt.Errorf("%w: nothing to change (use --text, --priority, --status or --deadline)", domain.ErrValidation)
					}
					t, err := ws.Tasks().Task(id)
					if err != nil {
						return err
					}
					if patch, err = editEntryForm(t.Entry, app.now()); err != nil {
						return err
					}
				} else {
					flags := patchFlags{text: text, priority: priority, status: status, deadline: deadline}
					if patch, err = flags.patch(changed, app.now()); err != nil {
						return err
					}
				}
				if err := ws.Tasks().EditTask(ctx, id, patch); err != nil {
					return err
				}
				return printTaskLine(cmd, ws, id)
			})
		},
	}

	addPatchFlags(cmd, &text, &priority, &status, &deadline)
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its sub-tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
				id, err := resolveTaskArg(ws, args[0])
				if err != nil {
					return err
				}
				t, err := ws.Tasks().Task(id)
				if err != nil {
					return err
				}
				if err := ws.Tasks().DeleteTask(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", formatter.Dim(formatter.ShortID(id)), t.Text)
				return nil
			})
		},
	}
}

// updateTaskCmd resolves ref, applies fn and prints the task's new state.
func updateTaskCmd(cmd *cobra.Command, app *App, ref string, fn func(ctx context.Context, ts *service.TaskStore, id string) error) error {
	return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
		id, err := resolveTaskArg(ws, ref)
		if err != nil {
			return err
		}
		if err := fn(ctx, ws.Tasks(), id); err != nil {
			return err
		}
		return printTaskLine(cmd, ws, id)
	})
}

func printTaskLine(cmd *cobra.Command, ws *service.Workspace, id string) error {
	t, err := ws.Tasks().Task(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s  %s  %s\n",
		formatter.Dim(formatter.ShortID(t.ID)),
		formatter.Checkbox(t.Completed),
		formatter.EntryText(t.Entry),
		formatter.StatusPill(t.Status),
		formatter.PriorityBadge(t.Priority),
	)
	return nil
}
