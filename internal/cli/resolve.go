package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/service"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// resolveTaskArg turns a full id or a unique id suffix into a task id.
func resolveTaskArg(ws *service.Workspace, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", fmt.Errorf("%w: task id is required", domain.ErrValidation)
	}
	return ws.Tasks().ResolveID(ref)
}

func resolveSubTaskArgs(ws *service.Workspace, taskRef, subRef string) (string, string, error) {
	taskID, err := resolveTaskArg(ws, taskRef)
	if err != nil {
		return "", "", err
	}
	subID, err := ws.Tasks().ResolveSubTaskID(taskID, subRef)
	if err != nil {
		return "", "", err
	}
	return taskID, subID, nil
}

// parseDeadline accepts YYYY-MM-DD, RFC 3339, "today", "tomorrow", "+Nd"
// and "none". Dates are taken as midnight in now's location. A nil result
// with no error means clear the deadline.
func parseDeadline(s string, now time.Time) (*time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	midnight := func(t time.Time) *time.Time {
		y, m, d := t.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		return &day
	}

	switch {
	case s == "" || s == "none" || s == "clear":
		return nil, nil
	case s == "today":
		return midnight(now), nil
	case s == "tomorrow":
		return midnight(now.AddDate(0, 0, 1)), nil
	case strings.HasPrefix(s, "+") && strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(s[1 : len(s)-1])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid relative deadline %q (use +Nd)", domain.ErrValidation, s)
		}
		return midnight(now.AddDate(0, 0, n)), nil
	}

	if t, err := time.ParseInLocation(dateLayout, s, now.Location()); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.ToUpper(s)); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: invalid deadline %q (use YYYY-MM-DD, today, tomorrow, +Nd or none)", domain.ErrValidation, s)
}

// withWorkspace opens the workspace and runs fn against it. A write that
// failed to persist is reported as such: the change is in memory only and
// is lost when the process exits.
func withWorkspace(cmd *cobra.Command, app *App, fn func(ctx context.Context, ws *service.Workspace) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ws, err := app.workspace(ctx)
	if err != nil {
		return err
	}
	err = fn(ctx, ws)
	var perr *service.PersistenceError
	if errors.As(err, &perr) {
		return fmt.Errorf("change not saved: %w", err)
	}
	return err
}
