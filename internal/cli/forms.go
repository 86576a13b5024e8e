package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/juno/internal/cli/formatter"
	"github.com/alexanderramin/juno/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// junoHuhTheme returns a huh theme that matches the formatter palette.
func junoHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// taskFormInput backs the new-task form.
type taskFormInput struct {
	Text     string
	Priority domain.Priority
	Segment  string
	Deadline string
}

func taskForm(title string, segments []string, now time.Time, in *taskFormInput) *huh.Form {
	if in.Priority == "" {
		in.Priority = domain.PriorityLow
	}
	if in.Segment == "" {
		in.Segment = domain.SegmentAll
	}

	segOptions := []huh.Option[string]{huh.NewOption(domain.SegmentAll, domain.SegmentAll)}
	for _, s := range segments {
		segOptions = append(segOptions, huh.NewOption(s, s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder("What needs doing?").
				Value(&in.Text).
				Validate(validateText),
			prioritySelect(&in.Priority),
			huh.NewSelect[string]().
				Title("Segment").
				Options(segOptions...).
				Value(&in.Segment),
			deadlineInput(now, &in.Deadline),
		),
	).WithTheme(junoHuhTheme()).WithShowHelp(false)
}

func prioritySelect(value *domain.Priority) *huh.Select[domain.Priority] {
	options := make([]huh.Option[domain.Priority], 0, len(domain.ValidPriorities))
	for _, p := range domain.ValidPriorities {
		options = append(options, huh.NewOption(string(p), p))
	}
	return huh.NewSelect[domain.Priority]().
		Title("Priority").
		Options(options...).
		Value(value)
}

func statusSelect(value *domain.Status) *huh.Select[domain.Status] {
	options := make([]huh.Option[domain.Status], 0, len(domain.ValidStatuses))
	for _, s := range domain.ValidStatuses {
		options = append(options, huh.NewOption(string(s), s))
	}
	return huh.NewSelect[domain.Status]().
		Title("Status").
		Options(options...).
		Value(value)
}

// deadlineInput returns a huh.Input for an optional deadline.
func deadlineInput(now time.Time, value *string) *huh.Input {
	return huh.NewInput().
		Title("Deadline (YYYY-MM-DD, today, tomorrow, +Nd; blank for none)").
		Placeholder(now.Format(dateLayout)).
		Value(value).
		Validate(func(s string) error {
			if _, err := parseDeadline(s, now); err != nil {
				return fmt.Errorf("use YYYY-MM-DD, today, tomorrow or +Nd")
			}
			return nil
		})
}

func validateText(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

// editEntryForm shows e's current values and returns a patch holding only
// the fields the user changed.
func editEntryForm(e domain.Entry, now time.Time) (domain.Patch, error) {
	text, priority, status := e.Text, e.Priority, e.Status
	deadline := formatDeadlineInput(e.Deadline, now)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Text").Value(&text).Validate(validateText),
			prioritySelect(&priority),
			statusSelect(&status),
			deadlineInput(now, &deadline),
		),
	).WithTheme(junoHuhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return domain.Patch{}, err
	}

	return diffPatch(e, text, priority, status, deadline, now)
}

// diffPatch builds a patch from edited form values, leaving out fields
// that still equal e.
func diffPatch(e domain.Entry, text string, priority domain.Priority, status domain.Status, deadline string, now time.Time) (domain.Patch, error) {
	var p domain.Patch
	if strings.TrimSpace(text) != e.Text {
		p.Text = &text
	}
	if priority != e.Priority {
		p.Priority = &priority
	}
	if status != e.Status {
		p.Status = &status
	}
	if deadline != formatDeadlineInput(e.Deadline, now) {
		due, err := parseDeadline(deadline, now)
		if err != nil {
			return domain.Patch{}, err
		}
		if due == nil {
			p.ClearDeadline = true
		} else {
			p.Deadline = due
		}
	}
	return p, nil
}

func formatDeadlineInput(d *time.Time, now time.Time) string {
	if d == nil {
		return ""
	}
	return d.In(now.Location()).Format(dateLayout)
}

// patchFlags holds the --text/--priority/--status/--deadline values shared
// by task and sub-task edit commands.
type patchFlags struct {
	text, priority, status, deadline string
}

func addPatchFlags(cmd *cobra.Command, text, priority, status, deadline *string) {
	cmd.Flags().StringVar(text, "text", "", "new text")
	cmd.Flags().StringVarP(priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(status, "status", "", "todo, in-progress or done")
	cmd.Flags().StringVarP(deadline, "deadline", "d", "", "YYYY-MM-DD, today, tomorrow, +Nd or none")
}

func (f patchFlags) patch(changed func(string) bool, now time.Time) (domain.Patch, error) {
	var p domain.Patch
	if changed("text") {
		p.Text = &f.text
	}
	if changed("priority") {
		pr, err := domain.ParsePriority(f.priority)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if changed("status") {
		st, err := domain.ParseStatus(f.status)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	if changed("deadline") {
		due, err := parseDeadline(f.deadline, now)
		if err != nil {
			return p, err
		}
		p.Deadline = due
		p.ClearDeadline = due == nil
	}
	return p, nil
}

// confirmForm asks a yes/no question.
func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(junoHuhTheme()).WithShowHelp(false)
}
