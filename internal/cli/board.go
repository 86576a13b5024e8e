package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/juno/internal/cli/formatter"
	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/service"
	"github.com/alexanderramin/juno/internal/view"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, app)
		},
	}
}

func runBoard(cmd *cobra.Command, app *App) error {
	return withWorkspace(cmd, app, func(ctx context.Context, ws *service.Workspace) error {
		m := newBoardModel(ctx, ws, app.now)
		if app.RunBoard != nil {
			return app.RunBoard(m)
		}
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	})
}

type boardPane int

const (
	paneSidebar boardPane = iota
	paneList
)

type boardMode int

const (
	modeNormal boardMode = iota
	modeAddTask
	modeAddSubTask
	modeAddSegment
	modeEdit
)

const sidebarWidth = 20

// boardRow is one selectable line. Sub-task rows either sit under their
// parent (nested) or stand alone in the Today view with the parent named.
type boardRow struct {
	taskID     string
	subID      string
	entry      domain.Entry
	segment    string
	parentText string
	nested     bool
}

func (r boardRow) isSubTask() bool { return r.subID != "" }

type boardKeys struct {
	Pane      key.Binding
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Add       key.Binding
	AddSub    key.Binding
	Priority  key.Binding
	DueToday  key.Binding
	Status    key.Binding
	Move      key.Binding
	Edit      key.Binding
	Delete    key.Binding
	SegUp     key.Binding
	SegDown   key.Binding
	Retry     key.Binding
	Quit      key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	ForceQuit key.Binding
}

func defaultBoardKeys() boardKeys {
	return boardKeys{
		Pane:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch pane")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle done")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		AddSub:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "add sub-task")),
		Priority:  key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "priority")),
		DueToday:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "due today")),
		Status:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle status")),
		Move:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "next segment")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit text")),
		Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		SegUp:     key.NewBinding(key.WithKeys("K"), key.WithHelp("K/J", "reorder segment")),
		SegDown:   key.NewBinding(key.WithKeys("J")),
		Retry:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry saves")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Submit:    key.NewBinding(key.WithKeys("enter")),
		Cancel:    key.NewBinding(key.WithKeys("esc")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k boardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Pane, k.Toggle, k.Add, k.AddSub, k.Priority, k.DueToday, k.Status, k.Delete, k.Retry, k.Quit}
}

func (k boardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pane, k.Up, k.Down, k.Quit},
		{k.Toggle, k.Add, k.AddSub, k.Edit, k.Delete},
		{k.Priority, k.DueToday, k.Status, k.Move},
		{k.SegUp, k.Retry},
	}
}

// boardOpDoneMsg reports the end of a workspace call started by run.
type boardOpDoneMsg struct {
	status string
	err    error
}

// boardModel is the interactive board: a segment sidebar next to the rows
// of the selected view. Workspace calls run as Cmds one at a time; keys
// are ignored while one is in flight.
type boardModel struct {
	ctx context.Context
	ws  *service.Workspace
	now func() time.Time

	keys    boardKeys
	help    help.Model
	spinner spinner.Model
	input   textinput.Model

	focus  boardPane
	selIdx int
	cursor int
	rows   []boardRow

	mode   boardMode
	target boardRow

	busy   bool
	status string
	err    error
	width  int
	height int
}

func newBoardModel(ctx context.Context, ws *service.Workspace, now func() time.Time) *boardModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(formatter.StyleYellow))

	ti := textinput.New()
	ti.CharLimit = 500
	ti.PromptStyle = formatter.StyleHeader
	ti.TextStyle = formatter.StyleFg

	m := &boardModel{
		ctx:     ctx,
		ws:      ws,
		now:     now,
		keys:    defaultBoardKeys(),
		help:    help.New(),
		spinner: sp,
		input:   ti,
		focus:   paneList,
	}
	m.refresh()
	return m
}

func (m *boardModel) Init() tea.Cmd {
	return nil
}

func (m *boardModel) selectors() []view.Selector {
	sels := []view.Selector{view.All, view.Today}
	for _, s := range m.ws.Segments().Segments() {
		sels = append(sels, view.ForSegment(s))
	}
	return sels
}

func (m *boardModel) selector() view.Selector {
	sels := m.selectors()
	m.selIdx = min(max(m.selIdx, 0), len(sels)-1)
	return sels[m.selIdx]
}

// refresh rebuilds the rows from the workspace and clamps the cursor.
func (m *boardModel) refresh() {
	items := view.Filter(m.ws.Tasks().Tasks(), m.selector(), m.now())
	rows := make([]boardRow, 0, len(items))
	for _, it := range items {
		if it.IsSubTask() {
			rows = append(rows, boardRow{
				taskID:     it.Parent.ID,
				subID:      it.SubTask.ID,
				entry:      it.SubTask.Entry,
				segment:    it.Parent.Segment,
				parentText: it.Parent.Text,
			})
			continue
		}
		t := it.Task
		rows = append(rows, boardRow{taskID: t.ID, entry: t.Entry, segment: t.Segment})
		for _, s := range t.SubTasks {
			rows = append(rows, boardRow{taskID: t.ID, subID: s.ID, entry: s.Entry, segment: t.Segment, nested: true})
		}
	}
	m.rows = rows
	m.cursor = min(max(m.cursor, 0), max(len(rows)-1, 0))
}

func (m *boardModel) current() (boardRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return boardRow{}, false
	}
	return m.rows[m.cursor], true
}

// run starts fn as a Cmd and marks the board busy until it reports back.
func (m *boardModel) run(status string, fn func(ctx context.Context, ts *service.TaskStore, ss *service.SegmentStore) error) tea.Cmd {
	m.busy = true
	m.err = nil
	ctx, ws := m.ctx, m.ws
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return boardOpDoneMsg{status: status, err: fn(ctx, ws.Tasks(), ws.Segments())}
	})
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-sidebarWidth-20, 10)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case boardOpDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
		} else {
			m.status = msg.status
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *boardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pane):
		if m.focus == paneList {
			m.focus = paneSidebar
		} else {
			m.focus = paneList
		}
		return m, nil
	case key.Matches(msg, m.keys.Retry):
		if len(m.ws.Pending()) == 0 {
			m.status = "Nothing to retry."
			return m, nil
		}
		return m, m.run("Saved pending changes.", func(ctx context.Context, _ *service.TaskStore, _ *service.SegmentStore) error {
			return m.ws.RetryPending(ctx)
		})
	}

	if m.focus == paneSidebar {
		return m.updateSidebar(msg)
	}
	return m.updateList(msg)
}

func (m *boardModel) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.selector()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selIdx > 0 {
			m.selIdx--
			m.cursor = 0
			m.refresh()
		}
	case key.Matches(msg, m.keys.Down):
		if m.selIdx < len(m.selectors())-1 {
			m.selIdx++
			m.cursor = 0
			m.refresh()
		}
	case key.Matches(msg, m.keys.Add):
		return m, m.startInput(modeAddSegment, boardRow{}, "")
	case key.Matches(msg, m.keys.Edit):
		if sel.Kind == view.KindSegment {
			return m, m.startInput(modeEdit, boardRow{segment: sel.Segment}, sel.Segment)
		}
	case key.Matches(msg, m.keys.Delete):
		if sel.Kind != view.KindSegment {
			return m, nil
		}
		if domain.IsDefaultSegment(sel.Segment) {
			m.err = fmt.Errorf("%q is a default segment; delete it with juno segment rm --force", sel.Segment)
			return m, nil
		}
		m.selIdx = 0
		return m, m.run(fmt.Sprintf("Deleted segment %s.", sel.Segment), func(ctx context.Context, _ *service.TaskStore, ss *service.SegmentStore) error {
			return ss.DeleteSegment(ctx, sel.Segment)
		})
	case key.Matches(msg, m.keys.SegUp), key.Matches(msg, m.keys.SegDown):
		if sel.Kind != view.KindSegment {
			return m, nil
		}
		dir := -1
		if key.Matches(msg, m.keys.SegDown) {
			dir = 1
		}
		idx := slices.Index(m.ws.Segments().Segments(), sel.Segment)
		// Keep the moved segment selected.
		if next := idx + dir; next >= 0 && next < len(m.ws.Segments().Segments()) {
			m.selIdx += dir
		}
		return m, m.run("", func(ctx context.Context, _ *service.TaskStore, ss *service.SegmentStore) error {
			return ss.MoveSegment(ctx, idx, dir)
		})
	}
	return m, nil
}

func (m *boardModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Add):
		return m, m.startInput(modeAddTask, boardRow{}, "")
	}

	row, ok := m.current()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		return m, m.run("", func(ctx context.Context, ts *service.TaskStore, _ *service.SegmentStore) error {
			if row.isSubTask() {
				return ts.ToggleSubTask(ctx, row.taskID, row.subID)
			}
			return ts.ToggleTask(ctx, row.taskID)
		})

	case key.Matches(msg, m.keys.AddSub):
		return m, m.startInput(modeAddSubTask, row, "")

	case key.Matches(msg, m.keys.Edit):
		return m, m.startInput(modeEdit, row, row.entry.Text)

	case key.Matches(msg, m.keys.Priority):
		p := domain.ValidPriorities[msg.String()[0]-'1']
		return m, m.run("", func(ctx context.Context, ts *service.TaskStore, _ *service.SegmentStore) error {
			if row.isSubTask() {
				return ts.SetSubTaskPriority(ctx, row.taskID, row.subID, p)
			}
			return ts.SetPriority(ctx, row.taskID, p)
		})

	case key.Matches(msg, m.keys.DueToday):
		var due *time.Time
		if !view.SameDay(row.entry.Deadline, m.now()) {
			y, mo, d := m.now().Date()
			today := time.Date(y, mo, d, 0, 0, 0, 0, m.now().Location())
			due = &today
		}
		return m, m.run("", func(ctx context.Context, ts *service.TaskStore, _ *service.SegmentStore) error {
			if row.isSubTask() {
				return ts.SetSubTaskDeadline(ctx, row.taskID, row.subID, due)
			}
			return ts.SetDeadline(ctx, row.taskID, due)
		})

	case key.Matches(msg, m.keys.Status):
		next := nextStatus(row.entry.Status)
		return m, m.run("", func(ctx context.Context, ts *service.TaskStore, _ *service.SegmentStore) error {
			if row.isSubTask() {
				return ts.SetSubTaskStatus(ctx, row.taskID, row.subID, next)
			}
			return ts.SetStatus(ctx, row.taskID, next)
		})

	case key.Matches(msg, m.keys.Move):
		if row.isSubTask() {
			return m, nil
		}
		target := nextSegment(m.ws.Segments().Segments(), row.segment)
		return m, m.run(fmt.Sprintf("Moved to %s.", target), func(ctx context.Context, ts *service.TaskStore, _ *service.SegmentStore) error {
			return ts.MoveTask(ctx, row.taskID, target)
		})

	case key.Matches(msg, m.keys.Delete):
		return m, m.run(fmt.Sprintf("Deleted %q.", row.entry.Text), func(ctx context.Context, ts *service.TaskStore, _ *service.SegmentStore) error {
			if row.isSubTask() {
				return ts.DeleteSubTask(ctx, row.taskID, row.subID)
			}
			return ts.DeleteTask(ctx, row.taskID)
		})
	}
	return m, nil
}

func (m *boardModel) startInput(mode boardMode, target boardRow, value string) tea.Cmd {
	m.mode = mode
	m.target = target
	m.err = nil
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	switch mode {
	case modeAddTask:
		m.input.Prompt = "New task › "
	case modeAddSubTask:
		m.input.Prompt = "New sub-task › "
	case modeAddSegment:
		m.input.Prompt = "New segment › "
	case modeEdit:
		m.input.Prompt = "Edit › "
	}
	return m.input.Focus()
}

func (m *boardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		text := m.input.Value()
		mode, target := m.mode, m.target
		sel := m.selector()
		m.mode = modeNormal
		m.input.Blur()
		return m, m.submit(mode, target, sel, text)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *boardModel) submit(mode boardMode, target boardRow, sel view.Selector, text string) tea.Cmd {
	switch mode {
	case modeAddTask:
		segment := ""
		if sel.Kind == view.KindSegment {
			segment = sel.Segment
		}
		var due *time.Time
		if sel.Kind == view.KindToday {
			y, mo, d := m.now().Date()
			today := time.Date(y, mo, d, 0, 0, 0, 0, m.now().Location())
			due = &today
		}
		return m.run("Added task.", func(ctx context.Context, ts *service.TaskStore, _ *service.SegmentStore) error {
			t, err := ts.CreateTask(ctx, text, domain.PriorityLow, segment)
			if err != nil || due == nil {
				return err
			}
			return ts.SetDeadline(ctx, t.ID, due)
		})

	case modeAddSubTask:
		return m.run("Added sub-task.", func(ctx context.Context, ts *service.TaskStore, _ *service.SegmentStore) error {
			_, err := ts.AddSubTask(ctx, target.taskID, text)
			return err
		})

	case modeAddSegment:
		return m.run("Added segment.", func(ctx context.Context, _ *service.TaskStore, ss *service.SegmentStore) error {
			return ss.AddSegment(ctx, text)
		})

	case modeEdit:
		if target.taskID == "" {
			newName := strings.TrimSpace(text)
			return m.run("Renamed segment.", func(ctx context.Context, _ *service.TaskStore, ss *service.SegmentStore) error {
				return ss.EditSegment(ctx, target.segment, newName)
			})
		}
		patch := domain.Patch{Text: &text}
		return m.run("", func(ctx context.Context, ts *service.TaskStore, _ *service.SegmentStore) error {
			if target.isSubTask() {
				return ts.EditSubTask(ctx, target.taskID, target.subID, patch)
			}
			return ts.EditTask(ctx, target.taskID, patch)
		})
	}
	return nil
}

func nextStatus(s domain.Status) domain.Status {
	i := slices.Index(domain.ValidStatuses, s)
	return domain.ValidStatuses[(i+1)%len(domain.ValidStatuses)]
}

// nextSegment cycles All → first segment → … → last segment → All.
func nextSegment(segments []string, current string) string {
	i := slices.Index(segments, current)
	if i+1 < len(segments) {
		return segments[i+1]
	}
	return domain.SegmentAll
}

func (m *boardModel) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewSidebar(), "  ", m.viewRows())
	return lipgloss.JoinVertical(lipgloss.Left, body, "", m.viewFooter())
}

func (m *boardModel) viewSidebar() string {
	var b strings.Builder
	b.WriteString(formatter.StyleHeader.Render("JUNO") + "\n\n")
	for i, sel := range m.selectors() {
		label := sel.String()
		switch {
		case i == m.selIdx && m.focus == paneSidebar:
			b.WriteString(formatter.StyleHeader.Render("▸ " + label))
		case i == m.selIdx:
			b.WriteString(formatter.StyleBold.Render("▸ " + label))
		case sel.Kind == view.KindSegment:
			b.WriteString("  " + formatter.StylePurple.Render(label))
		default:
			b.WriteString("  " + formatter.StyleFg.Render(label))
		}
		b.WriteString("\n")
		if i == 1 {
			b.WriteString(formatter.Dim(strings.Repeat("─", sidebarWidth-4)) + "\n")
		}
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *boardModel) viewRows() string {
	var b strings.Builder
	now := m.now()
	sel := m.selector()

	var items []view.Item
	for _, r := range m.rows {
		if !r.nested {
			items = append(items, view.Item{Task: &domain.Task{Entry: r.entry}})
		}
	}
	b.WriteString(formatter.Header(sel.String()) + "\n")
	b.WriteString(formatter.FormatSummary(view.Summarize(items)) + "\n\n")

	if len(m.rows) == 0 {
		b.WriteString(formatter.Dim("Nothing here. Press a to add a task."))
		return b.String()
	}

	for i, r := range m.rows {
		marker := "  "
		if i == m.cursor && m.focus == paneList {
			marker = formatter.StyleHeader.Render("› ")
		}
		indent := ""
		if r.nested {
			indent = formatter.Dim("  └ ")
		}
		text := formatter.EntryText(r.entry)
		if r.parentText != "" {
			text += formatter.Dim("  ↳ " + r.parentText)
		}
		fmt.Fprintf(&b, "%s%s%s %s  %s  %s\n",
			marker, indent,
			formatter.Checkbox(r.entry.Completed),
			text,
			formatter.PriorityBadge(r.entry.Priority),
			formatter.Deadline(r.entry, now),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *boardModel) viewFooter() string {
	var lines []string
	switch {
	case m.mode != modeNormal:
		lines = append(lines, m.input.View(), formatter.Dim("enter to save · esc to cancel"))
		return strings.Join(lines, "\n")
	case m.busy:
		lines = append(lines, m.spinner.View()+" Saving…")
	case m.err != nil:
		lines = append(lines, formatter.StyleRed.Render(errorLine(m.err)))
	case m.status != "":
		lines = append(lines, formatter.StyleGreen.Render(m.status))
	}
	if n := len(m.ws.Pending()); n > 0 {
		lines = append(lines, formatter.StyleYellow.Render(fmt.Sprintf("%d unsaved change(s) · R to retry", n)))
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

// errorLine keeps the first line of err; joined persistence errors can run
// long.
func errorLine(err error) string {
	var perr *service.PersistenceError
	if errors.As(err, &perr) {
		return "Not saved: " + perr.Err.Error()
	}
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return msg
}
