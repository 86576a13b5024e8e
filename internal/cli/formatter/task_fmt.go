package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/view"
)

var taskHeaders = []string{"ID", "", "TEXT", "STATUS", "PRIORITY", "DUE", "SEGMENT"}

// FormatTaskList renders the rows of one view inside a titled box. Task
// rows are followed by their sub-tasks, indented. A sub-task surfaced on
// its own (Today view) names its parent instead.
func FormatTaskList(title string, items []view.Item, now time.Time) string {
	if len(items) == 0 {
		return RenderBox(title, Dim("Nothing here."))
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		if it.IsSubTask() {
			text := EntryText(it.SubTask.Entry) + Dim("  ↳ "+it.Parent.Text)
			rows = append(rows, entryRow(it.SubTask.Entry, text, it.Parent.Segment, now))
			continue
		}
		t := it.Task
		rows = append(rows, entryRow(t.Entry, EntryText(t.Entry), t.Segment, now))
		for i, s := range t.SubTasks {
			branch := treeBranch
			if i == len(t.SubTasks)-1 {
				branch = treeCorner
			}
			rows = append(rows, entryRow(s.Entry, Dim(branch)+EntryText(s.Entry), "", now))
		}
	}

	body := RenderTable(taskHeaders, rows) + "\n" + FormatSummary(view.Summarize(items))
	return RenderBox(title, body)
}

func entryRow(e domain.Entry, text, segment string, now time.Time) []string {
	seg := ""
	if segment != "" {
		seg = SegmentBadge(segment)
	}
	return []string{
		Dim(ShortID(e.ID)),
		Checkbox(e.Completed),
		text,
		StatusPill(e.Status),
		PriorityBadge(e.Priority),
		Deadline(e, now),
		seg,
	}
}

// FormatSummary renders the totals line shown under a view.
func FormatSummary(s view.Summary) string {
	if s.Total == 0 {
		return Dim("0 items")
	}
	pct := float64(s.Completed) / float64(s.Total)
	return fmt.Sprintf("%s %s  %s",
		RenderProgress(pct, 20),
		Bold(fmt.Sprintf("%d/%d done", s.Completed, s.Total)),
		Dim(fmt.Sprintf("%d open", s.Incomplete)),
	)
}

// FormatTaskDetail renders one task with its metadata and sub-task tree.
func FormatTaskDetail(t *domain.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString(Bold(t.Text) + "\n\n")

	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render(fmt.Sprintf("%-8s", label)), value))
	}
	field("ID", Dim(t.ID))
	field("STATUS", StatusPill(t.Status))
	field("PRIORITY", PriorityBadge(t.Priority))
	field("DUE", Deadline(t.Entry, now))
	field("SEGMENT", SegmentBadge(t.Segment))
	field("CREATED", StyleFg.Render(t.CreatedAt.In(now.Location()).Format("Jan 2, 2006 15:04")))

	if len(t.SubTasks) > 0 {
		items := make([]TreeItem, 0, len(t.SubTasks))
		for i, s := range t.SubTasks {
			detail := string(s.Priority)
			if s.Deadline != nil {
				detail += " · " + RelativeDateFrom(*s.Deadline, now)
			}
			items = append(items, TreeItem{
				ID:     s.ID,
				Title:  s.Text,
				Level:  1,
				IsLast: i == len(t.SubTasks)-1,
				Done:   s.Completed,
				Detail: detail,
			})
		}
		b.WriteString("\n" + Header("Sub-tasks") + "\n")
		b.WriteString(RenderTree(items))
	}
	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}

// FormatSegmentList renders segments in order with the number of tasks in
// each. Tasks in no segment are counted under All.
func FormatSegmentList(segments []string, tasks []*domain.Task) string {
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.Segment]++
	}
	rows := make([][]string, 0, len(segments)+1)
	for i, name := range segments {
		rows = append(rows, []string{Dim(fmt.Sprintf("%d", i+1)), SegmentBadge(name), fmt.Sprintf("%d", counts[name])})
	}
	rows = append(rows, []string{Dim("-"), SegmentBadge(domain.SegmentAll), fmt.Sprintf("%d", counts[domain.SegmentAll])})
	return RenderBox("Segments", RenderTable([]string{"#", "NAME", "TASKS"}, rows))
}
