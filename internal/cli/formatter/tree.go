package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a task tree: a task at level 0 or one of its
// sub-tasks at level 1.
type TreeItem struct {
	ID     string
	Title  string
	Level  int
	IsLast bool
	Done   bool
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
)

// RenderTree renders items with box-drawing connectors and right-aligned
// detail badges.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	widest := 0
	for i, item := range items {
		prefix := ""
		if item.Level > 0 {
			prefix = strings.Repeat("   ", item.Level-1) + treeBranch
			if item.IsLast {
				prefix = strings.Repeat("   ", item.Level-1) + treeCorner
			}
		}
		title := StyleFg.Render(item.Title)
		if item.Done {
			title = StyleGreen.Render("✔ ") + StyleStrike.Render(item.Title)
		}
		if item.ID != "" {
			title = StyleDim.Render(ShortID(item.ID)+" ") + title
		}
		contents[i] = StyleDim.Render(prefix) + title
		widest = max(widest, lipgloss.Width(contents[i]))
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(contents[i])
		if item.Detail != "" {
			b.WriteString(strings.Repeat(" ", widest-lipgloss.Width(contents[i])+colGap))
			b.WriteString(StyleBlue.Render("[ " + item.Detail + " ]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
