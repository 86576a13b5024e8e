package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/view"
	"github.com/charmbracelet/lipgloss"
)

// ShortIDLen is how many trailing id characters the CLI prints. Task ids
// are UUIDv7, whose leading characters are a timestamp and collide for
// tasks created close together, so the tail is shown instead.
const ShortIDLen = 8

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(0, 1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// ShortID returns the last ShortIDLen characters of an id.
func ShortID(id string) string {
	if len(id) > ShortIDLen {
		return id[len(id)-ShortIDLen:]
	}
	return id
}

// RelativeDateFrom describes t by calendar days relative to now, both
// taken in now's location.
func RelativeDateFrom(t time.Time, now time.Time) string {
	days := calendarDays(t, now)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days < 0 && days > -14:
		return fmt.Sprintf("%dd ago", -days)
	default:
		return t.In(now.Location()).Format("Jan 2, 2006")
	}
}

func calendarDays(t, now time.Time) int {
	loc := now.Location()
	y1, m1, d1 := t.In(loc).Date()
	y2, m2, d2 := now.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// Deadline renders an entry's deadline with urgency coloring: overdue and
// due-today in red, due within a week in yellow.
func Deadline(e domain.Entry, now time.Time) string {
	if e.Deadline == nil {
		return StyleDim.Render("--")
	}
	text := RelativeDateFrom(*e.Deadline, now)
	if e.Completed {
		return StyleDim.Render(text)
	}
	switch days := calendarDays(*e.Deadline, now); {
	case view.Overdue(e, now):
		return StyleRed.Render(text + " !")
	case days == 0:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	}
	return StyleFg.Render(text)
}

// EntryText renders task or sub-task text, struck through once completed.
func EntryText(e domain.Entry) string {
	if e.Completed {
		return StyleStrike.Render(e.Text)
	}
	return StyleFg.Render(e.Text)
}
