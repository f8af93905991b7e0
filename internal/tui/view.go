package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jaekwang-park/todo-list/internal/listctl"
	"github.com/jaekwang-park/todo-list/internal/model"
)

// rows reserved for header, status and help lines
const chromeLines = 6

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch m.ctl.Modal {
	case listctl.ModalCreate:
		b.WriteString(m.createView())
	case listctl.ModalBulk:
		b.WriteString(m.bulkView())
	case listctl.ModalFilters:
		b.WriteString(m.filtersView())
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m *Model) header() string {
	done := 0
	for _, t := range m.ctl.Items {
		if t.Completed {
			done++
		}
	}
	open := len(m.ctl.Items) - done

	parts := []string{
		titleStyle.Render("To-Do List"),
		pendingStyle.Render(fmt.Sprintf("%d open", open)),
		successStyle.Render(fmt.Sprintf("%d done", done)),
	}
	if n := len(m.ctl.SelectedIDs()); n > 0 {
		parts = append(parts, accentStyle.Render(fmt.Sprintf("%d selected", n)))
	}
	if !m.ctl.Filters.IsEmpty() {
		parts = append(parts, mutedStyle.Render("filtered"))
	}
	parts = append(parts, mutedStyle.Render(fmt.Sprintf("sort: %s %s", m.ctl.SortBy, m.ctl.SortOrder)))
	return strings.Join(parts, "  ")
}

func (m *Model) listView() string {
	if m.ctl.ShowRetry() {
		return bannerStyle.Render(errorStyle.Render(m.ctl.Err)+"\n"+mutedStyle.Render("press r to retry")) + "\n"
	}

	var b strings.Builder
	if len(m.ctl.Items) == 0 && !m.ctl.Loading {
		b.WriteString(mutedStyle.Render("Nothing to do. Press n to add a to-do."))
		b.WriteString("\n")
	}

	start, end := m.window()
	for i := start; i < end; i++ {
		b.WriteString(m.row(i, m.ctl.Items[i]))
		b.WriteString("\n")
	}

	switch {
	case m.ctl.Loading:
		b.WriteString(m.spinner.View() + mutedStyle.Render(" loading..."))
		b.WriteString("\n")
	case m.ctl.Err != "":
		b.WriteString(errorStyle.Render(m.ctl.Err) + mutedStyle.Render("  (r to retry)"))
		b.WriteString("\n")
	case !m.ctl.HasMore && len(m.ctl.Items) > 0:
		b.WriteString(mutedStyle.Render("end of list"))
		b.WriteString("\n")
	}
	return b.String()
}

// window returns the slice of items that fits on screen around the cursor.
func (m *Model) window() (int, int) {
	visible := max(m.height-chromeLines, 1)
	n := len(m.ctl.Items)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	return start, min(start+visible, n)
}

func (m *Model) row(i int, t model.Todo) string {
	mark := markIdle
	if m.ctl.IsSelected(t.ID) {
		mark = accentStyle.Render(markSelected)
	}

	box := boxUnchecked
	title := t.Title
	if t.Completed {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}
	if m.editing && t.ID == m.editID {
		title = m.editInput.View()
	}

	line := fmt.Sprintf("%s %s %s", mark, box, title)
	if i == m.cursor {
		return cursorStyle.Render(">") + " " + line
	}
	return "  " + line
}

func (m *Model) createView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New to-do"))
	b.WriteString("\n\n")
	b.WriteString(fieldLabel("Title", m.createFocus == 0))
	b.WriteString(m.createTitle.View())
	b.WriteString("\n")
	b.WriteString(fieldLabel("Description", m.createFocus == 1))
	b.WriteString(m.createDesc.View())
	b.WriteString("\n")
	if n := m.ctl.Pending(); n > 0 {
		b.WriteString("\n")
		b.WriteString(successStyle.Render(fmt.Sprintf("%d created, shown when you close this form", n)))
	}
	b.WriteString(m.modalError())
	return modalStyle.Render(b.String()) + "\n"
}

func (m *Model) bulkView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Bulk action on %d to-dos", len(m.ctl.SelectedIDs()))))
	b.WriteString("\n\n")
	for i, label := range bulkLabels {
		if bulkAction(i) == m.bulkChoice {
			b.WriteString(focusedStyle.Render("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}
	b.WriteString(m.modalError())
	return modalStyle.Render(b.String()) + "\n"
}

func (m *Model) filtersView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Filters"))
	b.WriteString("\n\n")
	b.WriteString(fieldLabel("Title", m.filterFocus == fieldTitle))
	b.WriteString(m.filterTitle.View())
	b.WriteString("\n")
	b.WriteString(fieldLabel("Description", m.filterFocus == fieldDescription))
	b.WriteString(m.filterDesc.View())
	b.WriteString("\n")
	b.WriteString(fieldLabel("Completed", m.filterFocus == fieldCompleted))
	b.WriteString(choice(completedChoices[m.filterCompleted]))
	b.WriteString("\n")
	b.WriteString(fieldLabel("Sort by", m.filterFocus == fieldSortBy))
	b.WriteString(choice(string(sortByChoices[m.filterSortBy])))
	b.WriteString("\n")
	b.WriteString(fieldLabel("Order", m.filterFocus == fieldSortOrder))
	b.WriteString(choice(string(sortOrderChoices[m.filterSortOrder])))
	b.WriteString("\n")
	b.WriteString(m.modalError())
	return modalStyle.Render(b.String()) + "\n"
}

func (m *Model) modalError() string {
	if m.ctl.ModalErr == "" {
		return ""
	}
	return "\n" + errorStyle.Render(m.ctl.ModalErr)
}

func fieldLabel(name string, focused bool) string {
	label := fmt.Sprintf("%-12s", name)
	if focused {
		return focusedStyle.Render(label)
	}
	return mutedStyle.Render(label)
}

func choice(v string) string {
	return "< " + v + " >"
}

func (m *Model) helpView() string {
	var bindings []key.Binding
	switch {
	case m.editing:
		bindings = []key.Binding{m.keys.Submit, m.keys.Cancel}
	case m.ctl.Modal == listctl.ModalBulk:
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Submit, m.keys.Cancel}
	case m.ctl.Modal == listctl.ModalCreate:
		bindings = []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Cancel}
	case m.ctl.Modal == listctl.ModalFilters:
		bindings = []key.Binding{m.keys.Next, m.keys.Prev, m.keys.Cycle, m.keys.Submit, m.keys.Cancel}
	default:
		bindings = m.keys.listHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Width(max(m.width, 20)).Render(strings.Join(parts, " • "))
}

