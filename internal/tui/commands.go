package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jaekwang-park/todo-list/internal/listctl"
	"github.com/jaekwang-park/todo-list/internal/model"
)

type loadedMsg struct {
	page   int
	result listctl.LoadResult
}

type updatedMsg struct {
	id   string
	todo model.Todo
	err  error
}

type deletedMsg struct {
	id  string
	err error
}

type bulkUpdatedMsg struct {
	ids   []string
	todos []model.Todo
	err   error
}

type bulkDeletedMsg struct {
	ids []string
	err error
}

type createdMsg struct {
	todo model.Todo
	err  error
}

func (m *Model) nextLoad() tea.Cmd {
	req, ok := m.ctl.NextLoad()
	return m.loadIf(req, ok)
}

func (m *Model) loadIf(req listctl.LoadRequest, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		page, err := api.List(ctx, req.Query)
		return loadedMsg{
			page:   req.Query.Page,
			result: listctl.LoadResult{Generation: req.Generation, Page: page, Err: err},
		}
	}
}

func (m *Model) update(id string, patch model.TodoPatch) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		todo, err := api.Update(ctx, id, patch)
		return updatedMsg{id: id, todo: todo, err: err}
	}
}

func (m *Model) delete(id string) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		_, err := api.Delete(ctx, id)
		return deletedMsg{id: id, err: err}
	}
}

func (m *Model) bulkUpdate(ids []string, patch model.TodoPatch) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		todos, err := api.BulkUpdate(ctx, ids, patch)
		return bulkUpdatedMsg{ids: ids, todos: todos, err: err}
	}
}

// bulkDelete removes the requested ids locally on success, including ids the
// server no longer had.
func (m *Model) bulkDelete(ids []string) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		_, err := api.BulkDelete(ctx, ids)
		return bulkDeletedMsg{ids: ids, err: err}
	}
}

func (m *Model) create(title, description string) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		todo, err := api.Create(ctx, title, description)
		return createdMsg{todo: todo, err: err}
	}
}

// Run starts the program on the alternate screen and blocks until it quits.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
