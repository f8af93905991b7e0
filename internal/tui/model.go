// Package tui renders the todo list in the terminal on top of listctl.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/jaekwang-park/todo-list/internal/client"
	"github.com/jaekwang-park/todo-list/internal/listctl"
	"github.com/jaekwang-park/todo-list/internal/model"
)

// API is the subset of the HTTP client the view drives.
type API interface {
	List(ctx context.Context, q client.ListQuery) (model.Page, error)
	Create(ctx context.Context, title, description string) (model.Todo, error)
	Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error)
	Delete(ctx context.Context, id string) (model.Todo, error)
	BulkUpdate(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error)
	BulkDelete(ctx context.Context, ids []string) ([]model.Todo, error)
}

var _ API = (*client.Client)(nil)

type bulkAction int

const (
	bulkComplete bulkAction = iota
	bulkReopen
	bulkDelete
)

var bulkLabels = []string{"Mark as completed", "Mark as not completed", "Delete selected"}

// filter form fields, in tab order
const (
	fieldTitle = iota
	fieldDescription
	fieldCompleted
	fieldSortBy
	fieldSortOrder
	fieldCount
)

var (
	completedChoices = []string{"any", "true", "false"}
	sortByChoices    = []model.SortField{model.SortByUpdatedDate, model.SortByCreatedDate, model.SortByTitle}
	sortOrderChoices = []model.SortOrder{model.SortDesc, model.SortAsc}
)

type Model struct {
	ctx    context.Context
	api    API
	ctl    *listctl.Controller
	logger *log.Logger
	keys   keyMap

	width  int
	height int
	cursor int

	spinner spinner.Model

	editing   bool
	editID    string
	editInput textinput.Model

	createTitle textinput.Model
	createDesc  textinput.Model
	createFocus int

	bulkChoice bulkAction

	filterTitle     textinput.Model
	filterDesc      textinput.Model
	filterFocus     int
	filterCompleted int
	filterSortBy    int
	filterSortOrder int
}

func New(ctx context.Context, api API, pageSize int, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return &Model{
		ctx:         ctx,
		api:         api,
		ctl:         listctl.New(pageSize),
		logger:      logger,
		keys:        defaultKeys(),
		height:      24,
		width:       80,
		spinner:     sp,
		editInput:   newInput("Title", 200),
		createTitle: newInput("Title", 200),
		createDesc:  newInput("Description (optional)", 500),
		filterTitle: newInput("Title contains", 100),
		filterDesc:  newInput("Description contains", 100),
	}
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

// Controller exposes the list state, mainly for tests.
func (m *Model) Controller() *listctl.Controller {
	return m.ctl
}

func (m *Model) Cursor() int {
	return m.cursor
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.nextLoad(), m.spinner.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if !m.ctl.ApplyLoad(msg.result) {
			m.logger.Debug("discarded stale page", "generation", msg.result.Generation)
			return m, nil
		}
		if msg.result.Err != nil {
			m.logger.Error("load failed", "page", msg.page, "err", msg.result.Err)
		}
		m.clampCursor()
		return m, nil

	case updatedMsg:
		if msg.err != nil {
			m.logger.Error("update failed", "id", msg.id, "err", msg.err)
			m.ctl.Fail(msg.err, listctl.MsgUpdateFailed)
			return m, nil
		}
		m.ctl.ApplyUpdate(msg.todo)
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.logger.Error("delete failed", "id", msg.id, "err", msg.err)
			m.ctl.Fail(msg.err, listctl.MsgDeleteFailed)
			return m, nil
		}
		req, ok := m.ctl.ApplyDelete(msg.id)
		m.clampCursor()
		return m, m.loadIf(req, ok)

	case bulkUpdatedMsg:
		if msg.err != nil {
			m.logger.Error("bulk update failed", "count", len(msg.ids), "err", msg.err)
			m.ctl.Fail(msg.err, listctl.MsgUpdateFailed)
			return m, nil
		}
		m.ctl.ApplyBulkUpdate(msg.todos)
		return m, nil

	case bulkDeletedMsg:
		if msg.err != nil {
			m.logger.Error("bulk delete failed", "count", len(msg.ids), "err", msg.err)
			m.ctl.Fail(msg.err, listctl.MsgDeleteFailed)
			return m, nil
		}
		req, ok := m.ctl.ApplyBulkDelete(msg.ids)
		m.clampCursor()
		return m, m.loadIf(req, ok)

	case createdMsg:
		if msg.err != nil {
			m.logger.Error("create failed", "err", msg.err)
			m.ctl.Fail(msg.err, listctl.MsgCreateFailed)
			return m, nil
		}
		m.ctl.QueueCreated(msg.todo)
		m.createTitle.SetValue("")
		m.createDesc.SetValue("")
		m.focusCreate(0)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.editing {
		return m.handleEditKey(msg)
	}
	switch m.ctl.Modal {
	case listctl.ModalCreate:
		return m.handleCreateKey(msg)
	case listctl.ModalBulk:
		return m.handleBulkKey(msg)
	case listctl.ModalFilters:
		return m.handleFiltersKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.ctl.Items)-1 {
			m.cursor++
		}
		if m.ctl.ShouldLoadMore(m.cursor) {
			return m, m.nextLoad()
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if t, ok := m.current(); ok {
			m.ctl.Toggle(t.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.SelectAll):
		m.ctl.SelectAll()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		done := !t.Completed
		return m, m.update(t.ID, model.TodoPatch{Completed: &done})

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.editing = true
		m.editID = t.ID
		m.editInput.SetValue(t.Title)
		m.editInput.CursorEnd()
		return m, m.editInput.Focus()

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.current(); ok {
			return m, m.delete(t.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Create):
		m.ctl.OpenCreate()
		return m, m.focusCreate(0)

	case key.Matches(msg, m.keys.Bulk):
		if m.ctl.OpenBulk() {
			m.bulkChoice = bulkComplete
		}
		return m, nil

	case key.Matches(msg, m.keys.Filters):
		m.ctl.OpenFilters()
		m.syncFilterForm()
		return m, m.focusFilter(fieldTitle)

	case key.Matches(msg, m.keys.Retry):
		if m.ctl.Err == "" {
			return m, nil
		}
		req, ok := m.ctl.Retry()
		return m, m.loadIf(req, ok)
	}
	return m, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		id, title := m.editID, m.editInput.Value()
		m.stopEditing()
		return m, m.update(id, model.TodoPatch{Title: &title})
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.editID = ""
	m.editInput.SetValue("")
	m.editInput.Blur()
}

func (m *Model) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctl.CloseModal()
		m.createTitle.Blur()
		m.createDesc.Blur()
		m.cursor = 0
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m, m.create(m.createTitle.Value(), m.createDesc.Value())
	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		return m, m.focusCreate(1 - m.createFocus)
	}

	var cmd tea.Cmd
	if m.createFocus == 0 {
		m.createTitle, cmd = m.createTitle.Update(msg)
	} else {
		m.createDesc, cmd = m.createDesc.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusCreate(i int) tea.Cmd {
	m.createFocus = i
	if i == 0 {
		m.createDesc.Blur()
		return m.createTitle.Focus()
	}
	m.createTitle.Blur()
	return m.createDesc.Focus()
}

func (m *Model) handleBulkKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctl.CloseModal()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.bulkChoice > bulkComplete {
			m.bulkChoice--
		}
	case key.Matches(msg, m.keys.Down):
		if m.bulkChoice < bulkDelete {
			m.bulkChoice++
		}
	case key.Matches(msg, m.keys.Submit):
		ids := m.ctl.SelectedIDs()
		switch m.bulkChoice {
		case bulkComplete, bulkReopen:
			done := m.bulkChoice == bulkComplete
			return m, m.bulkUpdate(ids, model.TodoPatch{Completed: &done})
		case bulkDelete:
			return m, m.bulkDelete(ids)
		}
	}
	return m, nil
}

func (m *Model) handleFiltersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctl.CloseModal()
		m.filterTitle.Blur()
		m.filterDesc.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m, m.applyFilters()
	case key.Matches(msg, m.keys.Next):
		return m, m.focusFilter((m.filterFocus + 1) % fieldCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.focusFilter((m.filterFocus + fieldCount - 1) % fieldCount)
	}

	var cmd tea.Cmd
	switch m.filterFocus {
	case fieldTitle:
		m.filterTitle, cmd = m.filterTitle.Update(msg)
	case fieldDescription:
		m.filterDesc, cmd = m.filterDesc.Update(msg)
	default:
		if key.Matches(msg, m.keys.Cycle) {
			step := 1
			if msg.String() == "left" {
				step = -1
			}
			m.cycleChoice(step)
		}
	}
	return m, cmd
}

func (m *Model) focusFilter(field int) tea.Cmd {
	m.filterFocus = field
	m.filterTitle.Blur()
	m.filterDesc.Blur()
	switch field {
	case fieldTitle:
		return m.filterTitle.Focus()
	case fieldDescription:
		return m.filterDesc.Focus()
	}
	return nil
}

func (m *Model) cycleChoice(step int) {
	wrap := func(v, n int) int { return ((v+step)%n + n) % n }
	switch m.filterFocus {
	case fieldCompleted:
		m.filterCompleted = wrap(m.filterCompleted, len(completedChoices))
	case fieldSortBy:
		m.filterSortBy = wrap(m.filterSortBy, len(sortByChoices))
	case fieldSortOrder:
		m.filterSortOrder = wrap(m.filterSortOrder, len(sortOrderChoices))
	}
}

// syncFilterForm loads the active filters into the form.
func (m *Model) syncFilterForm() {
	m.filterTitle.SetValue(m.ctl.Filters.Title)
	m.filterDesc.SetValue(m.ctl.Filters.Description)
	m.filterCompleted = 0
	if c := m.ctl.Filters.Completed; c != nil {
		if *c {
			m.filterCompleted = 1
		} else {
			m.filterCompleted = 2
		}
	}
	for i, s := range sortByChoices {
		if s == m.ctl.SortBy {
			m.filterSortBy = i
		}
	}
	for i, o := range sortOrderChoices {
		if o == m.ctl.SortOrder {
			m.filterSortOrder = i
		}
	}
}

func (m *Model) applyFilters() tea.Cmd {
	m.filterTitle.Blur()
	m.filterDesc.Blur()

	f := model.TodoFilter{
		Title:       strings.TrimSpace(m.filterTitle.Value()),
		Description: strings.TrimSpace(m.filterDesc.Value()),
		Completed:   model.ParseTriState(completedChoices[m.filterCompleted]),
	}
	m.ctl.SortBy = sortByChoices[m.filterSortBy]
	m.ctl.SortOrder = sortOrderChoices[m.filterSortOrder]
	m.cursor = 0

	req, ok := m.ctl.SetFilters(f)
	return m.loadIf(req, ok)
}

func (m *Model) current() (model.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.ctl.Items) {
		return model.Todo{}, false
	}
	return m.ctl.Items[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.ctl.Items) {
		m.cursor = len(m.ctl.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
