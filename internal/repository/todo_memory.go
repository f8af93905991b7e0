package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/todo-list/internal/model"
)

// MemoryTodoRepository keeps todos in process memory. It backs local runs
// without a database and the repository contract tests.
type MemoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]model.Todo
	now   func() time.Time
	newID func() string
}

type MemoryOption func(*MemoryTodoRepository)

// WithClock replaces the time source used to stamp dates.
func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryTodoRepository) { r.now = now }
}

// WithIDGenerator replaces the id source used by Create.
func WithIDGenerator(newID func() string) MemoryOption {
	return func(r *MemoryTodoRepository) { r.newID = newID }
}

func NewMemoryTodo(opts ...MemoryOption) *MemoryTodoRepository {
	r := &MemoryTodoRepository{
		todos: make(map[string]model.Todo),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryTodoRepository) Paginate(ctx context.Context, params model.ListParams) (model.Page, error) {
	return r.list(ctx, paginateParams(params))
}

func (r *MemoryTodoRepository) Filter(ctx context.Context, params model.ListParams) (model.Page, error) {
	return r.list(ctx, params)
}

func (r *MemoryTodoRepository) list(ctx context.Context, params model.ListParams) (model.Page, error) {
	if err := ctx.Err(); err != nil {
		return model.Page{}, err
	}
	params = params.Normalize()

	r.mu.RLock()
	matched := make([]model.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		if matches(t, params.Filter) {
			matched = append(matched, t)
		}
	}
	r.mu.RUnlock()

	sortTodos(matched, params.SortBy, params.SortOrder)

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)

	window := make([]model.Todo, end-start)
	copy(window, matched[start:end])

	return model.Page{
		ToDos:      window,
		Total:      total,
		Page:       params.Page,
		TotalPages: model.TotalPages(total, params.Limit),
	}, nil
}

func (r *MemoryTodoRepository) GetByID(ctx context.Context, id string) (model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok {
		return model.Todo{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryTodoRepository) Create(ctx context.Context, title, description string) (model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	t := model.Todo{
		ID:          r.newID(),
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedDate: now,
		UpdatedDate: now,
	}
	r.todos[t.ID] = t
	return t, nil
}

func (r *MemoryTodoRepository) Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.todos[id]
	if !ok {
		return model.Todo{}, ErrNotFound
	}

	updated := patch.Apply(existing)
	updated.UpdatedDate = nextStamp(r.now(), existing.UpdatedDate)
	r.todos[id] = updated
	return updated, nil
}

func (r *MemoryTodoRepository) Delete(ctx context.Context, id string) (model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return model.Todo{}, ErrNotFound
	}
	delete(r.todos, id)
	return t, nil
}

func (r *MemoryTodoRepository) BulkUpdate(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error) {
	return bulkUpdate(ctx, r, ids, patch)
}

func (r *MemoryTodoRepository) BulkDelete(ctx context.Context, ids []string) ([]model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := make([]model.Todo, 0, len(ids))
	for _, id := range ids {
		t, ok := r.todos[id]
		if !ok {
			continue
		}
		delete(r.todos, id)
		deleted = append(deleted, t)
	}
	return deleted, nil
}

// nextStamp keeps updated_date strictly increasing even when the clock has
// not advanced since the previous write.
func nextStamp(now, prev time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

func matches(t model.Todo, f model.TodoFilter) bool {
	if f.Title != "" && !containsFold(t.Title, f.Title) {
		return false
	}
	if f.Description != "" && !containsFold(t.Description, f.Description) {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func sortTodos(todos []model.Todo, by model.SortField, order model.SortOrder) {
	compare := func(a, b model.Todo) int {
		switch by {
		case model.SortByTitle:
			return strings.Compare(a.Title, b.Title)
		case model.SortByCreatedDate:
			return a.CreatedDate.Compare(b.CreatedDate)
		default:
			return a.UpdatedDate.Compare(b.UpdatedDate)
		}
	}

	sort.SliceStable(todos, func(i, j int) bool {
		c := compare(todos[i], todos[j])
		if order == model.SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return todos[i].ID < todos[j].ID
	})
}

var _ TodoRepository = (*MemoryTodoRepository)(nil)
