package repository

import (
	"context"
	"errors"

	"github.com/jaekwang-park/todo-list/internal/model"
)

var ErrNotFound = errors.New("todo not found")

type TodoRepository interface {
	// Paginate lists todos filtered only by completion state.
	Paginate(ctx context.Context, params model.ListParams) (model.Page, error)
	// Filter lists todos matching every supplied filter field.
	Filter(ctx context.Context, params model.ListParams) (model.Page, error)
	GetByID(ctx context.Context, id string) (model.Todo, error)
	Create(ctx context.Context, title, description string) (model.Todo, error)
	Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error)
	Delete(ctx context.Context, id string) (model.Todo, error)
	BulkUpdate(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error)
	BulkDelete(ctx context.Context, ids []string) ([]model.Todo, error)
}

type updater interface {
	Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error)
}

// bulkUpdate applies patch to each id in turn. It is not atomic: ids that do
// not exist are skipped, and per-id failures are collected while the loop
// carries on, so callers get every row that did change plus the joined error.
func bulkUpdate(ctx context.Context, r updater, ids []string, patch model.TodoPatch) ([]model.Todo, error) {
	updated := make([]model.Todo, 0, len(ids))
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		todo, err := r.Update(ctx, id, patch)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		updated = append(updated, todo)
	}
	return updated, errors.Join(errs...)
}

// paginateParams drops the text filters so Paginate only honours completion.
func paginateParams(params model.ListParams) model.ListParams {
	params.Filter = model.TodoFilter{Completed: params.Filter.Completed}
	return params
}
