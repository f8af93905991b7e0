package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/todo-list/internal/model"
)

type PostgresTodoRepository struct {
	db *sql.DB
}

func NewPostgresTodo(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db}
}

func (r *PostgresTodoRepository) Paginate(ctx context.Context, params model.ListParams) (model.Page, error) {
	return r.list(ctx, paginateParams(params))
}

func (r *PostgresTodoRepository) Filter(ctx context.Context, params model.ListParams) (model.Page, error) {
	return r.list(ctx, params)
}

func (r *PostgresTodoRepository) list(ctx context.Context, params model.ListParams) (model.Page, error) {
	params = params.Normalize()
	q := buildListQuery(params)

	var total int
	if err := r.db.QueryRowContext(ctx, q.countSQL, q.countArgs...).Scan(&total); err != nil {
		return model.Page{}, fmt.Errorf("failed to count todos: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, q.selectSQL, q.selectArgs...)
	if err != nil {
		return model.Page{}, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos, err := scanTodos(rows)
	if err != nil {
		return model.Page{}, err
	}

	return model.Page{
		ToDos:      todos,
		Total:      total,
		Page:       params.Page,
		TotalPages: model.TotalPages(total, params.Limit),
	}, nil
}

func (r *PostgresTodoRepository) GetByID(ctx context.Context, id string) (model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`

	return scanTodo(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresTodoRepository) Create(ctx context.Context, title, description string) (model.Todo, error) {
	query := `
		INSERT INTO todos (id, title, description, completed, created_date, updated_date)
		VALUES ($1, $2, $3, FALSE, $4, $4)
		RETURNING ` + todoColumns

	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, query, uuid.NewString(), title, description, now)

	return scanTodo(row)
}

// Update merges patch over the stored row in a single statement; NULL
// parameters keep the current column value.
func (r *PostgresTodoRepository) Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	query := `
		UPDATE todos
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    completed = COALESCE($4, completed),
		    updated_date = GREATEST(now(), updated_date + interval '1 microsecond')
		WHERE id = $1
		RETURNING ` + todoColumns

	row := r.db.QueryRowContext(ctx, query, id,
		nullString(patch.Title), nullString(patch.Description), nullBool(patch.Completed),
	)

	return scanTodo(row)
}

func (r *PostgresTodoRepository) Delete(ctx context.Context, id string) (model.Todo, error) {
	query := `DELETE FROM todos WHERE id = $1 RETURNING ` + todoColumns

	return scanTodo(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresTodoRepository) BulkUpdate(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error) {
	return bulkUpdate(ctx, r, ids, patch)
}

func (r *PostgresTodoRepository) BulkDelete(ctx context.Context, ids []string) ([]model.Todo, error) {
	if len(ids) == 0 {
		return []model.Todo{}, nil
	}

	query, args := buildBulkDelete(ids)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk delete todos: %w", err)
	}
	defer rows.Close()

	return scanTodos(rows)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTodo(row scannable) (model.Todo, error) {
	var t model.Todo
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed,
		&t.CreatedDate, &t.UpdatedDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to scan todo: %w", err)
	}
	return t, nil
}

func scanTodos(rows *sql.Rows) ([]model.Todo, error) {
	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// ensure compile-time interface compliance
var _ TodoRepository = (*PostgresTodoRepository)(nil)
