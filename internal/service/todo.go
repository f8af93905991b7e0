package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jaekwang-park/todo-list/internal/model"
	"github.com/jaekwang-park/todo-list/internal/repository"
)

// PageCache stores list results between mutations. Implementations must be
// safe for concurrent use.
type PageCache interface {
	Get(ctx context.Context, key string) (model.Page, bool, error)
	Set(ctx context.Context, key string, page model.Page) error
	Invalidate(ctx context.Context) error
}

type listKind string

const (
	listPaginated listKind = "paginated"
	listFiltered  listKind = "filtered"
)

type CreateTodoInput struct {
	Title       string
	Description string
}

type TodoService struct {
	repo   repository.TodoRepository
	logger *slog.Logger
	cache  PageCache
	sf     singleflight.Group

	// cacheMu orders cache writes against invalidation. cacheGen changes on
	// every invalidation; a fill only stores its page if the generation it
	// started under is still current.
	cacheMu  sync.RWMutex
	cacheGen uint64
}

type Option func(*TodoService)

// WithCache enables read-through caching of list pages.
func WithCache(c PageCache) Option {
	return func(s *TodoService) { s.cache = c }
}

func NewTodoService(repo repository.TodoRepository, logger *slog.Logger, opts ...Option) *TodoService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &TodoService{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPaginated lists todos filtered only by completion. Store failures are
// logged and answered with an empty page rather than an error.
func (s *TodoService) GetPaginated(ctx context.Context, params model.ListParams) model.Page {
	params = params.Normalize()
	params.Filter = model.TodoFilter{Completed: params.Filter.Completed}

	return s.list(ctx, listPaginated, params, s.repo.Paginate)
}

// GetFiltered lists todos matching every supplied filter. Without any filter
// it behaves exactly like GetPaginated.
func (s *TodoService) GetFiltered(ctx context.Context, params model.ListParams) model.Page {
	params = params.Normalize()
	if params.Filter.IsEmpty() {
		return s.list(ctx, listPaginated, params, s.repo.Paginate)
	}

	return s.list(ctx, listFiltered, params, s.repo.Filter)
}

type listFunc func(ctx context.Context, params model.ListParams) (model.Page, error)

func (s *TodoService) list(ctx context.Context, kind listKind, params model.ListParams, fetch listFunc) model.Page {
	if s.cache == nil {
		page, err := fetch(ctx, params)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to list todos", "op", string(kind), "page", params.Page, "error", err)
			return model.EmptyPage(params.Page)
		}
		return page
	}

	gen := s.generation()
	key := cacheKey(kind, params)
	// The generation in the flight key keeps a fill that started before a
	// write from answering callers that arrive after it.
	flight := fmt.Sprintf("%d|%s", gen, key)

	// The shared fill must outlive any single caller's cancellation.
	fillCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(flight, func() (any, error) {
		if page, ok, err := s.cache.Get(fillCtx, key); err != nil {
			s.logger.WarnContext(fillCtx, "page cache read failed", "key", key, "error", err)
		} else if ok {
			return page, nil
		}

		page, err := fetch(fillCtx, params)
		if err != nil {
			return nil, err
		}
		s.store(fillCtx, gen, key, page)
		return page, nil
	})

	select {
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "list abandoned", "op", string(kind), "page", params.Page, "error", ctx.Err())
		return model.EmptyPage(params.Page)
	case res := <-ch:
		if res.Err != nil {
			s.logger.ErrorContext(ctx, "failed to list todos", "op", string(kind), "page", params.Page, "error", res.Err)
			return model.EmptyPage(params.Page)
		}
		return res.Val.(model.Page)
	}
}

func (s *TodoService) generation() uint64 {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cacheGen
}

// store caches page unless an invalidation happened since gen was read.
func (s *TodoService) store(ctx context.Context, gen uint64, key string, page model.Page) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	if s.cacheGen != gen {
		s.logger.DebugContext(ctx, "page cache fill discarded", "key", key)
		return
	}
	if err := s.cache.Set(ctx, key, page); err != nil {
		s.logger.WarnContext(ctx, "page cache write failed", "key", key, "error", err)
	}
}

func (s *TodoService) GetByID(ctx context.Context, id string) (model.Todo, error) {
	todo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Todo{}, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "failed to get todo", "id", id, "error", err)
		return model.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, input CreateTodoInput) (model.Todo, error) {
	title := model.NormalizeText(input.Title)
	if title == "" {
		return model.Todo{}, invalidInput(MsgTitleRequired)
	}

	created, err := s.repo.Create(ctx, title, model.NormalizeText(input.Description))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create todo", "error", err)
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}

	s.invalidate(ctx)
	return created, nil
}

func (s *TodoService) Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return model.Todo{}, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Todo{}, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "failed to update todo", "id", id, "error", err)
		return model.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}

	s.invalidate(ctx)
	return updated, nil
}

func (s *TodoService) Delete(ctx context.Context, id string) (model.Todo, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Todo{}, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "failed to delete todo", "id", id, "error", err)
		return model.Todo{}, fmt.Errorf("failed to delete todo: %w", err)
	}

	s.invalidate(ctx)
	return deleted, nil
}

// BulkUpdate applies patch to each id in turn. The batch is not atomic: ids
// that do not exist or fail are skipped, and only the rows that changed are
// returned.
func (s *TodoService) BulkUpdate(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.BulkUpdate(ctx, ids, patch)
	if err != nil {
		s.logger.ErrorContext(ctx, "bulk update partially failed",
			"requested", len(ids),
			"updated", len(updated),
			"error", err,
		)
	}
	if updated == nil {
		updated = []model.Todo{}
	}

	if len(updated) > 0 {
		s.invalidate(ctx)
	}
	return updated, nil
}

func (s *TodoService) BulkDelete(ctx context.Context, ids []string) ([]model.Todo, error) {
	if len(ids) == 0 {
		return nil, invalidInput(MsgIDsRequired)
	}

	deleted, err := s.repo.BulkDelete(ctx, ids)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to bulk delete todos", "requested", len(ids), "error", err)
		return nil, fmt.Errorf("failed to bulk delete todos: %w", err)
	}

	s.invalidate(ctx)
	return deleted, nil
}

func (s *TodoService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cacheGen++
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "page cache invalidation failed", "error", err)
	}
}

func normalizePatch(patch model.TodoPatch) (model.TodoPatch, error) {
	if patch.Title != nil {
		title := model.NormalizeText(*patch.Title)
		if title == "" {
			return model.TodoPatch{}, invalidInput(MsgTitleEmpty)
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		desc := model.NormalizeText(*patch.Description)
		patch.Description = &desc
	}
	return patch, nil
}

func cacheKey(kind listKind, p model.ListParams) string {
	completed := "any"
	if p.Filter.Completed != nil {
		completed = fmt.Sprintf("%t", *p.Filter.Completed)
	}
	return fmt.Sprintf("%s:p=%d:l=%d:c=%s:s=%s:o=%s:t=%q:d=%q",
		kind, p.Page, p.Limit, completed, p.SortBy, p.SortOrder,
		p.Filter.Title, p.Filter.Description,
	)
}
