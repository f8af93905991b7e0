package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jaekwang-park/todo-list/internal/model"
	"github.com/jaekwang-park/todo-list/internal/repository"
	"github.com/jaekwang-park/todo-list/internal/service"
)

// mockTodoRepo implements repository.TodoRepository for testing
type mockTodoRepo struct {
	paginateFn   func(ctx context.Context, params model.ListParams) (model.Page, error)
	filterFn     func(ctx context.Context, params model.ListParams) (model.Page, error)
	getByIDFn    func(ctx context.Context, id string) (model.Todo, error)
	createFn     func(ctx context.Context, title, description string) (model.Todo, error)
	updateFn     func(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error)
	deleteFn     func(ctx context.Context, id string) (model.Todo, error)
	bulkUpdateFn func(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error)
	bulkDeleteFn func(ctx context.Context, ids []string) ([]model.Todo, error)
}

func (m *mockTodoRepo) Paginate(ctx context.Context, params model.ListParams) (model.Page, error) {
	return m.paginateFn(ctx, params)
}
func (m *mockTodoRepo) Filter(ctx context.Context, params model.ListParams) (model.Page, error) {
	return m.filterFn(ctx, params)
}
func (m *mockTodoRepo) GetByID(ctx context.Context, id string) (model.Todo, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockTodoRepo) Create(ctx context.Context, title, description string) (model.Todo, error) {
	return m.createFn(ctx, title, description)
}
func (m *mockTodoRepo) Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	return m.updateFn(ctx, id, patch)
}
func (m *mockTodoRepo) Delete(ctx context.Context, id string) (model.Todo, error) {
	return m.deleteFn(ctx, id)
}
func (m *mockTodoRepo) BulkUpdate(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error) {
	return m.bulkUpdateFn(ctx, ids, patch)
}
func (m *mockTodoRepo) BulkDelete(ctx context.Context, ids []string) ([]model.Todo, error) {
	return m.bulkDeleteFn(ctx, ids)
}

// fakeCache is an in-process PageCache recording its calls.
type fakeCache struct {
	mu          sync.Mutex
	pages       map[string]model.Page
	gets        int
	invalidated int
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: map[string]model.Page{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) (model.Page, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return model.Page{}, false, c.getErr
	}
	p, ok := c.pages[key]
	return p, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, page model.Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = page
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.pages = map[string]model.Page{}
	return nil
}

var now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleTodo() model.Todo {
	return model.Todo{
		ID:          "todo-1",
		Title:       "Buy groceries",
		Description: "Milk, eggs, bread",
		CreatedDate: now,
		UpdatedDate: now,
	}
}

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestGetPaginated(t *testing.T) {
	t.Run("passes normalized params and drops text filters", func(t *testing.T) {
		var got model.ListParams
		repo := &mockTodoRepo{
			paginateFn: func(ctx context.Context, params model.ListParams) (model.Page, error) {
				got = params
				return model.Page{ToDos: []model.Todo{sampleTodo()}, Total: 1, Page: 1, TotalPages: 1}, nil
			},
		}
		logger, _ := newTestLogger()
		svc := service.NewTodoService(repo, logger)

		page := svc.GetPaginated(context.Background(), model.ListParams{
			Filter: model.TodoFilter{Title: "ignored", Completed: boolPtr(true)},
		})

		if page.Total != 1 || len(page.ToDos) != 1 {
			t.Errorf("unexpected page: %+v", page)
		}
		if got.Page != 1 || got.Limit != 20 || got.SortBy != model.SortByUpdatedDate || got.SortOrder != model.SortDesc {
			t.Errorf("params not normalized: %+v", got)
		}
		if got.Filter.Title != "" || got.Filter.Completed == nil || !*got.Filter.Completed {
			t.Errorf("unexpected filter: %+v", got.Filter)
		}
	})

	t.Run("store error becomes empty page", func(t *testing.T) {
		repo := &mockTodoRepo{
			paginateFn: func(ctx context.Context, params model.ListParams) (model.Page, error) {
				return model.Page{}, fmt.Errorf("connection refused")
			},
		}
		logger, buf := newTestLogger()
		svc := service.NewTodoService(repo, logger)

		page := svc.GetPaginated(context.Background(), model.ListParams{Page: 4, Limit: 10})

		if page.Page != 4 || page.Total != 0 || page.TotalPages != 0 || page.ToDos == nil || len(page.ToDos) != 0 {
			t.Errorf("expected empty page 4, got %+v", page)
		}
		if !strings.Contains(buf.String(), "connection refused") {
			t.Errorf("expected error to be logged, got: %s", buf.String())
		}
	})
}

func TestGetFiltered(t *testing.T) {
	tests := []struct {
		name         string
		filter       model.TodoFilter
		wantFiltered bool
	}{
		{"no filter falls back to paginate", model.TodoFilter{}, false},
		{"title filter", model.TodoFilter{Title: "app"}, true},
		{"completed only", model.TodoFilter{Completed: boolPtr(false)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calledFilter, calledPaginate bool
			repo := &mockTodoRepo{
				filterFn: func(ctx context.Context, params model.ListParams) (model.Page, error) {
					calledFilter = true
					return model.EmptyPage(params.Page), nil
				},
				paginateFn: func(ctx context.Context, params model.ListParams) (model.Page, error) {
					calledPaginate = true
					return model.EmptyPage(params.Page), nil
				},
			}
			logger, _ := newTestLogger()
			svc := service.NewTodoService(repo, logger)

			svc.GetFiltered(context.Background(), model.ListParams{Filter: tt.filter})

			if calledFilter != tt.wantFiltered || calledPaginate == tt.wantFiltered {
				t.Errorf("filter=%v paginate=%v, want filtered=%v", calledFilter, calledPaginate, tt.wantFiltered)
			}
		})
	}
}

func TestGetFiltered_StoreErrorBecomesEmptyPage(t *testing.T) {
	repo := &mockTodoRepo{
		filterFn: func(ctx context.Context, params model.ListParams) (model.Page, error) {
			return model.Page{}, fmt.Errorf("db error")
		},
	}
	logger, _ := newTestLogger()
	svc := service.NewTodoService(repo, logger)

	page := svc.GetFiltered(context.Background(), model.ListParams{Page: 2, Filter: model.TodoFilter{Title: "x"}})

	if page.Page != 2 || page.Total != 0 || len(page.ToDos) != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name      string
		input     service.CreateTodoInput
		repoErr   error
		wantErr   error
		wantTitle string
	}{
		{
			name:      "success",
			input:     service.CreateTodoInput{Title: "Buy groceries", Description: "Milk"},
			wantTitle: "Buy groceries",
		},
		{
			name:      "title is trimmed",
			input:     service.CreateTodoInput{Title: "  Buy groceries  "},
			wantTitle: "Buy groceries",
		},
		{
			name:    "empty title",
			input:   service.CreateTodoInput{Title: ""},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "blank title",
			input:   service.CreateTodoInput{Title: "   "},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "repo error",
			input:   service.CreateTodoInput{Title: "Buy groceries"},
			repoErr: fmt.Errorf("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockTodoRepo{
				createFn: func(ctx context.Context, title, description string) (model.Todo, error) {
					if tt.repoErr != nil {
						return model.Todo{}, tt.repoErr
					}
					result := sampleTodo()
					result.Title = title
					result.Description = description
					return result, nil
				},
			}
			logger, _ := newTestLogger()
			svc := service.NewTodoService(repo, logger)

			got, err := svc.Create(context.Background(), tt.input)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				var inputErr *service.InputError
				if !errors.As(err, &inputErr) || inputErr.Message != service.MsgTitleRequired {
					t.Errorf("expected message %q, got %v", service.MsgTitleRequired, err)
				}
			case tt.repoErr != nil:
				if err == nil || !strings.Contains(err.Error(), "failed to create todo") {
					t.Fatalf("expected wrapped repo error, got %v", err)
				}
				if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrNotFound) {
					t.Errorf("repo error must not look like a client error: %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Title != tt.wantTitle {
					t.Errorf("expected title %q, got %q", tt.wantTitle, got.Title)
				}
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"found", nil, nil},
		{"not found", repository.ErrNotFound, service.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockTodoRepo{
				getByIDFn: func(ctx context.Context, id string) (model.Todo, error) {
					if tt.repoErr != nil {
						return model.Todo{}, tt.repoErr
					}
					return sampleTodo(), nil
				},
			}
			logger, _ := newTestLogger()
			svc := service.NewTodoService(repo, logger)

			_, err := svc.GetByID(context.Background(), "todo-1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		patch   model.TodoPatch
		repoErr error
		wantErr error
	}{
		{"success", model.TodoPatch{Title: strPtr("Updated")}, nil, nil},
		{"completed only", model.TodoPatch{Completed: boolPtr(true)}, nil, nil},
		{"empty title", model.TodoPatch{Title: strPtr("  ")}, nil, service.ErrInvalidInput},
		{"not found", model.TodoPatch{Title: strPtr("x")}, repository.ErrNotFound, service.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			repo := &mockTodoRepo{
				updateFn: func(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
					called = true
					if tt.repoErr != nil {
						return model.Todo{}, tt.repoErr
					}
					return patch.Apply(sampleTodo()), nil
				},
			}
			logger, _ := newTestLogger()
			svc := service.NewTodoService(repo, logger)

			_, err := svc.Update(context.Background(), "todo-1", tt.patch)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if errors.Is(tt.wantErr, service.ErrInvalidInput) && called {
				t.Error("repo must not be called for invalid input")
			}
		})
	}
}

func TestUpdate_StoreError(t *testing.T) {
	repo := &mockTodoRepo{
		updateFn: func(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
			return model.Todo{}, fmt.Errorf("db error")
		},
	}
	logger, buf := newTestLogger()
	svc := service.NewTodoService(repo, logger)

	_, err := svc.Update(context.Background(), "todo-1", model.TodoPatch{Completed: boolPtr(true)})
	if err == nil || errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !strings.Contains(buf.String(), "failed to update todo") {
		t.Errorf("expected error to be logged, got: %s", buf.String())
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"success", nil, nil},
		{"not found", repository.ErrNotFound, service.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockTodoRepo{
				deleteFn: func(ctx context.Context, id string) (model.Todo, error) {
					if tt.repoErr != nil {
						return model.Todo{}, tt.repoErr
					}
					return sampleTodo(), nil
				},
			}
			logger, buf := newTestLogger()
			svc := service.NewTodoService(repo, logger)

			deleted, err := svc.Delete(context.Background(), "todo-1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && deleted.ID != "todo-1" {
				t.Errorf("expected deleted snapshot, got %+v", deleted)
			}
			if tt.wantErr != nil && buf.Len() != 0 {
				t.Errorf("not found must not be logged as a fault: %s", buf.String())
			}
		})
	}
}

func TestBulkUpdate_PartialFailureIsTolerated(t *testing.T) {
	repo := &mockTodoRepo{
		bulkUpdateFn: func(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error) {
			return []model.Todo{patch.Apply(sampleTodo())}, fmt.Errorf("db error on todo-3")
		},
	}
	logger, buf := newTestLogger()
	svc := service.NewTodoService(repo, logger)

	updated, err := svc.BulkUpdate(context.Background(), []string{"todo-1", "todo-2", "todo-3"}, model.TodoPatch{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated) != 1 || !updated[0].Completed {
		t.Errorf("expected one updated row, got %+v", updated)
	}
	if !strings.Contains(buf.String(), "bulk update partially failed") {
		t.Errorf("expected partial failure to be logged, got: %s", buf.String())
	}
}

func TestBulkUpdate_InvalidTitle(t *testing.T) {
	repo := &mockTodoRepo{}
	logger, _ := newTestLogger()
	svc := service.NewTodoService(repo, logger)

	_, err := svc.BulkUpdate(context.Background(), []string{"todo-1"}, model.TodoPatch{Title: strPtr("")})
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBulkUpdate_NothingMatchedReturnsEmptySlice(t *testing.T) {
	repo := &mockTodoRepo{
		bulkUpdateFn: func(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error) {
			return nil, nil
		},
	}
	logger, _ := newTestLogger()
	svc := service.NewTodoService(repo, logger)

	updated, err := svc.BulkUpdate(context.Background(), []string{"missing"}, model.TodoPatch{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil || len(updated) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", updated)
	}
}

func TestBulkDelete(t *testing.T) {
	t.Run("empty ids", func(t *testing.T) {
		logger, _ := newTestLogger()
		svc := service.NewTodoService(&mockTodoRepo{}, logger)

		_, err := svc.BulkDelete(context.Background(), nil)
		if !errors.Is(err, service.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("store error", func(t *testing.T) {
		repo := &mockTodoRepo{
			bulkDeleteFn: func(ctx context.Context, ids []string) ([]model.Todo, error) {
				return nil, fmt.Errorf("db error")
			},
		}
		logger, _ := newTestLogger()
		svc := service.NewTodoService(repo, logger)

		_, err := svc.BulkDelete(context.Background(), []string{"todo-1"})
		if err == nil || errors.Is(err, service.ErrInvalidInput) {
			t.Errorf("expected internal error, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		repo := &mockTodoRepo{
			bulkDeleteFn: func(ctx context.Context, ids []string) ([]model.Todo, error) {
				return []model.Todo{sampleTodo()}, nil
			},
		}
		logger, _ := newTestLogger()
		svc := service.NewTodoService(repo, logger)

		deleted, err := svc.BulkDelete(context.Background(), []string{"todo-1", "missing"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deleted) != 1 {
			t.Errorf("expected 1 deleted, got %d", len(deleted))
		}
	})
}

func TestCache_ReadThroughAndInvalidate(t *testing.T) {
	calls := 0
	repo := &mockTodoRepo{
		paginateFn: func(ctx context.Context, params model.ListParams) (model.Page, error) {
			calls++
			return model.Page{ToDos: []model.Todo{sampleTodo()}, Total: 1, Page: params.Page, TotalPages: 1}, nil
		},
		createFn: func(ctx context.Context, title, description string) (model.Todo, error) {
			return sampleTodo(), nil
		},
	}
	cache := newFakeCache()
	logger, _ := newTestLogger()
	svc := service.NewTodoService(repo, logger, service.WithCache(cache))

	ctx := context.Background()
	svc.GetPaginated(ctx, model.ListParams{Page: 1, Limit: 10})
	svc.GetPaginated(ctx, model.ListParams{Page: 1, Limit: 10})

	if calls != 1 {
		t.Errorf("expected second read served from cache, repo called %d times", calls)
	}

	if _, err := svc.Create(ctx, service.CreateTodoInput{Title: "new"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if cache.invalidated != 1 {
		t.Errorf("expected cache invalidated once, got %d", cache.invalidated)
	}

	svc.GetPaginated(ctx, model.ListParams{Page: 1, Limit: 10})
	if calls != 2 {
		t.Errorf("expected repo hit after invalidation, repo called %d times", calls)
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	calls := 0
	repo := &mockTodoRepo{
		paginateFn: func(ctx context.Context, params model.ListParams) (model.Page, error) {
			calls++
			return model.Page{}, fmt.Errorf("db error")
		},
	}
	cache := newFakeCache()
	logger, _ := newTestLogger()
	svc := service.NewTodoService(repo, logger, service.WithCache(cache))

	svc.GetPaginated(context.Background(), model.ListParams{Page: 1})
	svc.GetPaginated(context.Background(), model.ListParams{Page: 1})

	if calls != 2 {
		t.Errorf("expected failed reads to bypass cache, repo called %d times", calls)
	}
	if len(cache.pages) != 0 {
		t.Errorf("expected nothing cached, got %v", cache.pages)
	}
}

func TestCache_ReadErrorFallsBackToStore(t *testing.T) {
	repo := &mockTodoRepo{
		paginateFn: func(ctx context.Context, params model.ListParams) (model.Page, error) {
			return model.Page{ToDos: []model.Todo{sampleTodo()}, Total: 1, Page: 1, TotalPages: 1}, nil
		},
	}
	cache := newFakeCache()
	cache.getErr = fmt.Errorf("redis down")
	logger, _ := newTestLogger()
	svc := service.NewTodoService(repo, logger, service.WithCache(cache))

	page := svc.GetPaginated(context.Background(), model.ListParams{Page: 1})
	if page.Total != 1 {
		t.Errorf("expected store result, got %+v", page)
	}
}

func TestService_AgainstMemoryRepository(t *testing.T) {
	ctx := context.Background()
	logger, _ := newTestLogger()
	svc := service.NewTodoService(repository.NewMemoryTodo(), logger)

	valid, err := svc.Create(ctx, service.CreateTodoInput{Title: "valid"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.BulkUpdate(ctx, []string{valid.ID, "missing"}, model.TodoPatch{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if len(updated) != 1 || updated[0].ID != valid.ID {
		t.Errorf("expected exactly the valid row, got %+v", updated)
	}

	if _, err := svc.Delete(ctx, "missing"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	page := svc.GetFiltered(ctx, model.ListParams{Page: 1, Limit: 10, Filter: model.TodoFilter{Completed: boolPtr(true)}})
	if page.Total != 1 {
		t.Errorf("expected one completed todo, got %+v", page)
	}
}

// gatedRepo holds the first Paginate call after it has read the store until
// release is closed.
type gatedRepo struct {
	repository.TodoRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (g *gatedRepo) Paginate(ctx context.Context, params model.ListParams) (model.Page, error) {
	page, err := g.TodoRepository.Paginate(ctx, params)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.read)
		<-g.release
	}
	return page, err
}

func TestCache_FillSpanningDeleteIsDiscarded(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryTodo()
	todo, err := mem.Create(ctx, "to be deleted", "")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := &gatedRepo{TodoRepository: mem, read: make(chan struct{}), release: make(chan struct{})}
	logger, _ := newTestLogger()
	svc := service.NewTodoService(repo, logger, service.WithCache(newFakeCache()))
	params := model.ListParams{Page: 1, Limit: 10}

	done := make(chan model.Page, 1)
	go func() { done <- svc.GetPaginated(ctx, params) }()
	<-repo.read

	if _, err := svc.Delete(ctx, todo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// a list issued after the delete must not join the older fill
	if page := svc.GetPaginated(ctx, params); page.Total != 0 {
		t.Errorf("list after delete: expected empty, got total=%d", page.Total)
	}

	close(repo.release)
	<-done

	if page := svc.GetPaginated(ctx, params); page.Total != 0 || len(page.ToDos) != 0 {
		t.Errorf("deleted row served from cache: %+v", page)
	}
}

func TestCache_JoinedCallerSurvivesCanceledLeader(t *testing.T) {
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	repo := &mockTodoRepo{
		paginateFn: func(ctx context.Context, params model.ListParams) (model.Page, error) {
			once.Do(func() { close(started) })
			<-release
			if err := ctx.Err(); err != nil {
				return model.Page{}, err
			}
			return model.Page{ToDos: []model.Todo{sampleTodo()}, Total: 1, Page: 1, TotalPages: 1}, nil
		},
	}
	logger, _ := newTestLogger()
	svc := service.NewTodoService(repo, logger, service.WithCache(newFakeCache()))
	params := model.ListParams{Page: 1, Limit: 10}

	leaderCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	leaderDone := make(chan model.Page, 1)
	go func() { leaderDone <- svc.GetPaginated(leaderCtx, params) }()
	<-started

	followerDone := make(chan model.Page, 1)
	go func() { followerDone <- svc.GetPaginated(context.Background(), params) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case page := <-leaderDone:
		if page.Total != 0 {
			t.Errorf("canceled leader: expected empty page, got %+v", page)
		}
	case <-time.After(time.Second):
		t.Fatal("canceled leader did not return")
	}

	close(release)
	select {
	case page := <-followerDone:
		if page.Total != 1 || page.TotalPages != 1 {
			t.Errorf("follower: expected the store page, got %+v", page)
		}
	case <-time.After(time.Second):
		t.Fatal("follower did not return")
	}
}
