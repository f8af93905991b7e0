// Package client is a typed HTTP client for the todo API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/todo-list/internal/model"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("todo api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("todo api: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, including its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a client for baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListQuery selects one page of todos.
type ListQuery struct {
	Page      int
	Limit     int
	Filter    model.TodoFilter
	SortBy    model.SortField
	SortOrder model.SortOrder
}

// Filtered reports whether the query needs the filter endpoint.
func (q ListQuery) Filtered() bool {
	return strings.TrimSpace(q.Filter.Title) != "" ||
		strings.TrimSpace(q.Filter.Description) != "" ||
		q.Filter.Completed != nil
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		v.Set("sortBy", string(q.SortBy))
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", string(q.SortOrder))
	}
	if q.Filter.Completed != nil {
		v.Set("completed", strconv.FormatBool(*q.Filter.Completed))
	}
	if t := strings.TrimSpace(q.Filter.Title); t != "" {
		v.Set("title", t)
	}
	if d := strings.TrimSpace(q.Filter.Description); d != "" {
		v.Set("description", d)
	}
	return v
}

type listResponse struct {
	Success bool       `json:"success"`
	Data    model.Page `json:"data"`
}

// List calls /items/filter when any filter is set and /items otherwise.
func (c *Client) List(ctx context.Context, q ListQuery) (model.Page, error) {
	path := "/items"
	if q.Filtered() {
		path = "/items/filter"
	}

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, path, q.values(), nil, &resp); err != nil {
		return model.Page{}, err
	}
	if resp.Data.ToDos == nil {
		resp.Data.ToDos = []model.Todo{}
	}
	return resp.Data, nil
}

func (c *Client) Create(ctx context.Context, title, description string) (model.Todo, error) {
	body := map[string]string{"title": title, "description": description}

	var resp struct {
		NewToDo model.Todo `json:"newToDo"`
	}
	if err := c.do(ctx, http.MethodPost, "/item/new", nil, body, &resp); err != nil {
		return model.Todo{}, err
	}
	return resp.NewToDo, nil
}

func (c *Client) Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	var todo model.Todo
	if err := c.do(ctx, http.MethodPut, "/item/"+url.PathEscape(id), nil, patch, &todo); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

func (c *Client) Delete(ctx context.Context, id string) (model.Todo, error) {
	var todo model.Todo
	if err := c.do(ctx, http.MethodDelete, "/item/"+url.PathEscape(id), nil, nil, &todo); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

type bulkResponse struct {
	UpdatedTodos []model.Todo `json:"updatedTodos"`
}

func (c *Client) BulkUpdate(ctx context.Context, ids []string, patch model.TodoPatch) ([]model.Todo, error) {
	body := struct {
		IDs     []string        `json:"ids"`
		Updates model.TodoPatch `json:"updates"`
	}{IDs: nonNil(ids), Updates: patch}

	var resp bulkResponse
	if err := c.do(ctx, http.MethodPut, "/bulk", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.UpdatedTodos, nil
}

func (c *Client) BulkDelete(ctx context.Context, ids []string) ([]model.Todo, error) {
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: nonNil(ids)}

	var resp bulkResponse
	if err := c.do(ctx, http.MethodDelete, "/bulk/delete", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.UpdatedTodos, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeError prefers the server's "error" field, then "message".
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(b, &payload); err == nil {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
