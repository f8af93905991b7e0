package model

import (
	"strings"
	"time"
)

type SortField string

const (
	SortByTitle       SortField = "title"
	SortByCreatedDate SortField = "created_date"
	SortByUpdatedDate SortField = "updated_date"
)

func (f SortField) IsValid() bool {
	return f == SortByTitle || f == SortByCreatedDate || f == SortByUpdatedDate
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedDate time.Time `json:"created_date"`
	UpdatedDate time.Time `json:"updated_date"`
}

// TodoPatch holds the fields a partial update may replace. Nil means keep.
type TodoPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply merges the patch over t and returns the result. Dates are left alone.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

type TodoFilter struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Completed   *bool  `json:"completed,omitempty"`
}

func (f TodoFilter) IsEmpty() bool {
	return f.Title == "" && f.Description == "" && f.Completed == nil
}

type ListParams struct {
	Page      int
	Limit     int
	Filter    TodoFilter
	SortBy    SortField
	SortOrder SortOrder
}

// Normalize clamps paging values and replaces unknown sort settings with defaults.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if !p.SortBy.IsValid() {
		p.SortBy = SortByUpdatedDate
	}
	if !p.SortOrder.IsValid() {
		p.SortOrder = SortDesc
	}
	return p
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Page struct {
	ToDos      []Todo `json:"toDos"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

// EmptyPage is the result shape listing falls back to when the store fails.
func EmptyPage(page int) Page {
	return Page{ToDos: []Todo{}, Total: 0, Page: page, TotalPages: 0}
}

func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ParseTriState maps "true"/"false" to a bool pointer; anything else is unset.
func ParseTriState(s string) *bool {
	switch s {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

// NormalizeText trims surrounding whitespace from user supplied text.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}
