// Package listctl holds the incremental list state behind the terminal
// client. It performs no I/O: callers execute the LoadRequests it hands out
// and feed the results back.
package listctl

import (
	"errors"

	"github.com/jaekwang-park/todo-list/internal/client"
	"github.com/jaekwang-park/todo-list/internal/model"
)

// ScrollThreshold is how close to the end of the loaded window the cursor
// must be before the next page is requested.
const ScrollThreshold = 3

const (
	MsgLoadFailed   = "Failed to load to-dos. Please try again."
	MsgUpdateFailed = "Failed to update to-do."
	MsgDeleteFailed = "Failed to delete to-dos."
	MsgCreateFailed = "Failed to create to-do"
)

type Modal int

const (
	ModalNone Modal = iota
	ModalBulk
	ModalCreate
	ModalFilters
)

func (m Modal) String() string {
	switch m {
	case ModalBulk:
		return "bulk"
	case ModalCreate:
		return "create"
	case ModalFilters:
		return "filters"
	default:
		return "none"
	}
}

// LoadRequest is one page fetch. Generation ties the result back to the list
// state it was issued for.
type LoadRequest struct {
	Generation uint64
	Query      client.ListQuery
}

type LoadResult struct {
	Generation uint64
	Page       model.Page
	Err        error
}

type Controller struct {
	Items    []model.Todo
	Page     int
	HasMore  bool
	Loading  bool
	Err      string
	ModalErr string
	Modal    Modal

	Filters   model.TodoFilter
	SortBy    model.SortField
	SortOrder model.SortOrder
	PageSize  int

	selected   map[string]struct{}
	generation uint64
	pending    []model.Todo
}

func New(pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Controller{
		Page:      1,
		HasMore:   true,
		SortBy:    model.SortByUpdatedDate,
		SortOrder: model.SortDesc,
		PageSize:  pageSize,
		selected:  make(map[string]struct{}),
	}
}

// Generation identifies the current list; it changes on every reset.
func (c *Controller) Generation() uint64 {
	return c.generation
}

// NextLoad returns the request for the next page, or false while a load is
// in flight or no pages remain.
func (c *Controller) NextLoad() (LoadRequest, bool) {
	if c.Loading || !c.HasMore {
		return LoadRequest{}, false
	}
	c.Loading = true
	c.Err = ""
	return LoadRequest{
		Generation: c.generation,
		Query: client.ListQuery{
			Page:      c.Page,
			Limit:     c.PageSize,
			Filter:    c.Filters,
			SortBy:    c.SortBy,
			SortOrder: c.SortOrder,
		},
	}, true
}

// ApplyLoad merges a finished fetch. Results from an older generation are
// dropped and reported as false.
func (c *Controller) ApplyLoad(res LoadResult) bool {
	if res.Generation != c.generation {
		return false
	}
	c.Loading = false

	if res.Err != nil {
		c.Err = ErrorMessage(res.Err, MsgLoadFailed)
		return true
	}

	seen := make(map[string]struct{}, len(c.Items))
	for _, t := range c.Items {
		seen[t.ID] = struct{}{}
	}
	for _, t := range res.Page.ToDos {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		c.Items = append(c.Items, t)
	}

	c.Page = res.Page.Page + 1
	c.HasMore = res.Page.Page < res.Page.TotalPages
	return true
}

// ShouldLoadMore reports whether a cursor at row should trigger the next page.
func (c *Controller) ShouldLoadMore(row int) bool {
	if c.Loading || !c.HasMore {
		return false
	}
	return row >= len(c.Items)-ScrollThreshold
}

// Retry re-issues the load that last failed.
func (c *Controller) Retry() (LoadRequest, bool) {
	c.Err = ""
	return c.NextLoad()
}

// Reset drops the loaded window and starts over at page 1. Any load still in
// flight belongs to the previous generation and will be ignored.
func (c *Controller) Reset() (LoadRequest, bool) {
	c.generation++
	c.Items = nil
	c.Page = 1
	c.HasMore = true
	c.Loading = false
	c.Err = ""
	c.selected = make(map[string]struct{})
	return c.NextLoad()
}

// SetFilters replaces the filters, closes the filter modal and reloads.
func (c *Controller) SetFilters(f model.TodoFilter) (LoadRequest, bool) {
	c.Filters = f
	c.closeModal()
	return c.Reset()
}

// SetSort replaces the sort order and reloads. Unknown values fall back to
// updated_date desc.
func (c *Controller) SetSort(by model.SortField, order model.SortOrder) (LoadRequest, bool) {
	if !by.IsValid() {
		by = model.SortByUpdatedDate
	}
	if !order.IsValid() {
		order = model.SortDesc
	}
	c.SortBy = by
	c.SortOrder = order
	return c.Reset()
}

// ApplyUpdate replaces the item with the server's copy.
func (c *Controller) ApplyUpdate(updated model.Todo) {
	for i := range c.Items {
		if c.Items[i].ID == updated.ID {
			c.Items[i] = updated
			return
		}
	}
}

// ApplyDelete removes id. When the window empties it resets and returns the
// refill request.
func (c *Controller) ApplyDelete(id string) (LoadRequest, bool) {
	return c.removeAll([]string{id})
}

// ApplyBulkUpdate swaps in the returned rows, clears the selection and closes
// the modal.
func (c *Controller) ApplyBulkUpdate(updated []model.Todo) {
	for _, t := range updated {
		c.ApplyUpdate(t)
	}
	c.selected = make(map[string]struct{})
	c.closeModal()
}

// ApplyBulkDelete removes ids, clears the selection and closes the modal.
func (c *Controller) ApplyBulkDelete(ids []string) (LoadRequest, bool) {
	c.selected = make(map[string]struct{})
	c.closeModal()
	return c.removeAll(ids)
}

func (c *Controller) removeAll(ids []string) (LoadRequest, bool) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(c.selected, id)
	}

	kept := c.Items[:0]
	for _, t := range c.Items {
		if _, ok := drop[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	c.Items = kept

	if len(c.Items) == 0 {
		return c.Reset()
	}
	return LoadRequest{}, false
}

// Fail records a failed mutation. Inside a modal the message stays with the
// modal; otherwise it goes to the list banner.
func (c *Controller) Fail(err error, fallback string) {
	msg := ErrorMessage(err, fallback)
	if c.Modal != ModalNone {
		c.ModalErr = msg
		return
	}
	c.Err = msg
}

// QueueCreated holds a created item until the create modal closes.
func (c *Controller) QueueCreated(t model.Todo) {
	c.pending = append(c.pending, t)
	c.ModalErr = ""
}

// Pending is the number of created items waiting to be shown.
func (c *Controller) Pending() int {
	return len(c.pending)
}

// CloseCreate ends the create flow, putting the most recently created item
// first.
func (c *Controller) CloseCreate() {
	if len(c.pending) > 0 {
		existing := make(map[string]struct{}, len(c.Items))
		for _, t := range c.Items {
			existing[t.ID] = struct{}{}
		}

		head := make([]model.Todo, 0, len(c.pending)+len(c.Items))
		for i := len(c.pending) - 1; i >= 0; i-- {
			if _, dup := existing[c.pending[i].ID]; dup {
				continue
			}
			head = append(head, c.pending[i])
		}
		c.Items = append(head, c.Items...)
		c.pending = nil
	}
	c.closeModal()
}

func (c *Controller) Toggle(id string) {
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return
	}
	c.selected[id] = struct{}{}
}

func (c *Controller) IsSelected(id string) bool {
	_, ok := c.selected[id]
	return ok
}

// AllSelected reports whether every loaded item is selected.
func (c *Controller) AllSelected() bool {
	if len(c.Items) == 0 {
		return false
	}
	for _, t := range c.Items {
		if _, ok := c.selected[t.ID]; !ok {
			return false
		}
	}
	return true
}

// SelectAll selects every loaded item, or clears the selection when all of
// them already are.
func (c *Controller) SelectAll() {
	if c.AllSelected() {
		c.DeselectAll()
		return
	}
	for _, t := range c.Items {
		c.selected[t.ID] = struct{}{}
	}
}

func (c *Controller) DeselectAll() {
	c.selected = make(map[string]struct{})
}

// SelectedIDs lists the selection in display order.
func (c *Controller) SelectedIDs() []string {
	ids := make([]string, 0, len(c.selected))
	for _, t := range c.Items {
		if _, ok := c.selected[t.ID]; ok {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// OpenBulk opens the bulk modal when something is selected.
func (c *Controller) OpenBulk() bool {
	if len(c.selected) == 0 {
		return false
	}
	c.openModal(ModalBulk)
	return true
}

func (c *Controller) OpenCreate() {
	c.openModal(ModalCreate)
}

func (c *Controller) OpenFilters() {
	c.openModal(ModalFilters)
}

// CloseModal dismisses the open modal. Closing the create modal flushes
// queued items.
func (c *Controller) CloseModal() {
	if c.Modal == ModalCreate {
		c.CloseCreate()
		return
	}
	c.closeModal()
}

func (c *Controller) openModal(m Modal) {
	c.Modal = m
	c.ModalErr = ""
}

func (c *Controller) closeModal() {
	c.Modal = ModalNone
	c.ModalErr = ""
}

// ShowRetry reports whether the list should be replaced by the error banner.
func (c *Controller) ShowRetry() bool {
	return c.Err != "" && len(c.Items) == 0
}

// ErrorMessage prefers the server's message and falls back otherwise.
func ErrorMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
