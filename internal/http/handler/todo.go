package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jaekwang-park/todo-list/internal/model"
	"github.com/jaekwang-park/todo-list/internal/service"
)

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// List serves GET /api/items.
func (h *TodoHandler) List(c *gin.Context) {
	params := parseListParams(c, false)
	page := h.svc.GetPaginated(c.Request.Context(), params)
	c.JSON(http.StatusOK, ListResponse{Success: true, Data: page})
}

// FilteredList serves GET /api/items/filter.
func (h *TodoHandler) FilteredList(c *gin.Context) {
	params := parseListParams(c, true)
	page := h.svc.GetFiltered(c.Request.Context(), params)
	c.JSON(http.StatusOK, ListResponse{Success: true, Data: page})
}

func parseListParams(c *gin.Context, withText bool) model.ListParams {
	params := model.ListParams{
		Page:      queryInt(c, "page", model.DefaultPage),
		Limit:     queryInt(c, "limit", model.DefaultLimit),
		SortBy:    model.SortField(c.Query("sortBy")),
		SortOrder: model.SortOrder(c.Query("sortOrder")),
		Filter: model.TodoFilter{
			Completed: model.ParseTriState(c.Query("completed")),
		},
	}
	if withText {
		params.Filter.Title = strings.TrimSpace(c.Query("title"))
		params.Filter.Description = strings.TrimSpace(c.Query("description"))
	}
	return params
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// Body fields are decoded loosely: a value of the wrong JSON type counts as
// absent instead of failing the whole request.
type createTodoRequest struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
}

// Create serves POST /api/item/new.
func (h *TodoHandler) Create(c *gin.Context) {
	var req createTodoRequest
	if !bindJSON(c, &req) {
		return
	}

	todo, err := h.svc.Create(c.Request.Context(), service.CreateTodoInput{
		Title:       deref(looseString(req.Title)),
		Description: deref(looseString(req.Description)),
	})
	if err != nil {
		writeServiceError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"newToDo": todo})
}

type updateTodoRequest struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
	Completed   json.RawMessage `json:"completed"`
}

// patch keeps only fields of the right type; completed must be a real
// boolean, not merely truthy.
func (r updateTodoRequest) patch() model.TodoPatch {
	return model.TodoPatch{
		Title:       looseString(r.Title),
		Description: looseString(r.Description),
		Completed:   looseBool(r.Completed),
	}
}

func looseString(raw json.RawMessage) *string {
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return &s
}

func looseBool(raw json.RawMessage) *bool {
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil {
		return nil
	}
	return &b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Update serves PUT /api/item/:id.
func (h *TodoHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req updateTodoRequest
	if !bindJSON(c, &req) {
		return
	}

	todo, err := h.svc.Update(c.Request.Context(), id, req.patch())
	if err != nil {
		writeServiceError(c, err, fmt.Sprintf("ID '%s' not found.", id))
		return
	}

	c.JSON(http.StatusOK, todo)
}

// Delete serves DELETE /api/item/:id.
func (h *TodoHandler) Delete(c *gin.Context) {
	todo, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, msgDeleteNotFound)
		return
	}

	c.JSON(http.StatusOK, todo)
}

type bulkUpdateRequest struct {
	IDs     json.RawMessage    `json:"ids"`
	Updates *updateTodoRequest `json:"updates"`
}

// BulkUpdate serves PUT /api/bulk.
func (h *TodoHandler) BulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	ids, ok := parseIDs(req.IDs)
	if !ok || req.Updates == nil {
		writeBadRequest(c, service.MsgBulkUpdate)
		return
	}

	updated, err := h.svc.BulkUpdate(c.Request.Context(), ids, req.Updates.patch())
	if err != nil {
		writeServiceError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updatedTodos": updated})
}

type bulkDeleteRequest struct {
	IDs json.RawMessage `json:"ids"`
}

// BulkDelete serves DELETE /api/bulk/delete. The result key matches bulk
// update for client compatibility.
func (h *TodoHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}

	ids, ok := parseIDs(req.IDs)
	if !ok || len(ids) == 0 {
		writeBadRequest(c, service.MsgIDsRequired)
		return
	}

	deleted, err := h.svc.BulkDelete(c.Request.Context(), ids)
	if err != nil {
		writeServiceError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updatedTodos": deleted})
}

// parseIDs accepts only a JSON array of strings.
func parseIDs(raw json.RawMessage) ([]string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func writeServiceError(c *gin.Context, err error, notFoundMsg string) {
	var inputErr *service.InputError
	switch {
	case errors.As(err, &inputErr):
		writeBadRequest(c, inputErr.Message)
	case errors.Is(err, service.ErrNotFound):
		writeNotFound(c, notFoundMsg)
	default:
		writeInternalError(c)
	}
}
