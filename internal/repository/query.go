package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/jaekwang-park/todo-list/internal/model"
)

const todoColumns = "id, title, description, completed, created_date, updated_date"

// sortColumns maps accepted sort fields to SQL columns. Only values from this
// map are ever interpolated into ORDER BY.
var sortColumns = map[model.SortField]string{
	model.SortByTitle:       "title",
	model.SortByCreatedDate: "created_date",
	model.SortByUpdatedDate: "updated_date",
}

type listQuery struct {
	countSQL   string
	countArgs  []any
	selectSQL  string
	selectArgs []any
}

// buildListQuery renders the count and window queries for params. Both share
// the same WHERE clause so total and totalPages describe the returned window.
func buildListQuery(params model.ListParams) listQuery {
	params = params.Normalize()

	where, args := buildWhere(params.Filter)

	countSQL := "SELECT COUNT(*) FROM todos" + where

	column := sortColumns[params.SortBy]
	direction := "DESC"
	if params.SortOrder == model.SortAsc {
		direction = "ASC"
	}

	selectArgs := make([]any, len(args), len(args)+2)
	copy(selectArgs, args)
	argIdx := len(args) + 1

	selectSQL := fmt.Sprintf(
		"SELECT %s FROM todos%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
		todoColumns, where, column, direction, argIdx, argIdx+1,
	)
	selectArgs = append(selectArgs, params.Limit, params.Offset())

	return listQuery{
		countSQL:   countSQL,
		countArgs:  args,
		selectSQL:  selectSQL,
		selectArgs: selectArgs,
	}
}

func buildWhere(f model.TodoFilter) (string, []any) {
	var conds []string
	var args []any
	argIdx := 1

	if f.Title != "" {
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", argIdx))
		args = append(args, likePattern(f.Title))
		argIdx++
	}
	if f.Description != "" {
		conds = append(conds, fmt.Sprintf("description ILIKE $%d", argIdx))
		args = append(args, likePattern(f.Description))
		argIdx++
	}
	if f.Completed != nil {
		conds = append(conds, fmt.Sprintf("completed = $%d", argIdx))
		args = append(args, *f.Completed)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring match with LIKE wildcards in s escaped.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// buildBulkDelete binds all ids as one array parameter, so the statement
// stays within the protocol's parameter limit however many ids are sent.
func buildBulkDelete(ids []string) (string, []any) {
	query := "DELETE FROM todos WHERE id = ANY($1) RETURNING " + todoColumns
	return query, []any{pq.Array(ids)}
}
