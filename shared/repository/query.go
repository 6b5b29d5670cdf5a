package repository

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"libres/shared/dto"
)

type column struct {
	name  string
	table string
	alias string
}

func (c column) String() string {
	switch {
	case c.alias != "":
		return fmt.Sprintf("%s.%s AS %s", c.table, c.name, c.alias)
	case c.table != "":
		return c.table + "." + c.name
	default:
		return c.name
	}
}

// queries renders the SQL for one table. It holds no connection so it can be checked
// without a database.
type queries struct {
	table    string
	key      string
	join     string
	columns  []column
	writable []string
}

// projection lists the selected columns. only narrows it by db name.
func (q queries) projection(only []string) string {
	out := make([]string, 0, len(q.columns))

	for _, col := range q.columns {
		name := col.name
		if col.alias != "" {
			name = col.alias
		}

		if len(only) > 0 && !slices.Contains(only, name) && !slices.Contains(only, col.name) {
			continue
		}

		out = append(out, col.String())
	}

	return strings.Join(out, ", ")
}

func (q queries) insert() string {
	placeholders := make([]string, len(q.writable))
	for idx, col := range q.writable {
		placeholders[idx] = ":" + col
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		q.table, strings.Join(q.writable, ", "), strings.Join(placeholders, ", "), q.key)
}

func (q queries) selectOne(where string, lock bool, only []string) string {
	query := compact("SELECT", q.projection(only), "FROM", q.table, q.join, where, "LIMIT 1")
	if lock {
		query += " FOR UPDATE OF " + q.table
	}

	return query
}

func (q queries) selectMany(where string, params dto.QueryParams, only []string) string {
	var page string
	if params.Limit > 0 {
		page = "LIMIT :limit OFFSET :offset"
	}

	return compact("SELECT", q.projection(only), "FROM", q.table, q.join, where, params.OrderBy(), page)
}

func (q queries) update(columns []string, where string) string {
	sets := make([]string, len(columns))
	for idx, col := range columns {
		sets[idx] = fmt.Sprintf("%s = :%s", col, col)
	}

	return compact("UPDATE", q.table, "SET", strings.Join(sets, ", "), where)
}

// columnsOf walks the db tags of typ, descending into embedded structs. Columns owned by
// another table are readable but not writable.
func columnsOf(table string, typ reflect.Type) (columns []column, writable []string) {
	for idx := range typ.NumField() {
		field := typ.Field(idx)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			nested, nestedWritable := columnsOf(table, field.Type)
			columns = append(columns, nested...)
			writable = append(writable, nestedWritable...)

			continue
		}

		name := field.Tag.Get("db")
		if name == "" || name == "-" {
			continue
		}

		owner := field.Tag.Get("table")
		if owner == "" || owner == table {
			columns = append(columns, column{name: name, table: table})
			writable = append(writable, name)

			continue
		}

		source := field.Tag.Get("column")
		if source == "" {
			source = name
		}

		columns = append(columns, column{name: source, table: owner, alias: name})
	}

	return columns, writable
}

// compact joins the non empty parts with single spaces.
func compact(parts ...string) string {
	return strings.Join(slices.DeleteFunc(parts, func(part string) bool { return strings.TrimSpace(part) == "" }), " ")
}
