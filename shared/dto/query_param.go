package dto

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"libres/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// QueryParams carries list paging and ordering. Page and Limit of zero mean unbounded.
type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir from the query string. Malformed or
// non-positive numbers are ignored and limit is capped at constant.MaxValueLimit. With
// paginate set, missing page and limit fall back to the defaults.
func (q *QueryParams) FromRequest(r *http.Request, paginate bool) {
	values := r.URL.Query()

	if page, ok := positiveInt(values, constant.RequestParamPage); ok {
		q.Page = page
	}

	if limit, ok := positiveInt(values, constant.RequestParamLimit); ok {
		q.Limit = min(limit, constant.MaxValueLimit)
	}

	if sortBy := strings.TrimSpace(values.Get(constant.RequestParamSortBy)); sortBy != "" {
		q.SortBy = sortBy
	}

	switch dir := strings.ToUpper(values.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = dir
	}

	if !paginate {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

// Offset is the number of rows skipped before the current page.
func (q QueryParams) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}

	return (q.Page - 1) * q.Limit
}

// Sanitize maps the public sort key to a column using allowed. Unknown keys fall back to
// fallback so user input never reaches the ORDER BY clause verbatim.
func (q *QueryParams) Sanitize(allowed map[string]string, fallback string) {
	column, ok := allowed[q.SortBy]
	if !ok {
		column = fallback
	}

	q.SortBy = column

	if q.SortBy != "" && q.SortDir == "" {
		q.SortDir = constant.DefaultValueSortDir
	}
}

// OrderBy renders the ORDER BY clause. SortBy may list several comma separated columns,
// each sorted in SortDir.
func (q QueryParams) OrderBy() string {
	if q.SortBy == "" || q.SortDir == "" {
		return ""
	}

	fields := strings.Split(q.SortBy, ",")
	for idx, field := range fields {
		fields[idx] = fmt.Sprintf("%s %s", strings.TrimSpace(field), q.SortDir)
	}

	return "ORDER BY " + strings.Join(fields, ", ")
}

func positiveInt(values url.Values, key string) (int, bool) {
	n, err := strconv.Atoi(values.Get(key))
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}
