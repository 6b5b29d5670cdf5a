package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLess      = "less"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreater   = "greater"
	FilterOperatorGreaterEq = "greater_eq"
	FilterPlainQuery        = "plain"
	FilterIsNotNull         = "is_not_null"
	FilterIsNull            = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLess:      "<",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreater:   ">",
	FilterOperatorGreaterEq: ">=",
}

// Filter renders a single named-parameter predicate. The bind name defaults to Field;
// set ArgName when one field appears twice in a group. Plain queries carry their own
// bind values in Args.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string `validate:"required,oneof=eq like in not_eq less less_eq greater greater_eq plain is_null is_not_null"`
	Table    string
	Args     map[string]any
}

func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}

	column := f.Field
	if f.Table != "" {
		column = f.Table + "." + f.Field
	}

	bind := f.ArgName
	if bind == "" {
		bind = f.Field
	}

	if op, ok := comparisons[f.Operator]; ok {
		args[bind] = f.Value

		return fmt.Sprintf("%s %s :%s", column, op, bind), args
	}

	switch f.Operator {
	case FilterOperatorLike:
		args[bind] = fmt.Sprintf("%%%v%%", f.Value)

		return fmt.Sprintf("LOWER(%s) LIKE LOWER(:%s)", column, bind), args
	case FilterOperatorIn:
		names := []string{}

		for idx, value := range listOf(f.Value) {
			name := fmt.Sprintf("%s_%d", bind, idx)
			args[name] = value
			names = append(names, ":"+name)
		}

		if len(names) == 0 {
			return "FALSE", args
		}

		return fmt.Sprintf("%s IN (%s)", column, strings.Join(names, ", ")), args
	case FilterPlainQuery:
		query, _ := f.Value.(string)
		maps.Copy(args, f.Args)

		return "(" + query + ")", args
	case FilterIsNotNull:
		return column + " IS NOT NULL", args
	case FilterIsNull:
		return column + " IS NULL", args
	}

	return "", args
}

// listOf spreads a slice or array into its elements. Any other value is a one element list.
func listOf(value any) []any {
	val := reflect.ValueOf(value)

	if kind := val.Kind(); kind != reflect.Slice && kind != reflect.Array {
		return []any{value}
	}

	out := make([]any, val.Len())
	for idx := range val.Len() {
		out[idx] = val.Index(idx).Interface()
	}

	return out
}

// FilterGroup joins Filters and nested FilterGroups with Operator, AND when unset.
type FilterGroup struct {
	Filters  []any
	Operator string
}

// And appends filters to the group. A group without an operator becomes an AND group.
func (f *FilterGroup) And(filters ...any) {
	if f.Operator == "" {
		f.Operator = FilterGroupOperatorAnd
	}

	f.Filters = append(f.Filters, filters...)
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := []string{}

	for _, item := range f.Filters {
		var (
			where string
			arg   map[string]any
		)

		switch node := item.(type) {
		case Filter:
			where, arg = node.GetWhereClause()
		case FilterGroup:
			where, arg = node.GetWhereClause()
		default:
			continue
		}

		if where == "" {
			continue
		}

		clauses = append(clauses, where)
		maps.Copy(args, arg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(clauses, " "+operator+" ") + ")", args
}
