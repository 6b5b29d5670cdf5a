package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"libres/shared/cache"
	"libres/shared/constant"
	"libres/shared/dto"
	"libres/shared/failure"
	"libres/shared/timezone"
)

const cacheKeySeparator = ":"

// ParseInt reads a whitespace tolerant decimal from a form or query value.
func ParseInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q as int: %w", raw, err)
	}

	return n, nil
}

// ParseID reads a path identifier. Anything that is not a positive integer is a bad request.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, failure.BadRequestFromString("invalid id") //nolint:wrapcheck
	}

	return id, nil
}

// TotalPages never reports fewer than one page, so empty lists still render page 1 of 1.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return (total + limit - 1) / limit
}

// ChangedColumns turns a partial update request into a column map keyed by db tag. Zero
// fields and fields tagged "-" or untagged are skipped; non-nil pointers are dereferenced so
// an explicit false or 0 still lands. The audit columns are always stamped.
func ChangedColumns(req any, actor string) map[string]any {
	val := reflect.Indirect(reflect.ValueOf(req))
	typ := val.Type()

	columns := make(map[string]any, val.NumField()+2)

	for idx := range val.NumField() {
		column := typ.Field(idx).Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}

		field := val.Field(idx)
		if field.IsZero() {
			continue
		}

		if field.Kind() == reflect.Pointer {
			field = field.Elem()
		}

		columns[column] = field.Interface()
	}

	columns[constant.FieldModifiedAt] = timezone.Now()
	columns[constant.FieldModifiedBy] = actor

	return columns
}

// FilterByID matches a single row by its key column.
func FilterByID(id any, column, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: column, Value: id, Operator: dto.FilterOperatorEq, Table: table},
		},
	}
}

// BuildCacheKey joins prefix and parts with ":".
func BuildCacheKey(prefix string, parts ...any) string {
	key := []string{prefix}
	for _, part := range parts {
		key = append(key, fmt.Sprint(part))
	}

	return strings.Join(key, cacheKeySeparator)
}

// BuildCacheKeyWithQuery derives a stable key from the paging parameters and the rendered
// filter, so equal queries share a cache entry.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	var builder strings.Builder

	fmt.Fprintf(&builder, "%d|%d|%s|%s|%s", params.Page, params.Limit, params.SortBy, params.SortDir, where)

	for _, key := range slices.Sorted(maps.Keys(args)) {
		fmt.Fprintf(&builder, "|%s=%v", key, args[key])
	}

	sum := sha256.Sum256([]byte(builder.String()))

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:]))
}

// InvalidateCaches removes every key under prefix. Errors are logged, not returned, since
// callers run it after the write already succeeded.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// UserIDFromContext returns the authenticated user's id placed in ctx by the auth middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	raw, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if raw == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

// IsAdmin reports whether the authenticated caller has the admin role.
func IsAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return role == constant.RoleAdmin
}

// Actor names the caller for created_by / modified_by columns.
func Actor(ctx context.Context) string {
	if email, _ := ctx.Value(constant.ContextKeyUserEmail).(string); email != "" {
		return email
	}

	return constant.ContextSystem
}
