package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/jmoiron/sqlx"

	"libres/infras/otel"
	"libres/infras/postgres"
	"libres/shared/constant"
	"libres/shared/dto"
	"libres/shared/logger"
)

var (
	errRequiredFilter = errors.New("required filter")
	errRequiredTx     = errors.New("row lock requires a transaction")
)

// executor is satisfied by both *sqlx.DB and *sqlx.Tx.
type executor interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

// joiner lets a model read columns from other tables. The returned clause is appended
// after FROM on every read.
type joiner interface {
	GetJoinQuery() string
}

// Repository is the generic CRUD layer shared by every domain. Columns come from the db
// tags of T; a field tagged table:"x" column:"y" is read as x.y AS <db> and never written.
type Repository[T any] struct {
	db     *postgres.Connection
	otel   otel.Otel
	entity string
	q      queries
}

func NewRepository[T any](entity, table, key string, db *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	q := queries{table: table, key: key}
	q.columns, q.writable = columnsOf(table, reflect.TypeOf(zero))
	q.writable = slices.DeleteFunc(q.writable, func(col string) bool { return col == key })

	if j, ok := any(zero).(joiner); ok {
		q.join = j.GetJoinQuery()
	}

	return Repository[T]{
		db:     db,
		otel:   otl,
		entity: entity,
		q:      q,
	}
}

// Insert stores model and returns the generated primary key.
func (repo *Repository[T]) Insert(ctx context.Context, model T) (int64, error) {
	ctx, scope := repo.scope(ctx, "Insert")
	defer scope.End()

	query := repo.q.insert()
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var id int64
	if err := repo.namedGet(ctx, repo.writer(ctx), query, &id, model); err != nil {
		return 0, repo.fail(scope, "insert data", err)
	}

	return id, nil
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.scope(ctx, "Exist")
	defer scope.End()

	where, args := whereOf(filter)
	if where == "" {
		return false, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s %s)", repo.q.table, repo.q.join, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var exist bool
	if err := repo.namedGet(ctx, repo.reader(ctx), query, &exist, args); err != nil {
		return false, repo.fail(scope, "check exist data", err)
	}

	return exist, nil
}

// Get returns the first matching row, or the zero value when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	return repo.first(ctx, scope, filter, false, columns)
}

// GetForUpdate is Get with a row lock held until the surrounding transaction ends.
// It must run inside Transactor.WithinTx.
func (repo *Repository[T]) GetForUpdate(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "GetForUpdate")
	defer scope.End()

	if _, ok := TxFromContext(ctx); !ok {
		var zero T

		scope.TraceError(errRequiredTx)

		return zero, fmt.Errorf("failed to lock data (%s): %w", repo.entity, errRequiredTx)
	}

	return repo.first(ctx, scope, filter, true, columns)
}

func (repo *Repository[T]) first(ctx context.Context, scope otel.Scope, filter dto.FilterGroup, lock bool, columns []string) (T, error) {
	where, args := whereOf(filter)

	query := repo.q.selectOne(where, lock, columns)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var model T

	err := repo.namedGet(ctx, repo.reader(ctx), query, &model, args)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model, nil
	case err != nil:
		return model, repo.fail(scope, "get data", err)
	}

	return model, nil
}

// GetAll lists matching rows. A positive Limit pages the result; zero returns everything.
func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	where, args := whereOf(filter)

	if params.Limit > 0 {
		args["limit"] = params.Limit
		args["offset"] = params.Offset()
	}

	query := repo.q.selectMany(where, params, columns)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	models := []T{}

	stmt, err := repo.reader(ctx).PrepareNamedContext(ctx, query)
	if err != nil {
		return models, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	if err = stmt.SelectContext(ctx, &models, args); err != nil {
		return models, repo.fail(scope, "get all data", err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	where, args := whereOf(filter)

	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s %s", repo.q.table, repo.q.key, repo.q.table, repo.q.join, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var count int
	if err := repo.namedGet(ctx, repo.reader(ctx), query, &count, args); err != nil {
		return 0, repo.fail(scope, "count data", err)
	}

	return count, nil
}

// Update sets every column in fields on the rows matching filter. An empty filter is
// refused so a bad request can never rewrite the whole table.
func (repo *Repository[T]) Update(ctx context.Context, fields map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "Update")
	defer scope.End()

	where, args := whereOf(filter)
	if where == "" {
		return errRequiredFilter
	}

	query := repo.q.update(slices.Sorted(maps.Keys(fields)), where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	maps.Copy(args, fields)

	if _, err := repo.writer(ctx).NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "update data", err)
	}

	return nil
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "Delete")
	defer scope.End()

	where, args := whereOf(filter)
	if where == "" {
		return errRequiredFilter
	}

	query := fmt.Sprintf("DELETE FROM %s %s", repo.q.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := repo.writer(ctx).NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "delete data", err)
	}

	return nil
}

func (repo *Repository[T]) scope(ctx context.Context, op string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, op))
}

func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

func (repo *Repository[T]) namedGet(ctx context.Context, exec executor, query string, dest, arg any) error {
	stmt, err := exec.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	return stmt.GetContext(ctx, dest, arg) //nolint:wrapcheck
}

// reader returns the transaction bound to ctx, or the read pool.
func (repo *Repository[T]) reader(ctx context.Context) executor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}

	return repo.db.Read
}

// writer returns the transaction bound to ctx, or the write pool.
func (repo *Repository[T]) writer(ctx context.Context) executor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}

	return repo.db.Write
}

func whereOf(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return "WHERE " + where, args
}
