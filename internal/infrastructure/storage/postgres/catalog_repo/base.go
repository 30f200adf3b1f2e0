// Package catalog_repo provides the PostgreSQL catalog: products, partners and
// warehouses, each in its own cat_* table.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides the common operations of one catalog table.
type BaseCatalogRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
}

// NewBaseCatalogRepo creates a base repository over tableName with the db
// columns of T.
func NewBaseCatalogRepo[T any](txManager *postgres.TxManager, tableName, entityName string) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// upsertQuery inserts the entity or overwrites every column but id,
// bumping the version.
func (r *BaseCatalogRepo[T]) upsertQuery(entity *T) squirrel.InsertBuilder {
	cols, vals := postgres.Pick(postgres.StructToMap(entity), r.selectCols)

	set := "version = " + r.tableName + ".version + 1"
	for _, c := range cols {
		if c == "id" || c == "version" {
			continue
		}
		set += ", " + c + " = EXCLUDED." + c
	}

	return r.Builder().
		Insert(r.tableName).
		Columns(cols...).
		Values(vals...).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + set + " RETURNING version")
}

// Upsert stores entity and returns the stored version.
func (r *BaseCatalogRepo[T]) Upsert(ctx context.Context, entity *T) (int, error) {
	sql, args, err := r.upsertQuery(entity).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert: %w", err)
	}

	var version int
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&version); err != nil {
		return 0, fmt.Errorf("upsert %s: %w", r.tableName, err)
	}
	return version, nil
}

// GetByID retrieves an entity, NOT_FOUND when absent.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (*T, error) {
	q := r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entity := new(T)
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, entityID.String())
		}
		return nil, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return entity, nil
}

// listQuery matches search against name and code, ordered by name.
func (r *BaseCatalogRepo[T]) listQuery(search string, limit, offset int) squirrel.SelectBuilder {
	q := r.Builder().
		Select(r.selectCols...).
		From(r.tableName)

	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}

	q = q.OrderBy("name", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}

// List returns entities matching search.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, search string, limit, offset int) ([]T, error) {
	sql, args, err := r.listQuery(search, limit, offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []T
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return out, nil
}

// Delete removes an entity. Documents keep their snapshots.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	sql, args, err := r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}
