/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db bun.IDB
}

// NewRepository returns a generic repository backed by db, which may be a
// *bun.DB, bun.Tx or bun.Conn.
func NewRepository[T any](db bun.IDB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) WithTx(db bun.IDB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) DB() bun.IDB { return r.db }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.NewSelect().Model(&entity).Where("?PKs = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.List(ctx, nil)
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	entities := make([]*T, 0)
	query := r.db.NewSelect().Model(&entities).OrderExpr("?PKs ASC")
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	query := r.db.NewSelect().Model((*T)(nil))
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	return query.Count(ctx)
}

// Page counts the filtered rows first and reads the window only when it is
// not past the end. Rows are ordered by primary key.
func (r *baseRepositoryImpl[T]) Page(ctx context.Context, filter *types.QueryFilter, req *types.PageRequest) (*types.Pagination[*T], error) {
	if !req.Valid() {
		return nil, fmt.Errorf("invalid page request: page must be >= 0, size > 0 and page*size must fit an int")
	}
	pagination := types.NewDefaultPagination[*T](req.GetPage(), req.GetSize())
	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total == 0 || req.GetOffset() >= total {
		pagination.Total = total
		return pagination, nil
	}

	entities := make([]*T, 0, req.GetSize())
	query := r.db.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	err = query.
		OrderExpr("?PKs ASC").
		Offset(req.GetOffset()).
		Limit(req.GetSize()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	_, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

// Upsert inserts entities and on a key conflict overwrites fields. When
// duplicateKeys is empty the primary key is used.
func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)

	features := r.db.Dialect().Features()
	switch {
	case features.Has(feature.InsertOnConflict):
		return r.upsertOnConflict(ctx, fields, duplicateKeys, entities)
	case features.Has(feature.InsertOnDuplicateKey):
		return r.upsertOnDuplicateKey(ctx, fields, entities)
	default:
		return r.upsertFallback(ctx, entities)
	}
}

func (r *baseRepositoryImpl[T]) upsertOnDuplicateKey(ctx context.Context, fields []string, entities []*T) error {
	var sets []string
	for _, field := range fields {
		sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", field, field))
	}
	_, err := r.db.NewInsert().
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertOnConflict(ctx context.Context, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = r.primaryKeys()
	}
	var sets []string
	for _, field := range fields {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", field, field))
	}
	_, err := r.db.NewInsert().
		Model(&entities).
		On("CONFLICT (" + strings.Join(duplicateKeys, ", ") + ") DO UPDATE").
		Set(strings.Join(sets, ", ")).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, updateErr := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %w", err, updateErr)
			}
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) primaryKeys() []string {
	table := r.db.Dialect().Tables().Get(reflect.TypeOf((*T)(nil)).Elem())
	keys := make([]string, 0, len(table.PKs))
	for _, pk := range table.PKs {
		keys = append(keys, pk.Name)
	}
	return keys
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	_, err := r.db.NewDelete().Model((*T)(nil)).Where("?PKs = ?", id).Exec(ctx)
	return err
}
