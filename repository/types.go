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
	"errors"

	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// ErrNotFound is returned when no row has the requested primary key.
var ErrNotFound = errors.New("record not found")

// ErrUnsavedTeam is returned when a member is moved to a team without an id.
var ErrUnsavedTeam = errors.New("team has not been saved")

// CrudRepository defines basic CRUD operations for a generic entity type.
// Ids are matched against the table primary key.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	Create(ctx context.Context, entity ...*T) error

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error
}

// PageQueryRepository defines pagination over a filtered entity list.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, filter *types.QueryFilter, req *types.PageRequest) (*types.Pagination[*T], error)
}

// Repository combines CRUD and pagination and exposes Bun query builders
// for advanced use cases. WithTx returns the same repository running on
// another bun.IDB, typically a bun.Tx owned by the caller.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	WithTx(db bun.IDB) Repository[T]
	DB() bun.IDB
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
