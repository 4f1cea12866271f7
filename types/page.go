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

package types

import "math"

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// PageRequest describes a zero-based page window. Values are taken as given;
// callers validate them with Valid before any query runs.
type PageRequest struct {
	page int
	size int
}

// NewPageRequest constructs a PageRequest for the zero-based page index.
func NewPageRequest(page int, size int) *PageRequest {
	return &PageRequest{page: page, size: size}
}

func (p *PageRequest) GetPage() int { return p.page }

func (p *PageRequest) GetSize() int { return p.size }

// GetOffset returns the number of rows preceding the page.
func (p *PageRequest) GetOffset() int {
	return p.page * p.size
}

// Valid reports whether the page index is non-negative, the size positive
// and the offset representable as an int.
func (p *PageRequest) Valid() bool {
	return p != nil && p.page >= 0 && p.size > 0 && p.page <= math.MaxInt/p.size
}

// Pagination holds one page of items along with the total across all pages.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []T
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{page, pageSize, 0, make([]T, 0)}
}

// TotalPages returns the number of pages needed to hold Total items.
func (p *Pagination[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether another page follows this one.
func (p *Pagination[T]) HasNext() bool {
	return p.Page+1 < p.TotalPages()
}

func (p *Pagination[T]) IsLast() bool {
	return !p.HasNext()
}
