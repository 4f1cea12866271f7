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

package search

import (
	"context"
	"math"

	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/types"
)

// Paginator cuts search results into pages and reports the total number of
// matching rows. The count query and the window query are separate reads
// and may observe different snapshots.
type Paginator struct {
	engine   Engine
	strategy types.CountStrategy
	logger   database.Logger
}

// NewPaginator returns a paginator using strategy. An invalid strategy
// falls back to CountAvoidance.
func NewPaginator(engine Engine, strategy types.CountStrategy) *Paginator {
	if !strategy.IsValid() {
		strategy = types.CountAvoidance
	}
	return &Paginator{engine: engine, strategy: strategy, logger: database.GetLogger()}
}

// SetLogger replaces the logger used for page diagnostics.
func (p *Paginator) SetLogger(logger database.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

func (p *Paginator) Strategy() types.CountStrategy {
	return p.strategy
}

// Page returns page req of the rows matching pred, ordered by order and then
// by member id. An invalid req fails with ErrInvalidPageRequest before any
// query runs.
func (p *Paginator) Page(ctx context.Context, pred Predicate, req *types.PageRequest, order ...Order) (*types.Pagination[MemberTeamView], error) {
	if !req.Valid() {
		if req == nil {
			return nil, &PageRequestError{}
		}
		return nil, &PageRequestError{Page: req.GetPage(), Size: req.GetSize()}
	}
	order = deterministic(order)

	var (
		page    *types.Pagination[MemberTeamView]
		counted bool
		err     error
	)
	switch p.strategy {
	case types.AlwaysCount:
		page, err = p.alwaysCount(ctx, pred, req, order)
		counted = true
	default:
		page, counted, err = p.countAvoidance(ctx, pred, req, order)
	}
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Search page resolved",
		"strategy", p.strategy.Name(),
		"page", req.GetPage(),
		"size", req.GetSize(),
		"items", len(page.Items),
		"total", page.Total,
		"count_skipped", !counted,
	)
	return page, nil
}

func (p *Paginator) alwaysCount(ctx context.Context, pred Predicate, req *types.PageRequest, order []Order) (*types.Pagination[MemberTeamView], error) {
	page := types.NewDefaultPagination[MemberTeamView](req.GetPage(), req.GetSize())
	total, err := p.engine.Count(ctx, pred)
	if err != nil {
		return nil, err
	}
	page.Total = total
	if total == 0 || req.GetOffset() >= total {
		return page, nil
	}

	items, err := p.engine.Select(ctx, pred, order, &Window{Offset: req.GetOffset(), Limit: req.GetSize()})
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}

// countAvoidance reads one row past the page. Without that row the page is
// the last one and the total follows from the offset, unless the page is
// empty and past the first, where the offset proves nothing.
func (p *Paginator) countAvoidance(ctx context.Context, pred Predicate, req *types.PageRequest, order []Order) (*types.Pagination[MemberTeamView], bool, error) {
	page := types.NewDefaultPagination[MemberTeamView](req.GetPage(), req.GetSize())
	size := req.GetSize()
	limit := size
	if size < math.MaxInt {
		limit = size + 1
	}

	items, err := p.engine.Select(ctx, pred, order, &Window{Offset: req.GetOffset(), Limit: limit})
	if err != nil {
		return nil, false, err
	}
	more := len(items) > size
	if more {
		items = items[:size]
	}
	page.Items = items

	if !more && (len(items) > 0 || req.GetPage() == 0) {
		page.Total = req.GetOffset() + len(items)
		return page, false, nil
	}

	total, err := p.engine.Count(ctx, pred)
	if err != nil {
		return nil, true, err
	}
	page.Total = total
	return page, true, nil
}
