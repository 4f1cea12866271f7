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

	"github.com/tomoncle/roster/types"
)

// Searcher answers member searches. It keeps no per-call state and is safe
// for concurrent use when its engine is.
type Searcher struct {
	engine    Engine
	paginator *Paginator
}

func NewSearcher(engine Engine, strategy types.CountStrategy) *Searcher {
	return &Searcher{engine: engine, paginator: NewPaginator(engine, strategy)}
}

// Paginator exposes the paginator, e.g. to replace its logger.
func (s *Searcher) Paginator() *Paginator {
	return s.paginator
}

// Search returns every member matching cond, ordered by order and then by
// member id.
func (s *Searcher) Search(ctx context.Context, cond Condition, order ...Order) ([]MemberTeamView, error) {
	return s.engine.Select(ctx, Compose(cond), deterministic(order), nil)
}

// SearchPage returns one page of the members matching cond.
func (s *Searcher) SearchPage(ctx context.Context, cond Condition, req *types.PageRequest, order ...Order) (*types.Pagination[MemberTeamView], error) {
	return s.paginator.Page(ctx, Compose(cond), req, order...)
}
