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
	"fmt"
	"strings"

	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
)

// Predicate is an immutable conjunction of WHERE clauses. The zero value has
// no clauses and filters nothing.
type Predicate struct {
	clauses []*types.QueryFilter
}

// clause builds one optional filter from a condition, or nil when the field
// it reads is absent.
type clause func(cond Condition) *types.QueryFilter

var clauses = []clause{usernameEq, teamNameEq, ageGoe, ageLoe}

// Compose folds the optional clauses of cond into one predicate. Absent
// fields are skipped without affecting the others.
func Compose(cond Condition) Predicate {
	var filters []*types.QueryFilter
	for _, build := range clauses {
		if f := build(cond); f != nil {
			filters = append(filters, f)
		}
	}
	return Predicate{clauses: filters}
}

func usernameEq(cond Condition) *types.QueryFilter {
	if !hasText(cond.Username) {
		return nil
	}
	return types.NewQueryFilter("m.username = ?", *cond.Username)
}

// teamNameEq relies on the join to team being present in the query.
func teamNameEq(cond Condition) *types.QueryFilter {
	if !hasText(cond.TeamName) {
		return nil
	}
	return types.NewQueryFilter("t.name = ?", *cond.TeamName)
}

func ageGoe(cond Condition) *types.QueryFilter {
	if cond.AgeMin == nil {
		return nil
	}
	return types.NewQueryFilter("m.age >= ?", *cond.AgeMin)
}

func ageLoe(cond Condition) *types.QueryFilter {
	if cond.AgeMax == nil {
		return nil
	}
	return types.NewQueryFilter("m.age <= ?", *cond.AgeMax)
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// IsEmpty reports whether the predicate matches every row.
func (p Predicate) IsEmpty() bool {
	return len(p.clauses) == 0
}

// Clauses returns a copy of the clauses in composition order.
func (p Predicate) Clauses() []*types.QueryFilter {
	out := make([]*types.QueryFilter, len(p.clauses))
	copy(out, p.clauses)
	return out
}

// Apply adds each clause to q as an ANDed WHERE condition.
func (p Predicate) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, c := range p.clauses {
		q = q.Where(c.Schema, c.Args...)
	}
	return q
}

// String renders the predicate with its arguments inlined, for logs.
func (p Predicate) String() string {
	if p.IsEmpty() {
		return "<none>"
	}
	parts := make([]string, len(p.clauses))
	for i, c := range p.clauses {
		s := c.Schema
		for _, arg := range c.Args {
			s = strings.Replace(s, "?", formatArg(arg), 1)
		}
		parts[i] = s
	}
	return strings.Join(parts, " AND ")
}

func formatArg(arg interface{}) string {
	if s, ok := arg.(string); ok {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return fmt.Sprint(arg)
}
