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

// SortKey is a column the search results can be ordered by. Only the
// exported keys are valid.
type SortKey struct {
	column string
}

var (
	SortByMemberID = SortKey{"m.member_id"}
	SortByUsername = SortKey{"m.username"}
	SortByAge      = SortKey{"m.age"}
	SortByTeamName = SortKey{"t.name"}
)

func (k SortKey) Asc() Order { return Order{Key: k} }

func (k SortKey) Desc() Order { return Order{Key: k, Desc: true} }

func (k SortKey) String() string { return k.column }

// Order is one ORDER BY term.
type Order struct {
	Key  SortKey
	Desc bool
}

// String renders the term as an ORDER BY expression.
func (o Order) String() string {
	if o.Desc {
		return o.Key.column + " DESC"
	}
	return o.Key.column + " ASC"
}

// deterministic drops zero-key terms and appends member id ascending unless
// the caller already orders by it, so offset windows are stable across calls.
func deterministic(order []Order) []Order {
	out := make([]Order, 0, len(order)+1)
	unique := false
	for _, o := range order {
		if o.Key.column == "" {
			continue
		}
		if o.Key == SortByMemberID {
			unique = true
		}
		out = append(out, o)
	}
	if !unique {
		out = append(out, SortByMemberID.Asc())
	}
	return out
}
