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

	"github.com/tomoncle/roster/model"
	"github.com/uptrace/bun"
)

// MemberTeamView is a member row flattened with its team. Team fields are
// nil for a member without a team.
type MemberTeamView struct {
	MemberID int64   `bun:"member_id" json:"member_id"`
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age" json:"age"`
	TeamID   *int64  `bun:"team_id" json:"team_id"`
	TeamName *string `bun:"team_name" json:"team_name"`
}

// Window bounds a select to Limit rows starting at Offset.
type Window struct {
	Offset int
	Limit  int
}

// Engine runs the member search queries. A nil window selects every row.
type Engine interface {
	Select(ctx context.Context, pred Predicate, order []Order, window *Window) ([]MemberTeamView, error)
	Count(ctx context.Context, pred Predicate) (int, error)
}

const (
	joinTeam   = "LEFT JOIN team AS t ON t.team_id = m.team_id"
	projection = "m.member_id, m.username, m.age, t.team_id, t.name AS team_name"
)

// BunEngine runs searches through bun against the member and team tables.
type BunEngine struct {
	db bun.IDB
}

var _ Engine = (*BunEngine)(nil)

// NewBunEngine accepts a *bun.DB, bun.Tx or bun.Conn; the caller owns its
// transaction boundary.
func NewBunEngine(db bun.IDB) *BunEngine {
	return &BunEngine{db: db}
}

func (e *BunEngine) query(pred Predicate) *bun.SelectQuery {
	q := e.db.NewSelect().
		Model((*model.Member)(nil)).
		Join(joinTeam)
	return pred.Apply(q)
}

func (e *BunEngine) Select(ctx context.Context, pred Predicate, order []Order, window *Window) ([]MemberTeamView, error) {
	q := e.query(pred).ColumnExpr(projection)
	for _, o := range order {
		q = q.OrderExpr(o.String())
	}
	if window != nil {
		q = q.Limit(window.Limit).Offset(window.Offset)
	}

	views := make([]MemberTeamView, 0)
	if err := q.Scan(ctx, &views); err != nil {
		return nil, newExecutionError("select", err)
	}
	return views, nil
}

func (e *BunEngine) Count(ctx context.Context, pred Predicate) (int, error) {
	total, err := e.query(pred).Count(ctx)
	if err != nil {
		return 0, newExecutionError("count", err)
	}
	return total, nil
}
