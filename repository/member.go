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
	"fmt"

	"github.com/tomoncle/roster/model"
	"github.com/tomoncle/roster/search"
	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
)

// MemberRepository adds member lookups and searches to the generic CRUD
// repository.
type MemberRepository struct {
	Repository[model.Member]
	searcher *search.Searcher
	strategy types.CountStrategy
}

func NewMemberRepository(db bun.IDB, strategy types.CountStrategy) *MemberRepository {
	return &MemberRepository{
		Repository: NewRepository[model.Member](db),
		searcher:   search.NewSearcher(search.NewBunEngine(db), strategy),
		strategy:   strategy,
	}
}

// WithTx returns a member repository running every query on db.
func (r *MemberRepository) WithTx(db bun.IDB) *MemberRepository {
	return NewMemberRepository(db, r.strategy)
}

func (r *MemberRepository) Searcher() *search.Searcher {
	return r.searcher
}

// FindByUsername returns the members named username with their team loaded.
func (r *MemberRepository) FindByUsername(ctx context.Context, username string) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	err := r.DB().NewSelect().
		Model(&members).
		Relation("Team").
		Where("m.username = ?", username).
		OrderExpr("m.member_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// FindByTeam returns the members of team teamID.
func (r *MemberRepository) FindByTeam(ctx context.Context, teamID int64) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	err := r.DB().NewSelect().
		Model(&members).
		Where("m.team_id = ?", teamID).
		OrderExpr("m.member_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ChangeTeam moves member memberID to team, or detaches it when team is nil.
// The team must have been saved.
func (r *MemberRepository) ChangeTeam(ctx context.Context, memberID int64, team *model.Team) error {
	var teamID *int64
	if team != nil {
		if team.ID == 0 {
			return fmt.Errorf("team %q: %w", team.Name, ErrUnsavedTeam)
		}
		teamID = &team.ID
	}
	res, err := r.DB().NewUpdate().
		Model((*model.Member)(nil)).
		Set("team_id = ?", teamID).
		Where("member_id = ?", memberID).
		Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("member %d: %w", memberID, ErrNotFound)
	}
	return nil
}

func (r *MemberRepository) Search(ctx context.Context, cond search.Condition, order ...search.Order) ([]search.MemberTeamView, error) {
	return r.searcher.Search(ctx, cond, order...)
}

func (r *MemberRepository) SearchPage(ctx context.Context, cond search.Condition, req *types.PageRequest, order ...search.Order) (*types.Pagination[search.MemberTeamView], error) {
	return r.searcher.SearchPage(ctx, cond, req, order...)
}
