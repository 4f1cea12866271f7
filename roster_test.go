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

package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/roster/config"
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/model"
	"github.com/tomoncle/roster/repository"
	"github.com/tomoncle/roster/search"
	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
)

func openRoster(t *testing.T) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	_, err = Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close() })
}

func TestMembersUsesConfiguredCountStrategy(t *testing.T) {
	t.Setenv("ROSTER_SEARCH_COUNT_STRATEGY", "always_count")
	openRoster(t)
	assert.Equal(t, types.AlwaysCount, Members().members().Searcher().Paginator().Strategy())

	t.Setenv("ROSTER_SEARCH_COUNT_STRATEGY", "count_avoidance")
	require.NoError(t, Close())
	openRoster(t)
	assert.Equal(t, types.CountAvoidance, Members().members().Searcher().Paginator().Strategy())
}

func seed(t *testing.T, teams TeamService, members *MemberService) (teamA, teamB *model.Team) {
	t.Helper()
	ctx := context.Background()
	teamA, teamB = model.NewTeam("teamA"), model.NewTeam("teamB")
	require.NoError(t, teams.Save(ctx, teamA, teamB))
	require.NoError(t, members.Save(ctx,
		model.NewMember("member1", 10, teamA),
		model.NewMember("member2", 20, teamA),
		model.NewMember("member3", 30, teamB),
		model.NewMember("member4", 40, teamB),
	))
	return teamA, teamB
}

func TestMemberSearchPage(t *testing.T) {
	openRoster(t)
	members := NewMemberService(types.CountAvoidance)
	seed(t, NewTeamService(), members)
	ctx := context.Background()

	for page, want := range [][]int{{10, 20}, {30, 40}, {}} {
		result, err := members.SearchPage(ctx, search.Condition{}, page, 2)
		require.NoError(t, err)
		assert.Equal(t, 4, result.Total)
		ages := make([]int, 0, len(result.Items))
		for _, v := range result.Items {
			ages = append(ages, v.Age)
		}
		assert.Equal(t, want, ages, "page %d", page)
	}

	_, err := members.SearchPage(ctx, search.Condition{}, -1, 2)
	assert.ErrorIs(t, err, search.ErrInvalidPageRequest)
	_, err = members.SearchPage(ctx, search.Condition{}, 0, 0)
	assert.ErrorIs(t, err, search.ErrInvalidPageRequest)
}

func TestMemberSearchAgeRange(t *testing.T) {
	openRoster(t)
	members := NewMemberService(types.AlwaysCount)
	seed(t, NewTeamService(), members)

	rows, err := members.Search(context.Background(), search.Condition{AgeMin: search.Ptr(20), AgeMax: search.Ptr(30)})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 20, rows[0].Age)
	assert.Equal(t, 30, rows[1].Age)
}

func TestMemberChangeTeamAndTeamMembers(t *testing.T) {
	openRoster(t)
	teams := NewTeamService()
	members := NewMemberService(types.CountAvoidance)
	teamA, teamB := seed(t, teams, members)
	ctx := context.Background()

	found, err := members.FindByUsername(ctx, "member1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	m := found[0]

	require.NoError(t, members.ChangeTeam(ctx, m, teamB))
	assert.Equal(t, teamB.ID, *m.TeamID)
	assert.Same(t, teamB, m.Team)

	inA, err := members.TeamMembers(ctx, teamA)
	require.NoError(t, err)
	assert.Len(t, inA, 1)
	inB, err := members.TeamMembers(ctx, teamB)
	require.NoError(t, err)
	assert.Len(t, inB, 3)

	err = members.ChangeTeam(ctx, m, model.NewTeam("unsaved"))
	assert.ErrorIs(t, err, repository.ErrUnsavedTeam)
	assert.Same(t, teamB, m.Team)

	require.NoError(t, members.ChangeTeam(ctx, m, nil))
	got, err := members.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TeamID)

	rows, err := members.Search(ctx, search.Condition{Username: search.Ptr("member1")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].TeamName)
}

func TestTeamService(t *testing.T) {
	openRoster(t)
	teams := NewTeamService()
	ctx := context.Background()
	teamA := model.NewTeam("teamA")
	require.NoError(t, teams.Save(ctx, teamA))

	teamA.Name = "renamed"
	require.NoError(t, teams.Update(ctx, teamA))
	got, err := teams.Get(ctx, teamA.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	n, err := teams.Count(ctx, types.NewQueryFilter("t.name = ?", "renamed"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, teams.Delete(ctx, teamA.ID))
	_, err = teams.Get(ctx, teamA.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestServicesWithTx(t *testing.T) {
	openRoster(t)
	teams := NewTeamService()
	members := NewMemberService(types.CountAvoidance)
	ctx := context.Background()

	err := database.GetDB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		team := model.NewTeam("txTeam")
		if err := teams.WithTx(tx).Save(ctx, team); err != nil {
			return err
		}
		return members.WithTx(tx).Save(ctx, model.NewMember("txMember", 33, team))
	})
	require.NoError(t, err)

	page, err := members.SearchPage(ctx, search.Condition{TeamName: search.Ptr("txTeam")}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "txMember", *page.Items[0].Username)
}
