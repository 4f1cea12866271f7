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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/model"
	"github.com/tomoncle/roster/search"
	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()
	manager := database.NewDatabaseManager(&database.ConnectionConfig{
		Type:           "sqlite",
		DBName:         database.MemoryDBName,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))

	db := manager.GetDB()
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithEnabled(false), bundebug.FromEnv("BUNDEBUG")))
	return db
}

func createTeams(t *testing.T, repo Repository[model.Team], names ...string) []*model.Team {
	t.Helper()
	teams := make([]*model.Team, len(names))
	for i, name := range names {
		teams[i] = model.NewTeam(name)
	}
	require.NoError(t, repo.Create(context.Background(), teams...))
	for _, team := range teams {
		require.NotZero(t, team.ID)
	}
	return teams
}

func TestRepositoryCrud(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[model.Team](db)
	ctx := context.Background()
	teams := createTeams(t, repo, "teamA", "teamB")

	got, err := repo.GetOne(ctx, teams[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "teamB", got.Name)

	got.Name = "teamC"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetOne(ctx, teams[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "teamC", got.Name)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "teamA", all[0].Name)

	require.NoError(t, repo.Delete(ctx, teams[0].ID))
	_, err = repo.GetOne(ctx, teams[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRepositoryListAndCountWithFilter(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[model.Team](db)
	ctx := context.Background()
	createTeams(t, repo, "alpha", "beta", "alpine")

	filter := types.NewQueryFilter("t.name LIKE ?", "al%")
	teams, err := repo.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "alpha", teams[0].Name)
	assert.Equal(t, "alpine", teams[1].Name)

	n, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRepositoryPage(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[model.Team](db)
	ctx := context.Background()
	createTeams(t, repo, "t1", "t2", "t3")

	page, err := repo.Page(ctx, nil, types.NewPageRequest(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "t3", page.Items[0].Name)

	page, err = repo.Page(ctx, nil, types.NewPageRequest(5, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Empty(t, page.Items)

	_, err = repo.Page(ctx, nil, types.NewPageRequest(0, 0))
	assert.Error(t, err)
}

func TestRepositoryUpsertByPrimaryKey(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[model.Team](db)
	ctx := context.Background()
	teams := createTeams(t, repo, "teamA")

	changed := &model.Team{ID: teams[0].ID, Name: "renamed"}
	require.NoError(t, repo.Upsert(ctx, []string{"name"}, nil, changed, &model.Team{ID: 100, Name: "fresh"}))

	got, err := repo.GetOne(ctx, teams[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	got, err = repo.GetOne(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Name)

	assert.Error(t, repo.Upsert(ctx, nil, nil, changed))
}

func TestRepositoryWithTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[model.Team](db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.WithTx(tx).Create(ctx, model.NewTeam("temp")))
	n, err := repo.WithTx(tx).Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, tx.Rollback())

	n, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemberRepositoryLookups(t *testing.T) {
	db := openTestDB(t)
	teams := createTeams(t, NewRepository[model.Team](db), "teamA", "teamB")
	members := NewMemberRepository(db, types.CountAvoidance)
	ctx := context.Background()

	require.NoError(t, members.Create(ctx,
		model.NewMember("member1", 10, teams[0]),
		model.NewMember("member2", 20, teams[0]),
		model.NewMember("member3", 30, teams[1]),
		model.NewMember("", 40, nil),
	))

	found, err := members.FindByUsername(ctx, "member3")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 30, found[0].Age)
	require.NotNil(t, found[0].Team)
	assert.Equal(t, "teamB", found[0].Team.Name)

	inA, err := members.FindByTeam(ctx, teams[0].ID)
	require.NoError(t, err)
	require.Len(t, inA, 2)
	assert.Equal(t, "member1", inA[0].UsernameOrEmpty())
	assert.Equal(t, "member2", inA[1].UsernameOrEmpty())

	all, err := members.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Nil(t, all[3].Username)
	assert.Nil(t, all[3].TeamID)
}

func TestMemberRepositoryChangeTeam(t *testing.T) {
	db := openTestDB(t)
	teams := createTeams(t, NewRepository[model.Team](db), "teamA", "teamB")
	members := NewMemberRepository(db, types.CountAvoidance)
	ctx := context.Background()

	m := model.NewMember("member1", 10, teams[0])
	require.NoError(t, members.Create(ctx, m))

	require.NoError(t, members.ChangeTeam(ctx, m.ID, teams[1]))
	inB, err := members.FindByTeam(ctx, teams[1].ID)
	require.NoError(t, err)
	require.Len(t, inB, 1)
	assert.Equal(t, m.ID, inB[0].ID)

	require.NoError(t, members.ChangeTeam(ctx, m.ID, nil))
	got, err := members.GetOne(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TeamID)

	err = members.ChangeTeam(ctx, 9999, teams[0])
	assert.ErrorIs(t, err, ErrNotFound)

	err = members.ChangeTeam(ctx, m.ID, model.NewTeam("unsaved"))
	assert.ErrorIs(t, err, ErrUnsavedTeam)
	got, err = members.GetOne(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TeamID)
}

func TestMemberRepositoryRejectsNegativeAge(t *testing.T) {
	db := openTestDB(t)
	members := NewMemberRepository(db, types.CountAvoidance)
	ctx := context.Background()

	err := members.Create(ctx, model.NewMember("member1", 10, nil), model.NewMember("member2", -1, nil))
	assert.ErrorIs(t, err, model.ErrNegativeAge)
	n, err := members.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	m := model.NewMember("member1", 10, nil)
	require.NoError(t, members.Create(ctx, m))
	m.Age = -5
	assert.ErrorIs(t, members.Update(ctx, m), model.ErrNegativeAge)
	got, err := members.GetOne(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Age)
}

func TestMemberRepositorySearch(t *testing.T) {
	db := openTestDB(t)
	teams := createTeams(t, NewRepository[model.Team](db), "teamA", "teamB")
	members := NewMemberRepository(db, types.AlwaysCount)
	ctx := context.Background()
	require.NoError(t, members.Create(ctx,
		model.NewMember("member1", 10, teams[0]),
		model.NewMember("member2", 20, teams[0]),
		model.NewMember("member3", 30, teams[1]),
		model.NewMember("member4", 40, teams[1]),
	))

	rows, err := members.Search(ctx, search.Condition{TeamName: search.Ptr("teamA")})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "teamA", *rows[0].TeamName)

	page, err := members.SearchPage(ctx, search.Condition{AgeMin: search.Ptr(20)}, types.NewPageRequest(0, 2), search.SortByAge.Desc())
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 40, page.Items[0].Age)
	assert.Equal(t, types.AlwaysCount, members.Searcher().Paginator().Strategy())

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		txMembers := members.WithTx(tx)
		require.NoError(t, txMembers.Create(ctx, model.NewMember("member5", 50, nil)))
		rows, err := txMembers.Search(ctx, search.Condition{AgeMin: search.Ptr(50)})
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		return nil
	})
	require.NoError(t, err)
}
