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

// Package roster stores members and their teams and answers paged member
// searches on the global database.
package roster

import (
	"context"
	"sync"

	"github.com/tomoncle/roster/config"
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/model"
	"github.com/tomoncle/roster/repository"
	"github.com/tomoncle/roster/search"
	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
)

var (
	strategyMu         sync.RWMutex
	configuredStrategy = types.CountAvoidance
)

// Open applies the logging settings of cfg, records its search count
// strategy for Members and initializes the global database, creating the
// tables when migration on startup is enabled.
func Open(cfg *config.Config) (*bun.DB, error) {
	cfg.ApplyLogging()
	strategyMu.Lock()
	configuredStrategy = cfg.CountStrategy()
	strategyMu.Unlock()
	return database.InitDB(cfg.ConfigLoader())
}

// Members returns a MemberService using the count strategy of the
// configuration passed to Open.
func Members() *MemberService {
	strategyMu.RLock()
	defer strategyMu.RUnlock()
	return NewMemberService(configuredStrategy)
}

// Close closes the global database.
func Close() error {
	return database.CloseDB()
}

type Service[T any] interface {
	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Count returns the number of entities that match the filter.
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest) (*types.Pagination[*T], error)

	// Update modifies an existing entity.
	Update(ctx context.Context, model *T) error

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id any) error

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities based on fields and duplicate keys.
	SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error

	// WithTx returns the service running on db, e.g. a caller owned bun.Tx.
	WithTx(db bun.IDB) Service[T]

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery
}

type baseServiceImpl[T any] struct {
	repo repository.Repository[T]
	once sync.Once
}

// NewService returns a default Service implementation using the generic
// repository backed by the global database connection.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() { s.repo = repository.NewRepository[T](database.GetDB()) })
	return s.repo
}

func (s *baseServiceImpl[T]) WithTx(db bun.IDB) Service[T] {
	tx := &baseServiceImpl[T]{}
	tx.once.Do(func() { tx.repo = repository.NewRepository[T](db) })
	return tx
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.baseRepo().Create(ctx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error {
	return s.baseRepo().Upsert(ctx, fields, duplicateKeys, model...)
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().GetOne(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return s.baseRepo().List(ctx, filter)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.baseRepo().Count(ctx, filter)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T) error {
	return s.baseRepo().Update(ctx, model)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest) (*types.Pagination[*T], error) {
	return s.baseRepo().Page(ctx, filter, page)
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

// TeamService manages teams.
type TeamService = Service[model.Team]

func NewTeamService() TeamService {
	return NewService[model.Team]()
}

// MemberService manages members and runs member searches with the
// configured count strategy.
type MemberService struct {
	strategy types.CountStrategy
	repo     *repository.MemberRepository
	once     sync.Once
}

func NewMemberService(strategy types.CountStrategy) *MemberService {
	return &MemberService{strategy: strategy}
}

func (s *MemberService) members() *repository.MemberRepository {
	s.once.Do(func() { s.repo = repository.NewMemberRepository(database.GetDB(), s.strategy) })
	return s.repo
}

// WithTx returns the service running on db.
func (s *MemberService) WithTx(db bun.IDB) *MemberService {
	tx := &MemberService{strategy: s.strategy}
	tx.once.Do(func() { tx.repo = repository.NewMemberRepository(db, s.strategy) })
	return tx
}

func (s *MemberService) Save(ctx context.Context, members ...*model.Member) error {
	return s.members().Create(ctx, members...)
}

func (s *MemberService) Get(ctx context.Context, id int64) (*model.Member, error) {
	return s.members().GetOne(ctx, id)
}

func (s *MemberService) All(ctx context.Context) ([]*model.Member, error) {
	return s.members().GetAll(ctx)
}

func (s *MemberService) Delete(ctx context.Context, id int64) error {
	return s.members().Delete(ctx, id)
}

func (s *MemberService) FindByUsername(ctx context.Context, username string) ([]*model.Member, error) {
	return s.members().FindByUsername(ctx, username)
}

// ChangeTeam stores the new team of member and then updates member itself.
// The team must have been saved; member is left untouched on error.
func (s *MemberService) ChangeTeam(ctx context.Context, member *model.Member, team *model.Team) error {
	if err := s.members().ChangeTeam(ctx, member.ID, team); err != nil {
		return err
	}
	member.ChangeTeam(team)
	return nil
}

// TeamMembers looks up the members of team.
func (s *MemberService) TeamMembers(ctx context.Context, team *model.Team) ([]*model.Member, error) {
	return s.members().FindByTeam(ctx, team.ID)
}

func (s *MemberService) Search(ctx context.Context, cond search.Condition, order ...search.Order) ([]search.MemberTeamView, error) {
	return s.members().Search(ctx, cond, order...)
}

// SearchPage returns the zero-based page of size rows matching cond.
func (s *MemberService) SearchPage(ctx context.Context, cond search.Condition, page, size int, order ...search.Order) (*types.Pagination[search.MemberTeamView], error) {
	return s.members().SearchPage(ctx, cond, types.NewPageRequest(page, size), order...)
}
