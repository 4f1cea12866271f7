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

package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomoncle/roster/database"
	"github.com/uptrace/bun"
)

// ErrNegativeAge is returned when a member with an age below zero is written.
var ErrNegativeAge = errors.New("member age must not be negative")

var _ bun.BeforeAppendModelHook = (*Member)(nil)

func init() {
	// team must exist before member references it
	database.RegisteredModel(database.NewModelAdapter((*Team)(nil), 0))
	database.RegisteredModel(database.NewModelAdapter((*Member)(nil), 1))
}

// Team groups members. Its members are looked up by query, not held here.
type Team struct {
	bun.BaseModel `bun:"table:team,alias:t"`

	ID   int64  `bun:"team_id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

func NewTeam(name string) *Team {
	return &Team{Name: name}
}

// Member belongs to at most one team. A nil Username is a valid state.
type Member struct {
	bun.BaseModel `bun:"table:member,alias:m"`

	ID       int64   `bun:"member_id,pk,autoincrement" json:"id"`
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age,notnull,default:0" json:"age"`
	TeamID   *int64  `bun:"team_id" json:"team_id"`
	Team     *Team   `bun:"rel:belongs-to,join:team_id=team_id" json:"team,omitempty"`
}

// NewMember creates a member placed in team, which may be nil. An empty
// username is stored as NULL. A negative age is rejected when the member
// is inserted or updated.
func NewMember(username string, age int, team *Team) *Member {
	m := &Member{Age: age}
	if username != "" {
		m.Username = &username
	}
	m.ChangeTeam(team)
	return m
}

// ChangeTeam points the member at team and keeps TeamID in step with it.
// A nil team detaches the member.
func (m *Member) ChangeTeam(team *Team) {
	m.Team = team
	if team == nil {
		m.TeamID = nil
		return
	}
	id := team.ID
	m.TeamID = &id
}

func (m *Member) UsernameOrEmpty() string {
	if m.Username == nil {
		return ""
	}
	return *m.Username
}

// Validate reports whether m can be stored.
func (m *Member) Validate() error {
	if m.Age < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeAge, m.Age)
	}
	return nil
}

// BeforeAppendModel validates members written through bun.
func (m *Member) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery, *bun.UpdateQuery:
		return m.Validate()
	}
	return nil
}
