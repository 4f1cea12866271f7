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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/roster/database"
)

func TestNewMember(t *testing.T) {
	team := &Team{ID: 7, Name: "teamA"}
	m := NewMember("member1", 10, team)
	require.NotNil(t, m.Username)
	assert.Equal(t, "member1", m.UsernameOrEmpty())
	assert.Equal(t, 10, m.Age)
	require.NotNil(t, m.TeamID)
	assert.Equal(t, int64(7), *m.TeamID)
	assert.Same(t, team, m.Team)

	loner := NewMember("", 20, nil)
	assert.Nil(t, loner.Username)
	assert.Equal(t, "", loner.UsernameOrEmpty())
	assert.Nil(t, loner.TeamID)
	assert.Nil(t, loner.Team)
}

func TestChangeTeam(t *testing.T) {
	teamA := &Team{ID: 1, Name: "teamA"}
	teamB := &Team{ID: 2, Name: "teamB"}
	m := NewMember("member1", 10, teamA)

	m.ChangeTeam(teamB)
	assert.Same(t, teamB, m.Team)
	assert.Equal(t, int64(2), *m.TeamID)

	// TeamID must not alias the team's field
	teamB.ID = 3
	assert.Equal(t, int64(2), *m.TeamID)

	m.ChangeTeam(nil)
	assert.Nil(t, m.Team)
	assert.Nil(t, m.TeamID)
}

func TestMemberValidate(t *testing.T) {
	assert.NoError(t, NewMember("member1", 0, nil).Validate())
	assert.ErrorIs(t, NewMember("member1", -1, nil).Validate(), ErrNegativeAge)
}

func TestModelsAreRegisteredTeamFirst(t *testing.T) {
	var order []interface{}
	for _, instance := range database.RegisteredModelInstances() {
		switch instance.(type) {
		case *Team, *Member:
			order = append(order, instance)
		}
	}
	require.Len(t, order, 2)
	assert.IsType(t, (*Team)(nil), order[0])
	assert.IsType(t, (*Member)(nil), order[1])
}
