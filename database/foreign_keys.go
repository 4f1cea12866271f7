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

package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string
	ConstraintName  string
}

var referentialActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// Name returns the explicit constraint name or fk_<table>_<column>.
func (fk ForeignKeyConstraint) Name() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// SQL returns the ALTER TABLE statement that adds the constraint.
func (fk ForeignKeyConstraint) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		fk.Table, fk.Name(), fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE " + fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE " + fk.OnUpdate)
	}
	return b.String()
}

// Validate joins every problem found in fk.
func (fk ForeignKeyConstraint) Validate() error {
	var errs []error
	for _, f := range []struct{ name, value string }{
		{"table", fk.Table},
		{"column", fk.Column},
		{"reference table", fk.ReferenceTable},
		{"reference column", fk.ReferenceColumn},
	} {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("%s: %s cannot be empty", fk.Name(), f.name))
		}
	}
	for _, a := range []struct{ kind, value string }{{"delete", fk.OnDelete}, {"update", fk.OnUpdate}} {
		if a.value != "" && !isReferentialAction(a.value) {
			errs = append(errs, fmt.Errorf("%s: invalid on %s action %q", fk.Name(), a.kind, a.value))
		}
	}
	return errors.Join(errs...)
}

func isReferentialAction(s string) bool {
	for _, action := range referentialActions {
		if strings.EqualFold(s, action) {
			return true
		}
	}
	return false
}

// MemberTeamForeignKey links member.team_id to team.team_id. A member
// outlives its team: deleting a team unlinks its members.
func MemberTeamForeignKey() ForeignKeyConstraint {
	return ForeignKeyConstraint{
		Table:           "member",
		Column:          "team_id",
		ReferenceTable:  "team",
		ReferenceColumn: "team_id",
		OnDelete:        "SET NULL",
	}
}

// memberTeamKeyFile is the YAML layout of DataMigrateConfig.ForeignKeyFile:
//
//	member_team:
//	  constraint_name: fk_member_team
//	  on_delete: CASCADE
//	  on_update: NO ACTION
type memberTeamKeyFile struct {
	MemberTeam struct {
		ConstraintName string `yaml:"constraint_name"`
		OnDelete       string `yaml:"on_delete"`
		OnUpdate       string `yaml:"on_update"`
	} `yaml:"member_team"`
}

// LoadMemberTeamForeignKey returns MemberTeamForeignKey with the name and
// referential actions set in the YAML file at path. Empty entries keep the
// defaults.
func LoadMemberTeamForeignKey(path string) (ForeignKeyConstraint, error) {
	fk := MemberTeamForeignKey()
	data, err := os.ReadFile(path)
	if err != nil {
		return fk, fmt.Errorf("failed to read foreign key file: %w", err)
	}
	var file memberTeamKeyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fk, fmt.Errorf("failed to parse foreign key file %s: %w", path, err)
	}
	if v := file.MemberTeam.ConstraintName; v != "" {
		fk.ConstraintName = v
	}
	if v := file.MemberTeam.OnDelete; v != "" {
		fk.OnDelete = strings.ToUpper(v)
	}
	if v := file.MemberTeam.OnUpdate; v != "" {
		fk.OnUpdate = strings.ToUpper(v)
	}
	return fk, fk.Validate()
}

// AddForeignKey adds fk. A failure, typically an existing constraint, is
// logged and skipped.
func AddForeignKey(ctx context.Context, db bun.IDB, fk ForeignKeyConstraint, logger Logger) {
	if _, err := db.ExecContext(ctx, fk.SQL()); err != nil {
		logger.Debug("Failed to add foreign key constraint", "constraint", fk.Name(), "error", err.Error())
		return
	}
	logger.Debug("Added foreign key constraint", "constraint", fk.Name())
}
